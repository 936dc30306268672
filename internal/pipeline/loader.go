package pipeline

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ppiankov/lexmeta/internal/model"
)

// Loader reads documents from disk with a size cap. Binary-format
// parsing (PDF, DOCX, OCR) belongs to the ingestion collaborator; the
// loader handles the plain-text and HTML output of that step.
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader with the given byte ceiling
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &Loader{maxBytes: maxBytes}
}

// Load reads one document, recording filename, mime type, and byte
// length for diagnostics
func (l *Loader) Load(path string) (model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return model.Document{}, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return model.Document{}, fmt.Errorf("document exceeds %d bytes: %s", l.maxBytes, path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return model.Document{
		Content:  string(data),
		Filename: filepath.Base(path),
		MimeType: mimeType,
		ByteLen:  int64(len(data)),
	}, nil
}
