package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lexmeta/internal/model"
	"github.com/ppiankov/lexmeta/internal/pipeline"
)

// Extractor defines the interface for extracting one document
type Extractor interface {
	Extract(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Loader defines the interface for loading one document from disk
type Loader interface {
	Load(path string) (model.Document, error)
}

// ExtractJob processes one document file
type ExtractJob struct {
	Path      string
	Loader    Loader
	Extractor Extractor
	Caller    string
	Org       string
}

// Execute loads the document and runs the extraction pipeline
func (j *ExtractJob) Execute(ctx context.Context) Result {
	doc, err := j.Loader.Load(j.Path)
	if err != nil {
		return &ExtractResult{Path: j.Path, Error: err}
	}

	res, err := j.Extractor.Extract(ctx, pipeline.Request{
		Document: doc,
		Caller:   j.Caller,
		Org:      j.Org,
	})
	if err != nil {
		return &ExtractResult{Path: j.Path, Error: err}
	}
	return &ExtractResult{Path: j.Path, Metadata: res.Metadata, State: res.State}
}

// ExtractResult represents the result of one document extraction
type ExtractResult struct {
	Path     string
	Metadata *model.LegalMetadata
	State    pipeline.State
	Error    error
}

// GetError returns the error from the extraction result
func (r *ExtractResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	loader      Loader
	extractor   Extractor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(loader Loader, extractor Extractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		loader:      loader,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessFiles processes multiple document files concurrently
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Propagate caller cancellation into the pool
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()
	defer close(done)

	for _, path := range paths {
		pool.Submit(&ExtractJob{
			Path:      path,
			Loader:    b.loader,
			Extractor: b.extractor,
		})
	}

	raw := pool.Wait()
	results := make([]*ExtractResult, 0, len(raw))
	for _, r := range raw {
		if er, ok := r.(*ExtractResult); ok {
			results = append(results, er)
		}
	}
	return results
}

// ReadFileList reads document paths from a list file, one per line,
// skipping blanks and # comments
func ReadFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}

	return paths, nil
}
