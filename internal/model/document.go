package model

// Document is the plain-text input to one pipeline invocation.
// It is immutable for the duration of the run and owned by the caller;
// filename and mime type are carried for diagnostics only, never used
// by the extraction logic itself.
type Document struct {
	Content  string `json:"-"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	ByteLen  int64  `json:"byte_len,omitempty"`
}
