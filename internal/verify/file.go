// Package verify holds the document verification session: the selected file,
// the in-flight submission and the local result history.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest accepted upload, inclusive.
const MaxFileSize = 10 * 1024 * 1024

// AllowedTypes are the MIME types the server can verify.
var AllowedTypes = []string{"application/pdf", "image/png", "image/jpeg", "image/jpg"}

// FileHandle is a candidate document: its declared name, size and MIME type,
// and a way to read its bytes.
type FileHandle struct {
	Name        string
	Size        int64
	ContentType string
	open        func() (io.ReadCloser, error)
}

// NewFileHandle wraps an arbitrary source.
func NewFileHandle(name string, size int64, contentType string, open func() (io.ReadCloser, error)) *FileHandle {
	return &FileHandle{Name: name, Size: size, ContentType: contentType, open: open}
}

// BytesFile returns a handle over data.
func BytesFile(name, contentType string, data []byte) *FileHandle {
	return NewFileHandle(name, int64(len(data)), contentType, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// OpenFile describes the file at path. The content type is detected from the
// file's leading bytes, falling back to its extension.
func OpenFile(path string) (*FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := ""
	if mt, err := mimetype.DetectFile(path); err == nil && !mt.Is("application/octet-stream") {
		contentType = mt.String()
	}
	if contentType == "" {
		if ext := mime.TypeByExtension(filepath.Ext(path)); ext != "" {
			contentType = ext
		}
	}
	if base, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = base
	}

	return NewFileHandle(filepath.Base(path), info.Size(), contentType, func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a reader over the file's bytes.
func (f *FileHandle) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%s has no content", f.Name)
	}
	return f.open()
}

// DisplaySize returns the size in human units.
func (f *FileHandle) DisplaySize() string {
	return FormatSize(f.Size)
}

// FormatSize formats a byte count the way the upload page shows it.
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// Reason says why a file was rejected.
type Reason int

const (
	ReasonType Reason = iota + 1
	ReasonSize
)

// ValidationError is a file rejected before any upload.
type ValidationError struct {
	Reason Reason
	File   string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonSize:
		return "File size must be less than 10MB."
	default:
		return "Please select a valid file type (PDF, PNG, JPG, JPEG)."
	}
}

// Validate checks the declared type against AllowedTypes and the size
// against MaxFileSize.
func Validate(f *FileHandle) error {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if !slices.Contains(AllowedTypes, ct) {
		return &ValidationError{Reason: ReasonType, File: f.Name}
	}
	if f.Size > MaxFileSize {
		return &ValidationError{Reason: ReasonSize, File: f.Name}
	}
	return nil
}
