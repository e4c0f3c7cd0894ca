package reader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DocumentType discriminates how a whole-document read is returned.
type DocumentType string

const (
	// TypeInline returns the encoded document bytes directly.
	TypeInline DocumentType = "inline"

	// TypeFilePath returns the verified on-disk path; the caller drives
	// chunked reads instead of receiving the bytes.
	TypeFilePath DocumentType = "file-path"
)

// Document is the result of a whole-document read.
type Document struct {
	Type DocumentType `json:"type"`

	// Data holds the base64-encoded bytes for inline results.
	Data string `json:"data,omitempty"`

	// Path holds the document location for file-path results.
	Path string `json:"path,omitempty"`
}

// ReadDocument retrieves a document whole. Documents below threshold are
// read and returned inline as a base64 buffer; documents at or above it stay
// on disk and the verified path is handed back so very large files are never
// materialized in memory.
func (r *Reader) ReadDocument(ctx context.Context, path string, threshold int64) (*Document, error) {
	if err := validateDocumentPath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat document: %w", err)
	}

	if info.Size() >= threshold {
		return &Document{Type: TypeFilePath, Path: path}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return &Document{
		Type: TypeInline,
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}
