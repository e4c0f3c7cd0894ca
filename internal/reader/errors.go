package reader

import "errors"

// Domain errors for chunked document reads.
var (
	// ErrInvalidPath indicates an unsafe path or unsupported document type.
	ErrInvalidPath = errors.New("invalid document path")

	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrClosed indicates the reader has been shut down.
	ErrClosed = errors.New("reader closed")
)
