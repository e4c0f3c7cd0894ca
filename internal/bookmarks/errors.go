package bookmarks

import "errors"

// Domain errors for bookmark operations.
var (
	// ErrMissingFields indicates a record lacks required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrNotFound indicates the bookmark id is unknown.
	ErrNotFound = errors.New("bookmark not found")

	// ErrInvalidRoot indicates the store root path is unsafe.
	ErrInvalidRoot = errors.New("invalid archive root")
)
