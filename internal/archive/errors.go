package archive

import "errors"

// Domain errors for archive identity and configuration operations.
var (
	// ErrInvalidDirectory indicates the supplied path is unsafe or does not
	// refer to an existing directory.
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrNotArchive indicates the marker file is absent or unreadable.
	ErrNotArchive = errors.New("directory is not a valid archive")

	// ErrMarkerExists indicates an archive marker is already present.
	ErrMarkerExists = errors.New("archive marker already exists")
)
