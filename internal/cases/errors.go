package cases

import "errors"

// Domain errors for case and file lifecycle operations.
var (
	// ErrInvalidPath indicates an unsafe or malformed path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidCaseName indicates the case name fails folder-name validation.
	ErrInvalidCaseName = errors.New("invalid case name")

	// ErrInvalidFolderName indicates the folder name fails validation.
	ErrInvalidFolderName = errors.New("invalid folder name")

	// ErrCaseExists indicates a file or folder with the case name is present.
	ErrCaseExists = errors.New("case folder already exists")

	// ErrNoArchiveDrive indicates no archive root is configured.
	ErrNoArchiveDrive = errors.New("no archive drive configured")

	// ErrEmptyName indicates an empty or whitespace-only target name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNameCollision indicates an entry with the target name already exists.
	ErrNameCollision = errors.New("an entry with that name already exists")
)
