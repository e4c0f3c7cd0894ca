// Package cases manages case folders under the archive root: creation,
// listing, renaming, deletion, extraction sub-folders, and the hidden sidecar
// files carrying per-case metadata. Sidecars never alter primary content; a
// missing or corrupt sidecar degrades a listing entry, never the listing.
package cases

import "time"

// Sidecar and metadata file conventions. Dot-prefixed names are invisible in
// user-facing listings.
const (
	// CaseMetaFilename stores the case description and category tag.
	CaseMetaFilename = ".case-meta.json"

	// BackgroundFilename stores the background image reference as a bare string.
	BackgroundFilename = ".background-image"

	// SourceDocFilename records the document an extraction folder came from.
	SourceDocFilename = ".source-document.json"
)

// Case summarizes a case folder and its sidecar metadata. Metadata fields are
// empty when the corresponding sidecar is absent or unreadable.
type Case struct {
	Name            string    `json:"name"`
	Path            string    `json:"path"`
	Description     string    `json:"description,omitempty"`
	CategoryTagID   string    `json:"categoryTagId,omitempty"`
	BackgroundImage string    `json:"backgroundImage,omitempty"`
	ModifiedAt      time.Time `json:"modifiedAt"`
}

// FileEntry describes one visible entry inside a case folder.
type FileEntry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	IsFolder   bool      `json:"isFolder"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`

	// FolderType is "extraction" for folders holding extracted pages.
	FolderType string `json:"folderType,omitempty"`

	// ParentDocument names the source document of an extraction folder.
	ParentDocument string `json:"parentDocument,omitempty"`

	// PageCount annotates PDF files when the count is readable.
	PageCount *int `json:"pageCount,omitempty"`
}

// CreateCaseCommand contains the data required to create a case.
type CreateCaseCommand struct {
	Name          string
	Description   string
	CategoryTagID string
}

// SourceDocument is the extraction-folder sidecar referencing the document
// the pages were extracted from.
type SourceDocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type caseMeta struct {
	Description   string `json:"description,omitempty"`
	CategoryTagID string `json:"categoryTagId,omitempty"`
}
