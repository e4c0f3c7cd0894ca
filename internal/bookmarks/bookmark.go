// Package bookmarks provides the atomic JSON-backed bookmark store scoped to
// an archive root. The whole collection lives in one hidden document that is
// rewritten through a temp-file rename, so readers never observe a partial
// write and a crash mid-write leaves the previous document intact.
package bookmarks

import "time"

// StorageFilename is the hidden bookmark document at the archive root.
const StorageFilename = ".caseark-bookmarks.json"

// Bookmark marks a page of a document. FolderID is a weak reference to a
// Folder: deleting the folder clears the reference but never the bookmark.
type Bookmark struct {
	ID           string    `json:"id"`
	DocumentPath string    `json:"documentPath"`
	PageNumber   int       `json:"pageNumber"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Note         string    `json:"note,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	FolderID     *string   `json:"folderId,omitempty"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Folder groups bookmarks of one document. Convention is one folder per
// distinct document path; callers preserve it by querying before creating.
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DocumentPath string    `json:"documentPath"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Storage is the persisted bookmark document.
type Storage struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Folders   []Folder   `json:"folders"`
}

// CreateBookmarkCommand contains the data required to create a bookmark.
type CreateBookmarkCommand struct {
	DocumentPath string
	PageNumber   int
	Name         string
	Description  string
	Note         string
	Thumbnail    string
	FolderID     *string
	Tags         []string
}

// UpdateBookmarkCommand contains the bookmark fields that can be modified.
// Nil fields are left untouched.
type UpdateBookmarkCommand struct {
	Name        *string
	Description *string
	Note        *string
	Thumbnail   *string
	PageNumber  *int
	FolderID    *string
	ClearFolder bool
	Tags        []string
}

// CreateFolderCommand contains the data required to create a folder.
type CreateFolderCommand struct {
	Name         string
	DocumentPath string
	Thumbnail    string
}
