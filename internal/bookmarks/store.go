package bookmarks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caseark/caseark/internal/paths"
	"github.com/google/uuid"
)

// Store is the bookmark store for one archive root. All mutations are
// read-modify-write cycles against the cached document, serialized by the
// store mutex and ended by an atomic rewrite of the backing file.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached *Storage
}

// NewStore creates the bookmark store for the archive at root.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if !paths.IsSafePath(root) {
		return nil, ErrInvalidRoot
	}

	return &Store{
		path:   filepath.Join(root, StorageFilename),
		logger: logger.With("system", "bookmarks"),
	}, nil
}

// Load returns the bookmark document. A missing file yields the empty
// default; a corrupt file is logged and yields the same default so a broken
// bookmark file never takes the application down.
func (s *Store) Load() *Storage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStorage(s.loadLocked())
}

// CreateBookmark validates and persists a new bookmark.
func (s *Store) CreateBookmark(cmd CreateBookmarkCommand) (*Bookmark, error) {
	if cmd.DocumentPath == "" || cmd.Name == "" || cmd.PageNumber < 1 {
		return nil, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	bookmark := Bookmark{
		ID:           uuid.NewString(),
		DocumentPath: cmd.DocumentPath,
		PageNumber:   cmd.PageNumber,
		Name:         cmd.Name,
		Description:  cmd.Description,
		Note:         cmd.Note,
		Thumbnail:    cmd.Thumbnail,
		FolderID:     cmd.FolderID,
		Tags:         cmd.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	storage := cloneStorage(s.loadLocked())
	storage.Bookmarks = append(storage.Bookmarks, bookmark)
	if err := s.saveLocked(storage); err != nil {
		return nil, err
	}

	return &bookmark, nil
}

// UpdateBookmark applies the non-nil fields of update to the bookmark with
// the given id. An unknown id fails with ErrNotFound.
func (s *Store) UpdateBookmark(id string, update UpdateBookmarkCommand) (*Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage := cloneStorage(s.loadLocked())
	for i := range storage.Bookmarks {
		if storage.Bookmarks[i].ID != id {
			continue
		}

		b := &storage.Bookmarks[i]
		if update.Name != nil {
			b.Name = *update.Name
		}
		if update.Description != nil {
			b.Description = *update.Description
		}
		if update.Note != nil {
			b.Note = *update.Note
		}
		if update.Thumbnail != nil {
			b.Thumbnail = *update.Thumbnail
		}
		if update.PageNumber != nil {
			if *update.PageNumber < 1 {
				return nil, ErrMissingFields
			}
			b.PageNumber = *update.PageNumber
		}
		if update.ClearFolder {
			b.FolderID = nil
		} else if update.FolderID != nil {
			b.FolderID = update.FolderID
		}
		if update.Tags != nil {
			b.Tags = update.Tags
		}
		b.UpdatedAt = time.Now().UTC()

		if err := s.saveLocked(storage); err != nil {
			return nil, err
		}
		result := *b
		return &result, nil
	}

	return nil, ErrNotFound
}

// DeleteBookmark removes the bookmark with the given id. It returns false,
// not an error, when the id is unknown.
func (s *Store) DeleteBookmark(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage := cloneStorage(s.loadLocked())
	for i := range storage.Bookmarks {
		if storage.Bookmarks[i].ID == id {
			storage.Bookmarks = append(storage.Bookmarks[:i], storage.Bookmarks[i+1:]...)
			if err := s.saveLocked(storage); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	return false, nil
}

// BookmarksByFolder returns the bookmarks in the given folder. A nil
// folderID selects root-level bookmarks with no folder association.
func (s *Store) BookmarksByFolder(folderID *string) []Bookmark {
	storage := s.Load()

	result := make([]Bookmark, 0)
	for _, b := range storage.Bookmarks {
		switch {
		case folderID == nil && b.FolderID == nil:
			result = append(result, b)
		case folderID != nil && b.FolderID != nil && *b.FolderID == *folderID:
			result = append(result, b)
		}
	}
	return result
}

// CreateFolder validates and persists a new bookmark folder. Uniqueness per
// document path is a caller convention; use FoldersByDocument first.
func (s *Store) CreateFolder(cmd CreateFolderCommand) (*Folder, error) {
	if cmd.Name == "" || cmd.DocumentPath == "" {
		return nil, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	folder := Folder{
		ID:           uuid.NewString(),
		Name:         cmd.Name,
		DocumentPath: cmd.DocumentPath,
		Thumbnail:    cmd.Thumbnail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	storage := cloneStorage(s.loadLocked())
	storage.Folders = append(storage.Folders, folder)
	if err := s.saveLocked(storage); err != nil {
		return nil, err
	}

	return &folder, nil
}

// FoldersByDocument returns the folders associated with a document path.
func (s *Store) FoldersByDocument(documentPath string) []Folder {
	storage := s.Load()

	result := make([]Folder, 0)
	for _, f := range storage.Folders {
		if f.DocumentPath == documentPath {
			result = append(result, f)
		}
	}
	return result
}

// DeleteFolder removes the folder with the given id and clears the folder
// reference on every bookmark that pointed at it. Bookmarks are never
// deleted as a side effect. It returns false when the id is unknown.
func (s *Store) DeleteFolder(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage := cloneStorage(s.loadLocked())
	found := false
	for i := range storage.Folders {
		if storage.Folders[i].ID == id {
			storage.Folders = append(storage.Folders[:i], storage.Folders[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	for i := range storage.Bookmarks {
		if storage.Bookmarks[i].FolderID != nil && *storage.Bookmarks[i].FolderID == id {
			storage.Bookmarks[i].FolderID = nil
		}
	}

	if err := s.saveLocked(storage); err != nil {
		return false, err
	}
	return true, nil
}

// Save validates and persists the supplied document, replacing the current
// contents entirely.
func (s *Store) Save(storage *Storage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cloneStorage(storage))
}

func (s *Store) loadLocked() *Storage {
	if s.cached != nil {
		return s.cached
	}

	storage := &Storage{Bookmarks: []Bookmark{}, Folders: []Folder{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read bookmark storage, using empty default", "path", s.path, "error", err)
		}
		s.cached = storage
		return storage
	}

	if err := json.Unmarshal(data, storage); err != nil {
		s.logger.Warn("corrupt bookmark storage, using empty default", "path", s.path, "error", err)
		storage = &Storage{Bookmarks: []Bookmark{}, Folders: []Folder{}}
	}
	if storage.Bookmarks == nil {
		storage.Bookmarks = []Bookmark{}
	}
	if storage.Folders == nil {
		storage.Folders = []Folder{}
	}

	s.cached = storage
	return storage
}

// saveLocked re-validates every record, applies defaults, and atomically
// rewrites the backing file. The cache is replaced on success.
func (s *Store) saveLocked(storage *Storage) error {
	for i := range storage.Bookmarks {
		b := &storage.Bookmarks[i]
		if b.ID == "" || b.DocumentPath == "" || b.Name == "" || b.PageNumber < 1 {
			return fmt.Errorf("%w: bookmark %q", ErrMissingFields, b.ID)
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
	}
	for i := range storage.Folders {
		f := &storage.Folders[i]
		if f.ID == "" || f.Name == "" || f.DocumentPath == "" {
			return fmt.Errorf("%w: folder %q", ErrMissingFields, f.ID)
		}
	}

	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookmark storage: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write bookmark storage: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace bookmark storage: %w", err)
	}

	s.cached = storage
	return nil
}

func cloneStorage(storage *Storage) *Storage {
	clone := &Storage{
		Bookmarks: make([]Bookmark, len(storage.Bookmarks)),
		Folders:   make([]Folder, len(storage.Folders)),
	}
	copy(clone.Bookmarks, storage.Bookmarks)
	copy(clone.Folders, storage.Folders)
	return clone
}
