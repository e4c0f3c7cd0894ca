// Package archive manages archive identity and the persisted archive
// selection. A directory is a valid archive root iff its marker file exists
// and parses; the marker carries an immutable archive id used to recognize a
// previously initialized root.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caseark/caseark/internal/paths"
	"github.com/google/uuid"
)

const (
	// MarkerFilename is the hidden identity record at the archive root.
	MarkerFilename = ".caseark-archive.json"

	// MarkerVersion is the current marker schema version.
	MarkerVersion = "1.0.0"
)

// Marker is the versioned identity record proving a directory is a managed
// archive root. ArchiveID and CreatedAt are immutable once written.
type Marker struct {
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
	ArchiveID    string    `json:"archiveId"`
	CaseCount    *int      `json:"caseCount,omitempty"`
}

// MarkerUpdate contains the marker fields that may change after creation.
// Nil fields are left untouched.
type MarkerUpdate struct {
	LastModified *time.Time
	CaseCount    *int
}

// Selection is the result of designating a directory as the archive root.
// AutoDetected is true when an existing archive was recognized rather than
// a fresh one initialized.
type Selection struct {
	Path         string  `json:"path"`
	AutoDetected bool    `json:"autoDetected"`
	Marker       *Marker `json:"marker,omitempty"`
}

// System provides archive identity operations over marker files.
type System struct {
	config *ConfigStore
	logger *slog.Logger

	mu sync.Mutex // serializes marker read-modify-write cycles
}

// New creates the archive identity system.
func New(config *ConfigStore, logger *slog.Logger) *System {
	return &System{
		config: config,
		logger: logger.With("system", "archive"),
	}
}

// Config returns the underlying archive selection store.
func (s *System) Config() *ConfigStore {
	return s.config
}

// IsValidArchive reports whether root holds a readable marker file.
// It never fails; any stat, read, or parse error yields false.
func (s *System) IsValidArchive(ctx context.Context, root string) bool {
	_, err := s.ReadMarker(ctx, root)
	return err == nil
}

// ReadMarker loads the marker at root. It fails if the marker is absent or
// malformed.
func (s *System) ReadMarker(ctx context.Context, root string) (*Marker, error) {
	if !paths.IsSafePath(root) {
		return nil, ErrInvalidDirectory
	}

	data, err := os.ReadFile(filepath.Join(root, MarkerFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotArchive
		}
		return nil, fmt.Errorf("read archive marker: %w", err)
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		s.logger.Warn("corrupt archive marker", "root", root, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNotArchive, err)
	}

	return &marker, nil
}

// CreateMarker initializes root as a managed archive with a fresh archive id.
// It fails with ErrMarkerExists if a marker is already present; callers
// decide between create and read via IsValidArchive first.
func (s *System) CreateMarker(ctx context.Context, root string) (*Marker, error) {
	if !paths.IsValidDirectory(ctx, root) {
		return nil, ErrInvalidDirectory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	markerPath := filepath.Join(root, MarkerFilename)
	if _, err := os.Stat(markerPath); err == nil {
		return nil, ErrMarkerExists
	}

	now := time.Now().UTC()
	marker := &Marker{
		Version:      MarkerVersion,
		CreatedAt:    now,
		LastModified: now,
		ArchiveID:    uuid.NewString(),
	}

	if err := s.writeMarker(markerPath, marker); err != nil {
		return nil, err
	}

	s.logger.Info("archive initialized", "root", root, "archive_id", marker.ArchiveID)
	return marker, nil
}

// UpdateMarker merges update into the marker at root and rewrites it.
// ArchiveID and CreatedAt are preserved unconditionally.
func (s *System) UpdateMarker(ctx context.Context, root string, update MarkerUpdate) (*Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marker, err := s.ReadMarker(ctx, root)
	if err != nil {
		return nil, err
	}

	if update.LastModified != nil {
		marker.LastModified = *update.LastModified
	}
	if update.CaseCount != nil {
		marker.CaseCount = update.CaseCount
	}

	if err := s.writeMarker(filepath.Join(root, MarkerFilename), marker); err != nil {
		return nil, err
	}

	return marker, nil
}

// Touch records a structural change: lastModified is set to now and the case
// count recomputed from the directories currently under root.
func (s *System) Touch(ctx context.Context, root string) (*Marker, error) {
	count := s.countCases(root)
	now := time.Now().UTC()
	return s.UpdateMarker(ctx, root, MarkerUpdate{LastModified: &now, CaseCount: &count})
}

// SelectDrive designates root as the archive root. An existing archive is
// recognized (AutoDetected), otherwise a fresh marker is created. In both
// cases the selection is persisted through the config store.
func (s *System) SelectDrive(ctx context.Context, root string) (*Selection, error) {
	if !paths.IsValidDirectory(ctx, root) {
		return nil, ErrInvalidDirectory
	}

	selection := &Selection{Path: root}

	if s.IsValidArchive(ctx, root) {
		marker, err := s.ReadMarker(ctx, root)
		if err != nil {
			return nil, err
		}
		selection.AutoDetected = true
		selection.Marker = marker
	} else {
		marker, err := s.CreateMarker(ctx, root)
		if err != nil {
			return nil, err
		}
		selection.Marker = marker
	}

	if err := s.config.SetArchiveDrive(root); err != nil {
		return nil, fmt.Errorf("persist archive selection: %w", err)
	}

	return selection, nil
}

func (s *System) writeMarker(path string, marker *Marker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive marker: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write archive marker: %w", err)
	}

	return nil
}

func (s *System) countCases(root string) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			count++
		}
	}
	return count
}
