// Package engine composes the storage systems into the single operation
// surface the transport collaborator drives. One Engine is constructed at
// startup and passed by reference; it owns the config store, the archive
// identity system, the case lifecycle, the chunked reader, and one bookmark
// store per archive root.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/caseark/caseark/internal/archive"
	"github.com/caseark/caseark/internal/bookmarks"
	"github.com/caseark/caseark/internal/cases"
	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/internal/extract"
	"github.com/caseark/caseark/internal/reader"
)

// Engine is the archive storage engine.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	archive *archive.System
	cases   *cases.System
	reader  *reader.Reader
	extract *extract.System

	mu             sync.Mutex
	bookmarkStores map[string]*bookmarks.Store
}

// New constructs the engine from finalized configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	store, err := archive.NewConfigStore(cfg.ConfigDir, logger)
	if err != nil {
		return nil, err
	}

	archiveSys := archive.New(store, logger)
	caseSys := cases.New(archiveSys, logger)

	return &Engine{
		cfg:            cfg,
		logger:         logger.With("system", "engine"),
		archive:        archiveSys,
		cases:          caseSys,
		reader:         reader.New(&cfg.Reader, logger),
		extract:        extract.New(caseSys, logger),
		bookmarkStores: make(map[string]*bookmarks.Store),
	}, nil
}

// Close releases held resources, closing every cached file handle.
func (e *Engine) Close() {
	e.reader.Close()
}

// SelectDrive designates path as the archive root, recognizing an existing
// archive or initializing a fresh one, and persists the selection.
func (e *Engine) SelectDrive(ctx context.Context, path string) (*archive.Selection, error) {
	return e.archive.SelectDrive(ctx, path)
}

// ArchiveDrive returns the configured archive root.
func (e *Engine) ArchiveDrive() (string, bool) {
	return e.archive.Config().ArchiveDrive()
}

// SetArchiveDrive persists path as the archive root without marker handling.
func (e *Engine) SetArchiveDrive(path string) error {
	return e.archive.Config().SetArchiveDrive(path)
}

// ClearArchiveDrive removes the archive selection.
func (e *Engine) ClearArchiveDrive() error {
	return e.archive.Config().ClearArchiveDrive()
}

// ValidateArchive reports whether path is a valid archive and returns its
// marker when it is. It never fails; any failure yields valid=false.
func (e *Engine) ValidateArchive(ctx context.Context, path string) (bool, *archive.Marker) {
	marker, err := e.archive.ReadMarker(ctx, path)
	if err != nil {
		return false, nil
	}
	return true, marker
}

// CreateCase creates a case folder under the active archive root.
func (e *Engine) CreateCase(ctx context.Context, cmd cases.CreateCaseCommand) (string, error) {
	return e.cases.CreateCase(ctx, cmd)
}

// ListCases enumerates the cases of the active archive root.
func (e *Engine) ListCases(ctx context.Context) ([]cases.Case, error) {
	return e.cases.ListCases(ctx)
}

// CreateExtractionFolder creates an extraction sub-folder inside a case.
func (e *Engine) CreateExtractionFolder(ctx context.Context, casePath, folderName, parentDocPath string) (string, error) {
	return e.cases.CreateExtractionFolder(ctx, casePath, folderName, parentDocPath)
}

// ListCaseFiles enumerates the visible entries of a case folder.
func (e *Engine) ListCaseFiles(ctx context.Context, casePath string) ([]cases.FileEntry, error) {
	return e.cases.ListCaseFiles(ctx, casePath)
}

// AddFilesToCase copies documents into a case, skipping failing files.
func (e *Engine) AddFilesToCase(ctx context.Context, casePath string, sources []string) ([]string, error) {
	return e.cases.AddFilesToCase(ctx, casePath, sources)
}

// DeleteCase removes a case folder recursively.
func (e *Engine) DeleteCase(ctx context.Context, casePath string) error {
	return e.cases.DeleteCase(ctx, casePath)
}

// DeleteFile removes a file or folder.
func (e *Engine) DeleteFile(ctx context.Context, path string, isFolder bool) error {
	return e.cases.DeleteFile(ctx, path, isFolder)
}

// RenameFile renames an entry and returns its new path.
func (e *Engine) RenameFile(ctx context.Context, path, newName string) (string, error) {
	return e.cases.RenameFile(ctx, path, newName)
}

// SetCaseDescription updates a case's description sidecar.
func (e *Engine) SetCaseDescription(ctx context.Context, casePath, description string) error {
	return e.cases.SetDescription(ctx, casePath, description)
}

// SetCaseCategoryTag updates a case's category tag sidecar.
func (e *Engine) SetCaseCategoryTag(ctx context.Context, casePath, tagID string) error {
	return e.cases.SetCategoryTag(ctx, casePath, tagID)
}

// SetCaseBackgroundImage records a case's background image reference.
func (e *Engine) SetCaseBackgroundImage(ctx context.Context, casePath, imageName string) error {
	return e.cases.SetBackgroundImage(ctx, casePath, imageName)
}

// ReadDocument retrieves a whole document, inline below the configured
// threshold and by path at or above it.
func (e *Engine) ReadDocument(ctx context.Context, path string) (*reader.Document, error) {
	return e.reader.ReadDocument(ctx, path, e.cfg.Reader.InlineThresholdBytes())
}

// ReadChunk reads length bytes of a document at offset through the handle
// cache.
func (e *Engine) ReadChunk(ctx context.Context, path string, offset int64, length int) ([]byte, error) {
	return e.reader.ReadChunk(ctx, path, offset, length)
}

// DocumentSize returns the byte size of a document.
func (e *Engine) DocumentSize(ctx context.Context, path string) (int64, error) {
	return e.reader.Size(ctx, path)
}

// CloseDocument evicts the cached read handle for a document.
func (e *Engine) CloseDocument(path string) {
	e.reader.CloseHandle(path)
}

// ExtractPages extracts pages of a source PDF into a new extraction folder.
func (e *Engine) ExtractPages(ctx context.Context, req extract.Request) (string, error) {
	return e.extract.ExtractPages(ctx, req)
}

// Bookmarks returns the bookmark store scoped to the active archive root.
// Stores are cached per root so every operation against one root shares a
// single write-serialized instance.
func (e *Engine) Bookmarks() (*bookmarks.Store, error) {
	root, ok := e.ArchiveDrive()
	if !ok {
		return nil, cases.ErrNoArchiveDrive
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if store, ok := e.bookmarkStores[root]; ok {
		return store, nil
	}

	store, err := bookmarks.NewStore(root, e.logger)
	if err != nil {
		return nil, err
	}
	e.bookmarkStores[root] = store
	return store, nil
}
