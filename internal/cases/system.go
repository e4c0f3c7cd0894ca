package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caseark/caseark/internal/archive"
	"github.com/caseark/caseark/internal/paths"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// System provides case and file lifecycle operations against the active
// archive root.
type System struct {
	archive *archive.System
	logger  *slog.Logger
}

// New creates the case lifecycle system.
func New(archiveSys *archive.System, logger *slog.Logger) *System {
	return &System{
		archive: archiveSys,
		logger:  logger.With("system", "cases"),
	}
}

// CreateCase creates a case folder under the active archive root, writes the
// optional metadata sidecar, and records the structural change in the archive
// marker. It returns the created path.
func (s *System) CreateCase(ctx context.Context, cmd CreateCaseCommand) (string, error) {
	if !paths.IsValidFolderName(cmd.Name) {
		return "", ErrInvalidCaseName
	}

	root, ok := s.archive.Config().ArchiveDrive()
	if !ok {
		return "", ErrNoArchiveDrive
	}

	casePath := filepath.Join(root, cmd.Name)
	if _, err := os.Lstat(casePath); err == nil {
		return "", ErrCaseExists
	}

	if err := os.Mkdir(casePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create case folder: %w", err)
	}

	if cmd.Description != "" || cmd.CategoryTagID != "" {
		meta := caseMeta{Description: cmd.Description, CategoryTagID: cmd.CategoryTagID}
		if err := writeJSONSidecar(filepath.Join(casePath, CaseMetaFilename), meta); err != nil {
			return "", fmt.Errorf("write case metadata: %w", err)
		}
	}

	s.touchMarker(ctx, root)
	s.logger.Info("case created", "path", casePath)
	return casePath, nil
}

// ListCases enumerates case folders under the active archive root. An unset
// root yields an empty list. Sidecars are read per case and a missing or
// corrupt sidecar never aborts enumeration of the others.
func (s *System) ListCases(ctx context.Context) ([]Case, error) {
	root, ok := s.archive.Config().ArchiveDrive()
	if !ok {
		return []Case{}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read archive root: %w", err)
	}

	result := make([]Case, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		c := Case{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
		}
		if info, err := entry.Info(); err == nil {
			c.ModifiedAt = info.ModTime()
		}
		s.readCaseSidecars(&c)
		result = append(result, c)
	}

	return result, nil
}

// SetDescription updates the description sidecar of a case.
func (s *System) SetDescription(ctx context.Context, casePath, description string) error {
	return s.updateMeta(casePath, func(m *caseMeta) { m.Description = description })
}

// SetCategoryTag updates the category tag sidecar of a case.
func (s *System) SetCategoryTag(ctx context.Context, casePath, tagID string) error {
	return s.updateMeta(casePath, func(m *caseMeta) { m.CategoryTagID = tagID })
}

// SetBackgroundImage records imageName as the case background reference.
// The sidecar stores the bare file name, not image bytes.
func (s *System) SetBackgroundImage(ctx context.Context, casePath, imageName string) error {
	if !paths.IsSafePath(casePath) {
		return ErrInvalidPath
	}
	if err := writeRawSidecar(filepath.Join(casePath, BackgroundFilename), []byte(imageName)); err != nil {
		return fmt.Errorf("write background reference: %w", err)
	}
	return nil
}

// CreateExtractionFolder creates a sub-folder of a case for extracted pages.
// When parentDocPath is given, a sidecar records the originating document.
func (s *System) CreateExtractionFolder(ctx context.Context, casePath, folderName, parentDocPath string) (string, error) {
	if !paths.IsSafePath(casePath) {
		return "", ErrInvalidPath
	}
	if !paths.IsValidFolderName(folderName) {
		return "", ErrInvalidFolderName
	}

	folderPath := filepath.Join(casePath, folderName)
	if err := os.Mkdir(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction folder: %w", err)
	}

	if parentDocPath != "" {
		ref := SourceDocument{Name: filepath.Base(parentDocPath), Path: parentDocPath}
		if err := writeJSONSidecar(filepath.Join(folderPath, SourceDocFilename), ref); err != nil {
			return "", fmt.Errorf("write source document reference: %w", err)
		}
	}

	return folderPath, nil
}

// ListCaseFiles enumerates the visible entries of a case folder. Internal
// dot-metadata files are filtered out. Folder entries are annotated with
// their extraction source and PDF files with a page count where readable;
// per-entry metadata failures leave the annotation absent.
func (s *System) ListCaseFiles(ctx context.Context, casePath string) ([]FileEntry, error) {
	if !paths.IsSafePath(casePath) {
		return nil, ErrInvalidPath
	}

	entries, err := os.ReadDir(casePath)
	if err != nil {
		return nil, fmt.Errorf("read case folder: %w", err)
	}

	result := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fe := FileEntry{
			Name:     entry.Name(),
			Path:     filepath.Join(casePath, entry.Name()),
			IsFolder: entry.IsDir(),
		}
		if info, err := entry.Info(); err == nil {
			fe.SizeBytes = info.Size()
			fe.ModifiedAt = info.ModTime()
		}

		if entry.IsDir() {
			if ref, err := readSourceDocument(fe.Path); err == nil {
				fe.FolderType = "extraction"
				fe.ParentDocument = ref.Name
			}
		} else if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			if count, err := api.PageCountFile(fe.Path); err == nil {
				fe.PageCount = &count
			}
		}

		result = append(result, fe)
	}

	return result, nil
}

// AddFilesToCase copies the supplied documents into the case folder and
// returns the paths that were copied. Each source is validated and copied
// independently; a failing file is skipped, never aborting the batch.
func (s *System) AddFilesToCase(ctx context.Context, casePath string, sources []string) ([]string, error) {
	if !paths.IsSafePath(casePath) {
		return nil, ErrInvalidPath
	}

	copied := make([]string, 0, len(sources))
	for _, src := range sources {
		if !paths.IsSafePath(src) || !paths.IsValidDocumentFile(src) {
			s.logger.Warn("skipping invalid source file", "path", src)
			continue
		}

		dst := filepath.Join(casePath, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			s.logger.Warn("failed to copy file into case", "path", src, "error", err)
			continue
		}
		copied = append(copied, dst)
	}

	return copied, nil
}

// DeleteCase removes a case folder recursively and records the structural
// change in the archive marker.
func (s *System) DeleteCase(ctx context.Context, casePath string) error {
	if !paths.IsSafePath(casePath) {
		return ErrInvalidPath
	}

	if err := os.RemoveAll(casePath); err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}

	if root, ok := s.archive.Config().ArchiveDrive(); ok {
		s.touchMarker(ctx, root)
	}
	s.logger.Info("case deleted", "path", casePath)
	return nil
}

// DeleteFile removes a file or folder. Folders are removed recursively. For
// files, a direct unlink is attempted first; if the filesystem reports the
// target is actually a directory, removal falls back to recursive. Other
// unlink errors are fatal.
func (s *System) DeleteFile(ctx context.Context, path string, isFolder bool) error {
	if !paths.IsSafePath(path) {
		return ErrInvalidPath
	}

	if isFolder {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return nil
	}

	err := os.Remove(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EISDIR) || isDirectory(path) {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to delete file: %w", err)
}

// RenameFile renames an entry within its directory and returns the new path.
// Renaming to an existing name is rejected, including renaming an entry to
// its own current name.
func (s *System) RenameFile(ctx context.Context, path, newName string) (string, error) {
	if !paths.IsSafePath(path) {
		return "", ErrInvalidPath
	}
	if strings.TrimSpace(newName) == "" {
		return "", ErrEmptyName
	}
	if !paths.IsValidFolderName(newName) {
		return "", ErrInvalidFolderName
	}

	newPath := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Lstat(newPath); err == nil {
		return "", ErrNameCollision
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	return newPath, nil
}

func (s *System) updateMeta(casePath string, apply func(*caseMeta)) error {
	if !paths.IsSafePath(casePath) {
		return ErrInvalidPath
	}

	meta := caseMeta{}
	metaPath := filepath.Join(casePath, CaseMetaFilename)
	if data, err := os.ReadFile(metaPath); err == nil {
		// Corrupt existing metadata is replaced, not fatal.
		_ = json.Unmarshal(data, &meta)
	}

	apply(&meta)
	if err := writeJSONSidecar(metaPath, meta); err != nil {
		return fmt.Errorf("write case metadata: %w", err)
	}
	return nil
}

// readCaseSidecars fills metadata fields from sidecars, leaving fields empty
// on any failure.
func (s *System) readCaseSidecars(c *Case) {
	metaPath := filepath.Join(c.Path, CaseMetaFilename)
	if data, err := os.ReadFile(metaPath); err == nil {
		var meta caseMeta
		if err := json.Unmarshal(data, &meta); err == nil {
			c.Description = meta.Description
			c.CategoryTagID = meta.CategoryTagID
		} else {
			s.logger.Warn("corrupt case metadata sidecar", "path", metaPath, "error", err)
		}
	}

	bgPath := filepath.Join(c.Path, BackgroundFilename)
	if data, err := os.ReadFile(bgPath); err == nil {
		c.BackgroundImage = strings.TrimSpace(string(data))
	}
}

func (s *System) touchMarker(ctx context.Context, root string) {
	if _, err := s.archive.Touch(ctx, root); err != nil {
		s.logger.Warn("failed to update archive marker", "root", root, "error", err)
	}
}

func isDirectory(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

func readSourceDocument(folderPath string) (*SourceDocument, error) {
	data, err := os.ReadFile(filepath.Join(folderPath, SourceDocFilename))
	if err != nil {
		return nil, err
	}

	var ref SourceDocument
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func writeJSONSidecar(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeRawSidecar(path, data)
}

func writeRawSidecar(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	return out.Close()
}
