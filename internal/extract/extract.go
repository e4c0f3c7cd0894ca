// Package extract writes selected pages of a source PDF into a fresh
// extraction folder inside a case, recording the originating document in the
// folder's sidecar.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caseark/caseark/internal/cases"
	"github.com/caseark/caseark/internal/paths"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrInvalidRequest indicates an extraction request failed validation.
var ErrInvalidRequest = errors.New("invalid extraction request")

// Request specifies one page extraction. All recognized fields are
// enumerated here and validated at the boundary.
type Request struct {
	// DocumentPath is the source PDF.
	DocumentPath string `json:"documentPath"`

	// CasePath is the case receiving the extraction folder.
	CasePath string `json:"casePath"`

	// FolderName names the extraction folder to create.
	FolderName string `json:"folderName"`

	// Pages selects pages in pdfcpu notation, e.g. "1-3", "7", "9-".
	// Empty selects every page.
	Pages []string `json:"pages,omitempty"`
}

// Validate checks the request and applies defaults.
func (r *Request) Validate() error {
	if !paths.IsSafePath(r.DocumentPath) || !paths.IsValidDocumentFile(r.DocumentPath) {
		return fmt.Errorf("%w: invalid document path", ErrInvalidRequest)
	}
	if !strings.EqualFold(filepath.Ext(r.DocumentPath), ".pdf") {
		return fmt.Errorf("%w: source must be a PDF", ErrInvalidRequest)
	}
	if !paths.IsSafePath(r.CasePath) {
		return fmt.Errorf("%w: invalid case path", ErrInvalidRequest)
	}
	if r.FolderName == "" {
		base := filepath.Base(r.DocumentPath)
		r.FolderName = strings.TrimSuffix(base, filepath.Ext(base)) + " pages"
	}
	if !paths.IsValidFolderName(r.FolderName) {
		return fmt.Errorf("%w: invalid folder name", ErrInvalidRequest)
	}
	return nil
}

// System performs page extractions through the case lifecycle.
type System struct {
	cases  *cases.System
	logger *slog.Logger
}

// New creates the extraction system.
func New(caseSys *cases.System, logger *slog.Logger) *System {
	return &System{
		cases:  caseSys,
		logger: logger.With("system", "extract"),
	}
}

// ExtractPages creates the extraction folder and writes the selected pages
// of the source document into it as individual PDFs. The folder is removed
// again if extraction fails, so a failed run leaves no half-filled folder.
func (s *System) ExtractPages(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	folder, err := s.cases.CreateExtractionFolder(ctx, req.CasePath, req.FolderName, req.DocumentPath)
	if err != nil {
		return "", err
	}

	if err := api.ExtractPagesFile(req.DocumentPath, folder, req.Pages, nil); err != nil {
		if rmErr := os.RemoveAll(folder); rmErr != nil {
			s.logger.Warn("failed to clean up extraction folder", "path", folder, "error", rmErr)
		}
		return "", fmt.Errorf("failed to extract pages: %w", err)
	}

	s.logger.Info("pages extracted", "source", req.DocumentPath, "folder", folder)
	return folder, nil
}
