package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/caseark/caseark/internal/bookmarks"
	"github.com/caseark/caseark/internal/cases"
	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/internal/engine"
	"github.com/caseark/caseark/internal/reader"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()

	cfg := &config.Config{
		ConfigDir: t.TempDir(),
		Reader:    config.ReaderConfig{InlineThreshold: "1kB"},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	e, err := engine.New(cfg, logger)
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngine_ArchiveAndCaseScenario(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	root := t.TempDir()

	// No root selected: listing is empty, not an error.
	list, err := e.ListCases(ctx)
	if err != nil {
		t.Fatalf("ListCases() failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ListCases() = %d cases before selection, want 0", len(list))
	}

	sel, err := e.SelectDrive(ctx, root)
	if err != nil {
		t.Fatalf("SelectDrive() failed: %v", err)
	}
	if sel.AutoDetected {
		t.Error("SelectDrive() autoDetected = true for fresh root")
	}

	valid, marker := e.ValidateArchive(ctx, root)
	if !valid || marker == nil {
		t.Fatal("ValidateArchive() = false after SelectDrive()")
	}

	casePath, err := e.CreateCase(ctx, cases.CreateCaseCommand{Name: "Case 1"})
	if err != nil {
		t.Fatalf("CreateCase() failed: %v", err)
	}
	if casePath != filepath.Join(root, "Case 1") {
		t.Errorf("CreateCase() = %q, want %q", casePath, filepath.Join(root, "Case 1"))
	}

	if _, err := e.CreateCase(ctx, cases.CreateCaseCommand{Name: "Case 1"}); !errors.Is(err, cases.ErrCaseExists) {
		t.Errorf("duplicate CreateCase() error = %v, want ErrCaseExists", err)
	}
}

func TestEngine_ValidateArchive_NeverFails(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if valid, _ := e.ValidateArchive(ctx, t.TempDir()); valid {
		t.Error("ValidateArchive() = true for unmarked directory")
	}
	if valid, _ := e.ValidateArchive(ctx, "../escape"); valid {
		t.Error("ValidateArchive() = true for unsafe path")
	}
}

func TestEngine_ReadDocumentThreshold(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	dir := t.TempDir()
	small := filepath.Join(dir, "small.pdf")
	if err := os.WriteFile(small, make([]byte, 100), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	large := filepath.Join(dir, "large.pdf")
	if err := os.WriteFile(large, make([]byte, 4096), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	doc, err := e.ReadDocument(ctx, small)
	if err != nil {
		t.Fatalf("ReadDocument(small) failed: %v", err)
	}
	if doc.Type != reader.TypeInline || doc.Data == "" {
		t.Errorf("small document type = %q, want inline with data", doc.Type)
	}

	doc, err = e.ReadDocument(ctx, large)
	if err != nil {
		t.Fatalf("ReadDocument(large) failed: %v", err)
	}
	if doc.Type != reader.TypeFilePath || doc.Path != large {
		t.Errorf("large document = %q/%q, want file-path with path", doc.Type, doc.Path)
	}
}

func TestEngine_Bookmarks(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if _, err := e.Bookmarks(); !errors.Is(err, cases.ErrNoArchiveDrive) {
		t.Errorf("Bookmarks() without root error = %v, want ErrNoArchiveDrive", err)
	}

	if _, err := e.SelectDrive(ctx, t.TempDir()); err != nil {
		t.Fatalf("SelectDrive() failed: %v", err)
	}

	store, err := e.Bookmarks()
	if err != nil {
		t.Fatalf("Bookmarks() failed: %v", err)
	}

	if _, err := store.CreateBookmark(bookmarks.CreateBookmarkCommand{
		DocumentPath: "/drive/doc.pdf",
		PageNumber:   1,
		Name:         "first",
	}); err != nil {
		t.Fatalf("CreateBookmark() failed: %v", err)
	}

	again, err := e.Bookmarks()
	if err != nil {
		t.Fatalf("second Bookmarks() failed: %v", err)
	}
	if again != store {
		t.Error("Bookmarks() returned a different store for the same root")
	}
}
