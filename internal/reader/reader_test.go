package reader_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/internal/reader"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testReader(t *testing.T, maxHandles int) *reader.Reader {
	t.Helper()

	cfg := &config.ReaderConfig{MaxOpenHandles: maxHandles}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	r := reader.New(cfg, testLogger())
	t.Cleanup(r.Close)
	return r
}

// writeDocument writes deterministic content under a document extension.
func writeDocument(t *testing.T, size int) string {
	t.Helper()

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestReadChunk_ExactBytes(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 1024)
	ctx := context.Background()

	chunk, err := r.ReadChunk(ctx, path, 100, 50)
	if err != nil {
		t.Fatalf("ReadChunk() failed: %v", err)
	}

	if len(chunk) != 50 {
		t.Fatalf("ReadChunk() returned %d bytes, want 50", len(chunk))
	}
	for i, b := range chunk {
		if want := byte((100 + i) % 251); b != want {
			t.Fatalf("chunk[%d] = %d, want %d", i, b, want)
		}
	}
}

func TestReadChunk_OutOfOrderNonOverlapping(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 4096)
	ctx := context.Background()

	late, err := r.ReadChunk(ctx, path, 2048, 256)
	if err != nil {
		t.Fatalf("ReadChunk(late) failed: %v", err)
	}
	early, err := r.ReadChunk(ctx, path, 0, 256)
	if err != nil {
		t.Fatalf("ReadChunk(early) failed: %v", err)
	}

	for i := range early {
		if want := byte(i % 251); early[i] != want {
			t.Fatalf("early[%d] = %d, want %d", i, early[i], want)
		}
	}
	for i := range late {
		if want := byte((2048 + i) % 251); late[i] != want {
			t.Fatalf("late[%d] = %d, want %d", i, late[i], want)
		}
	}
}

func TestReadChunk_ConcurrentSameHandle(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 64*1024)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		offset := int64(i * 4096)
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunk, err := r.ReadChunk(ctx, path, offset, 4096)
			if err != nil {
				errs <- err
				return
			}
			for j, b := range chunk {
				if want := byte((int(offset) + j) % 251); b != want {
					errs <- errors.New("chunk content mismatch")
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ReadChunk() failed: %v", err)
	}
}

func TestReadChunk_InvalidInput(t *testing.T) {
	r := testReader(t, 4)
	ctx := context.Background()

	if _, err := r.ReadChunk(ctx, "../doc.pdf", 0, 10); !errors.Is(err, reader.ErrInvalidPath) {
		t.Errorf("traversal path error = %v, want ErrInvalidPath", err)
	}
	if _, err := r.ReadChunk(ctx, "/tmp/notes.txt", 0, 10); !errors.Is(err, reader.ErrInvalidPath) {
		t.Errorf("wrong type error = %v, want ErrInvalidPath", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := r.ReadChunk(ctx, missing, 0, 10); !errors.Is(err, reader.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
}

func TestReadChunk_BeyondEOF(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 100)

	if _, err := r.ReadChunk(context.Background(), path, 90, 50); err == nil {
		t.Error("ReadChunk() past EOF succeeded, want error")
	}
}

func TestSize(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 777)

	size, err := r.Size(context.Background(), path)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if size != 777 {
		t.Errorf("Size() = %d, want 777", size)
	}
}

func TestCloseHandle_Idempotent(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 128)

	if _, err := r.ReadChunk(context.Background(), path, 0, 16); err != nil {
		t.Fatalf("ReadChunk() failed: %v", err)
	}

	r.CloseHandle(path)
	r.CloseHandle(path) // second close must be a no-op

	// The handle can be reopened after closing.
	if _, err := r.ReadChunk(context.Background(), path, 0, 16); err != nil {
		t.Fatalf("ReadChunk() after CloseHandle() failed: %v", err)
	}
}

func TestHandleCache_Bounded(t *testing.T) {
	r := testReader(t, 2)
	ctx := context.Background()

	// Cycling through more documents than the bound must not fail; older
	// handles are evicted and reopened on demand.
	docs := make([]string, 5)
	for i := range docs {
		docs[i] = writeDocument(t, 256)
	}
	for round := 0; round < 3; round++ {
		for _, path := range docs {
			if _, err := r.ReadChunk(ctx, path, 0, 32); err != nil {
				t.Fatalf("ReadChunk() failed: %v", err)
			}
		}
	}
}

func TestRead_AfterClose(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 128)

	r.Close()
	if _, err := r.ReadChunk(context.Background(), path, 0, 16); !errors.Is(err, reader.ErrClosed) {
		t.Errorf("ReadChunk() after Close() error = %v, want ErrClosed", err)
	}
}

func TestReadDocument_InlineBelowThreshold(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 100)

	doc, err := r.ReadDocument(context.Background(), path, 1024)
	if err != nil {
		t.Fatalf("ReadDocument() failed: %v", err)
	}

	if doc.Type != reader.TypeInline {
		t.Fatalf("ReadDocument() type = %q, want inline", doc.Type)
	}

	raw, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		t.Fatalf("DecodeString() failed: %v", err)
	}
	want, _ := os.ReadFile(path)
	if !bytes.Equal(raw, want) {
		t.Error("inline data does not match file contents")
	}
}

func TestReadDocument_PathAtThreshold(t *testing.T) {
	r := testReader(t, 4)
	path := writeDocument(t, 2048)

	doc, err := r.ReadDocument(context.Background(), path, 2048)
	if err != nil {
		t.Fatalf("ReadDocument() failed: %v", err)
	}

	if doc.Type != reader.TypeFilePath {
		t.Fatalf("ReadDocument() type = %q, want file-path", doc.Type)
	}
	if doc.Path != path {
		t.Errorf("ReadDocument() path = %q, want %q", doc.Path, path)
	}
	if doc.Data != "" {
		t.Error("ReadDocument() returned inline data for large document")
	}
}
