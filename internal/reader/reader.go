// Package reader provides cached random-access reads over large binary
// documents. Open file handles are pooled per absolute path so many chunk
// requests against the same document amortize the open/close cost. Reads are
// positional: concurrent chunk requests on one cached handle never share a
// cursor.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/internal/paths"
)

// handle is one cached open file. inFlight guards the race between an
// eviction closing the file and a positional read still using it: close
// waits until all reads issued under the cache lock have finished.
type handle struct {
	file         *os.File
	lastAccessed time.Time
	inFlight     sync.WaitGroup
}

// Reader is a bounded cache of open read handles keyed by absolute path.
type Reader struct {
	maxHandles  int
	idleTimeout time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	handles map[string]*handle
	closed  bool
}

// New creates a chunked reader from the finalized reader configuration.
func New(cfg *config.ReaderConfig, logger *slog.Logger) *Reader {
	return &Reader{
		maxHandles:  cfg.MaxOpenHandles,
		idleTimeout: cfg.IdleTimeoutDuration(),
		logger:      logger.With("system", "reader"),
		handles:     make(map[string]*handle),
	}
}

// ReadChunk returns exactly length bytes of the document at path starting at
// offset. The underlying handle is cached and may serve concurrent reads at
// different offsets.
func (r *Reader) ReadChunk(ctx context.Context, path string, offset int64, length int) ([]byte, error) {
	if err := validateDocumentPath(path); err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("failed to read document chunk: negative offset or length")
	}

	h, err := r.acquire(path)
	if err != nil {
		return nil, err
	}
	defer h.inFlight.Done()

	buf := make([]byte, length)
	n, err := h.file.ReadAt(buf, offset)
	if n < length {
		// A full-length read ending exactly at EOF reports io.EOF with
		// n == length and is not a failure.
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed to read document chunk: %w", err)
	}

	return buf, nil
}

// Size returns the byte size of the document at path.
func (r *Reader) Size(ctx context.Context, path string) (int64, error) {
	if err := validateDocumentPath(path); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("stat document: %w", err)
	}

	return info.Size(), nil
}

// CloseHandle evicts and closes the cached handle for path. It is a no-op
// when no handle is cached.
func (r *Reader) CloseHandle(path string) {
	r.mu.Lock()
	h, ok := r.handles[path]
	if ok {
		delete(r.handles, path)
	}
	r.mu.Unlock()

	if ok {
		r.closeHandle(path, h)
	}
}

// Close shuts the reader down and releases every cached handle. Subsequent
// reads fail with ErrClosed.
func (r *Reader) Close() {
	r.mu.Lock()
	r.closed = true
	evicted := r.handles
	r.handles = make(map[string]*handle)
	r.mu.Unlock()

	for path, h := range evicted {
		r.closeHandle(path, h)
	}
}

// acquire returns the cached handle for path, opening one if needed, with an
// in-flight read registered. The caller must release it via inFlight.Done.
func (r *Reader) acquire(path string) (*handle, error) {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}

	if h, ok := r.handles[path]; ok {
		h.lastAccessed = time.Now()
		h.inFlight.Add(1)
		r.mu.Unlock()
		return h, nil
	}

	evicted := r.evictLocked()
	r.mu.Unlock()
	for p, h := range evicted {
		r.closeHandle(p, h)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document chunk: %w", err)
	}

	h := &handle{file: file, lastAccessed: time.Now()}
	h.inFlight.Add(1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		h.inFlight.Done()
		file.Close()
		return nil, ErrClosed
	}
	if existing, ok := r.handles[path]; ok {
		// Another request opened the same document concurrently; keep the
		// cached handle and discard ours.
		existing.lastAccessed = time.Now()
		existing.inFlight.Add(1)
		r.mu.Unlock()
		h.inFlight.Done()
		file.Close()
		return existing, nil
	}
	r.handles[path] = h
	r.mu.Unlock()

	return h, nil
}

// evictLocked removes idle and least-recently-used handles so a new entry
// fits within the bound. Callers close the returned handles outside the lock.
func (r *Reader) evictLocked() map[string]*handle {
	evicted := make(map[string]*handle)
	now := time.Now()

	for path, h := range r.handles {
		if r.idleTimeout > 0 && now.Sub(h.lastAccessed) > r.idleTimeout {
			evicted[path] = h
			delete(r.handles, path)
		}
	}

	for len(r.handles) >= r.maxHandles {
		var oldestPath string
		var oldest *handle
		for path, h := range r.handles {
			if oldest == nil || h.lastAccessed.Before(oldest.lastAccessed) {
				oldestPath, oldest = path, h
			}
		}
		evicted[oldestPath] = oldest
		delete(r.handles, oldestPath)
	}

	return evicted
}

// closeHandle waits for in-flight reads on h before releasing the file.
func (r *Reader) closeHandle(path string, h *handle) {
	h.inFlight.Wait()
	if err := h.file.Close(); err != nil {
		r.logger.Warn("failed to close cached handle", "path", path, "error", err)
	}
}

func validateDocumentPath(path string) error {
	if !paths.IsSafePath(path) || !paths.IsValidDocumentFile(path) {
		return ErrInvalidPath
	}
	return nil
}
