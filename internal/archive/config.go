package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ConfigFilename is the persisted archive-selection file inside the per-user
// configuration directory.
const ConfigFilename = "archive-config.json"

// Config is the persisted archive selection. ArchiveDrive is nil when no
// archive root has been chosen yet. The JSON shape is part of the external
// contract and must not change.
type Config struct {
	ArchiveDrive *string `json:"archiveDrive"`
}

// ConfigStore persists the global archive selection in the per-user
// configuration directory. It owns an in-memory cache of the last known
// value; disk is the source of truth and the cache is refreshed on every
// write. All mutations are serialized by the store's mutex.
type ConfigStore struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached *Config
}

// DefaultConfigDir resolves the per-user configuration directory for the
// engine. Resolution requires a usable OS user config location; failing that
// is a startup error, not a silent default.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, "caseark"), nil
}

// NewConfigStore creates a config store rooted at dir. An empty dir resolves
// to DefaultConfigDir. The directory itself is created lazily on first save.
func NewConfigStore(dir string, logger *slog.Logger) (*ConfigStore, error) {
	if dir == "" {
		resolved, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	return &ConfigStore{
		path:   filepath.Join(dir, ConfigFilename),
		logger: logger.With("system", "archive-config"),
	}, nil
}

// Load returns the persisted archive selection. The cached value is served
// when present. Read or parse failures of any kind yield the default
// configuration; Load never fails.
func (s *ConfigStore) Load() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save persists cfg. The cache is updated before the write so reads during
// the same process reflect the intended value even if persistence fails;
// callers needing durability must check the returned error.
func (s *ConfigStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *cfg
	s.cached = &clone

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write archive config: %w", err)
	}

	return nil
}

// ArchiveDrive returns the selected archive root, or ok=false when none is
// configured.
func (s *ConfigStore) ArchiveDrive() (path string, ok bool) {
	cfg := s.Load()
	if cfg.ArchiveDrive == nil || *cfg.ArchiveDrive == "" {
		return "", false
	}
	return *cfg.ArchiveDrive, true
}

// SetArchiveDrive persists path as the selected archive root.
func (s *ConfigStore) SetArchiveDrive(path string) error {
	return s.Save(&Config{ArchiveDrive: &path})
}

// ClearArchiveDrive removes the archive selection.
func (s *ConfigStore) ClearArchiveDrive() error {
	return s.Save(&Config{})
}

// Invalidate drops the cached value so the next Load rereads disk.
func (s *ConfigStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

func (s *ConfigStore) loadLocked() *Config {
	if s.cached != nil {
		clone := *s.cached
		return &clone
	}

	cfg := &Config{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read archive config, using defaults", "path", s.path, "error", err)
		}
		s.cached = cfg
		return &Config{}
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		s.logger.Warn("corrupt archive config, using defaults", "path", s.path, "error", err)
		cfg = &Config{}
	}

	s.cached = cfg
	clone := *cfg
	return &clone
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place so no reader ever observes a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
