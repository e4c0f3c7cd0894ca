package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/pkg/logging"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Logging.Level != logging.LevelInfo {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Reader.MaxOpenHandles != 8 {
		t.Errorf("default max_open_handles = %d, want 8", cfg.Reader.MaxOpenHandles)
	}
	if cfg.Reader.InlineThresholdBytes() != 350*1000*1000 {
		t.Errorf("default inline threshold = %d, want 350MB", cfg.Reader.InlineThresholdBytes())
	}
	if cfg.Reader.IdleTimeoutDuration() != 5*time.Minute {
		t.Errorf("default idle timeout = %s, want 5m", cfg.Reader.IdleTimeoutDuration())
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
config_dir = "/etc/caseark"

[logging]
level = "debug"
format = "json"

[reader]
max_open_handles = 4
idle_timeout = "30s"
inline_threshold = "64MB"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.ConfigDir != "/etc/caseark" {
		t.Errorf("config_dir = %q, want /etc/caseark", cfg.ConfigDir)
	}
	if cfg.Logging.Level != logging.LevelDebug || cfg.Logging.Format != logging.FormatJSON {
		t.Errorf("logging = %s/%s, want debug/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Reader.MaxOpenHandles != 4 {
		t.Errorf("max_open_handles = %d, want 4", cfg.Reader.MaxOpenHandles)
	}
	if cfg.Reader.InlineThresholdBytes() != 64*1000*1000 {
		t.Errorf("inline threshold = %d, want 64MB", cfg.Reader.InlineThresholdBytes())
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("Load() succeeded on malformed file, want error")
	}
}

func TestReaderConfig_Validate(t *testing.T) {
	invalid := []config.ReaderConfig{
		{MaxOpenHandles: -1},
		{IdleTimeout: "soon"},
		{InlineThreshold: "lots"},
		{InlineThreshold: "-5MB"},
	}
	for i, cfg := range invalid {
		if err := cfg.Finalize(); err == nil {
			t.Errorf("Finalize(#%d) succeeded, want error", i)
		}
	}
}

func TestConfig_Merge(t *testing.T) {
	base := &config.Config{
		Logging: logging.Config{Level: logging.LevelInfo},
		Reader:  config.ReaderConfig{MaxOpenHandles: 8},
	}
	overlay := &config.Config{
		Logging: logging.Config{Level: logging.LevelDebug},
		Reader:  config.ReaderConfig{InlineThreshold: "10MB"},
	}

	base.Merge(overlay)

	if base.Logging.Level != logging.LevelDebug {
		t.Errorf("merged log level = %q, want debug", base.Logging.Level)
	}
	if base.Reader.MaxOpenHandles != 8 {
		t.Errorf("merged max_open_handles = %d, want 8 (overlay zero must not override)", base.Reader.MaxOpenHandles)
	}
	if base.Reader.InlineThreshold != "10MB" {
		t.Errorf("merged inline_threshold = %q, want 10MB", base.Reader.InlineThreshold)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvConfigDir, "/custom/dir")
	t.Setenv(config.EnvReaderMaxHandles, "3")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Logging.Level != logging.LevelError {
		t.Errorf("env log level = %q, want error", cfg.Logging.Level)
	}
	if cfg.ConfigDir != "/custom/dir" {
		t.Errorf("env config dir = %q, want /custom/dir", cfg.ConfigDir)
	}
	if cfg.Reader.MaxOpenHandles != 3 {
		t.Errorf("env max handles = %d, want 3", cfg.Reader.MaxOpenHandles)
	}
}
