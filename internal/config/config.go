// Package config provides application configuration management with support
// for TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"fmt"
	"os"

	"github.com/caseark/caseark/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvCaseArkEnv specifies the environment name for configuration overlays.
	EnvCaseArkEnv = "CASEARK_ENV"

	// EnvConfigDir overrides the per-user configuration directory.
	EnvConfigDir = "CASEARK_CONFIG_DIR"

	// EnvLogLevel and EnvLogFormat override the logging configuration.
	EnvLogLevel  = "CASEARK_LOG_LEVEL"
	EnvLogFormat = "CASEARK_LOG_FORMAT"
)

// Config represents the root engine configuration.
type Config struct {
	// ConfigDir overrides the per-user directory holding the persisted
	// archive selection. Empty means the OS user config directory.
	ConfigDir string `toml:"config_dir"`

	Logging logging.Config `toml:"logging"`
	Reader  ReaderConfig   `toml:"reader"`
}

// Load reads and parses the base configuration file and applies any
// environment-specific overlay. A missing base file yields a zero
// configuration so the engine can run entirely on defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = BaseConfigFile
	}

	cfg, err := load(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = &Config{}
		} else {
			return nil, err
		}
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the
// configuration.
func (c *Config) Finalize() error {
	c.loadEnv()

	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Reader.Finalize(); err != nil {
		return fmt.Errorf("reader: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.ConfigDir != "" {
		c.ConfigDir = overlay.ConfigDir
	}
	c.Logging.Merge(&overlay.Logging)
	c.Reader.Merge(&overlay.Reader)
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvConfigDir); v != "" {
		c.ConfigDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = logging.Level(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = logging.Format(v)
	}
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCaseArkEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
