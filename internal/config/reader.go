package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

const (
	// EnvReaderMaxHandles overrides the open-handle bound of the chunk reader.
	EnvReaderMaxHandles = "CASEARK_READER_MAX_HANDLES"

	// EnvReaderInlineThreshold overrides the whole-document inline size limit.
	EnvReaderInlineThreshold = "CASEARK_READER_INLINE_THRESHOLD"
)

// ReaderConfig contains chunked-reader and handle-cache configuration.
type ReaderConfig struct {
	// MaxOpenHandles bounds the number of cached open file handles.
	// Default: 8
	MaxOpenHandles int `toml:"max_open_handles"`

	// IdleTimeout is how long an unused handle stays cached.
	// Default: "5m"
	IdleTimeout string `toml:"idle_timeout"`

	// InlineThreshold is the largest document returned inline by a
	// whole-document read; larger documents are handed back as a path.
	// Default: "350MB"
	InlineThreshold string `toml:"inline_threshold"`

	idleTimeoutVal     time.Duration
	inlineThresholdVal int64
}

// IdleTimeoutDuration returns the parsed idle timeout.
func (c *ReaderConfig) IdleTimeoutDuration() time.Duration {
	return c.idleTimeoutVal
}

// InlineThresholdBytes returns the parsed inline threshold in bytes.
func (c *ReaderConfig) InlineThresholdBytes() int64 {
	return c.inlineThresholdVal
}

// Finalize applies defaults, loads environment overrides, and validates the
// reader configuration.
func (c *ReaderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ReaderConfig) Merge(overlay *ReaderConfig) {
	if overlay.MaxOpenHandles != 0 {
		c.MaxOpenHandles = overlay.MaxOpenHandles
	}
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
	if overlay.InlineThreshold != "" {
		c.InlineThreshold = overlay.InlineThreshold
	}
}

func (c *ReaderConfig) loadDefaults() {
	if c.MaxOpenHandles == 0 {
		c.MaxOpenHandles = 8
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "5m"
	}
	if c.InlineThreshold == "" {
		c.InlineThreshold = "350MB"
	}
}

func (c *ReaderConfig) loadEnv() {
	if v := os.Getenv(EnvReaderMaxHandles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxOpenHandles = n
		}
	}
	if v := os.Getenv(EnvReaderInlineThreshold); v != "" {
		c.InlineThreshold = v
	}
}

func (c *ReaderConfig) validate() error {
	if c.MaxOpenHandles <= 0 {
		return fmt.Errorf("max_open_handles must be positive")
	}

	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid idle_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	c.idleTimeoutVal = d

	size, err := units.FromHumanSize(c.InlineThreshold)
	if err != nil {
		return fmt.Errorf("invalid inline_threshold: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("inline_threshold must be positive")
	}
	c.inlineThresholdVal = size

	return nil
}
