// Package config loads runtime settings for the memoirs binaries from
// MEMOIRS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/logger"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

// Prefix is the environment variable prefix, e.g. MEMOIRS_DB_PATH.
const Prefix = "MEMOIRS"

// Config holds every setting a memoirs process needs. Command-line flags
// override whatever the environment supplies.
type Config struct {
	// Storage. Empty paths resolve to OS-specific defaults.
	DBPath   string `envconfig:"DB_PATH" default:""`
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite3"`
	WAL      bool   `envconfig:"WAL" default:"true"`
	Sync     string `envconfig:"SYNC" default:"NORMAL"`
	MediaDir string `envconfig:"MEDIA_DIR" default:""`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	MaxAttachments int `envconfig:"MAX_ATTACHMENTS" default:"13"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:"127.0.0.1:8787"`
}

// New reads the environment and validates the result.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that envconfig cannot check by type alone.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case db.DriverCGO, db.DriverPure:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s (want %s or %s)", c.DBDriver, db.DriverCGO, db.DriverPure)
	}

	switch strings.ToUpper(c.Sync) {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("unsupported SYNC: %s", c.Sync)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logger.FormatJSON, logger.FormatConsole:
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", c.LogFormat)
	}

	if c.MaxAttachments < 1 || c.MaxAttachments > memoirs.DefaultAttachmentLimit {
		return fmt.Errorf("MAX_ATTACHMENTS must be between 1 and %d, got %d", memoirs.DefaultAttachmentLimit, c.MaxAttachments)
	}
	return nil
}

// Usage prints the recognised environment variables to stdout.
func Usage() error {
	var cfg Config
	return envconfig.Usage(Prefix, &cfg)
}
