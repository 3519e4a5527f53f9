package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.True(t, cfg.WAL)
	assert.Equal(t, "NORMAL", cfg.Sync)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 13, cfg.MaxAttachments)
	assert.Empty(t, cfg.DBPath)
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("MEMOIRS_DB_DRIVER", "sqlite")
	t.Setenv("MEMOIRS_WAL", "false")
	t.Setenv("MEMOIRS_MAX_ATTACHMENTS", "4")
	t.Setenv("MEMOIRS_MEDIA_DIR", "/tmp/m")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.False(t, cfg.WAL)
	assert.Equal(t, 4, cfg.MaxAttachments)
	assert.Equal(t, "/tmp/m", cfg.MediaDir)
}

func TestConfigLoad_BadType(t *testing.T) {
	t.Setenv("MEMOIRS_MAX_ATTACHMENTS", "many")

	_, err := New()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DBDriver: "sqlite3", Sync: "full", LogLevel: "debug", LogFormat: "console", MaxAttachments: 13}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.DBDriver = "postgres" }},
		{"sync", func(c *Config) { c.Sync = "sometimes" }},
		{"level", func(c *Config) { c.LogLevel = "chatty" }},
		{"format", func(c *Config) { c.LogFormat = "xml" }},
		{"too few attachments", func(c *Config) { c.MaxAttachments = 0 }},
		{"too many attachments", func(c *Config) { c.MaxAttachments = 14 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
