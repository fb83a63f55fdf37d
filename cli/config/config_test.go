package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "my-eventcore-app", cfg.Project.Name)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "eventcore", cfg.Database.Schema)
	assert.Equal(t, "events", cfg.EventStore.TableName)
	assert.Equal(t, 3, cfg.EventStore.MaxAttempts)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantErrors int
	}{
		{
			name:       "valid default config with postgres URL",
			modify:     func(c *Config) { c.Database.URL = "postgres://localhost/db" },
			wantErrors: 0,
		},
		{
			name:       "valid memory driver",
			modify:     func(c *Config) { c.Database.Driver = "memory" },
			wantErrors: 0,
		},
		{
			name:       "missing project name",
			modify:     func(c *Config) { c.Project.Name = ""; c.Database.URL = "postgres://localhost/db" },
			wantErrors: 1,
		},
		{
			name:       "missing driver",
			modify:     func(c *Config) { c.Database.Driver = "" },
			wantErrors: 1,
		},
		{
			name:       "invalid driver",
			modify:     func(c *Config) { c.Database.Driver = "mysql" },
			wantErrors: 1,
		},
		{
			name:       "postgres without URL",
			modify:     func(c *Config) { c.Database.Driver = "postgres"; c.Database.URL = "" },
			wantErrors: 1,
		},
		{
			name:       "non-positive max attempts",
			modify:     func(c *Config) { c.Database.Driver = "memory"; c.EventStore.MaxAttempts = 0 },
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			errors := cfg.Validate()
			assert.Equal(t, tt.wantErrors, len(errors), "errors: %v", errors)
		})
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Project.Name = "review-service"
	cfg.Database.Driver = "memory"

	require.NoError(t, cfg.Save(tmpDir))
	assert.True(t, Exists(tmpDir))

	loaded, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "review-service", loaded.Project.Name)
	assert.Equal(t, "memory", loaded.Database.Driver)
	assert.Equal(t, 3, loaded.EventStore.MaxAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadFile_ExpandsEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TEST_DATABASE_URL", "postgres://localhost/reviews")

	path := filepath.Join(tmpDir, ConfigFileName)
	content := []byte("version: \"1\"\ndatabase:\n  driver: postgres\n  url: \"${TEST_DATABASE_URL}\"\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/reviews", cfg.Database.URL)
}

func TestFindConfig(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg := DefaultConfig()
	cfg.Database.Driver = "memory"
	require.NoError(t, cfg.Save(tmpDir))

	root, found, err := FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
	assert.Equal(t, "memory", found.Database.Driver)
}

func TestGenerateYAML(t *testing.T) {
	out := GenerateYAML(DefaultConfig())

	assert.Contains(t, out, "driver: \"postgres\"")
	assert.Contains(t, out, "${DATABASE_URL}")
	assert.Contains(t, out, "table_name: \"events\"")
}
