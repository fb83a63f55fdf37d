// Package config provides configuration management for the eventcore CLI.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the eventcore CLI configuration.
type Config struct {
	// Version of the config file format
	Version string `yaml:"version"`

	// Project configuration
	Project ProjectConfig `yaml:"project"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// EventStore configuration
	EventStore EventStoreConfig `yaml:"event_store"`
}

// ProjectConfig contains project-level settings.
type ProjectConfig struct {
	// Name of the project
	Name string `yaml:"name"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Driver is the database driver (postgres, memory)
	Driver string `yaml:"driver"`

	// URL is the database connection string. Environment variables in the
	// form ${VAR} are expanded when the file is loaded.
	URL string `yaml:"url,omitempty"`

	// Schema is the database schema to use
	Schema string `yaml:"schema"`
}

// EventStoreConfig contains event store settings.
type EventStoreConfig struct {
	// TableName for events
	TableName string `yaml:"table_name"`

	// MaxAttempts bounds command retries after version conflicts
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Project: ProjectConfig{
			Name: "my-eventcore-app",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Schema: "eventcore",
		},
		EventStore: EventStoreConfig{
			TableName:   "events",
			MaxAttempts: 3,
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "eventcore.yaml"

// Load loads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Database.URL = os.Expand(cfg.Database.URL, os.Getenv)

	return &cfg, nil
}

// Save saves the configuration to the specified directory.
func (c *Config) Save(dir string) error {
	path := filepath.Join(dir, ConfigFileName)
	return c.SaveFile(path)
}

// SaveFile saves the configuration to a specific file path.
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Exists checks if a config file exists in the directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindConfig searches for a config file starting from dir and going up.
func FindConfig(dir string) (string, *Config, error) {
	current := dir
	for {
		configPath := filepath.Join(current, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := LoadFile(configPath)
			if err != nil {
				return "", nil, err
			}
			return current, cfg, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil, os.ErrNotExist
		}
		current = parent
	}
}

// Validate validates the configuration.
func (c *Config) Validate() []string {
	var errors []string

	if c.Project.Name == "" {
		errors = append(errors, "project.name is required")
	}

	if c.Database.Driver == "" {
		errors = append(errors, "database.driver is required")
	} else if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		errors = append(errors, "database.driver must be 'postgres' or 'memory'")
	}

	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		errors = append(errors, "database.url is required for postgres driver")
	}

	if c.EventStore.MaxAttempts < 1 {
		errors = append(errors, "event_store.max_attempts must be at least 1")
	}

	return errors
}

// GenerateYAML generates YAML content with comments for a fresh config file.
func GenerateYAML(cfg *Config) string {
	return `# eventcore configuration file

version: "1"

# Project settings
project:
  name: "` + cfg.Project.Name + `"

# Database configuration
database:
  # Driver: postgres or memory
  driver: "` + cfg.Database.Driver + `"

  # Connection URL (required for postgres)
  url: "${DATABASE_URL}"

  # Database schema (postgres only)
  schema: "` + cfg.Database.Schema + `"

# Event store settings
event_store:
  table_name: "` + cfg.EventStore.TableName + `"
  max_attempts: 3
`
}
