// Package config handles configuration loading and validation for taskdock.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/internal/schema"
)

// DatabaseConfig selects one record-store database to pull tasks from and
// how to present it.
type DatabaseConfig struct {
	// ID is the database identifier from the record store.
	ID string `yaml:"id"`
	// Name is an optional local label; falls back to the remote title.
	Name string `yaml:"name"`
	// VisibleProperties lists property names shown as extra columns, in
	// order. Unknown names are ignored at render time. Unset shows every
	// property; an explicitly empty list shows none.
	VisibleProperties []string `yaml:"visible_properties"`
	// Filters are server-side query predicates, combined with FilterOperator.
	Filters []remote.FilterRule `yaml:"filters"`
	// FilterOperator is "and" or "or"; empty means "and".
	FilterOperator remote.FilterOperator `yaml:"filter_operator"`
}

// FadeConfig controls the visual grace period after completing a task
// before it leaves the list.
type FadeConfig struct {
	Delay    time.Duration `yaml:"delay"`
	Duration time.Duration `yaml:"duration"`
}

// DBConfig tunes the local SQLite side-cache connection pool.
type DBConfig struct {
	MaxOpenConns  int `yaml:"max_open_conns"`
	MaxIdleConns  int `yaml:"max_idle_conns"`
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// Config holds the application configuration.
type Config struct {
	// Token is the record-store integration credential.
	Token     string            `yaml:"token"`
	Databases []DatabaseConfig  `yaml:"databases"`
	Completed schema.Vocabulary `yaml:"completed"`

	// CompleteStatus and ReopenStatus override the status names written
	// when toggling; empty means derive them from the schema.
	CompleteStatus string `yaml:"complete_status"`
	ReopenStatus   string `yaml:"reopen_status"`

	Fade FadeConfig `yaml:"fade"`
	DB   DBConfig   `yaml:"db"`

	DataDir string `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Completed: schema.DefaultVocabulary(),
		Fade: FadeConfig{
			Delay:    600 * time.Millisecond,
			Duration: 400 * time.Millisecond,
		},
		DB: DBConfig{
			MaxOpenConns:  10,
			MaxIdleConns:  5,
			BusyTimeoutMS: 5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if len(c.Completed.CompletedGroups) == 0 {
		c.Completed.CompletedGroups = defaults.Completed.CompletedGroups
	}
	if len(c.Completed.CompletedStatuses) == 0 {
		c.Completed.CompletedStatuses = defaults.Completed.CompletedStatuses
	}
	if c.Fade.Delay == 0 {
		c.Fade.Delay = defaults.Fade.Delay
	}
	if c.Fade.Duration == 0 {
		c.Fade.Duration = defaults.Fade.Duration
	}
	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = defaults.DB.MaxOpenConns
	}
	if c.DB.MaxIdleConns == 0 {
		c.DB.MaxIdleConns = defaults.DB.MaxIdleConns
	}
	if c.DB.BusyTimeoutMS == 0 {
		c.DB.BusyTimeoutMS = defaults.DB.BusyTimeoutMS
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	seen := make(map[string]bool, len(c.Databases))
	for i, db := range c.Databases {
		if db.ID == "" {
			return fmt.Errorf("databases[%d]: id is required", i)
		}
		if seen[db.ID] {
			return fmt.Errorf("databases[%d]: duplicate id %q", i, db.ID)
		}
		seen[db.ID] = true

		switch db.FilterOperator {
		case "", remote.FilterAnd, remote.FilterOr:
		default:
			return fmt.Errorf("databases[%d]: filter_operator must be %q or %q", i, remote.FilterAnd, remote.FilterOr)
		}

		for j, rule := range db.Filters {
			if rule.Property == "" {
				return fmt.Errorf("databases[%d].filters[%d]: property is required", i, j)
			}
		}
	}

	if c.Fade.Delay < 0 || c.Fade.Duration < 0 {
		return fmt.Errorf("fade delays cannot be negative")
	}

	return nil
}

// DatabaseName returns the configured label for a database id, or empty
// when it is not configured or carries no name.
func (c *Config) DatabaseName(id string) string {
	for _, db := range c.Databases {
		if db.ID == id {
			return db.Name
		}
	}
	return ""
}

// DatabaseFile returns the path to the local side-cache database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "taskdock.db")
}
