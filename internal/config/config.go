// Package config assembles the application configuration from the
// environment. Built once at startup and treated as read-only after
// Validate.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/store"
)

// Config is the full application configuration.
type Config struct {
	// LLM holds the backend provider settings.
	LLM llm.Config

	// DBPath is the SQLite database location.
	DBPath string

	// RubricPath points to a YAML rubric definition. Empty means the
	// built-in rubric.
	RubricPath string

	// Concurrency bounds in-flight evaluations in batch runs.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool
}

// Load builds the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		LLM:         llm.ConfigFromEnv(),
		DBPath:      store.DefaultDBPath(),
		RubricPath:  os.Getenv("RUBRICA_RUBRIC"),
		Concurrency: 3,
	}
	if v := os.Getenv("RUBRICA_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	return cfg
}

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm configuration: %w", err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
