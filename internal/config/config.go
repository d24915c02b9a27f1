// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the toolkit configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Paths
	OutputDir   string `json:"output_dir,omitempty"`    // Directory for generated artifacts
	CodeSetPath string `json:"code_set_path,omitempty"` // Path to an external code set JSON document

	// Resolution limits
	MaxDepth int `json:"max_depth,omitempty"` // Maximum element nesting depth before resolution aborts
	Workers  int `json:"workers,omitempty"`   // Parallel workers for multi-schema comparison (0 = NumCPU)

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed progress information
	Port        int    `json:"port,omitempty"`         // HTTP API listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// DefaultConfig returns the built-in defaults applied when neither the config
// file nor CLI flags set a value.
func DefaultConfig() Config {
	return Config{
		OutputDir: "output",
		MaxDepth:  64,
		Port:      8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.MaxDepth < 0 {
		return fmt.Errorf("config error: 'max_depth' must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	// Validate file paths exist (if specified)
	if c.CodeSetPath != "" {
		if _, err := os.Stat(c.CodeSetPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: code set file not found: %s", c.CodeSetPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.CodeSetPath == "" {
		result.CodeSetPath = defaults.CodeSetPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.MaxDepth == 0 {
		result.MaxDepth = defaults.MaxDepth
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
