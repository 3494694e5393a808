// Package config loads runner and loader settings from a gonb.yaml file.
// Every field has a sensible default; a missing config file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSkipKey is the cell metadata key consulted when deciding whether a
// setup cell is skipped during test execution.
const DefaultSkipKey = "gonb"

// Config holds all gonb configuration.
type Config struct {
	// Directories searched when importing a notebook by name.
	SearchPath []string `yaml:"search_path"`

	// Notebook file suffix.
	Suffix string `yaml:"suffix"`

	// How many notebook files may execute concurrently. Units within one
	// file always run in order.
	Parallelism int `yaml:"parallelism"`

	// Cell metadata key marking skipped setup cells.
	SkipKey string `yaml:"skip_key"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SearchPath:  []string{"."},
		Suffix:      ".gonb",
		Parallelism: 1,
		SkipKey:     DefaultSkipKey,
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults for absent fields. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks the configuration for values the runner cannot honor.
func (c Config) Validate() error {
	if c.Suffix == "" || c.Suffix[0] != '.' {
		return fmt.Errorf("suffix must start with a dot, got %q", c.Suffix)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.SkipKey == "" {
		return fmt.Errorf("skip_key cannot be empty")
	}
	return nil
}
