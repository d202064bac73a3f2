// Package config loads dirbatch's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Colour modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// JournalConfig controls the batch journal
type JournalConfig struct {
	// Enabled records every rename batch in the journal
	Enabled bool `yaml:"enabled"`

	// Path is the journal file, one JSON entry per line
	Path string `yaml:"path"`
}

// ExecutionConfig controls batch execution
type ExecutionConfig struct {
	// RecheckBeforeRename re-probes each target and source right before renaming
	RecheckBeforeRename bool `yaml:"recheck_before_rename"`
}

// Config represents dirbatch configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Color selects coloured output on stderr (auto, always, never)
	Color string `yaml:"color"`

	Journal   JournalConfig   `yaml:"journal"`
	Execution ExecutionConfig `yaml:"execution"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Color:    ColorAuto,
		Journal: JournalConfig{
			Enabled: false,
			Path:    DefaultJournalPath(),
		},
		Execution: ExecutionConfig{
			RecheckBeforeRename: true,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dirbatch/config.yaml, falling back to
// ~/.config/dirbatch/config.yaml.
func DefaultPath() string {
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), "dirbatch", "config.yaml")
}

// DefaultJournalPath returns $XDG_STATE_HOME/dirbatch/journal.jsonl, falling
// back to ~/.local/state/dirbatch/journal.jsonl.
func DefaultJournalPath() string {
	return filepath.Join(baseDir("XDG_STATE_HOME", filepath.Join(".local", "state")), "dirbatch", "journal.jsonl")
}

func baseDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback)
	}
	return fallback
}

// Load reads the configuration file at path. Values present in the file
// override the defaults. The file must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads the file at DefaultPath. A missing file yields the
// defaults.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// MergeWithFlags applies CLI flags on top of the file values. Nil flags are
// left alone.
func (c *Config) MergeWithFlags(logLevel *string, noColor *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if noColor != nil && *noColor {
		c.Color = ColorNever
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path cannot be empty when the journal is enabled")
	}
	return nil
}
