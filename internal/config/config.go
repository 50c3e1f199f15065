// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for skald.
//
// Configuration lives in a single TOML file with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file location:
//   - ~/.skald/config.toml
//   - Built-in defaults when the file is absent
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete skald configuration.
type Config struct {
	// Version is the config schema version, bumped on incompatible changes.
	Version string `toml:"version"`

	// Notes configuration
	Notes NotesConfig `toml:"notes"`

	// Writer (local AI) configuration
	Writer WriterConfig `toml:"writer"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Export configuration
	Export ExportConfig `toml:"export"`
}

// NotesConfig contains note storage and editing configuration.
type NotesConfig struct {
	// DataDir is the directory holding the notes database (empty = ~/.skald).
	DataDir string `toml:"data_dir"`
	// QuietPeriodMs is the typing pause, in milliseconds, after which
	// accumulated edits to a block close into a single undo step.
	QuietPeriodMs int `toml:"quiet_period_ms"`
	// AutoSaveSecs is the autosave interval in seconds (0 disables autosave).
	AutoSaveSecs int `toml:"autosave_secs"`
}

// WriterConfig contains the local Ollama writer configuration.
type WriterConfig struct {
	// Endpoint is the URL of the Ollama server.
	Endpoint string `toml:"endpoint"`
	// Model is the model used for write-into-note generation.
	Model string `toml:"model"`
	// TokensPerSecond rate-limits token application (0 = unlimited).
	TokensPerSecond float64 `toml:"tokens_per_second"`
	// BatchSize is the number of tokens applied per document update.
	BatchSize int `toml:"batch_size"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", or "auto"
	Theme string `toml:"theme"`
}

// ExportConfig contains markdown export configuration.
type ExportConfig struct {
	// Dir is the directory exported pages are written to (empty = ~/.skald/export).
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULT CONFIG
// =============================================================================

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Notes: NotesConfig{
			QuietPeriodMs: 500,
			AutoSaveSecs:  3,
		},
		Writer: WriterConfig{
			Endpoint:  "http://127.0.0.1:11434",
			Model:     "llama3.1:8b",
			BatchSize: 15,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the skald configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".skald"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation, bypassing the default location.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# skald configuration file")
	fmt.Fprintln(file, "# Generated by skald - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Quiet period must leave typing coalescing usable: too short and every
	// keystroke becomes an undo step, too long and undo granularity vanishes.
	if c.Notes.QuietPeriodMs < 50 || c.Notes.QuietPeriodMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "notes.quiet_period_ms",
			Message: fmt.Sprintf("must be 50-5000, got %d", c.Notes.QuietPeriodMs),
		})
	}

	if c.Notes.AutoSaveSecs < 0 || c.Notes.AutoSaveSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "notes.autosave_secs",
			Message: fmt.Sprintf("must be 0-600, got %d", c.Notes.AutoSaveSecs),
		})
	}

	if c.Writer.Endpoint != "" {
		if u, err := url.Parse(c.Writer.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "writer.endpoint",
				Message: fmt.Sprintf("invalid URL '%s'", c.Writer.Endpoint),
			})
		}
	}

	if c.Writer.TokensPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "writer.tokens_per_second",
			Message: "must be non-negative",
		})
	}

	if c.Writer.BatchSize < 1 || c.Writer.BatchSize > 500 {
		errs = append(errs, ValidationError{
			Field:   "writer.batch_size",
			Message: fmt.Sprintf("must be 1-500, got %d", c.Writer.BatchSize),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Notes.QuietPeriodMs == 0 {
		c.Notes.QuietPeriodMs = defaults.Notes.QuietPeriodMs
	}
	if c.Notes.AutoSaveSecs == 0 {
		c.Notes.AutoSaveSecs = defaults.Notes.AutoSaveSecs
	}
	if c.Notes.DataDir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Notes.DataDir = dir
		}
	}

	if c.Writer.Endpoint == "" {
		c.Writer.Endpoint = defaults.Writer.Endpoint
	}
	if c.Writer.Model == "" {
		c.Writer.Model = defaults.Writer.Model
	}
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = defaults.Writer.BatchSize
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Export.Dir == "" && c.Notes.DataDir != "" {
		c.Export.Dir = filepath.Join(c.Notes.DataDir, "export")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SKALD_DATA_DIR: overrides notes.data_dir
//   - SKALD_QUIET_PERIOD_MS: overrides notes.quiet_period_ms
//   - SKALD_AUTOSAVE_SECS: overrides notes.autosave_secs
//   - SKALD_OLLAMA_URL: overrides writer.endpoint
//   - SKALD_MODEL: overrides writer.model
//   - SKALD_THEME: overrides ui.theme
//   - SKALD_EXPORT_DIR: overrides export.dir
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("SKALD_DATA_DIR"); dir != "" {
		c.Notes.DataDir = dir
	}

	if ms := os.Getenv("SKALD_QUIET_PERIOD_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil {
			c.Notes.QuietPeriodMs = n
		}
	}

	if secs := os.Getenv("SKALD_AUTOSAVE_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Notes.AutoSaveSecs = n
		}
	}

	if url := os.Getenv("SKALD_OLLAMA_URL"); url != "" {
		c.Writer.Endpoint = url
	}

	if model := os.Getenv("SKALD_MODEL"); model != "" {
		c.Writer.Model = model
	}

	if theme := os.Getenv("SKALD_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if dir := os.Getenv("SKALD_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}
}

// =============================================================================
// GLOBAL CONFIG INSTANCE
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Global returns the global config instance, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal replaces the global config instance.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global config instance.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}
