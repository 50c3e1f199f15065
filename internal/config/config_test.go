// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"sync"
	"testing"
)

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.Notes.QuietPeriodMs != 500 {
		t.Errorf("Expected quiet period 500ms, got %d", cfg.Notes.QuietPeriodMs)
	}
	if cfg.Writer.Endpoint == "" {
		t.Error("Default config should have a writer endpoint")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Expected default theme 'auto', got '%s'", cfg.UI.Theme)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "quiet period too short",
			config: func() *Config {
				c := Default()
				c.Notes.QuietPeriodMs = 10
				return c
			}(),
			wantErr: true,
		},
		{
			name: "quiet period too long",
			config: func() *Config {
				c := Default()
				c.Notes.QuietPeriodMs = 10000
				return c
			}(),
			wantErr: true,
		},
		{
			name: "quiet period at minimum (50)",
			config: func() *Config {
				c := Default()
				c.Notes.QuietPeriodMs = 50
				return c
			}(),
			wantErr: false,
		},
		{
			name: "negative autosave interval",
			config: func() *Config {
				c := Default()
				c.Notes.AutoSaveSecs = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "autosave disabled (zero)",
			config: func() *Config {
				c := Default()
				c.Notes.AutoSaveSecs = 0
				return c
			}(),
			wantErr: false,
		},
		{
			name: "invalid writer endpoint",
			config: func() *Config {
				c := Default()
				c.Writer.Endpoint = "not a url"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative tokens per second",
			config: func() *Config {
				c := Default()
				c.Writer.TokensPerSecond = -5
				return c
			}(),
			wantErr: true,
		},
		{
			name: "batch size zero",
			config: func() *Config {
				c := Default()
				c.Writer.BatchSize = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid theme",
			config: func() *Config {
				c := Default()
				c.UI.Theme = "invalid"
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_SaveLoadRoundTrip tests that saved config loads back intact.
func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Notes.QuietPeriodMs = 250
	cfg.Writer.Model = "qwen2.5:7b"
	cfg.UI.Theme = "dark"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if loaded.Notes.QuietPeriodMs != 250 {
		t.Errorf("quiet_period_ms = %d, want 250", loaded.Notes.QuietPeriodMs)
	}
	if loaded.Writer.Model != "qwen2.5:7b" {
		t.Errorf("writer.model = %s, want qwen2.5:7b", loaded.Writer.Model)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("ui.theme = %s, want dark", loaded.UI.Theme)
	}
}

// TestConfig_LoadFillsDefaults tests that a sparse file gets defaults filled in.
func TestConfig_LoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	sparse := &Config{UI: UIConfig{Theme: "light"}}
	if err := SaveTOML(sparse, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if loaded.UI.Theme != "light" {
		t.Errorf("ui.theme = %s, want light", loaded.UI.Theme)
	}
	if loaded.Notes.QuietPeriodMs != 500 {
		t.Errorf("quiet_period_ms = %d, want default 500", loaded.Notes.QuietPeriodMs)
	}
	if loaded.Writer.Endpoint == "" {
		t.Error("writer.endpoint should get default")
	}
	if loaded.Export.Dir == "" {
		t.Error("export.dir should be derived from data dir")
	}
}

// TestConfig_EnvOverrides tests environment variable overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SKALD_MODEL", "mistral:7b")
	t.Setenv("SKALD_THEME", "light")
	t.Setenv("SKALD_QUIET_PERIOD_MS", "300")
	t.Setenv("SKALD_DATA_DIR", "/tmp/skald-test")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Writer.Model != "mistral:7b" {
		t.Errorf("writer.model = %s, want mistral:7b", cfg.Writer.Model)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("ui.theme = %s, want light", cfg.UI.Theme)
	}
	if cfg.Notes.QuietPeriodMs != 300 {
		t.Errorf("quiet_period_ms = %d, want 300", cfg.Notes.QuietPeriodMs)
	}
	if cfg.Notes.DataDir != "/tmp/skald-test" {
		t.Errorf("data_dir = %s, want /tmp/skald-test", cfg.Notes.DataDir)
	}
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "concurrent-test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal replaces the global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()

	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	if got := Global().Version; got != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", got)
	}
}
