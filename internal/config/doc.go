// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for skald.
//
// A single TOML file holds all settings, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - NotesConfig: Note storage and editing behavior
//   - WriterConfig: Local AI writer (Ollama) settings
//   - UIConfig: Theme selection
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SKALD_*)
//   - ~/.skald/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Writer.Model
//	quiet := cfg.Notes.QuietPeriodMs
package config
