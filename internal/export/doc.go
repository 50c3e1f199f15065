// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides page export functionality for skald.
//
// This package renders a page's block tree to portable formats with
// metadata, and can preview the result in the terminal.
//
// # Key Types
//
//   - Exporter: Main export interface
//   - MarkdownExporter: Block tree to Markdown
//   - JSONExporter: Machine-readable page snapshot
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - Markdown: human-readable, round-trippable block markup
//   - JSON: machine-readable with full block metadata
//
// # Usage
//
// Export a page to the configured directory:
//
//	path, err := export.ExportMarkdown(page, blocks, opts)
//
// Render a terminal preview:
//
//	out, err := export.RenderPreview(markdown, "dark", 80)
package export
