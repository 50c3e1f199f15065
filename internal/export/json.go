// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports pages to JSON format.
// NOTE: JSON exports always include the complete block data structure,
// ignoring display options. The exported JSON is a faithful representation
// of the stored page that can be re-imported.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// jsonPage is the export envelope: the page followed by its blocks in
// document order.
type jsonPage struct {
	Page   *notes.Page    `json:"page"`
	Blocks []*notes.Block `json:"blocks"`
}

// Export converts a page and its blocks to JSON format.
func (e *JSONExporter) Export(page *notes.Page, blocks []*notes.Block) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}
	return json.MarshalIndent(jsonPage{Page: page, Blocks: blocks}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
