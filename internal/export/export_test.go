// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/skaldhq/skald-tui/internal/notes"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Research Notes", "Research_Notes"},
		{"a/b\\c:d", "a-b-c-d"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"", "page"},
		{"<>|?*", "-----"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := sanitizeFilename(long); len([]rune(got)) > 50 {
		t.Errorf("sanitizeFilename should cap length at 50, got %d", len([]rune(got)))
	}
}

func TestExportToFileWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	page := testPage()
	blocks := []*notes.Block{
		block(notes.TypeHeading, "Intro", 0, map[string]string{notes.PropLevel: "2"}),
		block(notes.TypeParagraph, "body text", 0, nil),
	}

	path, err := ExportMarkdown(page, blocks, &Options{
		OutputDir:       dir,
		IncludeMetadata: true,
	})
	if err != nil {
		t.Fatalf("ExportMarkdown() error = %v", err)
	}

	if !strings.HasSuffix(path, ".md") {
		t.Errorf("expected .md path, got %s", path)
	}
	if !strings.Contains(path, "Research_Notes") {
		t.Errorf("filename should carry sanitized page title, got %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(content), "## Intro") {
		t.Errorf("export content missing heading:\n%s", content)
	}
	if !strings.Contains(string(content), "body text") {
		t.Errorf("export content missing paragraph:\n%s", content)
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	page := testPage()
	blocks := []*notes.Block{
		block(notes.TypeTodo, "ship it", 0, map[string]string{notes.PropChecked: "true"}),
	}

	path, err := ExportJSON(page, blocks, &Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var decoded struct {
		Page   *notes.Page    `json:"page"`
		Blocks []*notes.Block `json:"blocks"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	if decoded.Page.Name != page.Name {
		t.Errorf("page name = %q, want %q", decoded.Page.Name, page.Name)
	}
	if len(decoded.Blocks) != 1 || decoded.Blocks[0].Content != "ship it" {
		t.Errorf("blocks did not round-trip: %+v", decoded.Blocks)
	}
	if !decoded.Blocks[0].Checked() {
		t.Error("todo checked state lost in round trip")
	}
}

func TestExportToFileNilOptions(t *testing.T) {
	// nil options fall back to defaults; write into a temp working directory
	// to avoid littering the repo.
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	path, err := ExportToFile(testPage(), nil, NewJSONExporter(), nil)
	if err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file not created: %v", err)
	}
}
