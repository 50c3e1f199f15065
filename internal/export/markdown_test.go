// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"testing"
	"time"

	"github.com/skaldhq/skald-tui/internal/notes"
)

func testPage() *notes.Page {
	return &notes.Page{
		ID:        notes.NewPageID(),
		Title:     "Research Notes",
		Name:      "research-notes",
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func block(typ notes.BlockType, content string, indent int, props map[string]string) *notes.Block {
	return &notes.Block{
		ID:         notes.NewBlockID(),
		Type:       typ,
		Content:    content,
		Indent:     indent,
		Properties: props,
	}
}

func exportString(t *testing.T, blocks []*notes.Block, opts *Options) string {
	t.Helper()
	out, err := NewMarkdownExporter(opts).Export(testPage(), blocks)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	return string(out)
}

func TestMarkdownFrontmatter(t *testing.T) {
	got := exportString(t, nil, &Options{IncludeMetadata: true})

	if !strings.HasPrefix(got, "---\n") {
		t.Error("metadata export should start with YAML frontmatter")
	}
	for _, want := range []string{"title: Research Notes", "name: research-notes", "generator: skald"} {
		if !strings.Contains(got, want) {
			t.Errorf("frontmatter missing %q in:\n%s", want, got)
		}
	}
}

func TestMarkdownNoFrontmatter(t *testing.T) {
	got := exportString(t, nil, &Options{IncludeMetadata: false})

	if strings.HasPrefix(got, "---\n") {
		t.Error("export without metadata should not emit frontmatter")
	}
	if !strings.Contains(got, "# Research Notes") {
		t.Error("page title heading missing")
	}
}

func TestMarkdownBlockTypes(t *testing.T) {
	tests := []struct {
		name  string
		block *notes.Block
		want  string
	}{
		{
			name:  "paragraph",
			block: block(notes.TypeParagraph, "plain text", 0, nil),
			want:  "plain text",
		},
		{
			name:  "heading level 2",
			block: block(notes.TypeHeading, "Section", 0, map[string]string{notes.PropLevel: "2"}),
			want:  "## Section",
		},
		{
			name:  "heading default level",
			block: block(notes.TypeHeading, "Top", 0, nil),
			want:  "# Top",
		},
		{
			name:  "bulleted item",
			block: block(notes.TypeListItem, "first", 0, nil),
			want:  "- first",
		},
		{
			name:  "todo unchecked",
			block: block(notes.TypeTodo, "buy milk", 0, nil),
			want:  "- [ ] buy milk",
		},
		{
			name:  "todo checked",
			block: block(notes.TypeTodo, "done", 0, map[string]string{notes.PropChecked: "true"}),
			want:  "- [x] done",
		},
		{
			name:  "quote",
			block: block(notes.TypeQuote, "wise words", 0, nil),
			want:  "> wise words",
		},
		{
			name:  "callout",
			block: block(notes.TypeCallout, "heads up", 0, map[string]string{notes.PropKind: "warn"}),
			want:  "> [!WARN]\n> heads up",
		},
		{
			name:  "code with language",
			block: block(notes.TypeCode, "fmt.Println(\"hi\")", 0, map[string]string{notes.PropLanguage: "go"}),
			want:  "```go\nfmt.Println(\"hi\")\n```",
		},
		{
			name:  "math",
			block: block(notes.TypeMath, "e = mc^2", 0, nil),
			want:  "$$\ne = mc^2\n$$",
		},
		{
			name:  "toggle",
			block: block(notes.TypeToggle, "Details", 0, nil),
			want:  "**Details**",
		},
		{
			name:  "divider",
			block: block(notes.TypeDivider, "", 0, nil),
			want:  "---",
		},
		{
			name: "embed",
			block: block(notes.TypeEmbed, "", 0, map[string]string{
				notes.PropEmbedPageID:    "pid",
				notes.PropEmbedPageTitle: "Roadmap",
			}),
			want: "![[Roadmap]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exportString(t, []*notes.Block{tt.block}, &Options{IncludeMetadata: false})
			if !strings.Contains(got, tt.want) {
				t.Errorf("export missing %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestMarkdownNumberedListCounting(t *testing.T) {
	blocks := []*notes.Block{
		block(notes.TypeNumberedItem, "one", 0, nil),
		block(notes.TypeNumberedItem, "two", 0, nil),
		block(notes.TypeParagraph, "break", 0, nil),
		block(notes.TypeNumberedItem, "restart", 0, nil),
	}

	got := exportString(t, blocks, &Options{IncludeMetadata: false})

	for _, want := range []string{"1. one", "2. two", "1. restart"} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "3. restart") {
		t.Error("counter should reset after a non-numbered block")
	}
}

func TestMarkdownNestedNumbering(t *testing.T) {
	blocks := []*notes.Block{
		block(notes.TypeNumberedItem, "outer one", 0, nil),
		block(notes.TypeNumberedItem, "inner one", 1, nil),
		block(notes.TypeNumberedItem, "inner two", 1, nil),
		block(notes.TypeNumberedItem, "outer two", 0, nil),
	}

	got := exportString(t, blocks, &Options{IncludeMetadata: false})

	for _, want := range []string{"1. outer one", "  1. inner one", "  2. inner two", "2. outer two"} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %q in:\n%s", want, got)
		}
	}
}

func TestMarkdownIndentation(t *testing.T) {
	blocks := []*notes.Block{
		block(notes.TypeListItem, "parent", 0, nil),
		block(notes.TypeListItem, "child", 1, nil),
		block(notes.TypeListItem, "grandchild", 2, nil),
	}

	got := exportString(t, blocks, &Options{IncludeMetadata: false})

	for _, want := range []string{"- parent", "  - child", "    - grandchild"} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %q in:\n%s", want, got)
		}
	}
}

func TestMarkdownMultilineQuote(t *testing.T) {
	blocks := []*notes.Block{
		block(notes.TypeQuote, "line one\nline two", 0, nil),
	}

	got := exportString(t, blocks, &Options{IncludeMetadata: false})

	if !strings.Contains(got, "> line one\n> line two") {
		t.Errorf("every quote line should carry the marker:\n%s", got)
	}
}

func TestMarkdownNilPage(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(nil, nil); err == nil {
		t.Error("Export(nil page) should error")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("a #title with *stars* and [brackets]")
	for _, want := range []string{"\\#", "\\*", "\\[", "\\]"} {
		if !strings.Contains(got, want) {
			t.Errorf("escapeMarkdown missing %q in %q", want, got)
		}
	}
}
