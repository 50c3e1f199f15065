// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports pages to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a page and its blocks to Markdown format.
func (e *MarkdownExporter) Export(page *notes.Page, blocks []*notes.Block) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(page.Title)))
		sb.WriteString(fmt.Sprintf("name: %s\n", escapeYAML(page.Name)))
		if page.IsJournal {
			sb.WriteString("journal: true\n")
		}
		sb.WriteString(fmt.Sprintf("created: %s\n", page.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("updated: %s\n", page.UpdatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("blocks: %d\n", len(blocks)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: skald\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(page.Title)))

	// Ordinal counters per indent depth for numbered lists. A counter resets
	// when the run at its depth is broken by any other block type.
	counters := map[int]int{}

	for _, b := range blocks {
		if b.Type != notes.TypeNumberedItem {
			delete(counters, b.Indent)
		}

		rendered := e.renderBlock(b, counters)
		if rendered == "" {
			continue
		}
		sb.WriteString(rendered)
		sb.WriteString("\n")
		if !isListType(b.Type) {
			sb.WriteString("\n")
		}
	}

	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// BLOCK RENDERING
// =============================================================================

// renderBlock renders a single block, indented to its nesting depth.
func (e *MarkdownExporter) renderBlock(b *notes.Block, counters map[int]int) string {
	pad := strings.Repeat("  ", b.Indent)

	switch b.Type {
	case notes.TypeHeading:
		level := b.HeadingLevel()
		if level > 6 {
			level = 6
		}
		return pad + strings.Repeat("#", level) + " " + b.Content

	case notes.TypeListItem:
		return pad + "- " + b.Content

	case notes.TypeNumberedItem:
		counters[b.Indent]++
		return fmt.Sprintf("%s%d. %s", pad, counters[b.Indent], b.Content)

	case notes.TypeTodo:
		box := "[ ]"
		if b.Checked() {
			box = "[x]"
		}
		return pad + "- " + box + " " + b.Content

	case notes.TypeQuote:
		return prefixLines(b.Content, pad+"> ")

	case notes.TypeCallout:
		kind := b.Prop(notes.PropKind)
		if kind == "" {
			kind = "info"
		}
		out := pad + "> [!" + strings.ToUpper(kind) + "]\n"
		return out + prefixLines(b.Content, pad+"> ")

	case notes.TypeCode:
		lang := b.Prop(notes.PropLanguage)
		var sb strings.Builder
		sb.WriteString(pad + "```" + lang + "\n")
		sb.WriteString(prefixLines(b.Content, pad))
		sb.WriteString("\n" + pad + "```")
		return sb.String()

	case notes.TypeMath:
		return pad + "$$\n" + prefixLines(b.Content, pad) + "\n" + pad + "$$"

	case notes.TypeToggle:
		return pad + "**" + b.Content + "**"

	case notes.TypeDivider:
		return pad + "---"

	case notes.TypeEmbed:
		title := b.Prop(notes.PropEmbedPageTitle)
		if title == "" {
			return ""
		}
		return pad + "![[" + title + "]]"

	default:
		if strings.TrimSpace(b.Content) == "" {
			return ""
		}
		return prefixLines(b.Content, pad)
	}
}

// isListType reports whether consecutive blocks of this type render as a
// single tight list without blank lines between entries.
func isListType(t notes.BlockType) bool {
	return t == notes.TypeListItem || t == notes.TypeNumberedItem || t == notes.TypeTodo
}

// prefixLines prefixes every line of s with the given prefix.
func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
