// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/ui/components"
	"github.com/skaldhq/skald-tui/internal/ui/styles"
	"github.com/skaldhq/skald-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready || m.page == nil {
		return "loading..."
	}

	header := m.renderHeader()
	doc, activeLine := m.renderDocument()

	m.viewport.SetContent(doc)
	m.scrollToLine(activeLine)

	m.syncStatusBar()
	status := m.statusBar.View()
	if m.errMsg != "" {
		status = m.theme.ErrorStyle.Render(util.TruncateWidth(m.errMsg, m.width))
	} else if m.statusMsg != "" {
		status = m.theme.StatusSaved.Render(util.TruncateWidth(m.statusMsg, m.width))
	}

	return header + "\n" + m.viewport.View() + "\n" + status
}

// renderHeader renders the page title line.
func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(m.page.Title)
	if m.page.IsJournal {
		title = m.theme.HeaderJournal.Render("journal") + " " + title
	}
	return m.theme.Header.Width(m.width).Render(title)
}

// syncStatusBar pushes current state into the status bar component.
func (m *Model) syncStatusBar() {
	m.statusBar.SetPage(m.page.Title, m.page.IsJournal)

	total := len(m.store.Blocks(m.page.ID))
	visible := len(m.store.VisibleBlocks(m.page.ID))
	m.statusBar.SetBlockCounts(total, visible)

	if m.sess != nil {
		m.statusBar.SetSaveState(m.sess.IsDirty(), "")
	}

	switch {
	case m.writer != nil && m.writer.Busy():
		m.statusBar.SetStatus(components.StatusStreaming)
	default:
		m.statusBar.SetStatus(components.StatusReady)
	}
}

// =============================================================================
// DOCUMENT RENDERING
// =============================================================================

// renderDocument renders all visible blocks, the active one as a live
// input, with the command menu popped under it. Returns the document
// and the line index of the active block for scroll tracking.
func (m *Model) renderDocument() (string, int) {
	blocks := m.store.VisibleBlocks(m.page.ID)
	activeID, hasActive := m.surface.ActiveBlock()

	var streamID notes.BlockID
	var streaming bool
	if m.writer != nil {
		streamID, streaming = m.writer.Target()
	}

	// Numbered-list counters per indent depth, reset when a run breaks.
	counters := make(map[int]int)

	var lines []string
	activeLine := 0
	for _, b := range blocks {
		if b.Type == notes.TypeNumberedItem {
			counters[b.Indent]++
		} else {
			delete(counters, b.Indent)
		}

		isActive := hasActive && b.ID == activeID
		isStreaming := streaming && b.ID == streamID

		line := m.renderBlock(b, counters[b.Indent], isActive, isStreaming)
		if isActive {
			activeLine = len(lines)
		}
		lines = append(lines, line)

		if isActive && m.menu != nil {
			lines = append(lines, m.renderMenu(b.Indent))
		}
	}

	return strings.Join(lines, "\n"), activeLine
}

// scrollToLine nudges the viewport so the given line stays visible.
func (m *Model) scrollToLine(line int) {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	switch {
	case line < top:
		m.viewport.SetYOffset(line)
	case line > bottom:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// renderBlock renders one block line with its type marker and content.
func (m *Model) renderBlock(b *notes.Block, number int, active, streaming bool) string {
	t := m.theme
	indent := strings.Repeat("  ", b.Indent)

	var marker string
	var style = t.Paragraph

	switch b.Type {
	case notes.TypeHeading:
		style = t.Heading(b.HeadingLevel())
		if b.Collapsed {
			marker = t.CollapseHint.Render("+ ")
		}
	case notes.TypeListItem:
		marker = t.ListMarker.Render("- ")
	case notes.TypeNumberedItem:
		marker = t.ListMarker.Render(util.IntToString(number) + ". ")
	case notes.TypeTodo:
		if b.Checked() {
			marker = t.TodoDone.Render("[x] ")
			style = t.TodoDone
		} else {
			marker = t.TodoPending.Render("[ ] ")
		}
	case notes.TypeQuote:
		style = t.Quote
	case notes.TypeCallout:
		kind := b.Prop(notes.PropKind)
		if kind == "" {
			kind = "note"
		}
		marker = lipgloss.NewStyle().
			Foreground(styles.CalloutColor(kind)).
			Bold(true).
			Render("[" + strings.ToUpper(kind) + "] ")
	case notes.TypeToggle:
		if b.Collapsed {
			marker = t.ToggleMarker.Render("> ")
		} else {
			marker = t.ToggleMarker.Render("v ")
		}
		style = t.Toggle
	case notes.TypeDivider:
		width := m.width - len(indent)
		if width < 3 {
			width = 3
		}
		return indent + t.Divider.Render(strings.Repeat("-", width))
	case notes.TypeMath:
		style = t.Math
	case notes.TypeEmbed:
		title := b.Prop(notes.PropEmbedPageTitle)
		if title == "" {
			title = "choose a page"
		}
		if !active {
			return indent + t.Embed.Render("[["+title+"]]")
		}
	case notes.TypeCode:
		if !active && !streaming {
			cb := components.NewCodeBlock(b.Prop(notes.PropLanguage), b.Content)
			cb.SetMaxWidth(m.width - len(indent))
			return indent + cb.Render()
		}
		style = t.CodeBlock
	}

	if active {
		// The live input renders its own cursor and content.
		line := indent + marker + m.input.View()
		return t.ActiveLine.Width(m.width).Render(line)
	}

	content := m.renderContent(b.Content)
	if streaming {
		return indent + marker + t.StreamingBlock.Render(content)
	}
	return indent + marker + style.Render(content)
}

// renderContent styles [[links]] and `inline code` spans inside plain
// block content.
func (m *Model) renderContent(content string) string {
	styled := m.styleLinks(content)
	return components.ParseInlineCode(styled)
}

// styleLinks applies link styling to closed [[...]] spans.
func (m *Model) styleLinks(content string) string {
	var b strings.Builder
	rest := content
	for {
		start := strings.Index(rest, "[[")
		if start == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "]]")
		if end == -1 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:start])
		title := rest[start+2 : start+2+end]
		b.WriteString(m.theme.LinkSpan.Render(title))
		rest = rest[start+2+end+2:]
	}
	return b.String()
}

// =============================================================================
// MENU RENDERING
// =============================================================================

// menuLimit caps the rows shown in a popup.
const menuLimit = 8

// renderMenu renders the open command or link menu under the active
// block.
func (m *Model) renderMenu(indent int) string {
	t := m.theme
	items := m.menu.Items

	var rows []string
	if len(items) == 0 {
		rows = append(rows, t.MenuDesc.Render("no matches"))
	}

	shown := items
	if len(shown) > menuLimit {
		// Keep the highlighted row visible.
		start := m.menu.Selected - menuLimit + 1
		if start < 0 {
			start = 0
		}
		shown = items[start : start+menuLimit]
	}

	first := 0
	if m.menu.Selected >= menuLimit {
		first = m.menu.Selected - menuLimit + 1
	}

	for i, item := range shown {
		idx := first + i
		label := item.Label
		if item.Create {
			label = t.MenuCreate.Render(label)
		} else {
			label = m.highlightLabel(label)
		}

		row := label
		if item.Description != "" {
			row += " " + t.MenuDesc.Render(item.Description)
		}

		if idx == m.menu.Selected {
			rows = append(rows, t.MenuSelected.Render(row))
		} else {
			rows = append(rows, t.MenuItem.Render(row))
		}
	}

	popup := t.MenuPopup.Render(strings.Join(rows, "\n"))
	pad := strings.Repeat("  ", indent+1)
	return pad + strings.ReplaceAll(popup, "\n", "\n"+pad)
}

// highlightLabel bolds the characters matched by the current query.
func (m *Model) highlightLabel(label string) string {
	query := m.menu.Trigger.Query
	if query == "" {
		return label
	}

	positions := components.HighlightMatch(query, label)
	if len(positions) == 0 {
		return label
	}

	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	bold := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	for i, r := range []rune(label) {
		if matched[i] {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
