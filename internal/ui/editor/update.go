// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"context"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skaldhq/skald-tui/internal/commands"
	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case storeChangedMsg:
		return m.handleStoreChanged()

	case session.TickMsg:
		var cmd tea.Cmd
		if m.sess != nil {
			cmd = m.sess.HandleTick()
		} else {
			cmd = session.TickCmd()
		}
		return m, cmd

	case session.AutoSaveMsg:
		if m.history != nil {
			m.history.FlushTyping()
		}
		if m.sess != nil {
			m.sess.Check()
		}
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			m.errMsg = "save failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "saved"
			m.errMsg = ""
		}
		return m, clearStatusCmd()

	case exportedMsg:
		if msg.Err != nil {
			m.errMsg = "export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "exported to " + msg.Path
			m.errMsg = ""
		}
		return m, clearStatusCmd()

	case clearStatusMsg:
		m.statusMsg = ""
		m.errMsg = ""
		return m, nil
	}

	// Spinner and cursor blink ticks.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleResize recomputes layout for a new terminal size.
func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)

	// Header and status bar each take one line.
	docHeight := msg.Height - 2
	if docHeight < 1 {
		docHeight = 1
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = docHeight
	m.input.Width = msg.Width - 8
	m.ready = true
	return m, nil
}

// handleStoreChanged resyncs the input with content that changed
// underneath it (undo, redo, or the AI writer) and re-arms the event
// wait.
func (m *Model) handleStoreChanged() (tea.Model, tea.Cmd) {
	id, ok := m.surface.ActiveBlock()
	if ok {
		if _, exists := m.store.Block(id); !exists {
			m.refocusNearest()
		} else if markup, has := m.surface.Markup(id); has && markup != m.input.Value() {
			// The user's own typing keeps surface and input equal; a
			// mismatch means undo, redo, or the AI writer moved content
			// underneath us.
			m.input.SetValue(markup)
			m.input.CursorEnd()
			m.menu = nil
		}
	} else if m.page != nil {
		m.refocusNearest()
	}

	if m.writer != nil && !m.writer.Busy() {
		m.spinner.Stop()
	}

	return m, waitForStoreEvent(m.events)
}

// refocusNearest moves focus to the first visible block after the
// active one vanished.
func (m *Model) refocusNearest() {
	if m.page == nil {
		return
	}
	blocks := m.store.VisibleBlocks(m.page.ID)
	if len(blocks) == 0 {
		m.surface.clearActive()
		m.input.SetValue("")
		return
	}
	m.focusBlock(blocks[0].ID)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.Cancel):
		if m.writer != nil && m.writer.Busy() {
			m.writer.Abort()
			m.spinner.Stop()
			return m, nil
		}
		m.menu = nil
		return m, nil

	case key.Matches(msg, keys.Save):
		if m.history != nil {
			m.history.FlushTyping()
		}
		if m.sess != nil {
			return m, saveCmd(m.sess)
		}
		return m, nil

	case key.Matches(msg, keys.Export):
		if m.page == nil {
			return m, nil
		}
		return m, exportCmd(m.page, m.store.Blocks(m.page.ID), m.exportDir)

	case key.Matches(msg, keys.Journal):
		m.OpenJournal()
		return m, nil

	case key.Matches(msg, keys.AskAI):
		return m.askAI()

	case key.Matches(msg, keys.Undo):
		if m.history != nil {
			m.history.FlushTyping()
			m.history.Undo()
		}
		return m, nil

	case key.Matches(msg, keys.Redo):
		if m.history != nil {
			m.history.Redo()
		}
		return m, nil
	}

	// Menu navigation wins over block navigation while a menu is open.
	if m.menu != nil {
		switch {
		case key.Matches(msg, keys.Up):
			m.menu.Prev()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.menu.Next()
			return m, nil
		case key.Matches(msg, keys.Split):
			return m.commitMenu()
		}
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.moveFocus(-1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, keys.MoveUp):
		m.moveBlock(-1)
		return m, nil

	case key.Matches(msg, keys.MoveDown):
		m.moveBlock(1)
		return m, nil

	case key.Matches(msg, keys.Indent):
		if b := m.activeBlock(); b != nil && !m.surface.isReadOnly(b.ID) {
			m.store.IndentBlock(b.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Outdent):
		if b := m.activeBlock(); b != nil && !m.surface.isReadOnly(b.ID) {
			m.store.OutdentBlock(b.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Collapse):
		if b := m.activeBlock(); b != nil && b.Type.Collapsible() {
			m.store.ToggleCollapsed(b.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Split):
		return m.splitBlock()
	}

	if msg.Type == tea.KeyBackspace && m.input.Position() == 0 {
		return m.mergeBlockUp()
	}

	return m.handleTyping(msg)
}

// quit flushes pending state and exits.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.history != nil {
		m.history.FlushTyping()
	}
	if m.sess != nil {
		_ = m.sess.Flush()
	}
	return m, tea.Quit
}

// askAI streams an AI continuation into a new block after the active
// one, using the active block's content as the prompt.
func (m *Model) askAI() (tea.Model, tea.Cmd) {
	if m.writer == nil || m.page == nil {
		m.errMsg = "AI writer is not configured"
		return m, clearStatusCmd()
	}
	if m.writer.Busy() {
		return m, nil
	}
	b := m.activeBlock()
	if b == nil || m.input.Value() == "" {
		return m, nil
	}

	if m.history != nil {
		m.history.FlushTyping()
	}
	afterID := b.ID
	_, err := m.writer.Start(context.Background(), m.page.ID, b.ParentID, &afterID, m.input.Value())
	if err != nil {
		m.errMsg = err.Error()
		return m, clearStatusCmd()
	}
	return m, m.spinner.Start()
}

// commitMenu applies the highlighted menu item.
func (m *Model) commitMenu() (tea.Model, tea.Cmd) {
	id, ok := m.surface.ActiveBlock()
	if !ok || m.menu == nil {
		m.menu = nil
		return m, nil
	}

	content := m.input.Value()
	caret := caretBytes(content, m.input.Position())
	next, nextCaret, follow := m.router.Commit(m.menu, content, caret)

	m.surface.setLocal(id, next)
	m.input.SetValue(next)
	m.input.SetCursor(utf8.RuneCountInString(next[:nextCaret]))
	m.menu = follow
	return m, nil
}

// splitBlock divides the active block at the caret.
func (m *Model) splitBlock() (tea.Model, tea.Cmd) {
	b := m.activeBlock()
	if b == nil || m.surface.isReadOnly(b.ID) {
		return m, nil
	}

	content := m.input.Value()
	caret := caretBytes(content, m.input.Position())
	before, after := content[:caret], content[caret:]

	if m.history != nil {
		m.history.FlushTyping()
	}
	newID := m.store.SplitBlock(b.ID, before, after)
	m.surface.setLocal(b.ID, before)
	m.focusBlock(newID)
	m.input.SetCursor(0)
	m.menu = nil
	return m, nil
}

// mergeBlockUp joins the active block into its predecessor, keeping the
// caret at the junction.
func (m *Model) mergeBlockUp() (tea.Model, tea.Cmd) {
	b := m.activeBlock()
	if b == nil || m.surface.isReadOnly(b.ID) {
		return m, nil
	}

	cur := m.input.Value()
	if m.history != nil {
		m.history.FlushTyping()
	}
	survivor, ok := m.store.MergeBlockUp(b.ID)
	if !ok {
		return m, nil
	}

	m.surface.forget(b.ID)
	merged := m.store.BlockContent(survivor)
	junction := len(merged) - len(cur)
	if junction < 0 {
		junction = 0
	}
	m.surface.setActive(survivor)
	m.surface.setLocal(survivor, merged)
	m.input.SetValue(merged)
	m.input.SetCursor(utf8.RuneCountInString(merged[:junction]))
	m.menu = nil
	return m, nil
}

// handleTyping feeds a key into the input and live-syncs the result.
func (m *Model) handleTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, ok := m.surface.ActiveBlock()
	if !ok {
		return m, nil
	}
	if m.surface.isReadOnly(id) {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	content := m.input.Value()
	caret := caretBytes(content, m.input.Position())

	// A markdown prefix at the start of a paragraph converts the block
	// on the spot, in the same single-transaction shape as a command
	// menu commit.
	if b, found := m.store.Block(id); found && b.Type == notes.TypeParagraph {
		if sc, rest, hit := commands.DetectShortcut(content, caret); hit {
			m.store.CommitTypeChange(id, sc.Type, sc.Properties, rest)
			m.surface.setLocal(id, rest)
			m.input.SetValue(rest)
			m.input.SetCursor(0)
			m.menu = nil
			if m.sess != nil {
				m.sess.RecordActivity()
			}
			return m, cmd
		}
	}

	m.surface.setLocal(id, content)
	m.bridge.HandleInput(id)

	m.menu = m.router.Update(id, content, caret, m.menu)

	if m.sess != nil {
		m.sess.RecordActivity()
	}
	return m, cmd
}

// =============================================================================
// NAVIGATION AND STRUCTURE
// =============================================================================

// moveFocus shifts the active block up or down the visible document.
func (m *Model) moveFocus(delta int) {
	if m.page == nil {
		return
	}
	blocks := m.store.VisibleBlocks(m.page.ID)
	if len(blocks) == 0 {
		return
	}

	id, ok := m.surface.ActiveBlock()
	if !ok {
		m.focusBlock(blocks[0].ID)
		return
	}

	idx := -1
	for i, b := range blocks {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.focusBlock(blocks[0].ID)
		return
	}

	next := idx + delta
	if next < 0 || next >= len(blocks) {
		return
	}
	m.focusBlock(blocks[next].ID)
	m.menu = nil
}

// moveBlock reorders the active block among its siblings.
func (m *Model) moveBlock(delta int) {
	b := m.activeBlock()
	if b == nil || m.page == nil || m.surface.isReadOnly(b.ID) {
		return
	}

	sibs := m.siblings(b)
	idx := -1
	for i, s := range sibs {
		if s.ID == b.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	target := idx + delta
	if target < 0 || target >= len(sibs) {
		return
	}

	// Moving up one slot lands after the sibling two above, or first.
	var afterID *notes.BlockID
	if delta < 0 {
		if idx >= 2 {
			id := sibs[idx-2].ID
			afterID = &id
		} else {
			afterID = notes.AtStart
		}
	} else {
		id := sibs[idx+1].ID
		afterID = &id
	}

	if m.history != nil {
		m.history.FlushTyping()
	}
	_ = m.store.MoveBlock(b.ID, b.ParentID, afterID)
}

// siblings returns the blocks sharing the active block's parent, in
// order.
func (m *Model) siblings(b *notes.Block) []*notes.Block {
	var sibs []*notes.Block
	for _, candidate := range m.store.Blocks(b.PageID) {
		if sameParentID(candidate.ParentID, b.ParentID) {
			sibs = append(sibs, candidate)
		}
	}
	notes.SortSiblings(sibs)
	return sibs
}

func sameParentID(a, b *notes.BlockID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// caretBytes converts the input's rune cursor position to a byte
// offset in content.
func caretBytes(content string, runePos int) int {
	if runePos <= 0 {
		return 0
	}
	count := 0
	for i := range content {
		if count == runePos {
			return i
		}
		count++
	}
	return len(content)
}
