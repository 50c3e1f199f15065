// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/ui/styles"
)

func testModel(t *testing.T) (*Model, *notes.Store) {
	t.Helper()
	store := notes.NewStore()
	history := notes.NewHistory(store, 50*time.Millisecond)

	m := New(Options{
		Store:   store,
		History: history,
		Theme:   styles.NewTheme("dark"),
	})
	t.Cleanup(m.Close)
	m.width = 100
	m.height = 30
	m.ready = true
	return m, store
}

func typeString(m *Model, s string) {
	for _, r := range s {
		m.handleTyping(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestOpenPageSeedsEmptyPage(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)

	m.OpenPage(page.ID)

	blocks := store.Blocks(page.ID)
	if len(blocks) != 1 {
		t.Fatalf("expected starter block, got %d blocks", len(blocks))
	}
	id, ok := m.surface.ActiveBlock()
	if !ok {
		t.Fatal("no active block after OpenPage")
	}
	if id != blocks[0].ID {
		t.Error("active block is not the starter block")
	}
}

func TestTypingFlowsToStore(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "hello")

	id, _ := m.surface.ActiveBlock()
	if got := store.BlockContent(id); got != "hello" {
		t.Errorf("store content = %q, want %q", got, "hello")
	}
}

func TestSplitBlock(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "headtail")
	m.input.SetCursor(4)
	m.splitBlock()

	blocks := store.Blocks(page.ID)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks after split, got %d", len(blocks))
	}
	if blocks[0].Content != "head" || blocks[1].Content != "tail" {
		t.Errorf("split contents = %q / %q", blocks[0].Content, blocks[1].Content)
	}

	// Focus lands on the new block with the caret at the start.
	id, _ := m.surface.ActiveBlock()
	if id != blocks[1].ID {
		t.Error("focus did not move to the new block")
	}
	if m.input.Position() != 0 {
		t.Errorf("caret = %d, want 0", m.input.Position())
	}
}

func TestMergeBlockUp(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "first")
	m.splitBlock()
	typeString(m, "second")

	m.input.SetCursor(0)
	m.mergeBlockUp()

	blocks := store.Blocks(page.ID)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block after merge, got %d", len(blocks))
	}
	if blocks[0].Content != "firstsecond" {
		t.Errorf("merged content = %q", blocks[0].Content)
	}

	// Caret sits at the junction.
	if m.input.Position() != len("first") {
		t.Errorf("caret = %d, want %d", m.input.Position(), len("first"))
	}
}

func TestSlashOpensMenu(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "/")
	if m.menu == nil {
		t.Fatal("slash did not open the command menu")
	}
	if len(m.menu.Items) == 0 {
		t.Fatal("command menu is empty")
	}

	typeString(m, "h2")
	if m.menu == nil {
		t.Fatal("menu closed while narrowing the query")
	}

	m.commitMenu()
	if m.menu != nil {
		t.Error("menu still open after commit")
	}

	id, _ := m.surface.ActiveBlock()
	b, _ := store.Block(id)
	if b.Type != notes.TypeHeading {
		t.Errorf("block type = %q, want heading", b.Type)
	}
	if b.HeadingLevel() != 2 {
		t.Errorf("heading level = %d, want 2", b.HeadingLevel())
	}
	if b.Content != "" {
		t.Errorf("trigger text not stripped: %q", b.Content)
	}
}

func TestMarkdownPrefixConvertsBlock(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "## ")

	id, _ := m.surface.ActiveBlock()
	b, _ := store.Block(id)
	if b.Type != notes.TypeHeading {
		t.Fatalf("block type = %q, want heading", b.Type)
	}
	if b.HeadingLevel() != 2 {
		t.Errorf("heading level = %d, want 2", b.HeadingLevel())
	}
	if b.Content != "" {
		t.Errorf("prefix not stripped: %q", b.Content)
	}
	if m.input.Value() != "" || m.input.Position() != 0 {
		t.Errorf("input = %q at %d, want empty at 0", m.input.Value(), m.input.Position())
	}

	// The conversion is one transaction: a single undo restores the
	// paragraph type.
	m.history.FlushTyping()
	m.history.Undo()
	b, _ = store.Block(id)
	if b.Type != notes.TypeParagraph {
		t.Errorf("type after undo = %q, want paragraph", b.Type)
	}

	// Text typed after the prefix lands in the converted block.
	m.splitBlock()
	typeString(m, "- groceries")

	id2, _ := m.surface.ActiveBlock()
	b2, _ := store.Block(id2)
	if b2.Type != notes.TypeListItem {
		t.Errorf("block type = %q, want list item", b2.Type)
	}
	if b2.Content != "groceries" {
		t.Errorf("content = %q, want %q", b2.Content, "groceries")
	}
}

func TestLinkMenuCreatesPage(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "see [[Project Plan")
	if m.menu == nil {
		t.Fatal("link trigger did not open a menu")
	}

	m.commitMenu()

	if _, ok := store.PageByName(notes.NormalizePageName("Project Plan")); !ok {
		t.Error("committing the create item did not create the page")
	}

	id, _ := m.surface.ActiveBlock()
	if got := store.BlockContent(id); got != "see [[Project Plan]]" {
		t.Errorf("content = %q", got)
	}
}

func TestMoveFocus(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "one")
	m.splitBlock()
	typeString(m, "two")

	m.moveFocus(-1)
	id, _ := m.surface.ActiveBlock()
	if store.BlockContent(id) != "one" {
		t.Error("focus did not move up")
	}
	if m.input.Value() != "one" {
		t.Errorf("input not reloaded on focus change: %q", m.input.Value())
	}

	// Moving past the edges is a no-op.
	m.moveFocus(-1)
	id2, _ := m.surface.ActiveBlock()
	if id2 != id {
		t.Error("focus moved past the first block")
	}
}

func TestMoveBlockReorders(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "one")
	m.splitBlock()
	typeString(m, "two")

	m.moveBlock(-1)

	blocks := store.Blocks(page.ID)
	if blocks[0].Content != "two" || blocks[1].Content != "one" {
		t.Errorf("order after move = %q, %q", blocks[0].Content, blocks[1].Content)
	}
}

func TestReadOnlyBlockSwallowsTyping(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "locked")
	id, _ := m.surface.ActiveBlock()
	m.surface.SetReadOnly(id, true)

	typeString(m, "xxx")
	if got := store.BlockContent(id); got != "locked" {
		t.Errorf("read-only block mutated: %q", got)
	}
}

func TestUndoRestoresContent(t *testing.T) {
	m, store := testModel(t)
	page := store.CreatePage("Scratch", false)
	m.OpenPage(page.ID)

	typeString(m, "draft")
	m.history.FlushTyping()
	m.splitBlock()
	typeString(m, "extra")
	m.history.FlushTyping()

	m.history.Undo() // typing "extra"
	m.history.Undo() // split

	blocks := store.Blocks(page.ID)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block after undo, got %d", len(blocks))
	}
	if blocks[0].Content != "draft" {
		t.Errorf("content after undo = %q", blocks[0].Content)
	}
}

func TestCaretBytes(t *testing.T) {
	tests := []struct {
		content string
		runePos int
		want    int
	}{
		{"hello", 0, 0},
		{"hello", 3, 3},
		{"hello", 10, 5},
		{"日本語", 1, 3},
		{"日本語", 3, 9},
		{"", 2, 0},
	}

	for _, tt := range tests {
		if got := caretBytes(tt.content, tt.runePos); got != tt.want {
			t.Errorf("caretBytes(%q, %d) = %d, want %d", tt.content, tt.runePos, got, tt.want)
		}
	}
}

func TestStyleLinks(t *testing.T) {
	m, _ := testModel(t)

	out := m.styleLinks("see [[Alpha]] and [[Beta]]")
	plain := stripANSI(out)
	if !strings.Contains(plain, "Alpha") || !strings.Contains(plain, "Beta") {
		t.Errorf("link titles missing: %q", plain)
	}
	if strings.Contains(plain, "[[") {
		t.Errorf("closed link brackets should be stripped: %q", plain)
	}

	// Open links keep their brackets.
	out = m.styleLinks("typing [[Gam")
	if !strings.Contains(out, "[[Gam") {
		t.Errorf("open link mangled: %q", out)
	}
}

func TestSurfaceContract(t *testing.T) {
	s := newSurface()

	id := notes.NewBlockID()
	if _, ok := s.Markup(id); ok {
		t.Error("unknown block should have no markup")
	}

	s.SetMarkup(id, "hello")
	if got, ok := s.Markup(id); !ok || got != "hello" {
		t.Errorf("markup = %q, %v", got, ok)
	}

	if _, ok := s.ActiveBlock(); ok {
		t.Error("fresh surface should have no active block")
	}
	s.setActive(id)
	if got, ok := s.ActiveBlock(); !ok || got != id {
		t.Error("active block not recorded")
	}

	s.SetReadOnly(id, true)
	if !s.isReadOnly(id) {
		t.Error("read-only flag not set")
	}
	s.SetReadOnly(id, false)
	if s.isReadOnly(id) {
		t.Error("read-only flag not cleared")
	}

	s.forget(id)
	if _, ok := s.Markup(id); ok {
		t.Error("forget did not drop markup")
	}
	if _, ok := s.ActiveBlock(); ok {
		t.Error("forget did not drop focus")
	}
}

// stripANSI removes ANSI escape sequences for content assertions.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		if r == '\x1b' {
			inEscape = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
