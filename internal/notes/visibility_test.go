// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import (
	"testing"
)

// buildPage seeds a store with a page and the given top-level block specs,
// returning the page and created ids in order.
type blockSpec struct {
	typ       BlockType
	content   string
	level     string // heading level, "" for non-headings
	collapsed bool
	parent    int // index into created ids, -1 for top-level
}

func buildPage(t *testing.T, specs []blockSpec) (*Store, PageID, []BlockID) {
	t.Helper()
	s := NewStore()
	page := s.CreatePage("Test Page", false)
	ids := make([]BlockID, 0, len(specs))
	for i, spec := range specs {
		var parent *BlockID
		if spec.parent >= 0 {
			parent = &ids[spec.parent]
		}
		var props map[string]string
		if spec.level != "" {
			props = map[string]string{PropLevel: spec.level}
		}
		id, err := s.CreateBlock(page.ID, parent, nil, spec.content, spec.typ, props)
		if err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
		if spec.collapsed {
			s.ToggleCollapsed(id)
		}
		ids = append(ids, id)
	}
	return s, page.ID, ids
}

func visibleContents(s *Store, pageID PageID) []string {
	var out []string
	for _, b := range s.VisibleBlocks(pageID) {
		out = append(out, b.Content)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// HEADING COLLAPSE
// =============================================================================

// Collapsing a heading of level N hides all following blocks until the
// next heading of level <= N.
func TestVisibleCollapsedHeadingSection(t *testing.T) {
	s, pageID, ids := buildPage(t, []blockSpec{
		{typ: TypeHeading, content: "A", level: "1", collapsed: true, parent: -1},
		{typ: TypeParagraph, content: "x", parent: -1},
		{typ: TypeHeading, content: "B", level: "2", parent: -1},
		{typ: TypeParagraph, content: "y", parent: -1},
	})

	got := visibleContents(s, pageID)
	if !equalStrings(got, []string{"A"}) {
		t.Fatalf("collapsed H1: visible = %v, want [A]", got)
	}

	s.ToggleCollapsed(ids[0])
	got = visibleContents(s, pageID)
	if !equalStrings(got, []string{"A", "x", "B", "y"}) {
		t.Fatalf("uncollapsed H1: visible = %v, want all four", got)
	}
}

func TestVisibleHeadingSectionEndsAtEqualLevel(t *testing.T) {
	s, pageID, _ := buildPage(t, []blockSpec{
		{typ: TypeHeading, content: "H2a", level: "2", collapsed: true, parent: -1},
		{typ: TypeHeading, content: "H3", level: "3", parent: -1},
		{typ: TypeParagraph, content: "deep", parent: -1},
		{typ: TypeHeading, content: "H2b", level: "2", parent: -1},
		{typ: TypeParagraph, content: "after", parent: -1},
		{typ: TypeHeading, content: "H1", level: "1", parent: -1},
	})

	got := visibleContents(s, pageID)
	want := []string{"H2a", "H2b", "after", "H1"}
	if !equalStrings(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
}

// =============================================================================
// TOGGLE COLLAPSE
// =============================================================================

// Collapsing a toggle hides only its direct and transitive children.
func TestVisibleCollapsedToggle(t *testing.T) {
	s, pageID, ids := buildPage(t, []blockSpec{
		{typ: TypeToggle, content: "toggle", parent: -1},
		{typ: TypeParagraph, content: "child", parent: 0},
		{typ: TypeParagraph, content: "grandchild", parent: 1},
		{typ: TypeParagraph, content: "sibling", parent: -1},
	})

	before := visibleContents(s, pageID)
	if !equalStrings(before, []string{"toggle", "child", "grandchild", "sibling"}) {
		t.Fatalf("expanded toggle: visible = %v", before)
	}

	s.ToggleCollapsed(ids[0])
	got := visibleContents(s, pageID)
	if !equalStrings(got, []string{"toggle", "sibling"}) {
		t.Fatalf("collapsed toggle: visible = %v, want [toggle sibling]", got)
	}

	// Uncollapsing restores exactly the prior visible set.
	s.ToggleCollapsed(ids[0])
	if got := visibleContents(s, pageID); !equalStrings(got, before) {
		t.Fatalf("restore: visible = %v, want %v", got, before)
	}
}

// Collapsed does nothing on non-collapsible types.
func TestToggleCollapsedIgnoredForParagraph(t *testing.T) {
	s, pageID, ids := buildPage(t, []blockSpec{
		{typ: TypeParagraph, content: "p", parent: -1},
		{typ: TypeParagraph, content: "q", parent: 0},
	})

	s.ToggleCollapsed(ids[0])
	b, _ := s.Block(ids[0])
	if b.Collapsed {
		t.Fatal("paragraph must not collapse")
	}
	if got := visibleContents(s, pageID); !equalStrings(got, []string{"p", "q"}) {
		t.Fatalf("visible = %v, want both", got)
	}
}

// =============================================================================
// DETERMINISM
// =============================================================================

func TestVisibleIdempotent(t *testing.T) {
	s, pageID, _ := buildPage(t, []blockSpec{
		{typ: TypeHeading, content: "A", level: "1", collapsed: true, parent: -1},
		{typ: TypeToggle, content: "t", parent: -1},
		{typ: TypeParagraph, content: "c", parent: 1},
		{typ: TypeParagraph, content: "z", parent: -1},
	})

	first := visibleContents(s, pageID)
	for i := 0; i < 5; i++ {
		if got := visibleContents(s, pageID); !equalStrings(got, first) {
			t.Fatalf("recompute %d: %v != %v", i, got, first)
		}
	}
}
