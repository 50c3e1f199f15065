// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bridge reconciles canonical block content with a live editing
// surface.
package bridge

import (
	"testing"
	"time"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// fakeSurface is a minimal synchronous Surface. Programmatic SetMarkup
// delivers an input event to the bridge, like a DOM contenteditable would.
type fakeSurface struct {
	bridge   *Bridge
	markup   map[notes.BlockID]string
	readOnly map[notes.BlockID]bool
	active   notes.BlockID

	sets int // programmatic writes observed
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		markup:   make(map[notes.BlockID]string),
		readOnly: make(map[notes.BlockID]bool),
	}
}

func (f *fakeSurface) Markup(id notes.BlockID) (string, bool) {
	m, ok := f.markup[id]
	return m, ok
}

func (f *fakeSurface) SetMarkup(id notes.BlockID, markup string) {
	f.markup[id] = markup
	f.sets++
	if f.bridge != nil {
		f.bridge.HandleInput(id)
	}
}

func (f *fakeSurface) ActiveBlock() (notes.BlockID, bool) {
	return f.active, f.active != ""
}

func (f *fakeSurface) SetReadOnly(id notes.BlockID, ro bool) {
	f.readOnly[id] = ro
}

// typeInto simulates a user edit: the surface markup changes and an input
// event fires.
func (f *fakeSurface) typeInto(id notes.BlockID, markup string) {
	f.markup[id] = markup
	f.bridge.HandleInput(id)
}

func newTestBridge(t *testing.T) (*notes.Store, *notes.History, *fakeSurface, *Bridge, notes.BlockID) {
	t.Helper()
	store := notes.NewStore()
	history := notes.NewHistory(store, 20*time.Millisecond)
	page := store.CreatePage("p", false)
	id, err := store.CreateBlock(page.ID, nil, nil, "", notes.TypeParagraph, nil)
	if err != nil {
		t.Fatal(err)
	}
	surface := newFakeSurface()
	b := New(store, surface)
	surface.bridge = b
	t.Cleanup(b.Close)
	return store, history, surface, b, id
}

// =============================================================================
// SURFACE -> STORE
// =============================================================================

func TestUserInputFlowsToStore(t *testing.T) {
	store, _, surface, _, id := newTestBridge(t)
	surface.active = id

	surface.typeInto(id, "hello")
	if got := store.BlockContent(id); got != "hello" {
		t.Fatalf("store content = %q", got)
	}
}

func TestInputIsNormalizedAndSanitized(t *testing.T) {
	store, _, surface, _, id := newTestBridge(t)
	surface.active = id

	surface.typeInto(id, "<div><b>x</b></div>")
	if got := store.BlockContent(id); got != "<b>x</b>" {
		t.Fatalf("store content = %q", got)
	}

	surface.typeInto(id, "<br>")
	if got := store.BlockContent(id); got != "" {
		t.Fatalf("empty representation stored as %q", got)
	}
}

// A store write performed by the bridge itself must not loop back as a
// user edit, even when the surface echoes programmatic sets as input
// events.
func TestProgrammaticWriteDoesNotEcho(t *testing.T) {
	store, _, surface, _, id := newTestBridge(t)

	store.UpdateContent(id, "from elsewhere")
	if got := surface.markup[id]; got != "from elsewhere" {
		t.Fatalf("surface markup = %q", got)
	}

	// The echo input consumed the suppression flag; a later real edit
	// still flows through.
	surface.active = id
	surface.typeInto(id, "user edit")
	if got := store.BlockContent(id); got != "user edit" {
		t.Fatalf("store content = %q", got)
	}
}

// =============================================================================
// EXTERNAL CHANGE DETECTION
// =============================================================================

// Undo changes canonical content from outside the bridge; the active
// block's surface must resync.
func TestUndoResyncsActiveBlock(t *testing.T) {
	store, history, surface, _, id := newTestBridge(t)
	surface.active = id

	surface.typeInto(id, "draft one")
	history.FlushTyping()
	surface.typeInto(id, "draft one and two")
	history.FlushTyping()

	history.Undo()
	if got := surface.markup[id]; got != "draft one" {
		t.Fatalf("surface after undo = %q", got)
	}
	if got := store.BlockContent(id); got != "draft one" {
		t.Fatalf("store after undo = %q", got)
	}
}

// While the bridge's own write is the latest, a store event must not
// rewrite the active surface (no caret-destroying churn).
func TestActiveBlockNotRewrittenForOwnWrite(t *testing.T) {
	_, _, surface, _, id := newTestBridge(t)
	surface.active = id

	surface.typeInto(id, "abc")
	setsAfterType := surface.sets
	if setsAfterType != 0 {
		t.Fatalf("own write echoed to surface %d times", setsAfterType)
	}
}

// =============================================================================
// EXCLUSIVE AI-WRITER MODE
// =============================================================================

func TestStreamingMirrorsEveryToken(t *testing.T) {
	store, _, surface, b, id := newTestBridge(t)
	surface.active = id // user caret sits in the block; streaming bypasses it

	b.BeginStreaming(id)
	if !surface.readOnly[id] {
		t.Fatal("streaming target must be read-only to user edits")
	}

	store.UpdateContentLive(id, "The ")
	store.UpdateContentLive(id, "The answer")
	if got := surface.markup[id]; got != "The answer" {
		t.Fatalf("surface during stream = %q", got)
	}

	// Direct user edits are ignored while the flag is set.
	surface.typeInto(id, "user interference")
	if got := store.BlockContent(id); got != "The answer" {
		t.Fatalf("user edit leaked into store: %q", got)
	}

	if b.AllowFocus(id) {
		t.Fatal("focus stealing must be suppressed for the streaming target")
	}
}

func TestEndStreamingRestoresNormalEditing(t *testing.T) {
	store, _, surface, b, id := newTestBridge(t)

	b.BeginStreaming(id)
	store.UpdateContentLive(id, "streamed text")
	b.EndStreaming()

	if surface.readOnly[id] {
		t.Fatal("block must be editable after streaming ends")
	}
	if !b.AllowFocus(id) {
		t.Fatal("focus must be allowed after streaming ends")
	}

	// Bookkeeping was refreshed: the next user edit is an ordinary edit,
	// not a misdetected external change that would bounce the surface.
	surface.active = id
	setsBefore := surface.sets
	surface.typeInto(id, "streamed text plus user")
	if got := store.BlockContent(id); got != "streamed text plus user" {
		t.Fatalf("store content = %q", got)
	}
	if surface.sets != setsBefore {
		t.Fatal("ordinary edit after streaming must not trigger a resync")
	}
}

func TestAbortStreamingIsSafe(t *testing.T) {
	store, _, surface, b, id := newTestBridge(t)

	b.BeginStreaming(id)
	store.UpdateContentLive(id, "partial")
	b.EndStreaming()
	b.EndStreaming() // double clear is harmless

	if _, ok := b.StreamingTarget(); ok {
		t.Fatal("no streaming target should remain")
	}
	surface.active = id
	surface.typeInto(id, "partial kept")
	if got := store.BlockContent(id); got != "partial kept" {
		t.Fatalf("store content = %q", got)
	}
}

// =============================================================================
// NON-ACTIVE BLOCK SYNC
// =============================================================================

func TestInactiveBlocksMirrorStore(t *testing.T) {
	store, _, surface, _, id := newTestBridge(t)
	page, _ := store.Block(id)
	other, _ := store.CreateBlock(page.PageID, nil, &id, "", notes.TypeParagraph, nil)

	surface.active = other // user edits a different block
	store.UpdateContent(id, "updated while inactive")
	if got := surface.markup[id]; got != "updated while inactive" {
		t.Fatalf("inactive surface markup = %q", got)
	}
}
