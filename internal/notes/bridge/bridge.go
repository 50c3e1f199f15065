// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bridge reconciles canonical block content with a live editing
// surface.
package bridge

import (
	"sync"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// SURFACE CONTRACT
// =============================================================================

// Surface is an externally owned, rich-text capable editing view. The
// bridge never renders; it only moves content between the surface and the
// store and decides who wrote last and who may write next.
type Surface interface {
	// Markup returns the surface's current markup for a block, false when
	// the surface holds no node for it.
	Markup(id notes.BlockID) (string, bool)

	// SetMarkup programmatically replaces a block's markup. The surface
	// may or may not deliver an input event for programmatic sets; the
	// bridge's suppression handshake copes with both.
	SetMarkup(id notes.BlockID, markup string)

	// ActiveBlock is the block the user currently edits, if any.
	ActiveBlock() (notes.BlockID, bool)

	// SetReadOnly marks a block read-only to direct user edits.
	SetReadOnly(id notes.BlockID, readOnly bool)
}

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge keeps the canonical content and the surface consistent across
// three producers — the human editor, undo/redo, and an AI writer
// streaming tokens — without update loops.
//
// The directional handshake: lastSynced records the content this bridge
// itself last moved across the boundary, per block. A surface input whose
// normalized markup differs from lastSynced is a user edit and flows to
// the store; a store change that differs from lastSynced arrived from
// elsewhere (undo/redo, AI writer) and flows to the surface. A single-shot
// suppression flag marks the window in which the bridge itself is writing
// the surface, so that write is never misread as a user edit.
type Bridge struct {
	store   *notes.Store
	surface Surface

	mu         sync.Mutex
	suppress   bool
	lastSynced map[notes.BlockID]string
	streaming  notes.BlockID // exclusive AI-writer target, "" when none

	cancelSub func()
}

// New wires a bridge between a store and a surface. Close releases the
// store subscription.
func New(store *notes.Store, surface Surface) *Bridge {
	b := &Bridge{
		store:      store,
		surface:    surface,
		lastSynced: make(map[notes.BlockID]string),
	}
	b.cancelSub = store.Subscribe(b.onStoreChange)
	return b
}

// Close detaches the bridge from the store.
func (b *Bridge) Close() {
	if b.cancelSub != nil {
		b.cancelSub()
		b.cancelSub = nil
	}
}

// =============================================================================
// SURFACE -> STORE
// =============================================================================

// HandleInput is invoked by the surface on every input event for a block.
// The surface's markup is read back, normalized to the stored inline
// subset, and written to the store on the coalesced typing path.
func (b *Bridge) HandleInput(id notes.BlockID) {
	b.mu.Lock()
	if b.suppress {
		// The bridge wrote this markup itself a moment ago.
		b.suppress = false
		b.mu.Unlock()
		return
	}
	if b.streaming == id {
		// Block is owned by the AI writer; user edits are not
		// authoritative while the exclusivity flag is set.
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	markup, ok := b.surface.Markup(id)
	if !ok {
		return
	}
	content := notes.NormalizeSurfaceMarkup(markup)

	b.mu.Lock()
	b.lastSynced[id] = content
	b.mu.Unlock()
	b.store.UpdateContentLive(id, content)
}

// =============================================================================
// STORE -> SURFACE
// =============================================================================

func (b *Bridge) onStoreChange(ev notes.Event) {
	switch ev.Kind {
	case notes.EventBlockDeleted:
		b.mu.Lock()
		delete(b.lastSynced, ev.BlockID)
		b.mu.Unlock()
		return
	case notes.EventBlockCreated, notes.EventBlockUpdated, notes.EventReset:
		// content may have changed; fall through
	default:
		return
	}
	if ev.Kind == notes.EventReset {
		b.mu.Lock()
		b.lastSynced = make(map[notes.BlockID]string)
		b.mu.Unlock()
		return
	}

	content := b.store.BlockContent(ev.BlockID)

	b.mu.Lock()
	streaming := b.streaming == ev.BlockID
	last, seen := b.lastSynced[ev.BlockID]
	b.mu.Unlock()

	if streaming {
		// Exclusive writer mode: mirror every token arrival, even though
		// the block may be the active one.
		b.writeSurface(ev.BlockID, content)
		return
	}

	if active, ok := b.surface.ActiveBlock(); ok && active == ev.BlockID {
		// While a block is being edited, only divergence from what this
		// bridge last wrote forces a resync; that means the canonical
		// content changed elsewhere (undo/redo).
		if seen && last == content {
			return
		}
		b.writeSurface(ev.BlockID, content)
		return
	}

	// Not being edited: the surface mirrors canonical content.
	if seen && last == content {
		return
	}
	b.writeSurface(ev.BlockID, content)
}

// writeSurface performs a programmatic surface write under the
// suppression handshake and advances the last-synced marker.
func (b *Bridge) writeSurface(id notes.BlockID, content string) {
	b.mu.Lock()
	b.suppress = true
	b.mu.Unlock()

	b.surface.SetMarkup(id, content)

	b.mu.Lock()
	// Synchronous surfaces consumed the flag via their input event;
	// clear it regardless so it can never swallow a later user edit.
	b.suppress = false
	b.lastSynced[id] = content
	b.mu.Unlock()
}

// =============================================================================
// EXCLUSIVE AI-WRITER MODE
// =============================================================================

// BeginStreaming flags a block as the current streaming target: the
// surface mirrors canonical content on every token arrival, the block
// becomes read-only to direct user edits, and focus-stealing is
// suppressed.
func (b *Bridge) BeginStreaming(id notes.BlockID) {
	b.mu.Lock()
	b.streaming = id
	b.mu.Unlock()

	b.surface.SetReadOnly(id, true)
	b.writeSurface(id, b.store.BlockContent(id))
}

// EndStreaming clears the exclusivity flag. Last-synced bookkeeping is
// refreshed from canonical content so the next ordinary user edit is not
// misdetected as an external change. Safe to call on completion or abort.
func (b *Bridge) EndStreaming() {
	b.mu.Lock()
	id := b.streaming
	b.streaming = ""
	b.mu.Unlock()
	if id == "" {
		return
	}

	b.mu.Lock()
	b.lastSynced[id] = b.store.BlockContent(id)
	b.mu.Unlock()
	b.surface.SetReadOnly(id, false)
}

// StreamingTarget returns the block currently owned by the AI writer.
func (b *Bridge) StreamingTarget() (notes.BlockID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streaming, b.streaming != ""
}

// AllowFocus reports whether normal focus-stealing logic may place the
// caret in a block. False while the AI writer owns it.
func (b *Bridge) AllowFocus(id notes.BlockID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streaming != id
}
