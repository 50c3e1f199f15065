// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"sync"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// SURFACE STATE
// =============================================================================

// surface holds the per-block markup the editor currently displays. The
// content bridge reads and writes it from whichever goroutine mutated
// the store (the AI writer included), so access is mutex-guarded and the
// Bubble Tea model only ever holds a pointer to it.
type surface struct {
	mu        sync.Mutex
	markup    map[notes.BlockID]string
	readOnly  map[notes.BlockID]bool
	active    notes.BlockID
	hasActive bool
}

func newSurface() *surface {
	return &surface{
		markup:   make(map[notes.BlockID]string),
		readOnly: make(map[notes.BlockID]bool),
	}
}

// Markup returns the current markup for a block.
func (s *surface) Markup(id notes.BlockID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markup[id]
	return m, ok
}

// SetMarkup replaces a block's markup programmatically.
func (s *surface) SetMarkup(id notes.BlockID, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup[id] = markup
}

// ActiveBlock returns the block the user is editing, if any.
func (s *surface) ActiveBlock() (notes.BlockID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.hasActive
}

// SetReadOnly marks a block read-only to direct user edits.
func (s *surface) SetReadOnly(id notes.BlockID, readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if readOnly {
		s.readOnly[id] = true
	} else {
		delete(s.readOnly, id)
	}
}

// isReadOnly reports whether a block rejects user edits.
func (s *surface) isReadOnly(id notes.BlockID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly[id]
}

// setActive records the focused block.
func (s *surface) setActive(id notes.BlockID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	s.hasActive = true
}

// clearActive drops focus.
func (s *surface) clearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
	s.hasActive = false
}

// setLocal records markup typed by the user, without the bridge seeing
// a programmatic write.
func (s *surface) setLocal(id notes.BlockID, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup[id] = markup
}

// forget drops surface state for a block that no longer exists.
func (s *surface) forget(id notes.BlockID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markup, id)
	delete(s.readOnly, id)
	if s.active == id {
		s.active = ""
		s.hasActive = false
	}
}
