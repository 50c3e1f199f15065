// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package editor provides the block editing view for the skald TUI.

The editor renders one page of blocks, with the focused block backed by
a live text input. Structural edits (split, merge, indent, move,
collapse) go straight to the note store; typed content flows through
the content bridge so the store, undo history, and an AI writer all see
a consistent document.

# Architecture

The Bubble Tea model owns three moving parts:

  - A surface (surface.go) holding the markup currently displayed per
    block. It implements the bridge's Surface contract and is safe to
    touch from the AI writer's goroutine.
  - The content bridge, which decides whether a change flows from the
    surface into the store (user typing) or the other way (undo, redo,
    streamed tokens).
  - A command router that turns "/" and "[[" sequences typed inside
    blocks into popup menus and committed choices into store mutations.

Store changes raised outside the key-handling path (autosave restores,
the AI writer) wake the UI through a coalesced event channel rather
than polling.

# Usage

	m := editor.New(editor.Options{
		Store:   store,
		History: history,
		Session: sess,
		Theme:   styles.NewTheme(cfg.UI.Theme),
	})
	defer m.Close()
	m.OpenJournal()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package editor
