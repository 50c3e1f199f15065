// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor provides the note editing view for the TUI.
//
// This file defines keyboard bindings for the block editor.
package editor

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the block editor.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Split     key.Binding
	Indent    key.Binding
	Outdent   key.Binding
	Collapse  key.Binding
	Undo      key.Binding
	Redo      key.Binding
	Save      key.Binding
	Export    key.Binding
	AskAI     key.Binding
	Journal   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings for the editor.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous block"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next block"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-up", "move block up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-down", "move block down"),
		),
		Split: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "split block / commit menu"),
		),
		Indent: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "indent"),
		),
		Outdent: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "outdent"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle collapse"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("C-z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "redo"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export page"),
		),
		AskAI: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("C-a", "ask AI"),
		),
		Journal: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("C-j", "today's journal"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close menu / abort AI"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q", "quit"),
		),
	}
}
