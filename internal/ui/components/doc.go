// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the skald TUI.

This package contains styled components built on top of the Bubble Tea and
Lip Gloss libraries, shared by the note editor view.

# Components

StatusBar (statusbar.go) - Bottom status bar with page title, save state,
block counts, and keyboard shortcuts.

CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma, with
line numbers and a language badge. Highlight exposes the raw highlighting
step for callers that do their own framing.

Spinner (spinner.go) - Animated spinner with message and elapsed timer;
InlineSpinner is the minimal variant used in the status bar.

Match highlighting (fuzzy.go) - HighlightMatch locates query characters in
menu labels so the command and page-link menus can bold them.

# Theme Integration

Components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme("auto")
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetPage("Meeting Notes", false)
	view := bar.View()
*/
package components
