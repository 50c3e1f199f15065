// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// MARKDOWN PREFIX SHORTCUTS
// =============================================================================

// Shortcut is a block conversion selected by typing a markdown prefix at
// the start of a paragraph, without opening the command menu.
type Shortcut struct {
	Type       notes.BlockType
	Properties map[string]string
}

// prefixShortcuts maps a literal prefix (including its terminating space)
// to the conversion it selects. Numbered lists are handled separately
// because the digits vary.
var prefixShortcuts = map[string]Shortcut{
	"# ":   {Type: notes.TypeHeading, Properties: map[string]string{notes.PropLevel: "1"}},
	"## ":  {Type: notes.TypeHeading, Properties: map[string]string{notes.PropLevel: "2"}},
	"### ": {Type: notes.TypeHeading, Properties: map[string]string{notes.PropLevel: "3"}},
	"- ":   {Type: notes.TypeListItem},
	"[] ":  {Type: notes.TypeTodo},
	"> ":   {Type: notes.TypeQuote},
}

// DetectShortcut reports the markdown prefix conversion for content being
// typed into a paragraph. The prefix must sit at the very start of the
// block and the caret must be immediately after its terminating space, so
// the conversion fires on the space keystroke and never against pasted or
// revisited text deeper in the line. Returns the shortcut and the content
// with the prefix stripped.
func DetectShortcut(content string, caret int) (Shortcut, string, bool) {
	for prefix, sc := range prefixShortcuts {
		if strings.HasPrefix(content, prefix) && caret == len(prefix) {
			props := clonePropMap(sc.Properties)
			return Shortcut{Type: sc.Type, Properties: props}, content[len(prefix):], true
		}
	}
	if n := numberedPrefixLen(content); n > 0 && caret == n {
		return Shortcut{Type: notes.TypeNumberedItem}, content[n:], true
	}
	return Shortcut{}, "", false
}

// numberedPrefixLen returns the byte length of a "1. "-style prefix at the
// start of content, or 0 when there is none. Any digit run qualifies; the
// rendered number is positional.
func numberedPrefixLen(content string) int {
	i := 0
	for i < len(content) && content[i] >= '0' && content[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(content[i:], ". ") {
		return 0
	}
	return i + 2
}

func clonePropMap(props map[string]string) map[string]string {
	if props == nil {
		return nil
	}
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return cp
}
