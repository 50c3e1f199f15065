// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// TRIGGER DETECTION
// =============================================================================

// TriggerKind identifies which menu a trigger sequence opens.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerSlash
	TriggerPageLink
)

// Trigger is an active trigger sequence found in block content.
type Trigger struct {
	// Kind of menu the sequence opens.
	Kind TriggerKind

	// Start is the byte offset of the trigger sequence ("/" or "[[").
	Start int

	// Query is the text between the trigger and the caret.
	Query string
}

// DetectTrigger scans the content before the caret for the innermost
// active trigger sequence. A "[[" wins over "/" when both are open,
// since link queries may legally contain slashes. Returns false when
// no trigger is active, including when a link query has already been
// closed with "]]".
func DetectTrigger(content string, caret int) (Trigger, bool) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(content) {
		caret = len(content)
	}
	before := content[:caret]

	if t, ok := detectPageLink(before); ok {
		return t, true
	}
	if t, ok := detectSlash(before); ok {
		return t, true
	}
	return Trigger{}, false
}

// detectPageLink finds an unclosed "[[" before the caret.
func detectPageLink(before string) (Trigger, bool) {
	start := strings.LastIndex(before, "[[")
	if start < 0 {
		return Trigger{}, false
	}
	query := before[start+2:]
	// A completed or abandoned link is no longer a trigger.
	if strings.Contains(query, "]]") || strings.ContainsRune(query, '\n') {
		return Trigger{}, false
	}
	return Trigger{Kind: TriggerPageLink, Start: start, Query: query}, true
}

// detectSlash finds a "/" at the start of the block or after whitespace.
// Tag delimiters like "</b>" never qualify: the slash must follow
// nothing or a space, not arbitrary text.
func detectSlash(before string) (Trigger, bool) {
	start := strings.LastIndex(before, "/")
	if start < 0 {
		return Trigger{}, false
	}
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(before[:start])
		if !unicode.IsSpace(prev) {
			return Trigger{}, false
		}
	}
	query := before[start+1:]
	if strings.ContainsRune(query, '\n') {
		return Trigger{}, false
	}
	return Trigger{Kind: TriggerSlash, Start: start, Query: query}, true
}
