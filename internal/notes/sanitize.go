// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import "strings"

// =============================================================================
// INLINE MARKUP SANITIZATION
// =============================================================================
//
// Stored block content is never arbitrary trusted markup. It belongs to a
// fixed inline subset — bold, italic, underline, strike, code, mark — plus
// plain-text [[Title]] link tokens. Everything else is stripped at the
// sync-bridge boundary before it reaches the store, keeping the invariant
// that nothing outside the subset is ever stored.

// inlineTags is the allowed inline tag set. Tag attributes are always
// dropped; only the bare open/close forms are stored.
var inlineTags = map[string]bool{
	"b":    true,
	"i":    true,
	"u":    true,
	"s":    true,
	"code": true,
	"mark": true,
}

// tagAliases maps editing-surface synonyms onto the canonical stored tag.
var tagAliases = map[string]string{
	"strong": "b",
	"em":     "i",
	"strike": "s",
	"del":    "s",
}

// SanitizeInline reduces markup to the allowed inline subset. Unknown tags
// are stripped while their inner text is kept; attributes on allowed tags
// are dropped; a '<' that never closes is literal text.
func SanitizeInline(markup string) string {
	if !strings.ContainsRune(markup, '<') {
		return markup
	}
	var sb strings.Builder
	sb.Grow(len(markup))
	for i := 0; i < len(markup); {
		c := markup[i]
		if c != '<' {
			sb.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(markup[i:], '>')
		if end < 0 {
			sb.WriteString(markup[i:])
			break
		}
		inner := markup[i+1 : i+end]
		i += end + 1

		closing := strings.HasPrefix(inner, "/")
		name := strings.TrimPrefix(inner, "/")
		if sp := strings.IndexAny(name, " \t/"); sp >= 0 {
			name = name[:sp]
		}
		name = strings.ToLower(name)
		if canonical, ok := tagAliases[name]; ok {
			name = canonical
		}
		if !inlineTags[name] {
			continue
		}
		if closing {
			sb.WriteString("</" + name + ">")
		} else {
			sb.WriteString("<" + name + ">")
		}
	}
	return sb.String()
}

// NormalizeSurfaceMarkup collapses an editing surface's "empty"
// representations — zero-width spaces, lone break tags, whitespace-only
// runs — to the canonical empty string, then sanitizes.
func NormalizeSurfaceMarkup(markup string) string {
	s := strings.ReplaceAll(markup, "​", "")
	stripped := s
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		stripped = strings.ReplaceAll(stripped, br, "")
	}
	if strings.TrimSpace(stripped) == "" {
		return ""
	}
	return SanitizeInline(s)
}
