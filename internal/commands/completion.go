// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// MENU ITEMS
// =============================================================================

// Item is one candidate row in an open menu.
type Item struct {
	// Label shown in the menu.
	Label string

	// Description shown alongside.
	Description string

	// Score for ranking (higher = better match).
	Score int

	// Command backs slash-menu items.
	Command *Command

	// PageID backs link-menu items for existing pages.
	PageID notes.PageID

	// Title is the page title inserted on commit.
	Title string

	// Create marks the synthetic "create page" item.
	Create bool
}

// =============================================================================
// FILTERING
// =============================================================================

// filterCommands ranks registry commands against the query. An empty
// query returns every command in menu order.
func filterCommands(reg *Registry, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))

	var items []Item
	for _, cmd := range reg.All() {
		score, ok := matchCommand(cmd, query)
		if !ok {
			continue
		}
		items = append(items, Item{
			Label:       cmd.Name,
			Description: cmd.Description,
			Score:       score,
			Command:     cmd,
		})
	}

	if query != "" {
		sortItems(items)
	}
	return items
}

// matchCommand scores a command against a lowercase query.
func matchCommand(cmd *Command, query string) (int, bool) {
	if query == "" {
		return 0, true
	}

	best := -1
	if s := calculateScore(cmd.Name, query); s >= 0 {
		best = s
	}
	for _, alias := range cmd.Aliases {
		// Aliases rank slightly below the primary name.
		if s := calculateScore(alias, query); s-10 > best && s >= 0 {
			best = s - 10
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// filterPages ranks page titles against the query. When the query is
// non-empty and no existing title matches it exactly, a synthetic
// "create page" item is appended so commit can autocreate.
func filterPages(pages []*notes.Page, query string) []Item {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	var items []Item
	exact := false
	for _, p := range pages {
		if lower != "" {
			s := calculateScore(p.Title, lower)
			if s < 0 {
				continue
			}
			if notes.NormalizePageName(p.Title) == notes.NormalizePageName(trimmed) {
				exact = true
			}
			items = append(items, Item{
				Label:  p.Title,
				Score:  s,
				PageID: p.ID,
				Title:  p.Title,
			})
			continue
		}
		items = append(items, Item{
			Label:  p.Title,
			PageID: p.ID,
			Title:  p.Title,
		})
	}

	if lower != "" {
		sortItems(items)
	}

	if trimmed != "" && !exact {
		items = append(items, Item{
			Label:       "Create \"" + trimmed + "\"",
			Description: "New page",
			Title:       trimmed,
			Create:      true,
		})
	}
	return items
}

// =============================================================================
// SCORING
// =============================================================================

// calculateScore ranks value against a lowercase query. Higher is a
// better match; negative means no match at all.
func calculateScore(value, query string) int {
	lower := strings.ToLower(value)

	switch {
	case lower == query:
		return 200
	case strings.HasPrefix(lower, query):
		// Shorter completions rank first among prefix matches.
		return 150 - len(lower)
	case strings.Contains(lower, query):
		return 100 - len(lower)
	default:
		return -1
	}
}

// sortItems orders by score (descending), then alphabetically.
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Label < items[j].Label
	})
}
