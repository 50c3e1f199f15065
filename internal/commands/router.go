// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// MENU STATE
// =============================================================================

// Menu is the open candidate list for an active trigger. The surface
// re-feeds content and caret through Router.Update after every edit;
// the menu closes (Update returns nil) when the trigger disappears or
// the link query is closed with "]]".
type Menu struct {
	// Kind of trigger backing the menu.
	Kind TriggerKind

	// BlockID is the block the trigger lives in.
	BlockID notes.BlockID

	// Trigger is the detected sequence and current query.
	Trigger Trigger

	// Items are the ranked candidates.
	Items []Item

	// Selected is the highlighted row index.
	Selected int

	// embed routes link commits to embed properties instead of content.
	embed bool
}

// Next moves the highlight down, wrapping.
func (m *Menu) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.Selected = (m.Selected + 1) % len(m.Items)
}

// Prev moves the highlight up, wrapping.
func (m *Menu) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.Selected--
	if m.Selected < 0 {
		m.Selected = len(m.Items) - 1
	}
}

// Current returns the highlighted item, or nil when the list is empty.
func (m *Menu) Current() *Item {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	return &m.Items[m.Selected]
}

// =============================================================================
// ROUTER
// =============================================================================

// Router turns trigger sequences typed inside blocks into menus, and
// committed menu choices into store mutations.
type Router struct {
	store    *notes.Store
	registry *Registry
}

// NewRouter creates a router over the given store with the built-in
// command registry.
func NewRouter(store *notes.Store) *Router {
	return &Router{
		store:    store,
		registry: NewRegistry(),
	}
}

// Registry exposes the command registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Update recomputes menu state for the block's current content and
// caret. Pass the previous menu (or nil); the return value replaces
// it. Nil means no menu is open. The highlight survives refiltering
// when the same query prefix keeps it in range, and resets to the top
// when the query changes.
func (r *Router) Update(blockID notes.BlockID, content string, caret int, prev *Menu) *Menu {
	trig, ok := DetectTrigger(content, caret)
	if !ok {
		return nil
	}

	m := &Menu{
		Kind:    trig.Kind,
		BlockID: blockID,
		Trigger: trig,
	}
	if prev != nil && prev.Kind == trig.Kind && prev.BlockID == blockID && prev.Trigger.Start == trig.Start {
		m.embed = prev.embed
		if prev.Trigger.Query == trig.Query {
			m.Selected = prev.Selected
		}
	}

	switch trig.Kind {
	case TriggerSlash:
		m.Items = filterCommands(r.registry, trig.Query)
	case TriggerPageLink:
		m.Items = filterPages(r.store.Pages(), trig.Query)
	}

	if m.Selected >= len(m.Items) {
		m.Selected = 0
	}
	return m
}

// OpenEmbedPicker opens a link menu whose commit sets embed properties
// rather than editing content. Used after a block becomes an embed.
func (r *Router) OpenEmbedPicker(blockID notes.BlockID, content string, caret int) *Menu {
	m := r.Update(blockID, content, caret, nil)
	if m != nil && m.Kind == TriggerPageLink {
		m.embed = true
	}
	return m
}

// =============================================================================
// COMMIT
// =============================================================================

// Commit applies the highlighted menu item against the block's current
// content. It returns the replacement content, the new caret position,
// and the follow-up menu when the choice chains into the link picker
// ("page link" and "embed page"). A nil menu or empty candidate list
// is a no-op returning the input unchanged.
func (r *Router) Commit(m *Menu, content string, caret int) (string, int, *Menu) {
	if m == nil {
		return content, caret, nil
	}
	if caret < m.Trigger.Start || caret > len(content) {
		return content, caret, nil
	}
	item := m.Current()
	if item == nil {
		return content, caret, nil
	}

	switch m.Kind {
	case TriggerSlash:
		return r.commitCommand(m, item, content, caret)
	case TriggerPageLink:
		return r.commitLink(m, item, content, caret)
	}
	return content, caret, nil
}

// commitCommand strips the trigger-and-query text and applies the
// chosen command.
func (r *Router) commitCommand(m *Menu, item *Item, content string, caret int) (string, int, *Menu) {
	cmd := item.Command
	if cmd == nil {
		return content, caret, nil
	}
	head := content[:m.Trigger.Start]
	tail := content[caret:]

	switch cmd.Kind {
	case KindChangeType:
		next := head + tail
		r.store.CommitTypeChange(m.BlockID, cmd.Type, cmd.Properties, next)
		return next, m.Trigger.Start, nil

	case KindPageLink:
		next := head + "[[" + tail
		r.store.UpdateContent(m.BlockID, next)
		pos := m.Trigger.Start + 2
		return next, pos, r.Update(m.BlockID, next, pos, nil)

	case KindEmbedPage:
		// Become an embed, then pick the target. The open "[[" keeps
		// the picker query tracked through normal content edits until
		// the link commit clears it.
		next := head + "[[" + tail
		r.store.CommitTypeChange(m.BlockID, notes.TypeEmbed, nil, next)
		pos := m.Trigger.Start + 2
		return next, pos, r.OpenEmbedPicker(m.BlockID, next, pos)
	}
	return content, caret, nil
}

// commitLink resolves the chosen page (creating it for the synthetic
// item) and either inserts "[[Title]]" markup or, for embeds, sets the
// embed target properties and clears the picker text.
func (r *Router) commitLink(m *Menu, item *Item, content string, caret int) (string, int, *Menu) {
	if item.Title == "" {
		return content, caret, nil
	}

	page := r.resolveItem(item)
	if page == nil {
		return content, caret, nil
	}

	head := content[:m.Trigger.Start]
	tail := content[caret:]

	if m.embed {
		next := head + tail
		r.store.CommitTypeChange(m.BlockID, notes.TypeEmbed, map[string]string{
			notes.PropEmbedPageID:    string(page.ID),
			notes.PropEmbedPageTitle: page.Title,
		}, next)
		return next, m.Trigger.Start, nil
	}

	link := "[[" + page.Title + "]]"
	next := head + link + tail
	r.store.UpdateContent(m.BlockID, next)
	return next, m.Trigger.Start + len(link), nil
}

// resolveItem maps a link item to a page, autocreating for the
// synthetic "create page" entry.
func (r *Router) resolveItem(item *Item) *notes.Page {
	if item.Create {
		return r.store.ResolvePage(item.Title)
	}
	if p, ok := r.store.Page(item.PageID); ok {
		return p
	}
	// The page vanished between filtering and commit; fall back to
	// resolve-by-title so the link still lands somewhere.
	return r.store.ResolvePage(item.Title)
}
