// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

// =============================================================================
// VISIBILITY
// =============================================================================
//
// Two independent hiding mechanisms apply to a page:
//
//   - A collapsed heading hides everything after it until the next heading
//     of equal or lower level ("collapse cascade").
//   - A collapsed toggle hides its direct and transitive children only.
//
// Ancestor hiding propagates to all descendants regardless of type: once a
// block is hidden, so is its whole subtree.

// Visible filters a document-ordered block list (parents before
// descendants, siblings in order) down to the blocks that should currently
// render. One forward pass, deterministic, idempotent: recomputing on an
// unchanged list yields an identical result.
func Visible(doc []*Block) []*Block {
	hidden := make(map[BlockID]bool, len(doc))
	byID := make(map[BlockID]*Block, len(doc))
	for _, b := range doc {
		byID[b.ID] = b
	}

	// hiddenUntilLevel > 0 means "inside a collapsed heading section of
	// that level"; -1 means not inside one.
	hiddenUntilLevel := -1

	out := make([]*Block, 0, len(doc))
	for _, b := range doc {
		if b.ParentID != nil && hidden[*b.ParentID] {
			hidden[b.ID] = true
			continue
		}
		if b.ParentID != nil {
			if parent, ok := byID[*b.ParentID]; ok && parent.Type == TypeToggle && parent.Collapsed {
				hidden[b.ID] = true
				continue
			}
		}
		if b.Type == TypeHeading {
			level := b.HeadingLevel()
			if hiddenUntilLevel > 0 {
				if level > hiddenUntilLevel {
					hidden[b.ID] = true
					continue
				}
				// A heading of equal or lower level ends the collapsed
				// section and is itself visible.
				hiddenUntilLevel = -1
			}
			if b.Collapsed {
				hiddenUntilLevel = level
			}
			out = append(out, b)
			continue
		}
		if hiddenUntilLevel > 0 {
			hidden[b.ID] = true
			continue
		}
		out = append(out, b)
	}
	return out
}
