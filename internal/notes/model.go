// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PageID uniquely identifies a page.
type PageID string

// BlockID uniquely identifies a block.
type BlockID string

// NewPageID generates a new random page ID.
func NewPageID() PageID {
	return PageID(uuid.NewString())
}

// NewBlockID generates a new random block ID.
func NewBlockID() BlockID {
	return BlockID(uuid.NewString())
}

// =============================================================================
// BLOCK TYPES
// =============================================================================

// BlockType is the kind of content a block holds.
type BlockType string

const (
	TypeParagraph    BlockType = "paragraph"
	TypeHeading      BlockType = "heading"
	TypeListItem     BlockType = "list-item"
	TypeNumberedItem BlockType = "numbered-item"
	TypeTodo         BlockType = "todo"
	TypeQuote        BlockType = "quote"
	TypeCallout      BlockType = "callout"
	TypeCode         BlockType = "code"
	TypeMath         BlockType = "math"
	TypeToggle       BlockType = "toggle"
	TypeDivider      BlockType = "divider"
	TypeEmbed        BlockType = "embed"
)

// Property keys used in Block.Properties. Values are always strings;
// numeric and boolean properties are stored in their decimal/"true"/"false"
// representation.
const (
	PropLevel          = "level"          // heading level: "1".."3"
	PropChecked        = "checked"        // todo state: "true"/"false"
	PropLanguage       = "language"       // code fence language
	PropKind           = "kind"           // callout kind: "info", "warn", ...
	PropEmbedPageID    = "embedPageId"    // embed target page
	PropEmbedPageTitle = "embedPageTitle" // embed target display title
)

// Collapsible reports whether the collapsed flag is meaningful for this
// type. Collapsed is ignored on every other type.
func (t BlockType) Collapsible() bool {
	return t == TypeHeading || t == TypeToggle
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case TypeParagraph, TypeHeading, TypeListItem, TypeNumberedItem,
		TypeTodo, TypeQuote, TypeCallout, TypeCode, TypeMath,
		TypeToggle, TypeDivider, TypeEmbed:
		return true
	}
	return false
}

// =============================================================================
// PAGE
// =============================================================================

// Page is a named container of blocks. Name is the normalized lookup key;
// Title is what renders. Journal pages are date-keyed and created by the
// journal navigation rather than by explicit user action.
type Page struct {
	ID        PageID    `json:"id"`
	Title     string    `json:"title"`
	Name      string    `json:"name"`
	IsJournal bool      `json:"is_journal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizePageName converts a display title into the normalized lookup
// key: NFC-normalized, lowercased, with whitespace runs collapsed to a
// single hyphen. Two titles that normalize to the same name refer to the
// same page.
func NormalizePageName(title string) string {
	s := norm.NFC.String(title)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

// Clone returns a copy of the page.
func (p *Page) Clone() *Page {
	cp := *p
	return &cp
}

// =============================================================================
// BLOCK
// =============================================================================

// Block is the atomic typed content unit of a page.
//
// ParentID of nil means top-level. Order is an opaque string key that
// establishes sibling sequence (see order.go); sorting a sibling group by
// (Order, ID) always yields the visual order. Indent is the visual nesting
// depth used by flat render lists and changes only through indent/outdent.
type Block struct {
	ID         BlockID           `json:"id"`
	PageID     PageID            `json:"page_id"`
	ParentID   *BlockID          `json:"parent_id,omitempty"`
	Order      string            `json:"order"`
	Type       BlockType         `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    string            `json:"content"`
	Indent     int               `json:"indent"`
	Collapsed  bool              `json:"collapsed"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	cp := *b
	if b.ParentID != nil {
		pid := *b.ParentID
		cp.ParentID = &pid
	}
	if b.Properties != nil {
		cp.Properties = make(map[string]string, len(b.Properties))
		for k, v := range b.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}

// HeadingLevel returns the heading level for heading blocks, defaulting to
// 1 when the property is missing or unparseable. Returns 0 for non-heading
// blocks.
func (b *Block) HeadingLevel() int {
	if b.Type != TypeHeading {
		return 0
	}
	lvl, err := strconv.Atoi(b.Properties[PropLevel])
	if err != nil || lvl < 1 {
		return 1
	}
	return lvl
}

// Prop returns the named property, or "" when unset.
func (b *Block) Prop(key string) string {
	if b.Properties == nil {
		return ""
	}
	return b.Properties[key]
}

// Checked reports the todo checked state.
func (b *Block) Checked() bool {
	return b.Prop(PropChecked) == "true"
}
