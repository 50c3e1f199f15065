// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import (
	"sort"
	"strings"
)

// =============================================================================
// ORDER KEY ALLOCATION
// =============================================================================
//
// Sibling order keys are fractional indexes: nonempty base-36 digit strings
// interpreted as a fraction 0.d1d2d3... in [0, 1). Plain lexicographic
// comparison of two keys equals numeric comparison of the fractions, and a
// key strictly between any two existing keys always exists, so inserting a
// block never renumbers its siblings. Generated keys never end with the
// minimal digit '0', which guarantees room below every key.

// orderAlphabet is the digit set for order keys, in ascending order.
const orderAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const orderBase = len(orderAlphabet)

// orderDigit returns the digit value at position i, treating positions past
// the end of the key as the implicit minimal digit.
func orderDigit(key string, i int) int {
	if i >= len(key) {
		return 0
	}
	return strings.IndexByte(orderAlphabet, key[i])
}

// KeyBetween returns an order key strictly between a and b.
//
// An empty a means "before everything" and an empty b means "after
// everything"; KeyBetween("", "") yields the key for the first block of a
// sibling group. When both bounds are set the caller must ensure a < b;
// keys are only ever generated between adjacent siblings, so the invariant
// holds by construction.
func KeyBetween(a, b string) string {
	var sb strings.Builder
	for i := 0; ; i++ {
		da := orderDigit(a, i)
		db := orderBase
		if b != "" {
			db = orderDigit(b, i)
		}
		switch {
		case da == db:
			// Shared prefix digit, keep scanning.
			sb.WriteByte(orderAlphabet[da])
		case db-da >= 2:
			sb.WriteByte(orderAlphabet[(da+db)/2])
			return sb.String()
		default:
			// Adjacent digits: keep a's digit (locks result < b), then
			// climb a's tail until a digit can be exceeded.
			sb.WriteByte(orderAlphabet[da])
			for j := i + 1; ; j++ {
				d := orderDigit(a, j)
				if d == orderBase-1 {
					sb.WriteByte(orderAlphabet[d])
					continue
				}
				sb.WriteByte(orderAlphabet[(d+orderBase)/2])
				return sb.String()
			}
		}
	}
}

// =============================================================================
// SIBLING COMPARISON
// =============================================================================

// CompareBlocks orders two sibling blocks. Order keys decide; the block ID
// breaks ties deterministically so two blocks created back-to-back before a
// re-render never depend on map iteration order.
func CompareBlocks(a, b *Block) int {
	if c := strings.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return strings.Compare(string(a.ID), string(b.ID))
}

// SortSiblings sorts a sibling group in place into visual order.
func SortSiblings(blocks []*Block) {
	sort.Slice(blocks, func(i, j int) bool {
		return CompareBlocks(blocks[i], blocks[j]) < 0
	})
}
