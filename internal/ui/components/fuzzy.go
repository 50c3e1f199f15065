// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "strings"

// =============================================================================
// MATCH HIGHLIGHTING
// =============================================================================

// HighlightMatch returns the rune positions in target where the query's
// characters land, scanning left to right case-insensitively. Menu lists
// use the positions to bold the matched characters; ranking itself is
// owned by the command router.
func HighlightMatch(query, target string) (positions []int) {
	if query == "" {
		return nil
	}

	queryRunes := []rune(strings.ToLower(query))
	targetRunes := []rune(strings.ToLower(target))

	queryPos := 0
	for targetPos := 0; targetPos < len(targetRunes) && queryPos < len(queryRunes); targetPos++ {
		if targetRunes[targetPos] == queryRunes[queryPos] {
			positions = append(positions, targetPos)
			queryPos++
		}
	}

	return positions
}
