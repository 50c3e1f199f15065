// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the skald TUI.

This package defines the complete color palette, block typography, and
animation system used throughout the application. All colors use Lip Gloss
AdaptiveColor for automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for headings and selections
  - Cyan - Brand color for links and command triggers
  - Emerald - Success states and completed todos
  - Amber - Warnings and caution callouts
  - Rose - Errors and critical callouts

## Surface Colors

Layered surface system for depth:

	Surface    - Main background
	SurfaceDim - Subtle backgrounds (headers, status bars, code)
	Overlay    - Borders and separators

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct provides runtime color adaptation and holds a named style
for every block type the editor renders:

	theme := styles.NewTheme("auto")
	if theme.IsDark {
		// Dark terminal detected
	}
	line := theme.Heading(2).Render("Section title")

# Animation System (animations.go)

Pre-defined spinner styles for the AI writer indicator:

	LineSpinner - Simple line rotation
	DotsSpinner - Classic three-dot animation

# Usage Example

	import "github.com/skaldhq/skald-tui/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)
*/
package styles
