// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the skald TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderJournal lipgloss.Style

	// ==========================================================================
	// BLOCK STYLES
	// ==========================================================================

	Paragraph      lipgloss.Style
	Heading1       lipgloss.Style
	Heading2       lipgloss.Style
	Heading3       lipgloss.Style
	ListMarker     lipgloss.Style
	TodoPending    lipgloss.Style
	TodoDone       lipgloss.Style
	Quote          lipgloss.Style
	Toggle         lipgloss.Style
	ToggleMarker   lipgloss.Style
	Divider        lipgloss.Style
	Math           lipgloss.Style
	CodeBlock      lipgloss.Style
	CodeLangBadge  lipgloss.Style
	Embed          lipgloss.Style
	LinkSpan       lipgloss.Style
	ActiveLine     lipgloss.Style
	StreamingBlock lipgloss.Style
	CollapseHint   lipgloss.Style

	// ==========================================================================
	// MENU POPUP STYLES
	// ==========================================================================

	MenuPopup    lipgloss.Style
	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style
	MenuDesc     lipgloss.Style
	MenuCreate   lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusDirty  lipgloss.Style
	StatusSaved  lipgloss.Style
	StatusStream lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// MISC STYLES
	// ==========================================================================

	Spinner    lipgloss.Style
	ErrorStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
// pref chooses the palette variant: "dark", "light", or "auto" (detect).
func NewTheme(pref string) *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor

	var isDark bool
	switch pref {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderJournal = lipgloss.NewStyle().
		Foreground(Cyan).
		Italic(true)

	// Blocks
	t.Paragraph = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Heading1 = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Heading2 = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Heading3 = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ListMarker = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TodoPending = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TodoDone = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.Quote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(QuoteBar).
		PaddingLeft(1)

	t.Toggle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ToggleMarker = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	t.Math = lipgloss.NewStyle().
		Foreground(Emerald).
		Italic(true)

	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1).
		Bold(true)

	t.Embed = lipgloss.NewStyle().
		Foreground(LinkColor).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.LinkSpan = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.ActiveLine = lipgloss.NewStyle().
		Background(SurfaceDim)

	t.StreamingBlock = lipgloss.NewStyle().
		Foreground(StreamTint).
		Italic(true)

	t.CollapseHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Menu popup
	t.MenuPopup = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MenuSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true)

	t.MenuDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MenuCreate = lipgloss.NewStyle().
		Foreground(Emerald).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusDirty = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StatusSaved = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusStream = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Misc
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)
}

// Heading returns the style for a heading of the given level.
func (t *Theme) Heading(level int) lipgloss.Style {
	switch level {
	case 1:
		return t.Heading1
	case 2:
		return t.Heading2
	default:
		return t.Heading3
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
