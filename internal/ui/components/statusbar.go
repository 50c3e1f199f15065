// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skaldhq/skald-tui/internal/ui/styles"
	"github.com/skaldhq/skald-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar for the note editor
// =============================================================================

// Status represents the current editor status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusSaving
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Writing..."
	case StatusSaving:
		return "Saving..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusSaving:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar of the note editor.
type StatusBar struct {
	PageTitle     string // Active page title
	IsJournal     bool   // Whether the page is a journal page
	Dirty         bool   // Unsaved changes present
	SavedAgo      string // Human-readable time since last save ("" if never)
	BlockCount    int    // Total blocks on the page
	VisibleCount  int    // Blocks currently visible
	Status        Status // Current status
	Width         int    // Available width
	ShowShortcuts bool   // Show keyboard shortcuts
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetPage updates the page title and journal flag.
func (s *StatusBar) SetPage(title string, journal bool) {
	s.PageTitle = title
	s.IsJournal = journal
}

// SetSaveState updates the dirty flag and the last-save label.
func (s *StatusBar) SetSaveState(dirty bool, savedAgo string) {
	s.Dirty = dirty
	s.SavedAgo = savedAgo
}

// SetBlockCounts updates the block count display.
func (s *StatusBar) SetBlockCounts(total, visible int) {
	s.BlockCount = total
	s.VisibleCount = visible
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: Title [*] Status
func (s *StatusBar) viewNarrow() string {
	title := util.TruncateWidth(s.PageTitle, s.Width/2)
	parts := []string{s.theme.HeaderTitle.Render(title)}

	parts = append(parts, s.renderSaveIndicator())
	parts = append(parts, s.renderStatus())

	bar := strings.Join(parts, " ")
	return s.theme.StatusBar.Width(s.Width).Render(bar)
}

// viewWide renders the full status bar with block counts and shortcuts.
func (s *StatusBar) viewWide() string {
	var left []string

	title := util.TruncateWidth(s.PageTitle, s.Width/3)
	if s.IsJournal {
		left = append(left, s.theme.HeaderJournal.Render("journal"))
	}
	left = append(left, s.theme.HeaderTitle.Render(title))
	left = append(left, s.renderSaveIndicator())
	left = append(left, s.renderStatus())

	if s.BlockCount > 0 {
		count := util.IntToString(s.VisibleCount) + "/" + util.IntToString(s.BlockCount)
		left = append(left, lipgloss.NewStyle().Foreground(styles.TextMuted).Render(count))
	}

	leftStr := strings.Join(left, " ")

	var rightStr string
	if s.ShowShortcuts {
		rightStr = s.renderShortcuts()
	}

	// Pad the middle so shortcuts sit flush right.
	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr)
	if gap < 1 {
		rightStr = ""
		gap = s.Width - lipgloss.Width(leftStr)
		if gap < 0 {
			gap = 0
		}
	}

	return s.theme.StatusBar.Width(s.Width).Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}

// renderSaveIndicator renders the dirty marker or last-save label.
func (s *StatusBar) renderSaveIndicator() string {
	if s.Dirty {
		return s.theme.StatusDirty.Render("*")
	}
	if s.SavedAgo != "" {
		return s.theme.StatusSaved.Render("saved " + s.SavedAgo)
	}
	return s.theme.StatusSaved.Render(styles.StatusIndicators.Success)
}

// renderStatus renders the status icon only when something is in flight.
func (s *StatusBar) renderStatus() string {
	switch s.Status {
	case StatusStreaming:
		return s.theme.StatusStream.Render(s.Status.Icon() + " " + s.Status.String())
	case StatusSaving:
		return s.theme.StatusSaved.Render(s.Status.String())
	case StatusError:
		return s.theme.ErrorStyle.Render(s.Status.Icon() + " " + s.Status.String())
	default:
		return ""
	}
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"/", "commands"},
		{"[[", "link"},
		{"tab", "indent"},
		{"^z", "undo"},
		{"^q", "quit"},
	}

	var parts []string
	for _, sc := range shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.key)+" "+s.theme.ShortcutDesc.Render(sc.desc))
	}
	return strings.Join(parts, "  ")
}
