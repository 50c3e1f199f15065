// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skaldhq/skald-tui/internal/export"
	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/session"
)

// timeNow is swappable in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// storeChangedMsg signals that the store mutated since the last render.
// Events are coalesced; one message may cover many mutations.
type storeChangedMsg struct{}

// savedMsg reports the outcome of a manual save.
type savedMsg struct {
	Err error
}

// exportedMsg reports the outcome of a page export.
type exportedMsg struct {
	Path string
	Err  error
}

// clearStatusMsg clears the transient status line.
type clearStatusMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForStoreEvent blocks until the store notifies, then wakes the UI.
func waitForStoreEvent(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

// saveCmd flushes the session through its autosave callback.
func saveCmd(sess *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{Err: sess.Flush()}
	}
}

// exportCmd writes the page as Markdown into dir.
func exportCmd(page *notes.Page, blocks []*notes.Block, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportToFile(page, blocks, export.NewMarkdownExporter(opts), opts)
		return exportedMsg{Path: path, Err: err}
	}
}

// clearStatusCmd clears the status line after a short delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
