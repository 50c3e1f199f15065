// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor provides the note editing view for the TUI.
package editor

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skaldhq/skald-tui/internal/commands"
	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/notes/bridge"
	"github.com/skaldhq/skald-tui/internal/session"
	"github.com/skaldhq/skald-tui/internal/ui/components"
	"github.com/skaldhq/skald-tui/internal/ui/styles"
	"github.com/skaldhq/skald-tui/internal/writer"
)

// =============================================================================
// EDITOR MODEL
// =============================================================================

// Model is the Bubble Tea model for the block editor.
type Model struct {
	// Document state
	store   *notes.Store
	history *notes.History
	page    *notes.Page

	// Content bridge and its surface
	surface *surface
	bridge  *bridge.Bridge

	// AI writer (nil when no source is configured)
	writer *writer.Writer

	// Command and link menus
	router *commands.Router
	menu   *commands.Menu

	// Session state
	sess *session.Manager

	// Export destination for Ctrl+E
	exportDir string

	// Styling
	theme *styles.Theme

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	statusBar *components.StatusBar
	spinner   components.InlineSpinner

	// Key bindings
	keys KeyMap

	// Store change notifications, coalesced
	events    chan struct{}
	cancelSub func()

	// Dimensions
	width  int
	height int
	ready  bool

	// Transient status line
	statusMsg string
	errMsg    string

	quitting bool
}

// Options configures the editor model.
type Options struct {
	Store     *notes.Store
	History   *notes.History
	Session   *session.Manager
	Theme     *styles.Theme
	ExportDir string

	// WriterSource enables the AI writer when non-nil.
	WriterSource writer.Source
	WriterConfig writer.Config
}

// New creates an editor model over the given store. The model owns the
// surface and the content bridge; the AI writer is wired over the same
// bridge when a source is configured.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	surf := newSurface()
	br := bridge.New(opts.Store, surf)

	var w *writer.Writer
	if opts.WriterSource != nil {
		w = writer.New(opts.Store, br, opts.WriterSource, opts.WriterConfig)
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.TextStyle = lipgloss.NewStyle()
	ti.Focus()

	vp := viewport.New(80, 20)

	m := &Model{
		store:     opts.Store,
		history:   opts.History,
		surface:   surf,
		bridge:    br,
		writer:    w,
		router:    commands.NewRouter(opts.Store),
		sess:      opts.Session,
		exportDir: opts.ExportDir,
		theme:     theme,
		viewport:  vp,
		input:     ti,
		statusBar: components.NewStatusBar(theme),
		spinner:   components.NewInlineSpinner(),
		keys:      DefaultKeyMap(),
		events:    make(chan struct{}, 1),
		width:     80,
		height:    24,
	}

	m.cancelSub = opts.Store.Subscribe(func(notes.Event) {
		select {
		case m.events <- struct{}{}:
		default:
		}
	})

	return m
}

// Close releases the bridge and the store subscription.
func (m *Model) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
		m.cancelSub = nil
	}
	m.bridge.Close()
}

// OpenPage switches the editor to a page and focuses its first block.
// An empty page gets a starter paragraph so there is always somewhere
// to type.
func (m *Model) OpenPage(id notes.PageID) {
	page, ok := m.store.Page(id)
	if !ok {
		return
	}
	m.page = page
	m.menu = nil

	blocks := m.store.VisibleBlocks(id)
	if len(blocks) == 0 {
		blockID, err := m.store.CreateBlock(id, nil, nil, "", notes.TypeParagraph, nil)
		if err == nil {
			m.focusBlock(blockID)
		}
		return
	}
	m.focusBlock(blocks[0].ID)
}

// OpenJournal switches to today's journal page, creating it on first
// use.
func (m *Model) OpenJournal() {
	page := m.store.JournalPage(timeNow())
	m.OpenPage(page.ID)
}

// Page returns the currently open page, nil when none.
func (m *Model) Page() *notes.Page {
	return m.page
}

// focusBlock makes a block the active editing target and loads its
// content into the input.
func (m *Model) focusBlock(id notes.BlockID) {
	m.surface.setActive(id)
	content := m.store.BlockContent(id)
	m.surface.setLocal(id, content)
	m.input.SetValue(content)
	m.input.CursorEnd()
}

// activeBlock returns the focused block, nil when none or vanished.
func (m *Model) activeBlock() *notes.Block {
	id, ok := m.surface.ActiveBlock()
	if !ok {
		return nil
	}
	b, ok := m.store.Block(id)
	if !ok {
		return nil
	}
	return b
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		session.TickCmd(),
		waitForStoreEvent(m.events),
	)
}
