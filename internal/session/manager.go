// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/util"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks editing activity and decides when to autosave.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool

	onAutoSave func() error

	cancelSub func()
}

// Config holds configuration for the session manager.
type Config struct {
	// AutoSaveEnabled enables automatic saving.
	AutoSaveEnabled bool

	// AutoSaveInterval is the minimum time between autosaves
	// (default: 3 seconds). Saves only happen while dirty, so an idle
	// session writes nothing.
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AutoSaveEnabled:  true,
		AutoSaveInterval: 3 * time.Second,
	}
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = 3 * time.Second
	}
	now := time.Now()
	return &Manager{
		sessionID:        generateSessionID(),
		startTime:        now,
		lastActivity:     now,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}
}

// Attach subscribes the manager to store mutations: every event marks
// the session dirty. Detach with Close.
func (m *Manager) Attach(store *notes.Store) {
	cancel := store.Subscribe(func(notes.Event) {
		m.MarkDirty()
	})
	m.mu.Lock()
	m.cancelSub = cancel
	m.mu.Unlock()
}

// Close detaches from the store.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancelSub
	m.cancelSub = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// RecordActivity updates the last activity timestamp.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
}

// MarkDirty indicates there are unsaved changes.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = true
	m.lastActivity = time.Now()
}

// MarkClean indicates changes have been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether there are unsaved changes.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// AUTOSAVE
// =============================================================================

// SetAutoSaveCallback sets the function invoked to save.
func (m *Manager) SetAutoSaveCallback(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAutoSave = fn
}

// SetAutoSaveInterval updates the autosave interval.
func (m *Manager) SetAutoSaveInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.autoSaveInterval = d
	}
}

// ShouldAutoSave returns true when a save is due: dirty, enabled, and
// past the debounce interval.
func (m *Manager) ShouldAutoSave() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.autoSaveEnabled || !m.isDirty {
		return false
	}
	return time.Since(m.lastAutoSave) >= m.autoSaveInterval
}

// Check runs an autosave if one is due. The callback runs outside the
// lock; the dirty flag clears only when it succeeds, so a failed save
// retries on the next tick.
func (m *Manager) Check() {
	m.mu.Lock()
	due := m.autoSaveEnabled && m.isDirty &&
		time.Since(m.lastAutoSave) >= m.autoSaveInterval
	onAutoSave := m.onAutoSave
	m.mu.Unlock()

	if due && onAutoSave != nil {
		if err := onAutoSave(); err == nil {
			m.MarkClean()
		}
	}
}

// Flush saves immediately if dirty, regardless of the interval. Used
// on shutdown.
func (m *Manager) Flush() error {
	m.mu.Lock()
	dirty := m.isDirty
	onAutoSave := m.onAutoSave
	m.mu.Unlock()

	if !dirty || onAutoSave == nil {
		return nil
	}
	if err := onAutoSave(); err != nil {
		return err
	}
	m.MarkClean()
	return nil
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// AutoSaveMsg indicates an autosave should occur.
type AutoSaveMsg struct{}

// TickCmd returns a command that ticks once a second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick: emits AutoSaveMsg when a save is due
// and reschedules the next tick.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	if m.ShouldAutoSave() {
		cmds = append(cmds, func() tea.Msg {
			return AutoSaveMsg{}
		})
	}

	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + time.Now().Format("20060102_150405")
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
