// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/skaldhq/skald-tui/internal/notes"
)

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m.SessionID() == "" {
		t.Error("SessionID should not be empty")
	}
	if m.IsDirty() {
		t.Error("new session should be clean")
	}
}

func TestMarkDirtyClean(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.MarkDirty()
	if !m.IsDirty() {
		t.Error("should be dirty after MarkDirty")
	}

	m.MarkClean()
	if m.IsDirty() {
		t.Error("should be clean after MarkClean")
	}
}

func TestAttachMarksDirtyOnStoreMutation(t *testing.T) {
	store := notes.NewStore()
	page := store.CreatePage("Notes", false)

	m := NewManager(DefaultConfig())
	m.Attach(store)
	defer m.Close()

	m.MarkClean()

	if _, err := store.CreateBlock(page.ID, nil, nil, "hello", notes.TypeParagraph, nil); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if !m.IsDirty() {
		t.Error("store mutation should mark the session dirty")
	}

	// After Close, mutations no longer reach the manager.
	m.Close()
	m.MarkClean()
	store.CreatePage("Another", false)
	if m.IsDirty() {
		t.Error("detached manager should stay clean")
	}
}

func TestShouldAutoSave(t *testing.T) {
	m := NewManager(Config{AutoSaveEnabled: true, AutoSaveInterval: 10 * time.Millisecond})

	if m.ShouldAutoSave() {
		t.Error("clean session should not autosave")
	}

	m.MarkDirty()
	if m.ShouldAutoSave() {
		t.Error("autosave should wait for the interval")
	}

	time.Sleep(15 * time.Millisecond)
	if !m.ShouldAutoSave() {
		t.Error("dirty session past the interval should autosave")
	}
}

func TestAutoSaveDisabled(t *testing.T) {
	m := NewManager(Config{AutoSaveEnabled: false, AutoSaveInterval: time.Millisecond})
	m.MarkDirty()
	time.Sleep(5 * time.Millisecond)

	if m.ShouldAutoSave() {
		t.Error("disabled autosave should never trigger")
	}
}

func TestCheckSavesAndClearsDirty(t *testing.T) {
	m := NewManager(Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond})

	saves := 0
	m.SetAutoSaveCallback(func() error {
		saves++
		return nil
	})

	m.MarkDirty()
	time.Sleep(5 * time.Millisecond)
	m.Check()

	if saves != 1 {
		t.Errorf("saves = %d, want 1", saves)
	}
	if m.IsDirty() {
		t.Error("successful save should clear dirty")
	}

	// Nothing due: no further saves.
	m.Check()
	if saves != 1 {
		t.Errorf("saves = %d after clean Check, want 1", saves)
	}
}

func TestCheckKeepsDirtyOnFailedSave(t *testing.T) {
	m := NewManager(Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond})
	m.SetAutoSaveCallback(func() error {
		return errors.New("disk full")
	})

	m.MarkDirty()
	time.Sleep(5 * time.Millisecond)
	m.Check()

	if !m.IsDirty() {
		t.Error("failed save must leave the session dirty for retry")
	}
}

func TestFlush(t *testing.T) {
	m := NewManager(DefaultConfig())

	saves := 0
	m.SetAutoSaveCallback(func() error {
		saves++
		return nil
	})

	// Clean session: Flush is a no-op.
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saves != 0 {
		t.Errorf("clean Flush saved %d times", saves)
	}

	// Dirty session: Flush saves immediately, ignoring the interval.
	m.MarkDirty()
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saves != 1 || m.IsDirty() {
		t.Errorf("saves = %d, dirty = %v", saves, m.IsDirty())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m 30s"},
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
