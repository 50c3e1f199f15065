// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skaldhq/skald-tui/internal/notes"
)

func openTestStore(t *testing.T) *NoteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "skald.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// buildDocument seeds a store with a page holding a small block tree.
func buildDocument(t *testing.T) ([]*notes.Page, []*notes.Block) {
	t.Helper()
	engine := notes.NewStore()
	page := engine.CreatePage("Research", false)

	top, err := engine.CreateBlock(page.ID, nil, nil, "heading", notes.TypeHeading,
		map[string]string{notes.PropLevel: "1"})
	require.NoError(t, err)
	child, err := engine.CreateBlock(page.ID, &top, nil, "body <b>bold</b>", notes.TypeParagraph, nil)
	require.NoError(t, err)
	_, err = engine.CreateBlock(page.ID, &child, nil, "deep", notes.TypeTodo,
		map[string]string{notes.PropChecked: "true"})
	require.NoError(t, err)

	engine.CreatePage("journal/2026-08-30", true)

	pages, blocks := engine.Snapshot()
	return pages, blocks
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	pages, blocks := buildDocument(t)

	require.NoError(t, s.Persist(pages, blocks))

	gotPages, gotBlocks, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, gotPages, len(pages))
	require.Len(t, gotBlocks, len(blocks))

	byID := make(map[notes.BlockID]*notes.Block, len(gotBlocks))
	for _, b := range gotBlocks {
		byID[b.ID] = b
	}
	for _, want := range blocks {
		got, ok := byID[want.ID]
		require.True(t, ok, "block %s missing after reload", want.ID)
		assert.Equal(t, want.PageID, got.PageID)
		assert.Equal(t, want.Order, got.Order)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.Content, got.Content)
		assert.Equal(t, want.Indent, got.Indent)
		assert.Equal(t, want.Collapsed, got.Collapsed)
		assert.Equal(t, want.Properties, got.Properties)
		if want.ParentID == nil {
			assert.Nil(t, got.ParentID)
		} else {
			require.NotNil(t, got.ParentID)
			assert.Equal(t, *want.ParentID, *got.ParentID)
		}
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	}

	pageByID := make(map[notes.PageID]*notes.Page, len(gotPages))
	for _, p := range gotPages {
		pageByID[p.ID] = p
	}
	for _, want := range pages {
		got, ok := pageByID[want.ID]
		require.True(t, ok)
		assert.Equal(t, want.Title, got.Title)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.IsJournal, got.IsJournal)
	}
}

func TestLoadIntoEngine(t *testing.T) {
	s := openTestStore(t)
	pages, blocks := buildDocument(t)
	require.NoError(t, s.Persist(pages, blocks))

	gotPages, gotBlocks, err := s.LoadAll()
	require.NoError(t, err)

	engine := notes.NewStore()
	engine.Load(gotPages, gotBlocks)

	p, ok := engine.PageByName("research")
	require.True(t, ok)
	doc := engine.Blocks(p.ID)
	require.Len(t, doc, 3)
	assert.Equal(t, "heading", doc[0].Content)
	assert.Equal(t, "body <b>bold</b>", doc[1].Content)
	assert.Equal(t, "deep", doc[2].Content)
}

func TestPersistReplacesSnapshot(t *testing.T) {
	s := openTestStore(t)
	pages, blocks := buildDocument(t)
	require.NoError(t, s.Persist(pages, blocks))

	// A smaller later snapshot must fully replace the earlier one.
	engine := notes.NewStore()
	engine.CreatePage("Only", false)
	p2, b2 := engine.Snapshot()
	require.NoError(t, s.Persist(p2, b2))

	gotPages, gotBlocks, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, gotPages, 1)
	assert.Empty(t, gotBlocks)
	assert.Equal(t, "Only", gotPages[0].Title)
}

func TestEmptyDatabaseLoads(t *testing.T) {
	s := openTestStore(t)

	pages, blocks, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Empty(t, blocks)
}

func TestClosedStoreErrors(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Persist(nil, nil), ErrClosed)
	_, _, err := s.LoadAll()
	require.ErrorIs(t, err, ErrClosed)

	// Double close is fine.
	require.NoError(t, s.Close())
}

func TestLastSaved(t *testing.T) {
	s := openTestStore(t)
	assert.True(t, s.LastSaved().IsZero())

	require.NoError(t, s.Persist(nil, nil))
	assert.False(t, s.LastSaved().IsZero())
}

func TestWatcherReportsExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skald.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	changed := make(chan struct{}, 1)
	w, err := WatchFile(path, 20*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the change")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skald.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	changed := make(chan struct{}, 1)
	w, err := WatchFile(path, 10*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	select {
	case <-changed:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(100 * time.Millisecond):
	}
}
