// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/notes/bridge"
)

// stubSurface is a minimal Surface: it stores markup per block and
// never echoes programmatic sets back as input events.
type stubSurface struct {
	markup map[notes.BlockID]string
	active notes.BlockID
}

func newStubSurface() *stubSurface {
	return &stubSurface{markup: make(map[notes.BlockID]string)}
}

func (s *stubSurface) Markup(id notes.BlockID) (string, bool) {
	m, ok := s.markup[id]
	return m, ok
}

func (s *stubSurface) SetMarkup(id notes.BlockID, markup string) {
	s.markup[id] = markup
}

func (s *stubSurface) ActiveBlock() (notes.BlockID, bool) {
	return s.active, s.active != ""
}

func (s *stubSurface) SetReadOnly(id notes.BlockID, readOnly bool) {}

// scriptedSource emits a fixed token sequence, optionally failing
// afterwards, and optionally blocking until cancelled.
type scriptedSource struct {
	tokens []string
	err    error
	hang   bool
}

func (s *scriptedSource) Stream(ctx context.Context, prompt string, emit func(string)) error {
	for _, tok := range s.tokens {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		emit(tok)
	}
	if s.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func newTestWriter(t *testing.T, source Source, cfg Config) (*Writer, *notes.Store, notes.PageID, chan error) {
	t.Helper()
	store := notes.NewStore()
	page := store.CreatePage("Scratch", false)
	b := bridge.New(store, newStubSurface())
	t.Cleanup(b.Close)

	w := New(store, b, source, cfg)
	done := make(chan error, 1)
	w.OnFinish = func(_ notes.BlockID, err error) { done <- err }
	return w, store, page.ID, done
}

func waitFinish(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not finish")
		return nil
	}
}

func TestWriterStreamsIntoBlock(t *testing.T) {
	src := &scriptedSource{tokens: []string{"The ", "quick ", "brown ", "fox."}}
	w, store, pageID, done := newTestWriter(t, src, Config{BatchSize: 1})

	id, err := w.Start(context.Background(), pageID, nil, nil, "write something")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := waitFinish(t, done); err != nil {
		t.Fatalf("finish err = %v", err)
	}

	if got := store.BlockContent(id); got != "The quick brown fox." {
		t.Errorf("content = %q", got)
	}
	if w.Busy() {
		t.Error("writer still busy after finish")
	}
}

func TestWriterBatchesTailTokens(t *testing.T) {
	// Large batch size: nothing flushes during the stream, everything
	// must land via the final forced flush.
	src := &scriptedSource{tokens: []string{"a", "b", "c"}}
	w, store, pageID, done := newTestWriter(t, src, Config{BatchSize: 100, MaxFPS: 1})

	id, _ := w.Start(context.Background(), pageID, nil, nil, "p")
	waitFinish(t, done)

	if got := store.BlockContent(id); got != "abc" {
		t.Errorf("content = %q, want abc", got)
	}
}

func TestWriterExclusiveMode(t *testing.T) {
	src := &scriptedSource{tokens: []string{"x"}, hang: true}
	w, _, pageID, done := newTestWriter(t, src, Config{BatchSize: 1})

	id, err := w.Start(context.Background(), pageID, nil, nil, "p")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !w.Busy() {
		t.Error("writer should be busy while streaming")
	}
	if target, ok := w.Target(); !ok || target != id {
		t.Errorf("Target = %v/%v, want %v", target, ok, id)
	}

	// A second generation is refused while one runs.
	if _, err := w.Start(context.Background(), pageID, nil, nil, "q"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start err = %v, want ErrBusy", err)
	}

	w.Abort()
	if err := waitFinish(t, done); err != nil {
		t.Errorf("abort should finish cleanly, got %v", err)
	}
}

func TestWriterAbortKeepsPartialContent(t *testing.T) {
	src := &scriptedSource{tokens: []string{"partial "}, hang: true}
	w, store, pageID, done := newTestWriter(t, src, Config{BatchSize: 1})

	id, _ := w.Start(context.Background(), pageID, nil, nil, "p")

	// Wait for the token to land before aborting.
	deadline := time.Now().Add(5 * time.Second)
	for store.BlockContent(id) == "" {
		if time.Now().After(deadline) {
			t.Fatal("token never applied")
		}
		time.Sleep(time.Millisecond)
	}

	w.Abort()
	waitFinish(t, done)

	if got := store.BlockContent(id); got != "partial " {
		t.Errorf("content = %q, want partial content preserved", got)
	}
	if w.Busy() {
		t.Error("writer busy after abort")
	}
}

func TestWriterSourceErrorReported(t *testing.T) {
	boom := errors.New("model exploded")
	src := &scriptedSource{tokens: []string{"oops"}, err: boom}
	w, store, pageID, done := newTestWriter(t, src, Config{BatchSize: 100})

	id, _ := w.Start(context.Background(), pageID, nil, nil, "p")
	if err := waitFinish(t, done); !errors.Is(err, boom) {
		t.Errorf("finish err = %v, want %v", err, boom)
	}

	// Tokens received before the failure still land.
	if got := store.BlockContent(id); got != "oops" {
		t.Errorf("content = %q", got)
	}
}

func TestWriterRateLimit(t *testing.T) {
	src := &scriptedSource{tokens: []string{"a", "b", "c", "d"}}
	w, store, pageID, done := newTestWriter(t, src, Config{BatchSize: 1, TokensPerSecond: 1000})

	id, _ := w.Start(context.Background(), pageID, nil, nil, "p")
	waitFinish(t, done)

	if got := store.BlockContent(id); got != "abcd" {
		t.Errorf("content = %q, want abcd", got)
	}
}

func TestTokenBatcher(t *testing.T) {
	tb := NewTokenBatcher(3, 1)

	tb.Write("a")
	tb.Write("b")
	if _, ok := tb.Flush(); ok {
		t.Error("flush before batch size or interval should hold")
	}

	tb.Write("c")
	chunk, ok := tb.Flush()
	if !ok || chunk != "abc" {
		t.Errorf("Flush = %q/%v, want abc", chunk, ok)
	}

	tb.Write("d")
	if chunk, ok := tb.ForceFlush(); !ok || chunk != "d" {
		t.Errorf("ForceFlush = %q/%v, want d", chunk, ok)
	}

	tb.Write("e")
	tb.Reset()
	if n := tb.Pending(); n != 0 {
		t.Errorf("Pending after Reset = %d", n)
	}
	if _, ok := tb.ForceFlush(); ok {
		t.Error("ForceFlush after Reset should be empty")
	}
}
