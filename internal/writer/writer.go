// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/notes/bridge"
	"github.com/skaldhq/skald-tui/internal/ollama"
)

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// Source streams generated tokens for a prompt. Stream blocks until
// generation completes, fails, or the context is cancelled; emit is
// called once per token in order.
type Source interface {
	Stream(ctx context.Context, prompt string, emit func(token string)) error
}

// OllamaSource adapts the Ollama chat client to Source.
type OllamaSource struct {
	Client *ollama.Client
	Model  string
	System string
}

// Stream generates a response to the prompt, emitting content chunks.
func (s *OllamaSource) Stream(ctx context.Context, prompt string, emit func(token string)) error {
	var messages []ollama.Message
	if s.System != "" {
		messages = append(messages, ollama.NewSystemMessage(s.System))
	}
	messages = append(messages, ollama.NewUserMessage(prompt))

	return s.Client.ChatStream(ctx, s.Model, messages, func(chunk ollama.StreamChunk) {
		if chunk.Content != "" {
			emit(chunk.Content)
		}
	})
}

// =============================================================================
// WRITER
// =============================================================================

// ErrBusy is returned when a generation is already running.
var ErrBusy = errors.New("writer: generation already in progress")

// Config tunes how fast tokens land in the store.
type Config struct {
	// BatchSize is the number of tokens applied per store update.
	BatchSize int

	// MaxFPS caps store updates per second for slow streams.
	MaxFPS int

	// TokensPerSecond rate-limits token intake; 0 disables limiting.
	TokensPerSecond float64
}

// Writer streams one generation at a time into a target block.
type Writer struct {
	store  *notes.Store
	bridge *bridge.Bridge
	source Source
	cfg    Config

	// OnFinish, when set, is called from the streaming goroutine after
	// the bridge has left streaming mode. err is nil on success and on
	// user abort (context cancellation).
	OnFinish func(id notes.BlockID, err error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	target  notes.BlockID
	running bool
}

// New creates a writer over the store and bridge.
func New(store *notes.Store, b *bridge.Bridge, source Source, cfg Config) *Writer {
	return &Writer{
		store:  store,
		bridge: b,
		source: source,
		cfg:    cfg,
	}
}

// Busy reports whether a generation is in progress.
func (w *Writer) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Target returns the block being written, valid while Busy.
func (w *Writer) Target() (notes.BlockID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target, w.running
}

// Start creates an empty block after afterID (under parentID), enters
// streaming mode, and begins applying generated tokens to it. Returns
// the target block id immediately; tokens arrive asynchronously.
func (w *Writer) Start(ctx context.Context, pageID notes.PageID, parentID, afterID *notes.BlockID, prompt string) (notes.BlockID, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return "", ErrBusy
	}

	id, err := w.store.CreateBlock(pageID, parentID, afterID, "", notes.TypeParagraph, nil)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.target = id
	w.running = true
	w.mu.Unlock()

	w.bridge.BeginStreaming(id)
	go w.run(ctx, id, prompt)
	return id, nil
}

// Abort cancels the in-flight generation. Content already applied to
// the block stays; the bridge returns to normal editing.
func (w *Writer) Abort() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// run consumes the token stream and applies batches until done.
func (w *Writer) run(ctx context.Context, id notes.BlockID, prompt string) {
	batch := NewTokenBatcher(w.cfg.BatchSize, w.cfg.MaxFPS)

	var limiter *rate.Limiter
	if w.cfg.TokensPerSecond > 0 {
		burst := w.cfg.BatchSize
		if burst <= 0 {
			burst = defaultBatchSize
		}
		limiter = rate.NewLimiter(rate.Limit(w.cfg.TokensPerSecond), burst)
	}

	var content strings.Builder
	apply := func(chunk string) {
		content.WriteString(chunk)
		w.store.UpdateContentLive(id, content.String())
	}

	err := w.source.Stream(ctx, prompt, func(token string) {
		if limiter != nil {
			if werr := limiter.Wait(ctx); werr != nil {
				return
			}
		}
		batch.Write(token)
		if chunk, ok := batch.Flush(); ok {
			apply(chunk)
		}
	})

	// Tail tokens land even when the stream errored mid-way, unless
	// the user aborted.
	if ctx.Err() != nil {
		batch.Reset()
	} else if chunk, ok := batch.ForceFlush(); ok {
		apply(chunk)
	}

	// Abort is a normal outcome for the caller.
	if err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
		err = nil
	}

	w.bridge.EndStreaming()

	w.mu.Lock()
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if w.OnFinish != nil {
		w.OnFinish(id, err)
	}
}
