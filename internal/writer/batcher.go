// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// TOKEN BATCHER
// =============================================================================

// TokenBatcher accumulates generated tokens and releases them in
// batches. A batch is ready when either the token-count threshold is
// reached or enough time has passed since the last flush. Applying
// every single token to the store would re-render the surface at the
// model's token rate; batching caps that at a steady frame rate.
//
// Safe for concurrent use: the streaming goroutine writes while the
// applier flushes.
type TokenBatcher struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int
	lastFlush  time.Time

	batchSize int
	minFlush  time.Duration
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewTokenBatcher creates a batcher. Non-positive arguments fall back
// to the defaults (15 tokens, 30 flushes/second).
func NewTokenBatcher(batchSize, maxFPS int) *TokenBatcher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &TokenBatcher{
		batchSize: batchSize,
		minFlush:  time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush: time.Now(),
	}
}

// Write adds a token to the buffer.
func (tb *TokenBatcher) Write(token string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.buffer.WriteString(token)
	tb.tokenCount++
}

// Flush returns the accumulated batch when a threshold has been
// reached, resetting the buffer. Returns ("", false) when the batch is
// not yet due.
func (tb *TokenBatcher) Flush() (string, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.buffer.Len() == 0 {
		return "", false
	}
	if tb.tokenCount < tb.batchSize && time.Since(tb.lastFlush) < tb.minFlush {
		return "", false
	}
	return tb.drainLocked(), true
}

// ForceFlush returns whatever is buffered regardless of thresholds.
// Used when the stream ends so no tail tokens are lost.
func (tb *TokenBatcher) ForceFlush() (string, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.buffer.Len() == 0 {
		return "", false
	}
	return tb.drainLocked(), true
}

// Reset discards buffered tokens. Used on abort.
func (tb *TokenBatcher) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.buffer.Reset()
	tb.tokenCount = 0
	tb.lastFlush = time.Now()
}

// Pending returns the number of tokens waiting to be flushed.
func (tb *TokenBatcher) Pending() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.tokenCount
}

func (tb *TokenBatcher) drainLocked() string {
	content := tb.buffer.String()
	tb.buffer.Reset()
	tb.tokenCount = 0
	tb.lastFlush = time.Now()
	return content
}
