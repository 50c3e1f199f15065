// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package writer streams AI-generated text into note blocks.
//
// A Writer creates an empty target block, puts the sync bridge into
// exclusive streaming mode, and applies generated tokens to the block
// in rate-limited batches through the store's live-update path, so
// undo coalesces the whole generation the same way it coalesces
// typing. Completion or abort always ends streaming mode.
package writer
