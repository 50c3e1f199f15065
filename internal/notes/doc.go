// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
//
// A page owns a tree of typed content blocks. The Store is the single
// source of truth for all page and block data and the only component
// permitted to mutate it; every mutation is recorded in the History as a
// forward/inverse command pair so it can be undone, and fans out to
// subscribers so the editing surface and the persistence layer recompute
// from the same event stream.
//
// Sibling ordering uses fractional-index string keys (see order.go), so an
// insert between two blocks never renumbers existing siblings. The
// visibility pass (visibility.go) derives the flattened list of blocks a
// renderer should show given collapsed headings and toggles.
package notes
