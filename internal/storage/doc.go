// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the note document to a local SQLite
// database. Saves are full snapshots written in one transaction; the
// engine treats persistence as best-effort and fire-and-forget, so a
// failed save never blocks editing. A file watcher reports external
// replacement of the database (sync tools, restores) so the app can
// offer a reload.
package storage
