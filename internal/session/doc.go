// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks unsaved changes and drives autosave.
//
// A Manager subscribes to the note store: any mutation marks the
// session dirty. The Bubble Tea tick loop asks the manager once a
// second whether an autosave is due; saves go through a callback so
// the manager stays ignorant of the persistence medium.
package session
