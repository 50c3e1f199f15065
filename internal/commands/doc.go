// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the in-block command router: the "/"
// block-type menu and the "[[" page-link picker. It watches block
// content as the user types, detects active trigger sequences, filters
// candidates, and turns a committed choice into store mutations.
package commands
