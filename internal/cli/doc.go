// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli provides argument parsing and the non-TUI commands for
skald.

Running skald with no arguments opens the TUI on today's journal;
anything else routes through Parse to a handler:

	pages    list pages and block counts
	export   write a page as Markdown or JSON
	config   print the active configuration
	doctor   check the note store and the Ollama connection
	version  print build information

A bare unrecognized argument is treated as a page name to open, so
"skald groceries" works like "skald open groceries".
*/
package cli
