// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
//
// The assistant uses it for one thing: streaming generated text, token
// by token, into the note document through the AI writer. The client
// covers health checks, model listing, and streaming chat; everything
// runs against localhost over plain HTTP.
package ollama
