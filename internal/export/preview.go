// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// RenderPreview renders markdown for terminal display using the given theme
// ("dark", "light", or "auto") and word-wrap width.
func RenderPreview(markdown, theme string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	var style glamour.TermRendererOption
	switch theme {
	case "dark", "light":
		style = glamour.WithStandardStyle(theme)
	default:
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return rendered, nil
}
