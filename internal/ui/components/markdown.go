// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
)

// RenderMarkdown renders profile text such as a user's bio, wrapped to
// width. Rendering failures fall back to the raw text.
func RenderMarkdown(theme *styles.Theme, md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := "dark"
	switch {
	case theme == nil || theme.ColorProfile == termenv.Ascii:
		style = "notty"
	case !theme.IsDark:
		style = "light"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
