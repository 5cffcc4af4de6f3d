// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the bottom bar: key hints on the left and session idle time
// on the right.
type StatusBar struct {
	Width    int
	Bindings []key.Binding

	// Idle is the time since the last recorded activity; negative hides it.
	Idle time.Duration

	// Storage names the active store driver, e.g. "sqlite".
	Storage string

	help  help.Model
	theme *styles.Theme
}

// NewStatusBar creates a status bar with no bindings.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = theme.ShortcutKey
	h.Styles.ShortDesc = theme.ShortcutDesc
	h.Styles.ShortSeparator = theme.ShortcutDesc

	return &StatusBar{
		Width: 80,
		Idle:  -1,
		help:  h,
		theme: theme,
	}
}

// View renders the bar.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2

	right := ""
	if s.Idle >= 0 {
		right = "idle " + util.FormatIdle(s.Idle)
	}
	if s.Storage != "" {
		if right != "" {
			right += " · "
		}
		right += s.Storage
	}
	right = s.theme.ShortcutDesc.Render(right)

	s.help.Width = inner - lipgloss.Width(right) - 1
	left := s.help.ShortHelpView(s.Bindings)

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return s.theme.StatusBar.Width(width).Render(line)
}
