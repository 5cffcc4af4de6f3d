// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// OverlayButton identifies a button in the warning dialog.
type OverlayButton int

const (
	ButtonContinue OverlayButton = iota
	ButtonLogout
)

// ContinueSessionMsg is emitted when the user picks Continue Session.
type ContinueSessionMsg struct{}

// LogoutNowMsg is emitted when the user picks Logout Now.
type LogoutNowMsg struct{}

// SessionTimeoutOverlay shows the inactivity warning and countdown.
// It mirrors the session manager's state; it never runs timers itself.
type SessionTimeoutOverlay struct {
	visible          bool
	secondsRemaining int
	selected         OverlayButton

	width  int
	height int

	keys  KeyMap
	theme *styles.Theme
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay(theme *styles.Theme) SessionTimeoutOverlay {
	return SessionTimeoutOverlay{
		keys:  DefaultKeyMap(),
		theme: theme,
	}
}

// SetSize sets the area the dialog is centered in.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// SetState syncs the overlay with a manager snapshot. Opening the dialog
// focuses Continue Session.
func (o *SessionTimeoutOverlay) SetState(s session.State) {
	if s.WarningVisible && !o.visible {
		o.selected = ButtonContinue
	}
	o.visible = s.WarningVisible
	o.secondsRemaining = s.SecondsRemaining
}

// IsVisible reports whether the dialog is open.
func (o SessionTimeoutOverlay) IsVisible() bool { return o.visible }

// SecondsRemaining returns the countdown value being shown.
func (o SessionTimeoutOverlay) SecondsRemaining() int { return o.secondsRemaining }

// Selected returns the focused button.
func (o SessionTimeoutOverlay) Selected() OverlayButton { return o.selected }

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update handles keys while the dialog is open.
func (o SessionTimeoutOverlay) Update(msg tea.Msg) (SessionTimeoutOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if !o.visible {
			return o, nil
		}
		switch {
		case key.Matches(msg, o.keys.Continue):
			return o, emit(ContinueSessionMsg{})
		case key.Matches(msg, o.keys.LogoutNow):
			return o, emit(LogoutNowMsg{})
		case key.Matches(msg, o.keys.Left), key.Matches(msg, o.keys.Right),
			key.Matches(msg, o.keys.Next), key.Matches(msg, o.keys.Prev):
			if o.selected == ButtonContinue {
				o.selected = ButtonLogout
			} else {
				o.selected = ButtonContinue
			}
		case key.Matches(msg, o.keys.Submit):
			if o.selected == ButtonLogout {
				return o, emit(LogoutNowMsg{})
			}
			return o, emit(ContinueSessionMsg{})
		}
	}
	return o, nil
}

// View renders the dialog centered in the overlay area, or "" when hidden.
func (o SessionTimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}
	t := o.theme

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	boxWidth := width - 8
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > 60 {
		boxWidth = 60
	}

	cont, logout := t.Button, t.ButtonDanger
	if o.selected == ButtonContinue {
		cont = t.ButtonActive
	} else {
		logout = t.ButtonDangerOn
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		cont.Render("Continue Session"),
		logout.Render("Logout Now"),
	)

	body := lipgloss.NewStyle().Width(boxWidth - 8).Align(lipgloss.Center).Render(
		"You have been inactive for a while. For your security, you will be " +
			"logged out in " + t.Countdown.Render(util.FormatCountdown(o.secondsRemaining)) + ".")

	content := lipgloss.JoinVertical(lipgloss.Center,
		t.WarningTitle.Render(styles.StatusIndicators.Warning+" Session Timeout Warning"),
		"",
		body,
		"",
		buttons,
		"",
		t.Muted.Render("c continue · l logout now · ←/→ switch"),
	)

	box := t.WarningBox.Width(boxWidth).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
