// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/ui/components"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders header, the current screen (or the session warning on top
// of it) and the status bar.
func (m Model) View() string {
	m.status.Bindings = m.bindings()
	m.status.Idle = m.idle()

	body := m.overlay.View()
	if body == "" {
		body = m.bodyView()
	}
	if m.height > 0 {
		body = lipgloss.NewStyle().Height(m.bodyHeight()).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.status.View())
}

func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) bodyView() string {
	switch m.route {
	case RouteRegister:
		return m.register.View()
	case RouteHome:
		return m.homeView()
	default:
		return m.login.View()
	}
}

func (m Model) homeView() string {
	t := m.opts.Theme
	if m.user == nil {
		return t.Muted.Render("Loading…")
	}
	u := m.user

	rows := [][2]string{
		{"Email", u.Email},
		{"Role", u.Role.Title()},
	}
	if !u.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Member since", u.CreatedAt.Format("January 2006")})
	}
	if m.session.SessionID != "" {
		rows = append(rows, [2]string{"Session", m.session.SessionID})
	}

	var b strings.Builder
	b.WriteString(t.Title.Render("Welcome back, " + u.Name))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(t.FieldLabel.Render(util.PadWidth(r[0], 14)))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	if bio := components.RenderMarkdown(t, u.Bio, m.contentWidth()); bio != "" {
		b.WriteString("\n")
		b.WriteString(bio)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("You will be signed out after " +
		strconv.Itoa(int(session.SessionTimeout.Minutes())) + " minutes of inactivity."))

	return t.FormBox.Render(b.String())
}

// contentWidth is the usable width inside the home card.
func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width - 8
	if w > 72 {
		w = 72
	}
	return w
}

func (m Model) bindings() []key.Binding {
	k := m.keys
	if m.overlay.IsVisible() {
		return []key.Binding{k.Continue, k.LogoutNow, k.Quit}
	}
	switch m.route {
	case RouteLogin:
		return []key.Binding{k.Next, k.Submit, k.Register, k.Quit}
	case RouteRegister:
		return []key.Binding{k.Next, k.Submit, k.Back, k.Quit}
	default:
		return []key.Binding{k.Logout, k.Quit}
	}
}

// idle returns the time since the last recorded activity, or -1 when no
// one is signed in or the record is unreadable.
func (m Model) idle() time.Duration {
	if !m.signedIn {
		return -1
	}
	raw, err := m.opts.Store.Get(storage.KeyLastActivity)
	if err != nil {
		return -1
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return -1
	}
	return m.now().Sub(time.UnixMilli(ms))
}

func (m Model) now() time.Time {
	if m.opts.Clock != nil {
		return m.opts.Clock.Now()
	}
	return time.Now()
}
