// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// HEADER
// =============================================================================

// Identity is what the header shows for the signed-in user.
type Identity struct {
	Name string
	Role string
}

// IdentityFunc reports the current user, ok=false when signed out.
type IdentityFunc func() (Identity, bool)

// AuthNotifier delivers auth-state-changed notifications.
type AuthNotifier interface {
	OnAuthStateChanged(fn func()) func()
}

// Header is the top bar. It re-reads the signed-in user whenever the auth
// state changes, the same way the navigation bar of a web page would.
type Header struct {
	Title string
	theme *styles.Theme

	mu       sync.Mutex
	width    int
	identity Identity
	signedIn bool
	lookup   IdentityFunc
}

// NewHeader creates a header for a signed-out user.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "StudentConnect",
		theme: theme,
		width: 80,
	}
}

// SetWidth sets the rendered width.
func (h *Header) SetWidth(width int) {
	h.mu.Lock()
	h.width = width
	h.mu.Unlock()
}

// Bind subscribes the header to auth-state changes and reads the user once.
// The returned func unsubscribes.
func (h *Header) Bind(n AuthNotifier, lookup IdentityFunc) func() {
	h.mu.Lock()
	h.lookup = lookup
	h.mu.Unlock()

	h.Refresh()
	return n.OnAuthStateChanged(h.Refresh)
}

// Refresh re-reads the user through the bound lookup.
func (h *Header) Refresh() {
	h.mu.Lock()
	lookup := h.lookup
	h.mu.Unlock()
	if lookup == nil {
		return
	}

	id, ok := lookup()

	h.mu.Lock()
	h.identity, h.signedIn = id, ok
	h.mu.Unlock()
}

// Identity returns the user being shown.
func (h *Header) Identity() (Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.identity, h.signedIn
}

// View renders the bar: brand on the left, user and role on the right.
func (h *Header) View() string {
	h.mu.Lock()
	width, id, signedIn := h.width, h.identity, h.signedIn
	h.mu.Unlock()

	if width < 30 {
		width = 30
	}
	t := h.theme
	inner := width - 2

	brand := t.HeaderBrand.Render(h.Title)

	right := t.Muted.Render("not signed in")
	if signedIn {
		// Leave room for the brand, a gap and the role badge.
		room := inner - runewidth.StringWidth(h.Title) - runewidth.StringWidth(id.Role) - 6
		if room < 4 {
			room = 4
		}
		right = t.HeaderUser.Render(util.TruncateWidth(id.Name, room)) +
			" " + t.HeaderRole.Render("["+id.Role+"]")
	}

	gap := inner - lipgloss.Width(brand) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := brand + lipgloss.NewStyle().Width(gap).Render("") + right
	return t.Header.Width(width).Render(line)
}
