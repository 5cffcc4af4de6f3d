// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects light or dark rendering. ModeAuto asks the terminal.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode maps a config value to a Mode, defaulting to ModeAuto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark
	case ModeLight:
		return ModeLight
	default:
		return ModeAuto
	}
}

// Theme holds the styled building blocks for every screen.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App   lipgloss.Style
	Title lipgloss.Style
	Muted lipgloss.Style

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	HeaderRole  lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	FormBox        lipgloss.Style
	FieldLabel     lipgloss.Style
	FieldFocused   lipgloss.Style
	FieldError     lipgloss.Style
	Flash          lipgloss.Style
	Button         lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonDanger   lipgloss.Style
	ButtonDangerOn lipgloss.Style

	// ==========================================================================
	// SESSION WARNING
	// ==========================================================================

	WarningBox   lipgloss.Style
	WarningTitle lipgloss.Style
	Countdown    lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme detects the terminal background and builds a theme.
func NewTheme() *Theme {
	return NewThemeFor(ModeAuto)
}

// NewThemeFor builds a theme for mode. ModeAuto queries the terminal.
func NewThemeFor(mode Mode) *Theme {
	profile := termenv.ColorProfile()
	isDark := true
	switch mode {
	case ModeLight:
		isDark = false
	case ModeDark:
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.build()
	return t
}

func (t *Theme) build() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.Title = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextPrimary)
	t.HeaderRole = lipgloss.NewStyle().Foreground(Teal)

	t.FormBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)
	t.FieldLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FieldFocused = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	t.FieldError = lipgloss.NewStyle().Foreground(Rose)
	t.Flash = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	button := lipgloss.NewStyle().Padding(0, 2).MarginRight(1)
	t.Button = button.Foreground(TextSecondary).Background(Overlay)
	t.ButtonActive = button.Foreground(TextInverse).Background(Indigo).Bold(true)
	t.ButtonDanger = button.Foreground(Rose).Background(Overlay)
	t.ButtonDangerOn = button.Foreground(TextInverse).Background(RoseDeep).Bold(true)

	t.WarningBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(1, 3).
		Align(lipgloss.Center)
	t.WarningTitle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.Countdown = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
}
