// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// LoginSubmitMsg carries the credentials entered on the login screen.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// ShowRegisterMsg asks the app to switch to the registration screen.
type ShowRegisterMsg struct{}

const (
	loginEmail = iota
	loginPassword
	loginFieldCount
)

// LoginForm is the sign-in screen.
type LoginForm struct {
	inputs []textinput.Model
	focus  int

	flash string
	err   string
	hint  string

	width int
	keys  KeyMap
	theme *styles.Theme
}

// NewLoginForm creates the form with the email field focused.
func NewLoginForm(theme *styles.Theme) LoginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = ""

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 72
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := LoginForm{
		inputs: []textinput.Model{email, password},
		keys:   DefaultKeyMap(),
		theme:  theme,
		width:  60,
	}
	f.inputs[loginEmail].Focus()
	return f
}

// SetWidth sets the form width.
func (f *LoginForm) SetWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = clampInputWidth(width)
	}
}

// SetFlash sets the banner shown above the form, e.g. the expiry message.
func (f *LoginForm) SetFlash(msg string) { f.flash = msg }

// Flash returns the banner text.
func (f LoginForm) Flash() string { return f.flash }

// SetError shows a sign-in failure below the fields.
func (f *LoginForm) SetError(msg string) { f.err = msg }

// Error returns the current failure text.
func (f LoginForm) Error() string { return f.err }

// SetHint sets the muted line under the form (demo accounts).
func (f *LoginForm) SetHint(hint string) { f.hint = hint }

// Focused returns the index of the focused field.
func (f LoginForm) Focused() int { return f.focus }

// Reset clears the password and error, keeping the email and flash.
func (f *LoginForm) Reset() {
	f.inputs[loginPassword].SetValue("")
	f.err = ""
	f.setFocus(loginEmail)
}

// SetEmail pre-fills the email field.
func (f *LoginForm) SetEmail(email string) {
	f.inputs[loginEmail].SetValue(email)
}

func (f *LoginForm) setFocus(i int) tea.Cmd {
	f.focus = (i + loginFieldCount) % loginFieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// Update handles navigation, submission and text entry.
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.Register):
			return f, emit(ShowRegisterMsg{})
		case key.Matches(msg, f.keys.Next):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, f.keys.Prev):
			return f, f.setFocus(f.focus - 1)
		case key.Matches(msg, f.keys.Submit):
			if f.focus < loginFieldCount-1 {
				return f, f.setFocus(f.focus + 1)
			}
			return f, emit(LoginSubmitMsg{
				Email:    strings.TrimSpace(f.inputs[loginEmail].Value()),
				Password: f.inputs[loginPassword].Value(),
			})
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f LoginForm) View() string {
	t := f.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Sign in to StudentConnect"))
	b.WriteString("\n\n")
	if f.flash != "" {
		b.WriteString(t.Flash.Render(styles.StatusIndicators.Warning + " " + f.flash))
		b.WriteString("\n\n")
	}

	labels := []string{"Email", "Password"}
	for i, in := range f.inputs {
		b.WriteString(fieldLabel(t, labels[i], i == f.focus))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	if f.err != "" {
		b.WriteString(t.FieldError.Render(styles.StatusIndicators.Error + " " + f.err))
		b.WriteString("\n\n")
	}
	b.WriteString(t.Muted.Render("enter sign in · ctrl+r create account"))
	if f.hint != "" {
		b.WriteString("\n")
		b.WriteString(t.Muted.Render(f.hint))
	}

	return t.FormBox.Width(formWidth(f.width)).Render(b.String())
}

// =============================================================================
// SHARED FORM HELPERS
// =============================================================================

func fieldLabel(t *styles.Theme, label string, focused bool) string {
	if focused {
		return t.FieldFocused.Render("> " + label)
	}
	return t.FieldLabel.Render("  " + label)
}

func formWidth(width int) int {
	w := width - 4
	if w > 64 {
		w = 64
	}
	if w < 36 {
		w = 36
	}
	return w
}

func clampInputWidth(width int) int {
	return formWidth(width) - 8
}
