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
// REGISTER FORM
// =============================================================================

// RegisterSubmitMsg carries the registration form values.
type RegisterSubmitMsg struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// ShowLoginMsg asks the app to switch back to the login screen.
type ShowLoginMsg struct{}

// Roles a new account may pick.
var RegisterRoles = []string{"student", "tutor"}

const (
	regName = iota
	regEmail
	regPassword
	regRole
	regFieldCount
)

// Form field keys used by SetFieldErrors.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

var regFieldKeys = []string{FieldName, FieldEmail, FieldPassword, FieldRole}

// RegisterForm is the account creation screen.
type RegisterForm struct {
	inputs []textinput.Model
	role   int
	focus  int

	fieldErrs map[string]string
	err       string

	width int
	keys  KeyMap
	theme *styles.Theme
}

// NewRegisterForm creates the form with the name field focused.
func NewRegisterForm(theme *styles.Theme) RegisterForm {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 80
	name.Prompt = ""

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = ""

	password := textinput.New()
	password.Placeholder = "at least 8 characters"
	password.CharLimit = 72
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := RegisterForm{
		inputs: []textinput.Model{name, email, password},
		keys:   DefaultKeyMap(),
		theme:  theme,
		width:  60,
	}
	f.inputs[regName].Focus()
	return f
}

// SetWidth sets the form width.
func (f *RegisterForm) SetWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = clampInputWidth(width)
	}
}

// SetFieldErrors shows per-field validation messages keyed by FieldName,
// FieldEmail, FieldPassword or FieldRole.
func (f *RegisterForm) SetFieldErrors(errs map[string]string) { f.fieldErrs = errs }

// SetError shows a form-level failure.
func (f *RegisterForm) SetError(msg string) { f.err = msg }

// Error returns the form-level failure text.
func (f RegisterForm) Error() string { return f.err }

// FieldError returns the validation message for a field.
func (f RegisterForm) FieldError(field string) string { return f.fieldErrs[field] }

// Role returns the selected role.
func (f RegisterForm) Role() string { return RegisterRoles[f.role] }

// Focused returns the index of the focused field.
func (f RegisterForm) Focused() int { return f.focus }

// Reset clears every field and message.
func (f *RegisterForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.role = 0
	f.fieldErrs = nil
	f.err = ""
	f.setFocus(regName)
}

func (f *RegisterForm) setFocus(i int) tea.Cmd {
	f.focus = (i + regFieldCount) % regFieldCount
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

func (f RegisterForm) submit() tea.Cmd {
	return emit(RegisterSubmitMsg{
		Name:     strings.TrimSpace(f.inputs[regName].Value()),
		Email:    strings.TrimSpace(f.inputs[regEmail].Value()),
		Password: f.inputs[regPassword].Value(),
		Role:     f.Role(),
	})
}

// Update handles navigation, role selection, submission and text entry.
func (f RegisterForm) Update(msg tea.Msg) (RegisterForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.Back):
			return f, emit(ShowLoginMsg{})
		case key.Matches(msg, f.keys.Next):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, f.keys.Prev):
			return f, f.setFocus(f.focus - 1)
		case key.Matches(msg, f.keys.Submit):
			if f.focus < regFieldCount-1 {
				return f, f.setFocus(f.focus + 1)
			}
			return f, f.submit()
		}

		if f.focus == regRole {
			switch {
			case key.Matches(msg, f.keys.Left):
				f.role = (f.role + len(RegisterRoles) - 1) % len(RegisterRoles)
			case key.Matches(msg, f.keys.Right), msg.String() == " ":
				f.role = (f.role + 1) % len(RegisterRoles)
			}
			return f, nil
		}
	}

	if f.focus == regRole {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f RegisterForm) View() string {
	t := f.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Create your StudentConnect account"))
	b.WriteString("\n\n")

	labels := []string{"Name", "Email", "Password"}
	for i, in := range f.inputs {
		b.WriteString(fieldLabel(t, labels[i], i == f.focus))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n")
		f.writeFieldError(&b, regFieldKeys[i])
		b.WriteString("\n")
	}

	b.WriteString(fieldLabel(t, "I am a", f.focus == regRole))
	b.WriteString("\n")
	for i, role := range RegisterRoles {
		style := t.Button
		if i == f.role {
			style = t.ButtonActive
		}
		b.WriteString(style.Render(strings.ToUpper(role[:1]) + role[1:]))
	}
	b.WriteString("\n")
	f.writeFieldError(&b, FieldRole)
	b.WriteString("\n")

	if f.err != "" {
		b.WriteString(t.FieldError.Render(styles.StatusIndicators.Error + " " + f.err))
		b.WriteString("\n\n")
	}
	b.WriteString(t.Muted.Render("enter create account · esc back to sign in"))

	return t.FormBox.Width(formWidth(f.width)).Render(b.String())
}

func (f RegisterForm) writeFieldError(b *strings.Builder, field string) {
	if msg := f.fieldErrs[field]; msg != "" {
		b.WriteString(f.theme.FieldError.Render(msg))
		b.WriteString("\n")
	}
}
