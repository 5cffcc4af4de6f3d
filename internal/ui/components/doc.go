// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the screens and widgets of the StudentConnect TUI.

# Widgets

  - SessionTimeoutOverlay (session_timeout_overlay.go) - inactivity warning
    with an M:SS countdown and Continue Session / Logout Now buttons.
  - Header (header.go) - brand bar showing the signed-in user; re-reads the
    user whenever auth-state-changed is published.
  - LoginForm, RegisterForm (login_form.go, register_form.go) - bubbles
    textinput forms that emit submit messages for the app to handle.
  - StatusBar (statusbar.go) - key hints rendered with bubbles/help plus
    session idle time.

Components never call the auth service or session manager directly. They
return tea.Msg values (LoginSubmitMsg, ContinueSessionMsg, ...) and the
root model in package app acts on them.
*/
package components
