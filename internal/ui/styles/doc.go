// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the palette and theme for the StudentConnect TUI.

Colors are lipgloss.AdaptiveColor values so one palette serves light and
dark terminals. NewThemeFor pins the background when the ui.theme config
value is "light" or "dark"; "auto" asks the terminal through termenv.

Status text always carries an ASCII marker ([OK], [X], [!], [i]) next to
its color.
*/
package styles
