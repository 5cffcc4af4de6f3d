// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the TUI until the user quits. The manager is unmounted on
// every exit path.
func Run(m Model) error {
	defer m.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if m.opts.MouseMotion {
		opts = append(opts, tea.WithMouseAllMotion())
	} else {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
