// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the studentconnect command line and runs its commands.
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdTUI:
//	    err = cli.RunTUI(args)
//	case cli.CmdLogin:
//	    err = cli.RunLogin(args, cli.NewTerminalPrompter(), os.Stdout)
//	case cli.CmdStatus:
//	    err = cli.RunStatus(args, os.Stdout)
//	// ...
//	}
//
// # Commands
//
//   - tui (default): the full-screen client
//   - login, logout, status/whoami: session management without the TUI
//   - config: show, path, get, set, keys
//   - audit: show, path
//   - clear-data: wipe the local store ("clear site data")
//   - version, help
//
// Every command accepts --json for machine-readable output.
package cli
