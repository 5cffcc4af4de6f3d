// StudentConnect - terminal client for the StudentConnect tutoring marketplace.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/studentconnect/studentconnect-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	if err := run(cmd, args); err != nil {
		if errors.Is(err, cli.ErrPromptAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd cli.Command, args cli.Args) error {
	out := os.Stdout

	switch cmd {
	case cli.CmdTUI:
		return cli.RunTUI(args)
	case cli.CmdLogin:
		var p cli.Prompter
		if cli.IsTTY() {
			p = cli.NewTerminalPrompter()
		}
		return cli.RunLogin(args, p, out)
	case cli.CmdLogout:
		return cli.RunLogout(args, out)
	case cli.CmdStatus:
		return cli.RunStatus(args, out)
	case cli.CmdConfig:
		return cli.RunConfig(args, out)
	case cli.CmdAudit:
		return cli.RunAudit(args, out)
	case cli.CmdClearData:
		return cli.RunClearData(args, out)
	case cli.CmdVersion:
		cli.PrintVersion(out)
		return nil
	default:
		cli.PrintUsage(out)
		return nil
	}
}
