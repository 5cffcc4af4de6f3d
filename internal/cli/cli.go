// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdConfig
	CmdAudit
	CmdClearData
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdAudit:
		return "audit"
	case CmdClearData:
		return "clear-data"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

var commandNames = map[string]Command{
	"tui":        CmdTUI,
	"login":      CmdLogin,
	"signin":     CmdLogin,
	"logout":     CmdLogout,
	"signout":    CmdLogout,
	"status":     CmdStatus,
	"whoami":     CmdStatus,
	"s":          CmdStatus,
	"config":     CmdConfig,
	"audit":      CmdAudit,
	"clear-data": CmdClearData,
	"version":    CmdVersion,
	"help":       CmdHelp,
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	Ephemeral  bool   // in-memory store, nothing persisted
	JSON       bool   // machine-readable output
	ConfigPath string // --config overrides the default config file

	// Command-specific
	Subcommand string
	Raw        []string
}

// Parser returns an ArgParser over the command's own arguments.
func (a Args) Parser(boolNames ...string) *ArgParser {
	return NewArgParser(a.Raw, boolNames...)
}

const usageText = `studentconnect - StudentConnect terminal client

Usage:
  studentconnect                       Start the TUI (default)
  studentconnect login [email]         Sign in from the command line
  studentconnect logout                End the current session
  studentconnect status, whoami        Show the signed-in user and idle time
  studentconnect config [subcommand]   Configuration
  studentconnect audit [subcommand]    Audit trail
  studentconnect clear-data --confirm  Wipe local storage (clear site data)
  studentconnect version               Print version information

Config Commands:
  studentconnect config show           Print the configuration (secrets redacted)
  studentconnect config path           Print the config file location
  studentconnect config get KEY        Print one setting, e.g. store.driver
  studentconnect config set KEY VALUE  Change one setting and save
  studentconnect config keys           List every setting

Audit Commands:
  studentconnect audit show            Show recent audit entries (default: 20)
    --lines N, -n N                    Show the last N entries
  studentconnect audit path            Print the audit log location

Login Flags:
  --email ADDRESS                      Email (prompted when omitted)
  --password-stdin                     Read the password from stdin

Global Flags:
  -v, --verbose     Debug logging
  --ephemeral       Use an in-memory store for this run
  --config PATH     Use a specific config file
  --json            Output in JSON format

Sessions end after 15 minutes without keyboard or mouse activity. A
warning with a countdown appears during the final minute.

Version: %s
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "studentconnect version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name).
// Global flags may appear anywhere.
func Parse(argv []string) (Command, Args, error) {
	var args Args
	var rest []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--ephemeral":
			args.Ephemeral = true
		case arg == "--json":
			args.JSON = true
		case arg == "-h" || arg == "--help":
			return CmdHelp, args, nil
		case arg == "--version":
			return CmdVersion, args, nil
		case arg == "--config":
			if i+1 >= len(argv) {
				return CmdHelp, args, fmt.Errorf("--config requires a path")
			}
			args.ConfigPath = argv[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}

	if len(rest) == 0 {
		return CmdTUI, args, nil
	}

	cmd, ok := commandNames[strings.ToLower(rest[0])]
	if !ok {
		return CmdHelp, args, fmt.Errorf("unknown command: %s", rest[0])
	}
	args.Raw = rest[1:]
	if len(args.Raw) > 0 && !strings.HasPrefix(args.Raw[0], "-") {
		args.Subcommand = args.Raw[0]
	}
	return cmd, args, nil
}
