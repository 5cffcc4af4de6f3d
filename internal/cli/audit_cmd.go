// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// audit_cmd.go - Read the session audit trail.
//
// Examples:
//   studentconnect audit show                 Last 20 entries
//   studentconnect audit show -n 100          Last 100 entries
//   studentconnect audit show --type SESSION_TIMEOUT
//   studentconnect audit path

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studentconnect/studentconnect-tui/internal/audit"
	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
)

// DefaultAuditLines is how many entries `audit show` prints by default.
const DefaultAuditLines = 20

var eventTypeColors = map[string]lipgloss.Style{
	session.EventSessionStarted: lipgloss.NewStyle().Foreground(styles.Emerald),
	session.EventTimeoutWarning: lipgloss.NewStyle().Foreground(styles.Amber),
	session.EventExtended:       lipgloss.NewStyle().Foreground(styles.Teal),
	session.EventTimeout:        lipgloss.NewStyle().Foreground(styles.Rose),
	session.EventLogout:         lipgloss.NewStyle().Foreground(styles.Indigo),
	audit.EventLoginFailed:      lipgloss.NewStyle().Foreground(styles.Rose),
	audit.EventDataCleared:      lipgloss.NewStyle().Foreground(styles.Amber),
}

// RunAudit dispatches the audit subcommands.
func RunAudit(args Args, w io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	ap := args.Parser()

	switch sub := ap.Subcommand(); sub {
	case "", "show", "tail":
		return showAudit(w, cfg.AuditPath(), ap.FlagIntOrDefault(DefaultAuditLines, "--lines", "-n"),
			strings.ToUpper(ap.Flag("--type", "-t")), args.JSON)
	case "path":
		if args.JSON {
			return NewJSONResponse("audit path", map[string]string{"path": cfg.AuditPath()}).Write(w)
		}
		fmt.Fprintln(w, cfg.AuditPath())
		return nil
	default:
		return fmt.Errorf("unknown audit subcommand: %s (use show or path)", sub)
	}
}

func showAudit(w io.Writer, path string, lines int, eventType string, jsonOut bool) error {
	if lines <= 0 {
		lines = DefaultAuditLines
	}
	// Read everything when filtering so the filter sees the whole file.
	n := lines
	if eventType != "" {
		n = 0
	}
	raw, err := audit.Tail(path, n)
	if err != nil {
		return err
	}

	entries := make([]audit.Event, 0, len(raw))
	for _, line := range raw {
		ev, err := audit.ParseLine(line)
		if err != nil {
			continue
		}
		if eventType != "" && ev.EventType != eventType {
			continue
		}
		entries = append(entries, ev)
	}
	if len(entries) > lines {
		entries = entries[len(entries)-lines:]
	}

	if jsonOut {
		return NewJSONResponse("audit show", entries).Write(w)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No audit entries."))
		return nil
	}
	for _, ev := range entries {
		style, ok := eventTypeColors[ev.EventType]
		if !ok {
			style = ValueStyle
		}
		status := SuccessStyle.Render("ok")
		if !ev.Success {
			status = WarningStyle.Render("failed")
		}
		sessionID := ev.SessionID
		if sessionID == "" {
			sessionID = "-"
		}
		fmt.Fprintf(w, "%s  %-24s %-31s %s\n",
			DimStyle.Render(ev.Timestamp.Format("2006-01-02 15:04:05")),
			style.Render(ev.EventType),
			sessionID,
			status)
	}
	return nil
}
