// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - login, logout and status without the TUI.
//
// Examples:
//   studentconnect login student@studentconnect.dev
//   echo "$PW" | studentconnect login --email tutor@studentconnect.dev --password-stdin
//   studentconnect status --json
//   studentconnect logout

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/studentconnect/studentconnect-tui/internal/auth"
	"github.com/studentconnect/studentconnect-tui/internal/logging"
	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// NAVIGATION
// =============================================================================

// recordingNavigator keeps the login-screen message instead of showing it.
type recordingNavigator struct {
	message string
}

func (n *recordingNavigator) NavigateToLogin(message string) {
	n.message = message
}

// newManager builds a session manager over the Env's collaborators.
func (e *Env) newManager(nav session.Navigator) (*session.Manager, error) {
	return session.New(session.Deps{
		Store:     e.Store,
		Auth:      e.Auth,
		Events:    e.Bus,
		Navigator: nav,
		Logger:    logging.Component(e.Logger, "session"),
		Auditor:   e.sessionAuditor(),
	})
}

// =============================================================================
// PROMPTS FROM A READER
// =============================================================================

// ReaderPrompter reads answers line by line from r, for piped input.
type ReaderPrompter struct {
	r *bufio.Reader
}

// NewReaderPrompter wraps r.
func NewReaderPrompter(r io.Reader) *ReaderPrompter {
	return &ReaderPrompter{r: bufio.NewReader(r)}
}

// Prompt reads the next line.
func (p *ReaderPrompter) Prompt(string) (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password reads the next line.
func (p *ReaderPrompter) Password(label string) (string, error) {
	return p.Prompt(label)
}

// =============================================================================
// LOGIN
// =============================================================================

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserJSON(u *auth.User) *userJSON {
	if u == nil {
		return nil
	}
	return &userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()}
}

// RunLogin signs in and starts a session, exactly as the login screen does.
func RunLogin(args Args, p Prompter, w io.Writer) error {
	ap := args.Parser("--password-stdin")
	email := ap.Flag("--email", "-e")
	if email == "" {
		email = ap.Positional(0)
	}

	env, err := OpenEnv(args, true)
	if err != nil {
		return err
	}
	defer env.Close()

	if email == "" {
		if p == nil {
			return errors.New("email required: studentconnect login EMAIL")
		}
		if email, err = p.Prompt("Email: "); err != nil {
			return err
		}
	}

	pw := p
	if ap.BoolFlag("--password-stdin") {
		pw = NewReaderPrompter(os.Stdin)
	}
	if pw == nil {
		return errors.New("password required: use --password-stdin when not on a terminal")
	}
	password, err := pw.Password("Password: ")
	if err != nil {
		return err
	}

	// The manager is mounted across sign-in so it stamps activity and
	// opens the session like the TUI would.
	mgr, err := env.newManager(&recordingNavigator{})
	if err != nil {
		return err
	}
	if err := mgr.Start(); err != nil {
		return err
	}
	user, err := env.Auth.Login(email, password)
	state := mgr.State()
	mgr.Stop()

	if err != nil {
		if args.JSON {
			return NewJSONErrorResponse("login", err).Write(w)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("login", map[string]interface{}{
			"user":       toUserJSON(user),
			"session_id": state.SessionID,
		}).Write(w)
	}
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Signed in as %s (%s)", user.Name, user.Role.Title())))
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("Session ends after %d minutes without activity.", int(session.SessionTimeout/time.Minute))))
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// RunLogout runs the session manager's logout procedure.
func RunLogout(args Args, w io.Writer) error {
	env, err := OpenEnv(args, true)
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := env.Auth.CurrentUser()
	if err != nil {
		if args.JSON {
			return NewJSONResponse("logout", map[string]interface{}{"signed_out": false}).Write(w)
		}
		fmt.Fprintln(w, DimStyle.Render("Not signed in."))
		return nil
	}

	nav := &recordingNavigator{}
	mgr, err := env.newManager(nav)
	if err != nil {
		return err
	}
	mgr.Logout()

	if args.JSON {
		return NewJSONResponse("logout", map[string]interface{}{
			"signed_out": true,
			"user":       toUserJSON(user),
			"message":    nav.message,
		}).Write(w)
	}
	fmt.Fprintln(w, SuccessStyle.Render("Signed out "+user.Name+"."))
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// SessionStatus is what `studentconnect status` reports.
type SessionStatus struct {
	SignedIn         bool      `json:"signed_in"`
	User             *userJSON `json:"user,omitempty"`
	State            string    `json:"state"`
	IdleSeconds      int64     `json:"idle_seconds,omitempty"`
	SecondsRemaining int64     `json:"seconds_remaining,omitempty"`
	Store            string    `json:"store"`
	StorePath        string    `json:"store_path,omitempty"`
}

// Session states reported by status.
const (
	StatusSignedOut = "signed_out"
	StatusActive    = "active"
	StatusWarning   = "warning"
	StatusExpired   = "expired"
	StatusUnknown   = "no_activity"
)

// describeSession classifies idle time the way the manager's check does:
// past the timeout is expired, inside the final minute is a warning.
func describeSession(idle time.Duration) (state string, remaining int64) {
	remainingMS := session.SessionTimeout.Milliseconds() - idle.Milliseconds()
	switch {
	case remainingMS < 0:
		return StatusExpired, 0
	case remainingMS < session.WarningLead.Milliseconds():
		return StatusWarning, remainingMS / 1000
	default:
		return StatusActive, remainingMS / 1000
	}
}

// readStatus inspects the store without mounting a manager.
func readStatus(env *Env, now time.Time) SessionStatus {
	st := SessionStatus{
		State: StatusSignedOut,
		Store: env.Config.Store.Driver,
	}
	if st.Store == storage.DriverSQLite {
		st.StorePath = env.Config.StorePath()
	}

	user, err := env.Auth.CurrentUser()
	if err != nil {
		return st
	}
	st.SignedIn = true
	st.User = toUserJSON(user)

	raw, err := env.Store.Get(storage.KeyLastActivity)
	if err != nil {
		st.State = StatusUnknown
		return st
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		st.State = StatusUnknown
		return st
	}
	idle := now.Sub(time.UnixMilli(ms))
	st.IdleSeconds = int64(idle / time.Second)
	st.State, st.SecondsRemaining = describeSession(idle)
	return st
}

// RunStatus prints the signed-in user and how long until the session
// times out.
func RunStatus(args Args, w io.Writer) error {
	env, err := OpenEnv(args, true)
	if err != nil {
		return err
	}
	defer env.Close()

	st := readStatus(env, time.Now())
	if args.JSON {
		return NewJSONResponse("status", st).Write(w)
	}

	fmt.Fprintln(w, TitleStyle.Render("StudentConnect"))
	if !st.SignedIn {
		printField(w, "Signed in", "no")
	} else {
		printField(w, "Signed in", st.User.Name+" <"+st.User.Email+">")
		printField(w, "Role", auth.Role(st.User.Role).Title())
		switch st.State {
		case StatusUnknown:
			printField(w, "Idle", "unknown")
		case StatusExpired:
			printField(w, "Idle", util.FormatIdle(time.Duration(st.IdleSeconds)*time.Second))
			printField(w, "Session", WarningStyle.Render("expired (logs out on next check)"))
		default:
			printField(w, "Idle", util.FormatIdle(time.Duration(st.IdleSeconds)*time.Second))
			printField(w, "Time left", util.FormatCountdown(int(st.SecondsRemaining)))
			if st.State == StatusWarning {
				printField(w, "Session", WarningStyle.Render("warning"))
			}
		}
	}
	store := st.Store
	if st.StorePath != "" {
		store += " (" + st.StorePath + ")"
	}
	printField(w, "Storage", store)
	return nil
}
