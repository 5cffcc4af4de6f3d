// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studentconnect/studentconnect-tui/internal/audit"
	"github.com/studentconnect/studentconnect-tui/internal/auth"
	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate gives each test its own config directory and fast password hashing.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STUDENTCONNECT_HOME", dir)
	for _, k := range []string{
		"STUDENTCONNECT_STORE_DRIVER", "STUDENTCONNECT_STORE_PATH", "STUDENTCONNECT_REDIS_URL",
		"STUDENTCONNECT_NAMESPACE", "STUDENTCONNECT_TOKEN_SECRET", "STUDENTCONNECT_AUDIT",
		"STUDENTCONNECT_LOG_LEVEL", "STUDENTCONNECT_THEME",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	prev := bcryptCost
	bcryptCost = bcrypt.MinCost
	t.Cleanup(func() { bcryptCost = prev })
	return dir
}

// fakePrompter answers prompts from fixed values.
type fakePrompter struct {
	email    string
	password string
	asked    []string
}

func (p *fakePrompter) Prompt(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.email, nil
}

func (p *fakePrompter) Password(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.password, nil
}

func login(t *testing.T, args Args, email string) string {
	t.Helper()
	var out bytes.Buffer
	args.Raw = []string{email}
	require.NoError(t, RunLogin(args, &fakePrompter{password: auth.DemoPassword}, &out))
	return out.String()
}

func status(t *testing.T, args Args) SessionStatus {
	t.Helper()
	var out bytes.Buffer
	args.JSON = true
	require.NoError(t, RunStatus(args, &out))

	var resp struct {
		Success bool          `json:"success"`
		Data    SessionStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func auditTypes(t *testing.T, dir string) []string {
	t.Helper()
	lines, err := audit.Tail(filepath.Join(dir, "audit.log"), 0)
	require.NoError(t, err)
	var types []string
	for _, line := range lines {
		ev, err := audit.ParseLine(line)
		require.NoError(t, err)
		types = append(types, ev.EventType)
	}
	return types
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"show", "--lines", "5", "--type=SESSION_TIMEOUT", "-y", "extra"}, "-y")

	assert.Equal(t, "show", p.Subcommand())
	assert.Equal(t, "extra", p.Positional(1))
	assert.Equal(t, 2, p.PositionalCount())
	assert.Equal(t, "", p.Positional(5))
	assert.Equal(t, 5, p.FlagIntOrDefault(20, "--lines", "-n"))
	assert.Equal(t, "SESSION_TIMEOUT", p.Flag("--type", "-t"))
	assert.True(t, p.BoolFlag("--confirm", "-y"))
	assert.False(t, p.BoolFlag("--json"))
}

func TestArgParser_IntFlagDefaults(t *testing.T) {
	assert.Equal(t, 20, NewArgParser(nil).FlagIntOrDefault(20, "--lines"))
	assert.Equal(t, 20, NewArgParser([]string{"-n", "many"}).FlagIntOrDefault(20, "--lines", "-n"))
	assert.Equal(t, 7, NewArgParser([]string{"-n=7"}).FlagIntOrDefault(20, "--lines", "-n"))
}

func TestArgParser_BoolNamesDoNotConsumeValues(t *testing.T) {
	p := NewArgParser([]string{"--password-stdin", "tutor@studentconnect.dev"}, "--password-stdin")
	assert.True(t, p.BoolFlag("--password-stdin"))
	assert.Equal(t, "tutor@studentconnect.dev", p.Positional(0))

	p = NewArgParser([]string{"--email", "tutor@studentconnect.dev"})
	assert.Equal(t, "tutor@studentconnect.dev", p.Flag("--email"))
	assert.Equal(t, 0, p.PositionalCount())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
		want Args
	}{
		{"no args starts tui", nil, CmdTUI, Args{}},
		{"global flags only", []string{"--ephemeral", "-v"}, CmdTUI, Args{Ephemeral: true, Verbose: true}},
		{"whoami alias", []string{"whoami", "--json"}, CmdStatus, Args{JSON: true, Raw: []string{}}},
		{"config subcommand", []string{"config", "get", "ui.theme"}, CmdConfig,
			Args{Subcommand: "get", Raw: []string{"get", "ui.theme"}}},
		{"flags after command", []string{"audit", "show", "-n", "5", "--config", "/tmp/c.toml"}, CmdAudit,
			Args{ConfigPath: "/tmp/c.toml", Subcommand: "show", Raw: []string{"show", "-n", "5"}}},
		{"config equals form", []string{"--config=/tmp/c.json", "logout"}, CmdLogout,
			Args{ConfigPath: "/tmp/c.json", Raw: []string{}}},
		{"help flag", []string{"status", "--help"}, CmdHelp, Args{}},
		{"version flag", []string{"--version"}, CmdVersion, Args{}},
		{"case insensitive", []string{"Clear-Data", "--confirm"}, CmdClearData, Args{Raw: []string{"--confirm"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			if tt.want.Raw == nil {
				tt.want.Raw = args.Raw
			}
			assert.Equal(t, tt.want, args)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse([]string{"launch"})
	assert.ErrorContains(t, err, "unknown command: launch")

	_, _, err = Parse([]string{"status", "--config"})
	assert.ErrorContains(t, err, "--config requires a path")
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "clear-data", CmdClearData.String())
	assert.Equal(t, "status", CmdStatus.String())
	assert.Equal(t, "unknown", Command(99).String())
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(&out)
	assert.Contains(t, out.String(), "studentconnect logout")
	assert.Contains(t, out.String(), "Version: "+Version)
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func TestLogin_StartsSession(t *testing.T) {
	dir := isolate(t)

	out := login(t, Args{}, "student@studentconnect.dev")
	assert.Contains(t, out, "Signed in as Amani Otieno (Student)")
	assert.Contains(t, out, "15 minutes")

	st := status(t, Args{})
	assert.True(t, st.SignedIn)
	require.NotNil(t, st.User)
	assert.Equal(t, "demo-student", st.User.ID)
	assert.Equal(t, StatusActive, st.State)
	assert.InDelta(t, 900, st.SecondsRemaining, 5)
	assert.Equal(t, storage.DriverSQLite, st.Store)
	assert.Equal(t, filepath.Join(dir, "local_storage.db"), st.StorePath)

	assert.Equal(t, []string{audit.EventLoginSucceeded, session.EventSessionStarted}, auditTypes(t, dir))
}

func TestLogin_PromptsForMissingEmail(t *testing.T) {
	isolate(t)
	p := &fakePrompter{email: "Tutor@StudentConnect.dev", password: auth.DemoPassword}

	var out bytes.Buffer
	require.NoError(t, RunLogin(Args{}, p, &out))
	assert.Equal(t, []string{"Email: ", "Password: "}, p.asked)
	assert.Contains(t, out.String(), "Grace Wanjiru (Tutor)")
}

func TestLogin_WrongPassword(t *testing.T) {
	dir := isolate(t)

	err := RunLogin(Args{Raw: []string{"--email", "student@studentconnect.dev"}},
		&fakePrompter{password: "nope-nope"}, &bytes.Buffer{})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	assert.False(t, status(t, Args{}).SignedIn)
	assert.Equal(t, []string{audit.EventLoginFailed}, auditTypes(t, dir))
}

func TestLogin_JSON(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	args := Args{JSON: true, Raw: []string{"admin@studentconnect.dev"}}
	require.NoError(t, RunLogin(args, &fakePrompter{password: auth.DemoPassword}, &out))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			User      userJSON `json:"user"`
			SessionID string   `json:"session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", resp.Data.User.Role)
	assert.True(t, strings.HasPrefix(resp.Data.SessionID, "sess_"))
}

func TestLogout(t *testing.T) {
	dir := isolate(t)
	login(t, Args{}, "student@studentconnect.dev")

	var out bytes.Buffer
	require.NoError(t, RunLogout(Args{}, &out))
	assert.Contains(t, out.String(), "Signed out Amani Otieno.")

	st := status(t, Args{})
	assert.False(t, st.SignedIn)
	assert.Equal(t, StatusSignedOut, st.State)
	assert.Contains(t, auditTypes(t, dir), session.EventLogout)

	out.Reset()
	require.NoError(t, RunLogout(Args{}, &out))
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestLogout_JSONCarriesLoginMessage(t *testing.T) {
	isolate(t)
	login(t, Args{}, "tutor@studentconnect.dev")

	var out bytes.Buffer
	require.NoError(t, RunLogout(Args{JSON: true}, &out))
	assert.Contains(t, out.String(), `"signed_out": true`)
	assert.Contains(t, out.String(), session.ExpiredMessage)
}

func TestStatus_ExpiredSession(t *testing.T) {
	dir := isolate(t)
	login(t, Args{}, "student@studentconnect.dev")

	store, err := storage.OpenSQLite(filepath.Join(dir, "local_storage.db"))
	require.NoError(t, err)
	stale := time.Now().Add(-16 * time.Minute).UnixMilli()
	require.NoError(t, store.Set(storage.KeyLastActivity, strconv.FormatInt(stale, 10)))
	require.NoError(t, store.Close())

	st := status(t, Args{})
	assert.True(t, st.SignedIn)
	assert.Equal(t, StatusExpired, st.State)
	assert.Zero(t, st.SecondsRemaining)
	assert.GreaterOrEqual(t, st.IdleSeconds, int64(16*60))

	var out bytes.Buffer
	require.NoError(t, RunStatus(Args{}, &out))
	assert.Contains(t, out.String(), "expired")
}

func TestStatus_Text(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.NoError(t, RunStatus(Args{Ephemeral: true}, &out))
	assert.Contains(t, out.String(), "Signed in")
	assert.Contains(t, out.String(), "no")
	assert.Contains(t, out.String(), "memory")
}

func TestEphemeral_DoesNotPersist(t *testing.T) {
	isolate(t)
	login(t, Args{Ephemeral: true}, "student@studentconnect.dev")

	assert.False(t, status(t, Args{Ephemeral: true}).SignedIn)
	assert.False(t, status(t, Args{}).SignedIn)
}

func TestDescribeSession(t *testing.T) {
	tests := []struct {
		idle      time.Duration
		state     string
		remaining int64
	}{
		{0, StatusActive, 900},
		{14 * time.Minute, StatusActive, 60},
		{14*time.Minute + 500*time.Millisecond, StatusWarning, 59},
		{15 * time.Minute, StatusWarning, 0},
		{15*time.Minute + time.Millisecond, StatusExpired, 0},
	}
	for _, tt := range tests {
		state, remaining := describeSession(tt.idle)
		assert.Equal(t, tt.state, state, "idle %s", tt.idle)
		assert.Equal(t, tt.remaining, remaining, "idle %s", tt.idle)
	}
}

func TestReaderPrompter(t *testing.T) {
	p := NewReaderPrompter(strings.NewReader("first\nsecret"))
	v, err := p.Prompt("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	v, err = p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	_, err = p.Prompt("again")
	assert.Error(t, err)
}

// =============================================================================
// CONFIG, AUDIT AND CLEAR-DATA
// =============================================================================

func TestConfig_SetGet(t *testing.T) {
	dir := isolate(t)

	var out bytes.Buffer
	require.NoError(t, RunConfig(Args{Raw: []string{"set", "ui.theme", "light"}}, &out))
	assert.Contains(t, out.String(), "Set ui.theme = light")
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	out.Reset()
	require.NoError(t, RunConfig(Args{Raw: []string{"get", "ui.theme"}}, &out))
	assert.Equal(t, "light\n", out.String())

	err := RunConfig(Args{Raw: []string{"set", "ui.theme", "neon"}}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "ui.theme")
}

func TestConfig_RedactsSecret(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.NoError(t, RunConfig(Args{Raw: []string{"get", "auth.token_secret"}}, &out))
	assert.Equal(t, "[REDACTED]\n", out.String())

	out.Reset()
	require.NoError(t, RunConfig(Args{}, &out))
	assert.NotContains(t, out.String(), "studentconnect-local-dev-secret")
}

func TestConfig_KeysAndPath(t *testing.T) {
	dir := isolate(t)

	var out bytes.Buffer
	require.NoError(t, RunConfig(Args{Raw: []string{"keys"}}, &out))
	assert.Contains(t, out.String(), "store.driver\n")

	out.Reset()
	require.NoError(t, RunConfig(Args{Raw: []string{"path"}}, &out))
	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", out.String())

	assert.ErrorContains(t, RunConfig(Args{Raw: []string{"frobnicate"}}, &out), "unknown config subcommand")
}

func TestAudit_ShowAndFilter(t *testing.T) {
	isolate(t)
	login(t, Args{}, "student@studentconnect.dev")
	require.NoError(t, RunLogout(Args{}, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, RunAudit(Args{Raw: []string{"show"}}, &out))
	assert.Contains(t, out.String(), audit.EventLoginSucceeded)
	assert.Contains(t, out.String(), session.EventLogout)

	out.Reset()
	require.NoError(t, RunAudit(Args{JSON: true, Raw: []string{"show", "--type", "session_logout"}}, &out))
	var resp struct {
		Data []audit.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, session.EventLogout, resp.Data[0].EventType)
	assert.Equal(t, "user", resp.Data[0].Metadata["reason"])

	out.Reset()
	require.NoError(t, RunAudit(Args{Raw: []string{"show", "-n", "1"}}, &out))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestAudit_Empty(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.NoError(t, RunAudit(Args{}, &out))
	assert.Contains(t, out.String(), "No audit entries.")
}

func TestClearData(t *testing.T) {
	dir := isolate(t)
	login(t, Args{}, "student@studentconnect.dev")

	assert.ErrorIs(t, RunClearData(Args{}, &bytes.Buffer{}), ErrConfirmRequired)
	assert.True(t, status(t, Args{}).SignedIn)

	var out bytes.Buffer
	require.NoError(t, RunClearData(Args{Raw: []string{"--confirm"}}, &out))
	assert.Contains(t, out.String(), "Cleared 2 stored keys.")

	assert.False(t, status(t, Args{}).SignedIn)
	assert.Contains(t, auditTypes(t, dir), audit.EventDataCleared)
}
