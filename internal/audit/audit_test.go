// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
}

func openTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(path)
	require.NoError(t, err)
	l.now = fixedNow
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestEvent_ToLogLine(t *testing.T) {
	e := Event{
		Timestamp: fixedNow(),
		EventType: "SESSION_TIMEOUT",
		SessionID: "sess_01HZX",
		Success:   true,
		Metadata:  map[string]string{"reason": "countdown", "email": "ada@example.com"},
	}
	assert.Equal(t,
		"2025-03-01 09:30:00 | SESSION_TIMEOUT | sess_01HZX | email=ada@example.com reason=countdown | SUCCESS",
		e.ToLogLine())

	e.Success = false
	e.Error = "invalid credentials"
	e.SessionID = ""
	e.Metadata = nil
	assert.Equal(t, "2025-03-01 09:30:00 | SESSION_TIMEOUT | - |  | ERROR: invalid credentials", e.ToLogLine())
}

func TestLogger_WritesAndTails(t *testing.T) {
	l, path := openTestLogger(t)

	require.NoError(t, l.LogEvent("sess_a", "SESSION_STARTED", nil))
	require.NoError(t, l.LogEvent("sess_a", "SESSION_LOGOUT", map[string]string{"reason": "user"}))
	require.NoError(t, l.LogFailure("", EventLoginFailed, errors.New("bad password"), map[string]string{"email": "x@y.z"}))

	lines, err := Tail(path, 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	ev, err := ParseLine(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "SESSION_LOGOUT", ev.EventType)
	assert.Equal(t, "sess_a", ev.SessionID)
	assert.Equal(t, map[string]string{"reason": "user"}, ev.Metadata)
	assert.True(t, ev.Success)

	ev, err = ParseLine(lines[1])
	require.NoError(t, err)
	assert.Equal(t, EventLoginFailed, ev.EventType)
	assert.Empty(t, ev.SessionID)
	assert.False(t, ev.Success)
	assert.Equal(t, "bad password", ev.Error)

	all, err := Tail(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLogger_Redacts(t *testing.T) {
	l, path := openTestLogger(t)

	require.NoError(t, l.LogEvent("s", "LOGIN_FAILURE", map[string]string{
		"password": "hunter22",
		"detail":   "password=hunter22",
		"header":   "Bearer abc.def.ghi",
		"note":     "line1\nline2 | piped",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "abc.def.ghi")
	assert.Contains(t, out, "password=[REDACTED]")
	assert.Contains(t, out, "[PASSWORD_REDACTED]")
	assert.Contains(t, out, "line1 line2 / piped")
}

func TestLogger_Rotates(t *testing.T) {
	l, path := openTestLogger(t)
	l.SetMaxSize(10)

	require.NoError(t, l.LogEvent("s", "ONE", nil))
	require.NoError(t, l.LogEvent("s", "TWO", nil))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "audit_*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	lines, err := Tail(path, 0)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "| TWO |")
}

func TestLogger_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	_, path := openTestLogger(t)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLogger_DisabledAndNil(t *testing.T) {
	l, path := openTestLogger(t)
	l.SetEnabled(false)
	require.NoError(t, l.LogEvent("s", "IGNORED", nil))
	lines, err := Tail(path, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)

	var nilLogger *Logger
	assert.NoError(t, nilLogger.LogEvent("s", "X", nil))
	assert.NoError(t, nilLogger.Close())
}

func TestTail_MissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestParseLine_Malformed(t *testing.T) {
	_, err := ParseLine("not an audit line")
	assert.Error(t, err)
	_, err = ParseLine("yesterday | X | s |  | SUCCESS")
	assert.Error(t, err)
}
