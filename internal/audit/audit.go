// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit writes the append-only trail of session and sign-in events.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxFileSize is the default max file size before rotation (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// Event types written outside the session manager.
const (
	EventLoginSucceeded = "LOGIN_SUCCESS"
	EventLoginFailed    = "LOGIN_FAILURE"
	EventRegistered     = "USER_REGISTERED"
	EventDataCleared    = "SITE_DATA_CLEARED"
)

// =============================================================================
// AUDIT EVENT
// =============================================================================

// Event is a single audit entry.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	SessionID string            `json:"session_id"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ToLogLine formats the event as
// "2006-01-02 15:04:05 | TYPE | session | k=v k=v | SUCCESS".
func (e *Event) ToLogLine() string {
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+e.Metadata[k])
	}

	status := "SUCCESS"
	if !e.Success {
		if e.Error != "" {
			status = "ERROR: " + e.Error
		} else {
			status = "FAILURE"
		}
	}

	session := e.SessionID
	if session == "" {
		session = "-"
	}

	return fmt.Sprintf("%s | %s | %s | %s | %s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.EventType,
		session,
		strings.Join(pairs, " "),
		status,
	)
}

// ToJSON formats the event as JSON.
func (e *Event) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// REDACTION
// =============================================================================

var secretPatterns = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-_.]+`), "Bearer [TOKEN_REDACTED]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*\S+`), "[PASSWORD_REDACTED]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), "[JWT_REDACTED]"},
	{regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`), "[HASH_REDACTED]"},
}

// sensitiveKeys never have their values written.
var sensitiveKeys = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
}

// Redact applies the secret patterns to input.
func Redact(input string) string {
	result := input
	for _, sp := range secretPatterns {
		result = sp.pattern.ReplaceAllString(result, sp.replace)
	}
	return result
}

// sanitize keeps values on one line so the pipe format stays parseable.
func sanitize(v string) string {
	v = strings.NewReplacer("\n", " ", "\r", " ", "|", "/").Replace(v)
	return Redact(v)
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

// Logger appends events to a 0600 file and rotates it by size.
// A nil *Logger discards everything.
type Logger struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	enabled bool
	maxSize int64
	now     func() time.Time
}

// Open opens (creating if needed) the audit log at path.
func Open(path string) (*Logger, error) {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		path:    path,
		file:    file,
		enabled: true,
		maxSize: DefaultMaxFileSize,
		now:     time.Now,
	}, nil
}

// Log writes an event. Metadata values are redacted in place.
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	clean := make(map[string]string, len(event.Metadata))
	for k, v := range event.Metadata {
		if sensitiveKeys[strings.ToLower(k)] {
			v = "[REDACTED]"
		}
		clean[k] = sanitize(v)
	}
	event.Metadata = clean
	event.Error = sanitize(event.Error)

	if err := l.checkRotationLocked(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(l.file, event.ToLogLine()); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

// LogEvent records a successful event.
func (l *Logger) LogEvent(sessionID, eventType string, metadata map[string]string) error {
	return l.Log(Event{
		EventType: eventType,
		SessionID: sessionID,
		Success:   true,
		Metadata:  metadata,
	})
}

// LogFailure records a failed event with its error.
func (l *Logger) LogFailure(sessionID, eventType string, cause error, metadata map[string]string) error {
	event := Event{
		EventType: eventType,
		SessionID: sessionID,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	return l.Log(event)
}

// =============================================================================
// FILE ROTATION
// =============================================================================

// Rotate moves the current file aside with a timestamp suffix.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotateLocked()
}

func (l *Logger) rotateLocked() error {
	if l.file == nil {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log for rotation: %w", err)
	}

	ext := filepath.Ext(l.path)
	base := strings.TrimSuffix(l.path, ext)
	rotatedPath := fmt.Sprintf("%s_%s%s", base, l.now().Format("20060102_150405.000"), ext)

	if err := os.Rename(l.path, rotatedPath); err != nil {
		l.file, _ = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.file = nil
		return fmt.Errorf("failed to create new audit log after rotation: %w", err)
	}
	l.file = file
	return nil
}

func (l *Logger) checkRotationLocked() error {
	if l.maxSize <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() >= l.maxSize {
		return l.rotateLocked()
	}
	return nil
}

// SetMaxSize sets the size that triggers rotation. Zero disables rotation.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = size
}

// SetEnabled enables or disables logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Path returns the audit log file path.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Close closes the audit log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// =============================================================================
// READING
// =============================================================================

// Tail returns the last n lines of the audit log at path.
// A missing file yields no lines.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var ring []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		ring = append(ring, scanner.Text())
		if n > 0 && len(ring) > n {
			ring = ring[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return ring, nil
}

// ParseLine splits a log line back into an Event. Metadata values containing
// spaces are not recoverable and are split at the first '='.
func ParseLine(line string) (Event, error) {
	parts := strings.Split(line, " | ")
	if len(parts) != 5 {
		return Event{}, fmt.Errorf("malformed audit line: %q", line)
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", parts[0], time.Local)
	if err != nil {
		return Event{}, fmt.Errorf("malformed audit timestamp: %w", err)
	}

	event := Event{
		Timestamp: ts,
		EventType: parts[1],
		SessionID: parts[2],
		Success:   parts[4] == "SUCCESS",
	}
	if event.SessionID == "-" {
		event.SessionID = ""
	}
	if strings.HasPrefix(parts[4], "ERROR: ") {
		event.Error = strings.TrimPrefix(parts[4], "ERROR: ")
	}
	if fields := strings.Fields(parts[3]); len(fields) > 0 {
		event.Metadata = make(map[string]string, len(fields))
		for _, f := range fields {
			k, v, _ := strings.Cut(f, "=")
			event.Metadata[k] = v
		}
	}
	return event, nil
}

// DefaultPath returns ~/.studentconnect/audit.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".studentconnect", "audit.log")
}
