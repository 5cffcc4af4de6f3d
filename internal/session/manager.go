// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/studentconnect/studentconnect-tui/internal/events"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// SessionTimeout is the maximum allowed inactivity before forced logout.
	SessionTimeout = 15 * time.Minute

	// WarningLead is how long before the timeout the warning appears.
	WarningLead = 60 * time.Second

	// CheckInterval is the period of the background inactivity check.
	CheckInterval = 60 * time.Second

	// CountdownInterval is the period of the warning countdown.
	CountdownInterval = time.Second

	// ActivityWriteInterval is the minimum gap between activity writes
	// caused by input events. Continue and sign-in always write.
	ActivityWriteInterval = time.Second

	// ExpiredMessage is shown on the login screen after logout.
	ExpiredMessage = "Your session has expired due to inactivity. Please log in again."
)

// Audit event types written by the manager.
const (
	EventSessionStarted = "SESSION_STARTED"
	EventTimeoutWarning = "SESSION_TIMEOUT_WARNING"
	EventExtended       = "SESSION_EXTENDED"
	EventTimeout        = "SESSION_TIMEOUT"
	EventLogout         = "SESSION_LOGOUT"
)

// ErrMissingDependency is returned by New when a required collaborator is nil.
var ErrMissingDependency = errors.New("session: missing dependency")

// =============================================================================
// COLLABORATORS
// =============================================================================

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_collaborators.go -package=mocks . Navigator,Auditor

// Store is the subset of storage.Store the manager uses.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Authenticator answers whether a user is signed in.
type Authenticator interface {
	IsAuthenticated() bool
}

// EventBus is the process-wide publish/subscribe channel.
type EventBus interface {
	Subscribe(topic events.Topic, h events.Handler) func()
	Publish(e events.Event)
}

// Navigator moves the user to the login surface.
type Navigator interface {
	NavigateToLogin(message string)
}

// Auditor records session events.
type Auditor interface {
	LogEvent(sessionID, eventType string, metadata map[string]string) error
}

// Deps are the manager's collaborators. Store, Auth, Events and Navigator
// are required.
type Deps struct {
	Store     Store
	Auth      Authenticator
	Events    EventBus
	Navigator Navigator

	Clock   Clock          // default: SystemClock
	Logger  zerolog.Logger // default: discard
	Auditor Auditor        // optional
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the inactivity check, the warning countdown and logout.
type Manager struct {
	deps Deps

	mu      sync.Mutex
	running bool

	checkTimer Timer
	checkGen   uint64

	countdown    Timer
	countdownGen uint64

	unsubscribe []func()

	sessionID        string
	warningVisible   bool
	secondsRemaining int
	loggedOut        bool
	lastStampMs      int64

	seq       uint64
	observers map[int]func(State)
	nextObsID int
}

// New creates a stopped manager.
func New(deps Deps) (*Manager, error) {
	switch {
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: store is nil", ErrMissingDependency)
	case deps.Auth == nil:
		return nil, fmt.Errorf("%w: auth is nil", ErrMissingDependency)
	case deps.Events == nil:
		return nil, fmt.Errorf("%w: event bus is nil", ErrMissingDependency)
	case deps.Navigator == nil:
		return nil, fmt.Errorf("%w: navigator is nil", ErrMissingDependency)
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	return &Manager{
		deps:      deps,
		observers: make(map[int]func(State)),
	}, nil
}

// after collects side effects to run once the lock is released.
type after []func()

func (a after) run() {
	for _, fn := range a {
		fn()
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start mounts the manager. Calling Start on a running manager is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true

	bus := m.deps.Events
	for _, topic := range events.ActivityTopics {
		m.unsubscribe = append(m.unsubscribe, bus.Subscribe(topic, func(events.Event) {
			m.RecordActivity()
		}))
	}
	m.unsubscribe = append(m.unsubscribe, bus.Subscribe(events.AuthStateChanged, m.handleAuthStateChanged))

	m.checkGen++
	gen := m.checkGen
	m.checkTimer = m.deps.Clock.Every(CheckInterval, func() { m.periodicCheck(gen) })

	var post after
	if m.deps.Auth.IsAuthenticated() && m.sessionID == "" {
		m.sessionID = m.newSessionIDLocked()
		post = append(post, m.auditFn(m.sessionID, EventSessionStarted, map[string]string{"resumed": "true"}))
	}
	m.mu.Unlock()

	post.run()
	m.deps.Logger.Debug().Msg("session manager started")

	m.Check()
	return nil
}

// Stop unmounts the manager, cancelling both timers and every subscription.
// Stop is idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false

	if m.checkTimer != nil {
		m.checkTimer.Stop()
		m.checkTimer = nil
	}
	m.checkGen++
	m.stopCountdownLocked()
	m.warningVisible = false
	m.secondsRemaining = 0

	unsubs := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	m.deps.Logger.Debug().Msg("session manager stopped")
}

// Running reports whether the manager is mounted.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// =============================================================================
// STATE
// =============================================================================

// State returns a snapshot of the manager.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	phase := PhaseInactiveCheck
	switch {
	case m.loggedOut:
		phase = PhaseLoggedOut
	case m.warningVisible:
		phase = PhaseWarning
	}
	return State{
		SessionID:        m.sessionID,
		Phase:            phase,
		WarningVisible:   m.warningVisible,
		SecondsRemaining: m.secondsRemaining,
		Seq:              m.seq,
	}
}

// Subscribe registers fn to receive a State after every visible change.
// fn runs without the manager's lock held. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// notifyFn returns a deferred notification carrying the current state.
// Each call takes the next sequence number, so observers that receive
// notifications out of order can discard the older ones by Seq.
func (m *Manager) notifyFn() func() {
	m.seq++
	state := m.stateLocked()
	fns := make([]func(State), 0, len(m.observers))
	for id := 0; id < m.nextObsID; id++ {
		if fn, ok := m.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return func() {
		for _, fn := range fns {
			fn(state)
		}
	}
}

// =============================================================================
// ACTIVITY
// =============================================================================

// RecordActivity stamps lastActivity with the current time if a user is
// signed in. An open warning stays open; only Continue dismisses it.
// Writes are limited to one per ActivityWriteInterval.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || !m.deps.Auth.IsAuthenticated() {
		return
	}
	m.loggedOut = false
	now := m.deps.Clock.Now().UnixMilli()
	if m.lastStampMs != 0 && now-m.lastStampMs < ActivityWriteInterval.Milliseconds() {
		return
	}
	m.stampActivityLocked()
}

func (m *Manager) stampActivityLocked() {
	ms := m.deps.Clock.Now().UnixMilli()
	m.lastStampMs = ms
	now := strconv.FormatInt(ms, 10)
	if err := m.deps.Store.Set(storage.KeyLastActivity, now); err != nil {
		m.deps.Logger.Warn().Err(err).Str("key", storage.KeyLastActivity).Msg("failed to record activity")
	}
}

// lastActivityLocked reads the activity record. A missing or malformed
// record reports ok=false.
func (m *Manager) lastActivityLocked() (int64, bool) {
	raw, err := m.deps.Store.Get(storage.KeyLastActivity)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.deps.Logger.Warn().Err(err).Msg("failed to read last activity")
		}
		return 0, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		m.deps.Logger.Warn().Str("value", raw).Msg("ignoring malformed last activity")
		return 0, false
	}
	return ms, true
}

// =============================================================================
// INACTIVITY CHECK
// =============================================================================

// Check evaluates idle time now: it logs out past the timeout, shows the
// warning inside the warning window and otherwise does nothing.
func (m *Manager) Check() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	post := m.checkLocked()
	m.mu.Unlock()
	post.run()
}

func (m *Manager) periodicCheck(gen uint64) {
	m.mu.Lock()
	if !m.running || gen != m.checkGen {
		m.mu.Unlock()
		return
	}
	post := m.checkLocked()
	m.mu.Unlock()
	post.run()
}

func (m *Manager) checkLocked() after {
	if !m.deps.Auth.IsAuthenticated() {
		return nil
	}
	m.loggedOut = false

	last, ok := m.lastActivityLocked()
	if !ok {
		return nil
	}

	now := m.deps.Clock.Now().UnixMilli()
	elapsed := now - last
	timeout := SessionTimeout.Milliseconds()

	if elapsed > timeout {
		m.deps.Logger.Info().Int64("idle_ms", elapsed).Msg("session timed out")
		return after{func() { m.logout(EventTimeout, "inactivity") }}
	}
	if elapsed <= timeout-WarningLead.Milliseconds() {
		return nil
	}

	var post after
	wasVisible := m.warningVisible
	m.warningVisible = true
	m.secondsRemaining = int((timeout - elapsed) / 1000)

	if m.countdown == nil {
		m.countdownGen++
		gen := m.countdownGen
		m.countdown = m.deps.Clock.Every(CountdownInterval, func() { m.tick(gen) })
	}
	if !wasVisible {
		post = append(post, m.auditFn(m.sessionID, EventTimeoutWarning, map[string]string{
			"seconds_remaining": strconv.Itoa(m.secondsRemaining),
		}))
	}
	return append(post, m.notifyFn())
}

// =============================================================================
// COUNTDOWN
// =============================================================================

func (m *Manager) tick(gen uint64) {
	m.mu.Lock()
	if m.countdown == nil || gen != m.countdownGen {
		m.mu.Unlock()
		return
	}

	m.secondsRemaining--
	if m.secondsRemaining <= 0 {
		m.secondsRemaining = 0
		m.stopCountdownLocked()
		m.mu.Unlock()
		m.logout(EventTimeout, "countdown")
		return
	}
	notify := m.notifyFn()
	m.mu.Unlock()
	notify()
}

func (m *Manager) stopCountdownLocked() {
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
	m.countdownGen++
}

// Continue extends the session: it stamps lastActivity, cancels the
// countdown and hides the warning.
func (m *Manager) Continue() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	wasVisible := m.warningVisible
	if m.deps.Auth.IsAuthenticated() {
		m.stampActivityLocked()
	}
	m.stopCountdownLocked()
	m.warningVisible = false
	m.secondsRemaining = 0

	post := after{m.notifyFn()}
	if wasVisible {
		post = append(post, m.auditFn(m.sessionID, EventExtended, nil))
	}
	m.mu.Unlock()
	post.run()
}

// =============================================================================
// LOGOUT
// =============================================================================

// Logout ends the session at the user's request. It clears the user and
// activity records, publishes auth-state-changed and navigates to login.
// Repeated calls before the next sign-in do nothing.
func (m *Manager) Logout() {
	m.logout(EventLogout, "user")
}

func (m *Manager) logout(eventType, reason string) {
	m.mu.Lock()
	if m.loggedOut {
		m.mu.Unlock()
		return
	}
	m.loggedOut = true
	m.lastStampMs = 0

	m.stopCountdownLocked()
	m.warningVisible = false
	m.secondsRemaining = 0

	for _, key := range []string{storage.KeyUser, storage.KeyLastActivity} {
		if err := m.deps.Store.Remove(key); err != nil {
			m.deps.Logger.Warn().Err(err).Str("key", key).Msg("failed to clear session record")
		}
	}

	sessionID := m.sessionID
	notify := m.notifyFn()
	m.mu.Unlock()

	m.deps.Logger.Info().Str("session", sessionID).Str("reason", reason).Msg("logged out")
	m.deps.Events.Publish(events.Event{Topic: events.AuthStateChanged})
	notify()
	m.auditFn(sessionID, eventType, map[string]string{"reason": reason})()
	m.deps.Navigator.NavigateToLogin(ExpiredMessage)
}

// =============================================================================
// AUTH STATE
// =============================================================================

// handleAuthStateChanged starts a fresh session on sign-in and quietly
// drops any warning on sign-out performed elsewhere.
func (m *Manager) handleAuthStateChanged(events.Event) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	m.stopCountdownLocked()
	m.warningVisible = false
	m.secondsRemaining = 0

	var post after
	if m.deps.Auth.IsAuthenticated() {
		m.loggedOut = false
		m.stampActivityLocked()
		m.sessionID = m.newSessionIDLocked()
		post = append(post, m.auditFn(m.sessionID, EventSessionStarted, nil))
	}
	post = append(post, m.notifyFn())
	m.mu.Unlock()
	post.run()
}

func (m *Manager) newSessionIDLocked() string {
	id := ulid.MustNew(ulid.Timestamp(m.deps.Clock.Now()), ulid.DefaultEntropy())
	return "sess_" + id.String()
}

func (m *Manager) auditFn(sessionID, eventType string, metadata map[string]string) func() {
	auditor := m.deps.Auditor
	log := m.deps.Logger
	return func() {
		if auditor == nil {
			return
		}
		if err := auditor.LogEvent(sessionID, eventType, metadata); err != nil {
			log.Warn().Err(err).Str("event", eventType).Msg("failed to write audit event")
		}
	}
}
