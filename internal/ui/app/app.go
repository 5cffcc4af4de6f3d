// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model. It plays the part of the
// browser tab: it owns the screens, turns terminal input into activity
// events on the bus and mounts the session manager for its lifetime.
package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studentconnect/studentconnect-tui/internal/auth"
	"github.com/studentconnect/studentconnect-tui/internal/events"
	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
	"github.com/studentconnect/studentconnect-tui/internal/ui/components"
	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
)

// =============================================================================
// ROUTES
// =============================================================================

// Route is the screen being shown.
type Route int

const (
	RouteLogin Route = iota
	RouteRegister
	RouteHome
)

// String returns the route path.
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "/login"
	case RouteRegister:
		return "/register"
	case RouteHome:
		return "/"
	default:
		return "unknown"
	}
}

// DemoHint is shown under the login form when demo accounts are seeded.
const DemoHint = "demo: student@studentconnect.dev · tutor@ · admin@ / " + auth.DemoPassword

// =============================================================================
// MESSAGES
// =============================================================================

// navigateMsg is the session manager asking for the login screen.
type navigateMsg struct{ message string }

// sessionStateMsg is a manager state change.
type sessionStateMsg session.State

// authChangedMsg follows every auth-state-changed publish.
type authChangedMsg struct{}

// storageChangedMsg follows a write to the store by another process.
type storageChangedMsg struct{}

// navigator hands NavigateToLogin to the UI loop.
type navigator struct{ inbox *inbox }

func (n navigator) NavigateToLogin(message string) {
	n.inbox.push(navigateMsg{message: message})
}

// =============================================================================
// MODEL
// =============================================================================

// Options wires the model to its collaborators. Store, Auth and Bus are
// required.
type Options struct {
	Store   storage.Store
	Auth    *auth.Service
	Bus     *events.Bus
	Clock   session.Clock
	Logger  zerolog.Logger
	Auditor session.Auditor
	Theme   *styles.Theme

	// MouseMotion publishes pointer movement as activity.
	MouseMotion bool

	// StorageName is shown in the status bar, e.g. "sqlite".
	StorageName string

	// DemoHint shows the demo accounts on the login screen.
	DemoHint bool
}

// runtime is the state shared by every copy of the model.
type runtime struct {
	mu      sync.Mutex
	mounted bool
	closed  bool
	unsubs  []func()
}

// Model is the root Bubble Tea model.
type Model struct {
	opts    Options
	inbox   *inbox
	manager *session.Manager
	rt      *runtime

	route    Route
	user     *auth.User
	signedIn bool
	session  session.State

	width  int
	height int

	header   *components.Header
	status   *components.StatusBar
	overlay  components.SessionTimeoutOverlay
	login    components.LoginForm
	register components.RegisterForm
	keys     components.KeyMap
}

// New builds the model and its session manager. Nothing is mounted until
// Init runs.
func New(opts Options) (Model, error) {
	if opts.Store == nil || opts.Auth == nil || opts.Bus == nil {
		return Model{}, errors.New("app: store, auth and bus are required")
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}

	in := newInbox()
	mgr, err := session.New(session.Deps{
		Store:     opts.Store,
		Auth:      opts.Auth,
		Events:    opts.Bus,
		Navigator: navigator{inbox: in},
		Clock:     opts.Clock,
		Logger:    opts.Logger,
		Auditor:   opts.Auditor,
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to create session manager: %w", err)
	}

	m := Model{
		opts:     opts,
		inbox:    in,
		manager:  mgr,
		rt:       &runtime{},
		header:   components.NewHeader(opts.Theme),
		status:   components.NewStatusBar(opts.Theme),
		overlay:  components.NewSessionTimeoutOverlay(opts.Theme),
		login:    components.NewLoginForm(opts.Theme),
		register: components.NewRegisterForm(opts.Theme),
		keys:     components.DefaultKeyMap(),
	}
	m.status.Storage = opts.StorageName
	if opts.DemoHint {
		m.login.SetHint(DemoHint)
	}
	m.syncAuth()
	return m, nil
}

// Manager exposes the session manager.
func (m Model) Manager() *session.Manager { return m.manager }

// Route returns the current screen.
func (m Model) Route() Route { return m.route }

// User returns the signed-in user, or nil.
func (m Model) User() *auth.User { return m.user }

// mount subscribes to the bus and the manager, then starts the manager.
func (m Model) mount() {
	m.rt.mu.Lock()
	if m.rt.mounted || m.rt.closed {
		m.rt.mu.Unlock()
		return
	}
	m.rt.mounted = true

	bus := m.opts.Bus
	m.rt.unsubs = append(m.rt.unsubs,
		m.manager.Subscribe(func(s session.State) { m.inbox.push(sessionStateMsg(s)) }),
		bus.OnAuthStateChanged(func() { m.inbox.push(authChangedMsg{}) }),
		bus.Subscribe(events.StorageChanged, func(events.Event) { m.inbox.push(storageChangedMsg{}) }),
		m.header.Bind(bus, m.identity),
	)
	m.rt.mu.Unlock()

	if err := m.manager.Start(); err != nil {
		m.opts.Logger.Error().Err(err).Msg("failed to start session manager")
	}
}

// Close unmounts the manager and releases every subscription. It is safe
// to call more than once and from any copy of the model.
func (m Model) Close() {
	m.rt.mu.Lock()
	if m.rt.closed {
		m.rt.mu.Unlock()
		return
	}
	m.rt.closed = true
	unsubs := m.rt.unsubs
	m.rt.unsubs = nil
	m.rt.mu.Unlock()

	m.manager.Stop()
	for _, unsub := range unsubs {
		unsub()
	}
	m.inbox.close()
}

func (m Model) identity() (components.Identity, bool) {
	u, err := m.opts.Auth.CurrentUser()
	if err != nil {
		return components.Identity{}, false
	}
	return components.Identity{Name: u.Name, Role: u.Role.String()}, true
}

// syncAuth re-reads the signed-in user and moves between the auth screens
// and home to match.
func (m *Model) syncAuth() {
	u, err := m.opts.Auth.CurrentUser()
	if err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		m.opts.Logger.Warn().Err(err).Msg("failed to read current user")
	}
	m.user = u
	m.signedIn = err == nil

	switch {
	case m.signedIn && m.route != RouteHome:
		m.route = RouteHome
		m.login.SetFlash("")
		m.login.Reset()
		m.register.Reset()
	case !m.signedIn && m.route == RouteHome:
		m.route = RouteLogin
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init mounts the session manager and starts draining the inbox.
func (m Model) Init() tea.Cmd {
	m.mount()
	return tea.Batch(m.inbox.wait(), textinput.Blink)
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.header.SetWidth(msg.Width)
		m.status.Width = msg.Width
		m.overlay.SetSize(msg.Width, m.bodyHeight())
		m.login.SetWidth(msg.Width)
		m.register.SetWidth(msg.Width)
		return m, nil

	case inboxMsg:
		var cmds []tea.Cmd
		for _, queued := range msg {
			var cmd tea.Cmd
			m, cmd = m.handle(queued)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.inbox.wait())
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		m.publishMouse(msg)
		return m, nil

	case tea.KeyMsg:
		m.opts.Bus.Publish(events.Event{Topic: events.KeyPress})
		if key.Matches(msg, m.keys.Quit) {
			m.Close()
			return m, tea.Quit
		}
		return m.updateKey(msg)
	}

	return m.handle(msg)
}

func (m Model) publishMouse(msg tea.MouseMsg) {
	var topic events.Topic
	switch msg.Type {
	case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
		topic = events.Click
	case tea.MouseWheelUp, tea.MouseWheelDown, tea.MouseWheelLeft, tea.MouseWheelRight:
		topic = events.Scroll
	case tea.MouseMotion:
		if !m.opts.MouseMotion {
			return
		}
		topic = events.PointerMove
	default:
		return
	}
	m.opts.Bus.Publish(events.Event{Topic: topic})
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.overlay.IsVisible() {
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	switch m.route {
	case RouteLogin:
		m.login, cmd = m.login.Update(msg)
	case RouteRegister:
		m.register, cmd = m.register.Update(msg)
	case RouteHome:
		if key.Matches(msg, m.keys.Logout) {
			m.manager.Logout()
		}
	}
	return m, cmd
}

// handle applies messages from components and from the inbox.
func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStateMsg:
		state := session.State(msg)
		if state.Seq < m.session.Seq {
			break
		}
		m.session = state
		m.overlay.SetState(m.session)

	case navigateMsg:
		m.route = RouteLogin
		m.login.Reset()
		m.login.SetFlash(msg.message)
		m.syncAuth()

	case authChangedMsg:
		m.syncAuth()

	case storageChangedMsg:
		// Another process wrote the store. Re-announce only a real flip;
		// our own writes leave the auth state unchanged.
		if m.opts.Auth.IsAuthenticated() != m.signedIn {
			m.opts.Bus.PublishAuthStateChanged()
		}

	case components.ShowRegisterMsg:
		m.register.Reset()
		m.route = RouteRegister

	case components.ShowLoginMsg:
		m.login.Reset()
		m.route = RouteLogin

	case components.LoginSubmitMsg:
		if _, err := m.opts.Auth.Login(msg.Email, msg.Password); err != nil {
			m.login.SetError(loginErrorText(err))
			return m, nil
		}
		m.syncAuth()

	case components.RegisterSubmitMsg:
		_, err := m.opts.Auth.Register(auth.RegisterInput{
			Name:     msg.Name,
			Email:    msg.Email,
			Password: msg.Password,
			Role:     auth.Role(msg.Role),
		})
		var fieldErrs auth.FieldErrors
		switch {
		case err == nil:
			m.syncAuth()
		case errors.As(err, &fieldErrs):
			m.register.SetError("")
			m.register.SetFieldErrors(fieldErrs)
		case errors.Is(err, auth.ErrEmailTaken):
			m.register.SetError("")
			m.register.SetFieldErrors(map[string]string{components.FieldEmail: "an account with this email already exists"})
		default:
			m.opts.Logger.Error().Err(err).Msg("registration failed")
			m.register.SetFieldErrors(nil)
			m.register.SetError("Could not create your account. Please try again.")
		}

	case components.ContinueSessionMsg:
		m.manager.Continue()

	case components.LogoutNowMsg:
		m.manager.Logout()
	}
	return m, nil
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, auth.ErrThrottled):
		return "Too many sign-in attempts. Wait a moment and try again."
	default:
		return "Sign-in failed: " + err.Error()
	}
}
