// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/studentconnect/studentconnect-tui/internal/audit"
	"github.com/studentconnect/studentconnect-tui/internal/events"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrEmailTaken is returned when registering an existing address.
	ErrEmailTaken = errors.New("auth: an account with this email already exists")

	// ErrThrottled is returned when sign-in attempts for an email come too fast.
	ErrThrottled = errors.New("auth: too many sign-in attempts, try again shortly")

	// ErrNotAuthenticated is returned when no user is signed in.
	ErrNotAuthenticated = errors.New("auth: not signed in")
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// =============================================================================
// SERVICE
// =============================================================================

// Publisher announces auth-state changes.
type Publisher interface {
	Publish(e events.Event)
}

// Auditor records sign-in events.
type Auditor interface {
	LogEvent(sessionID, eventType string, metadata map[string]string) error
	LogFailure(sessionID, eventType string, cause error, metadata map[string]string) error
}

// Options configures a Service.
type Options struct {
	Store  storage.Store
	Events Publisher

	// Secret signs session tokens (HS256).
	Secret []byte

	// TokenTTL is the session token lifetime (default 24h).
	TokenTTL time.Duration

	// RatePerMinute and Burst throttle sign-in attempts per email.
	RatePerMinute int
	Burst         int

	// SeedDemoAccounts adds the student, tutor and admin demo accounts.
	SeedDemoAccounts bool

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	Now     func() time.Time
	Logger  zerolog.Logger
	Auditor Auditor
}

// Service implements sign-in, registration and the auth-state query.
type Service struct {
	store   storage.Store
	events  Publisher
	secret  []byte
	ttl     time.Duration
	cost    int
	now     func() time.Time
	log     zerolog.Logger
	auditor Auditor

	perMinute int
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	demo     []account
}

// New creates a Service. Seeding hashes the demo passwords.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	s := &Service{
		store:     opts.Store,
		events:    opts.Events,
		secret:    opts.Secret,
		ttl:       opts.TokenTTL,
		cost:      opts.BcryptCost,
		now:       opts.Now,
		log:       opts.Logger,
		auditor:   opts.Auditor,
		perMinute: opts.RatePerMinute,
		burst:     opts.Burst,
		limiters:  make(map[string]*rate.Limiter),
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.perMinute <= 0 {
		s.perMinute = 5
	}
	if s.burst <= 0 {
		s.burst = 3
	}

	if opts.SeedDemoAccounts {
		demo, err := s.seedDemo()
		if err != nil {
			return nil, err
		}
		s.demo = demo
	}
	return s, nil
}

func (s *Service) seedDemo() ([]account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	created := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	seed := []User{
		{ID: "demo-student", Name: "Amani Otieno", Email: "student@studentconnect.dev", Role: RoleStudent, Bio: "Second-year engineering student"},
		{ID: "demo-tutor", Name: "Grace Wanjiru", Email: "tutor@studentconnect.dev", Role: RoleTutor, Bio: "Mathematics and physics tutor"},
		{ID: "demo-admin", Name: "Site Admin", Email: "admin@studentconnect.dev", Role: RoleAdmin},
	}
	out := make([]account, 0, len(seed))
	for _, u := range seed {
		u.CreatedAt = created
		out = append(out, account{User: u, PasswordHash: string(hash)})
	}
	return out, nil
}

// =============================================================================
// AUTH STATE
// =============================================================================

// IsAuthenticated reports whether a user record with a valid token exists.
func (s *Service) IsAuthenticated() bool {
	_, err := s.CurrentUser()
	return err == nil
}

// CurrentUser decodes the stored user record and verifies its token.
func (s *Service) CurrentUser() (*User, error) {
	raw, err := s.store.Get(storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: malformed user record", ErrNotAuthenticated)
	}
	claims, err := s.verifyToken(u.Token)
	if err != nil {
		return nil, errors.Join(ErrNotAuthenticated, err)
	}
	if claims.Subject != u.ID {
		return nil, fmt.Errorf("%w: token subject mismatch", ErrNotAuthenticated)
	}
	return &u, nil
}

// =============================================================================
// SIGN IN
// =============================================================================

func (s *Service) limiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.burst)
		s.limiters[email] = l
	}
	return l
}

// Login verifies credentials, writes the user record and publishes
// auth-state-changed.
func (s *Service) Login(email, password string) (*User, error) {
	email = NormalizeEmail(email)

	if !s.limiter(email).AllowN(s.now(), 1) {
		s.auditFailure(email, ErrThrottled)
		return nil, ErrThrottled
	}

	acct, err := s.find(email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		s.auditFailure(email, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.auditFailure(email, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	return s.signIn(acct.User)
}

func (s *Service) signIn(u User) (*User, error) {
	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	u.Token = token

	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := s.store.Set(storage.KeyUser, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}

	s.log.Info().Str("user", u.ID).Str("role", u.Role.String()).Msg("signed in")
	if s.auditor != nil {
		if err := s.auditor.LogEvent("", audit.EventLoginSucceeded, map[string]string{
			"user": u.ID,
			"role": u.Role.String(),
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to write audit event")
		}
	}
	if s.events != nil {
		s.events.Publish(events.Event{Topic: events.AuthStateChanged, Key: storage.KeyUser})
	}
	return &u, nil
}

func (s *Service) auditFailure(email string, cause error) {
	s.log.Info().Err(cause).Str("email", email).Msg("sign-in rejected")
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogFailure("", audit.EventLoginFailed, cause, map[string]string{"email": email}); err != nil {
		s.log.Warn().Err(err).Msg("failed to write audit event")
	}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// Register validates the form, stores the account and signs the user in.
func (s *Service) Register(in RegisterInput) (*User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	existing, err := s.findLocked(in.Email)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if existing != nil {
		s.mu.Unlock()
		return nil, ErrEmailTaken
	}

	acct := account{
		User: User{
			ID:        uuid.NewString(),
			Name:      in.Name,
			Email:     in.Email,
			Role:      in.Role,
			CreatedAt: s.now().UTC(),
		},
		PasswordHash: string(hash),
	}
	registered, err := s.registeredLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	registered = append(registered, acct)
	err = s.saveRegisteredLocked(registered)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		if err := s.auditor.LogEvent("", audit.EventRegistered, map[string]string{
			"user": acct.ID,
			"role": acct.Role.String(),
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to write audit event")
		}
	}
	return s.signIn(acct.User)
}

// Accounts lists every known account without credentials.
func (s *Service) Accounts() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registered, err := s.registeredLocked()
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(s.demo)+len(registered))
	for _, a := range s.demo {
		out = append(out, a.User)
	}
	for _, a := range registered {
		out = append(out, a.User)
	}
	return out, nil
}

func (s *Service) find(email string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(email)
}

func (s *Service) findLocked(email string) (*account, error) {
	for i := range s.demo {
		if s.demo[i].Email == email {
			a := s.demo[i]
			return &a, nil
		}
	}
	registered, err := s.registeredLocked()
	if err != nil {
		return nil, err
	}
	for i := range registered {
		if registered[i].Email == email {
			return &registered[i], nil
		}
	}
	return nil, nil
}

func (s *Service) registeredLocked() ([]account, error) {
	raw, err := s.store.Get(storage.KeyRegisteredUsers)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registered users: %w", err)
	}
	var out []account
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn().Err(err).Msg("ignoring malformed registered users")
		return nil, nil
	}
	return out, nil
}

func (s *Service) saveRegisteredLocked(accts []account) error {
	data, err := json.Marshal(accts)
	if err != nil {
		return fmt.Errorf("failed to encode registered users: %w", err)
	}
	if err := s.store.Set(storage.KeyRegisteredUsers, string(data)); err != nil {
		return fmt.Errorf("failed to save registered users: %w", err)
	}
	return nil
}
