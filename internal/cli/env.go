// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/studentconnect/studentconnect-tui/internal/audit"
	"github.com/studentconnect/studentconnect-tui/internal/auth"
	"github.com/studentconnect/studentconnect-tui/internal/config"
	"github.com/studentconnect/studentconnect-tui/internal/events"
	"github.com/studentconnect/studentconnect-tui/internal/logging"
	"github.com/studentconnect/studentconnect-tui/internal/session"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
)

// Env is everything a command needs: configuration, the store, the event
// bus, the auth service and the audit trail.
type Env struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  storage.Store
	Bus    *events.Bus
	Auth   *auth.Service
	Audit  *audit.Logger

	logCloser io.Closer
}

// bcryptCost is zero (library default) outside tests.
var bcryptCost int

// LoadConfig loads --config PATH or the default config files.
func LoadConfig(args Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg, nil
}

// OpenEnv opens the store, logger, audit trail and auth service described
// by the configuration. console sends diagnostics to stderr instead of the
// log file. The caller must Close the Env.
func OpenEnv(args Args, console bool) (*Env, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	if args.Ephemeral {
		cfg.Store.Driver = storage.DriverMemory
	}

	logOpts := logging.Options{
		Level:   cfg.Logging.Level,
		Verbose: args.Verbose,
	}
	if console {
		logOpts.Console = args.Verbose
	} else {
		logOpts.Path = cfg.LogPath()
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:    cfg,
		Logger:    logger,
		Bus:       events.NewBus(),
		logCloser: logCloser,
	}

	env.Store, err = storage.Open(cfg.StoreOptions())
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	if cfg.Audit.Enabled {
		env.Audit, err = audit.Open(cfg.AuditPath())
		if err != nil {
			logger.Warn().Err(err).Msg("audit trail unavailable")
		} else {
			env.Audit.SetMaxSize(int64(cfg.Audit.MaxSizeMB) * 1024 * 1024)
		}
	}

	authOpts := auth.Options{
		Store:            env.Store,
		Events:           env.Bus,
		Secret:           []byte(cfg.Auth.TokenSecret),
		TokenTTL:         cfg.TokenTTL(),
		RatePerMinute:    cfg.Auth.LoginRatePerMinute,
		Burst:            cfg.Auth.LoginBurst,
		SeedDemoAccounts: cfg.Auth.SeedDemoAccounts,
		BcryptCost:       bcryptCost,
		Logger:           logging.Component(logger, "auth"),
	}
	if env.Audit != nil {
		authOpts.Auditor = env.Audit
	}
	env.Auth, err = auth.New(authOpts)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to start auth service: %w", err)
	}
	return env, nil
}

// Close releases the store, audit trail and log file.
func (e *Env) Close() error {
	var errs []error
	if e.Store != nil {
		errs = append(errs, e.Store.Close())
	}
	if e.Audit != nil {
		errs = append(errs, e.Audit.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	return errors.Join(errs...)
}

// sessionAuditor returns the audit trail as a session auditor, or nil.
func (e *Env) sessionAuditor() session.Auditor {
	if e.Audit == nil {
		return nil
	}
	return e.Audit
}
