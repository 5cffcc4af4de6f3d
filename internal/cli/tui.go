// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/studentconnect/studentconnect-tui/internal/logging"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
	"github.com/studentconnect/studentconnect-tui/internal/ui/app"
	"github.com/studentconnect/studentconnect-tui/internal/ui/styles"
)

// RunTUI starts the interactive interface. Diagnostics go to the log file
// because the TUI owns the terminal.
func RunTUI(args Args) error {
	env, err := OpenEnv(args, false)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg := env.Config

	model, err := app.New(app.Options{
		Store:       env.Store,
		Auth:        env.Auth,
		Bus:         env.Bus,
		Logger:      logging.Component(env.Logger, "app"),
		Auditor:     env.sessionAuditor(),
		Theme:       styles.NewThemeFor(styles.ParseMode(cfg.UI.Theme)),
		MouseMotion: cfg.UI.MouseMotion,
		StorageName: cfg.Store.Driver,
		DemoHint:    cfg.Auth.SeedDemoAccounts,
	})
	if err != nil {
		return err
	}

	// Another process (a second TUI, or `studentconnect logout`) may change
	// the database; surface that as storage events.
	if cfg.Store.Driver == storage.DriverSQLite && cfg.Store.WatchChanges {
		w, err := storage.NewWatcher(cfg.StorePath(), env.Bus,
			logging.Component(env.Logger, "storage"), storage.DefaultWatchDebounce)
		if err != nil {
			env.Logger.Warn().Err(err).Msg("storage watcher unavailable")
		} else if err := w.Watch(); err != nil {
			env.Logger.Warn().Err(err).Msg("storage watcher unavailable")
			w.Close()
		} else {
			defer w.Close()
		}
	}

	env.Logger.Info().Str("store", cfg.Store.Driver).Msg("starting tui")
	return app.Run(model)
}
