// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/studentconnect/studentconnect-tui/internal/audit"
	"github.com/studentconnect/studentconnect-tui/internal/events"
	"github.com/studentconnect/studentconnect-tui/internal/storage"
)

// ErrConfirmRequired is returned by destructive commands run without --confirm.
var ErrConfirmRequired = errors.New("refusing to clear data without --confirm")

// RunClearData wipes local storage: the signed-in user, the activity
// record and every registered account. Demo accounts are seeded again on
// the next start.
func RunClearData(args Args, w io.Writer) error {
	ap := args.Parser("--confirm", "-y")
	if !ap.BoolFlag("--confirm", "-y") {
		return ErrConfirmRequired
	}

	env, err := OpenEnv(args, true)
	if err != nil {
		return err
	}
	defer env.Close()

	keys, err := env.Store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list stored keys: %w", err)
	}
	if err := env.Store.Clear(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	env.Bus.Publish(events.Event{Topic: events.StorageChanged})

	if err := env.Audit.LogEvent("", audit.EventDataCleared, map[string]string{
		"keys":  strconv.Itoa(len(keys)),
		"store": env.Config.Store.Driver,
	}); err != nil {
		env.Logger.Warn().Err(err).Msg("failed to audit data clear")
	}

	if args.JSON {
		return NewJSONResponse("clear-data", map[string]interface{}{
			"cleared": keys,
			"store":   env.Config.Store.Driver,
		}).Write(w)
	}
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Cleared %d stored keys.", len(keys))))
	if env.Config.Store.Driver == storage.DriverSQLite {
		fmt.Fprintln(w, DimStyle.Render(env.Config.StorePath()))
	}
	return nil
}
