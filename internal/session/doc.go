// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session enforces the inactivity timeout for authenticated sessions.
//
// A Manager watches user activity, warns one minute before the fifteen
// minute idle limit with a per-second countdown, and logs the user out
// when the limit is reached. It talks to the rest of the application only
// through injected collaborators:
//
//   - Store: key/value store holding "user" and "lastActivity"
//   - Auth: IsAuthenticated() query
//   - Events: bus carrying activity events and auth-state-changed
//   - Navigator: lands the user on the login screen with a message
//
// # Lifecycle
//
// Start mounts the manager: it runs one check immediately, arms the
// sixty-second periodic check and subscribes to the click, keypress,
// scroll and pointermove topics. Stop unmounts it and cancels every timer
// and subscription. A stopped manager ignores activity and time.
//
// # Usage
//
//	mgr, err := session.New(session.Deps{
//	    Store:     store,
//	    Auth:      authSvc,
//	    Events:    bus,
//	    Navigator: nav,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := mgr.Start(); err != nil {
//	    return err
//	}
//	defer mgr.Stop()
package session
