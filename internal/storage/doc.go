// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the origin-scoped key/value store for StudentConnect.
//
// The store plays the role of a browser's local storage: synchronous
// get/set/remove of string values, durable across restarts, wiped by
// "clear site data". Several parts of the application share it; each
// owns only the keys it writes.
//
// # Drivers
//
//   - memory: in-process map, used by tests and --ephemeral runs
//   - sqlite: single-table SQLite database (default)
//   - redis: shared Redis instance, keys prefixed by a namespace
//
// # Well-known keys
//
//   - KeyUser: the authenticated user record (owned by package auth)
//   - KeyLastActivity: epoch milliseconds of the last user interaction
//     (owned by package session)
//   - KeyRegisteredUsers: locally registered accounts (owned by package auth)
package storage
