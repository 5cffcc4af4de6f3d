// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is StudentConnect's mock authentication service.
//
// There is no backend: accounts are seeded demo records plus registrations
// kept in the key/value store under "registeredUsers". A successful sign-in
// writes the "user" record (profile plus a signed session token) and
// publishes auth-state-changed so the header and session manager re-query.
//
// Demo accounts (password "password123"):
//
//   - student@studentconnect.dev (student)
//   - tutor@studentconnect.dev (tutor)
//   - admin@studentconnect.dev (admin)
package auth
