// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Role is a user's place in the marketplace.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// String returns the role name.
func (r Role) String() string { return string(r) }

// Title returns the role for display, e.g. "Tutor".
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// User is the signed-in user record stored under storage.KeyUser.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token"`
}

// account is a stored credential.
type account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// NormalizeEmail trims, NFKC-normalizes and case-folds an address so that
// visually identical spellings match one account.
func NormalizeEmail(email string) string {
	// A Caser is stateful; build one per call.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(email)))
}
