// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// KEYS AND ERRORS
// =============================================================================

const (
	// KeyUser holds the authenticated user record.
	KeyUser = "user"

	// KeyLastActivity holds the last interaction time as epoch milliseconds.
	KeyLastActivity = "lastActivity"

	// KeyRegisteredUsers holds accounts created through registration.
	KeyRegisteredUsers = "registeredUsers"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("storage: key not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage: store closed")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is a synchronous string key/value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys lists the stored keys in lexical order.
	Keys() ([]string, error)

	// Clear removes every key in the store.
	Clear() error

	// Close releases the store's resources.
	Close() error
}

// =============================================================================
// FACTORY
// =============================================================================

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// DefaultOpTimeout bounds each network round trip for remote drivers.
const DefaultOpTimeout = 2 * time.Second

// Options selects and configures a store driver.
type Options struct {
	// Driver is one of DriverMemory, DriverSQLite, DriverRedis.
	Driver string

	// Path is the SQLite database file.
	Path string

	// RedisURL is a redis:// URL for the redis driver.
	RedisURL string

	// Namespace prefixes every redis key (the "origin").
	Namespace string

	// OpTimeout bounds each redis call (default: DefaultOpTimeout).
	OpTimeout time.Duration
}

// Open creates the store described by opts.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case "", DriverSQLite:
		return OpenSQLite(opts.Path)
	case DriverRedis:
		return OpenRedis(opts.RedisURL, opts.Namespace, opts.OpTimeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// DefaultPath returns the default SQLite location, ~/.studentconnect/local_storage.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".studentconnect", "local_storage.db"), nil
}
