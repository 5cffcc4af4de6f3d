// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for StudentConnect.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - StoreConfig: key/value store driver selection
//   - AuthConfig: session token and sign-in throttling
//   - AuditConfig, LoggingConfig, UIConfig
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (STUDENTCONNECT_*), including those set by .env
//   - ~/.studentconnect/config.toml
//   - ~/.studentconnect/config.json
//   - Built-in defaults
//
// The session timeout is fixed and has no setting.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := storage.Open(cfg.StoreOptions())
package config
