// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/studentconnect/studentconnect-tui/internal/storage"
	"github.com/studentconnect/studentconnect-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// DevTokenSecret signs session tokens when no secret is configured.
const DevTokenSecret = "studentconnect-local-dev-secret"

// Config represents the complete StudentConnect configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Store   StoreConfig   `toml:"store" json:"store"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`
	Audit   AuditConfig   `toml:"audit" json:"audit"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// StoreConfig selects the key/value store backing "local storage".
type StoreConfig struct {
	// Driver is "sqlite", "redis" or "memory".
	Driver string `toml:"driver" json:"driver"`

	// Path is the SQLite file (default: <config dir>/local_storage.db).
	Path string `toml:"path" json:"path"`

	// RedisURL is used by the redis driver.
	RedisURL string `toml:"redis_url" json:"redis_url"`

	// Namespace prefixes redis keys.
	Namespace string `toml:"namespace" json:"namespace"`

	// OpTimeoutMS bounds each redis call.
	OpTimeoutMS int `toml:"op_timeout_ms" json:"op_timeout_ms"`

	// WatchChanges publishes storage events when another process writes.
	WatchChanges bool `toml:"watch_changes" json:"watch_changes"`
}

// AuthConfig configures the mock authentication service.
type AuthConfig struct {
	TokenSecret        string `toml:"token_secret" json:"token_secret"`
	TokenTTLHours      int    `toml:"token_ttl_hours" json:"token_ttl_hours"`
	SeedDemoAccounts   bool   `toml:"seed_demo_accounts" json:"seed_demo_accounts"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute" json:"login_rate_per_minute"`
	LoginBurst         int    `toml:"login_burst" json:"login_burst"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	Enabled   bool   `toml:"enabled" json:"enabled"`
	Path      string `toml:"path" json:"path"`
	MaxSizeMB int    `toml:"max_size_mb" json:"max_size_mb"`
}

// LoggingConfig configures the diagnostic log.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `toml:"level" json:"level"`
	Path  string `toml:"path" json:"path"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`

	// MouseMotion reports pointer movement as activity.
	MouseMotion bool `toml:"mouse_motion" json:"mouse_motion"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Store: StoreConfig{
			Driver:       storage.DriverSQLite,
			Namespace:    "studentconnect",
			OpTimeoutMS:  int(storage.DefaultOpTimeout / time.Millisecond),
			WatchChanges: true,
		},
		Auth: AuthConfig{
			TokenSecret:        DevTokenSecret,
			TokenTTLHours:      24,
			SeedDemoAccounts:   true,
			LoginRatePerMinute: 5,
			LoginBurst:         3,
		},
		Audit: AuditConfig{
			Enabled:   true,
			MaxSizeMB: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme:       "auto",
			MouseMotion: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory: $STUDENTCONNECT_HOME if set,
// otherwise ~/.studentconnect.
func ConfigDir() (string, error) {
	if dir := os.Getenv("STUDENTCONNECT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".studentconnect"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens a config file to 0600; it holds the token secret.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// inDir resolves an empty path to name inside the config directory.
func inDir(path, name string) string {
	if path != "" {
		return path
	}
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// StorePath returns the SQLite database location.
func (c *Config) StorePath() string { return inDir(c.Store.Path, "local_storage.db") }

// AuditPath returns the audit log location.
func (c *Config) AuditPath() string { return inDir(c.Audit.Path, "audit.log") }

// LogPath returns the diagnostic log location.
func (c *Config) LogPath() string { return inDir(c.Logging.Path, "studentconnect.log") }

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// StoreOptions converts the store section into storage.Options.
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Driver:    c.Store.Driver,
		Path:      c.StorePath(),
		RedisURL:  c.Store.RedisURL,
		Namespace: c.Store.Namespace,
		OpTimeout: time.Duration(c.Store.OpTimeoutMS) * time.Millisecond,
	}
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// loadDotEnv loads ./.env and <config dir>/.env. Variables already set in
// the environment win.
func loadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", path, err)
		}
	}
}

// finish applies env overrides, migration, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return fmt.Errorf("config migration failed: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				if err := cfg.finish(); err != nil {
					return nil, err
				}
				return cfg, nil
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg = Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				if err := cfg.finish(); err != nil {
					return nil, err
				}
				return cfg, loadErr
			}
		}
	}

	cfg = Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	// Defaults are usable; loadErr is informational.
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file (--config).
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# StudentConnect configuration file\n")
	b.WriteString("# Generated by studentconnect - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch strings.ToLower(c.Store.Driver) {
	case storage.DriverSQLite, storage.DriverMemory:
	case storage.DriverRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, ValidationError{"store.redis_url", "required when store.driver is redis"})
		} else if u, err := url.Parse(c.Store.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, ValidationError{"store.redis_url", fmt.Sprintf("invalid redis URL '%s'", c.Store.RedisURL)})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "store.driver",
			Message: fmt.Sprintf("invalid driver '%s', must be one of: sqlite, redis, memory", c.Store.Driver),
		})
	}
	if c.Store.OpTimeoutMS < 0 {
		errs = append(errs, ValidationError{"store.op_timeout_ms", "must not be negative"})
	}

	if len(c.Auth.TokenSecret) < 16 {
		errs = append(errs, ValidationError{"auth.token_secret", "must be at least 16 characters"})
	}
	if c.Auth.TokenTTLHours < 1 || c.Auth.TokenTTLHours > 24*30 {
		errs = append(errs, ValidationError{"auth.token_ttl_hours", fmt.Sprintf("must be between 1 and 720, got %d", c.Auth.TokenTTLHours)})
	}
	if c.Auth.LoginRatePerMinute < 1 {
		errs = append(errs, ValidationError{"auth.login_rate_per_minute", "must be at least 1"})
	}
	if c.Auth.LoginBurst < 1 {
		errs = append(errs, ValidationError{"auth.login_burst", "must be at least 1"})
	}

	if c.Audit.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{"audit.max_size_mb", "must not be negative"})
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error", c.Logging.Level),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = d.Store.Namespace
	}
	if c.Store.OpTimeoutMS == 0 {
		c.Store.OpTimeoutMS = d.Store.OpTimeoutMS
	}
	if c.Auth.TokenSecret == "" {
		c.Auth.TokenSecret = d.Auth.TokenSecret
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = d.Auth.TokenTTLHours
	}
	if c.Auth.LoginRatePerMinute == 0 {
		c.Auth.LoginRatePerMinute = d.Auth.LoginRatePerMinute
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = d.Auth.LoginBurst
	}
	if c.Audit.MaxSizeMB == 0 {
		c.Audit.MaxSizeMB = d.Audit.MaxSizeMB
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// Migrate normalizes older spellings.
func (c *Config) Migrate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "sqlite3", "file":
		c.Store.Driver = storage.DriverSQLite
	case "mem", "ephemeral":
		c.Store.Driver = storage.DriverMemory
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - STUDENTCONNECT_STORE_DRIVER: overrides store.driver
//   - STUDENTCONNECT_STORE_PATH: overrides store.path
//   - STUDENTCONNECT_REDIS_URL: overrides store.redis_url
//   - STUDENTCONNECT_NAMESPACE: overrides store.namespace
//   - STUDENTCONNECT_TOKEN_SECRET: overrides auth.token_secret
//   - STUDENTCONNECT_AUDIT: "0"/"false" disables the audit trail
//   - STUDENTCONNECT_LOG_LEVEL: overrides logging.level
//   - STUDENTCONNECT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STUDENTCONNECT_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("STUDENTCONNECT_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("STUDENTCONNECT_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("STUDENTCONNECT_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}
	if v := os.Getenv("STUDENTCONNECT_TOKEN_SECRET"); v != "" {
		c.Auth.TokenSecret = v
	}
	if v := os.Getenv("STUDENTCONNECT_AUDIT"); v != "" {
		c.Audit.Enabled = parseBool(v)
	}
	if v := os.Getenv("STUDENTCONNECT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STUDENTCONNECT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "store.driver").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a setting", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
// Acronyms are matched case-insensitively, so "redis_url" finds RedisURL.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"store.driver",
		"store.path",
		"store.redis_url",
		"store.namespace",
		"store.op_timeout_ms",
		"store.watch_changes",
		"auth.token_secret",
		"auth.token_ttl_hours",
		"auth.seed_demo_accounts",
		"auth.login_rate_per_minute",
		"auth.login_burst",
		"audit.enabled",
		"audit.path",
		"audit.max_size_mb",
		"logging.level",
		"logging.path",
		"ui.theme",
		"ui.mouse_motion",
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as JSON with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Auth.TokenSecret != "" {
		safe.Auth.TokenSecret = "[REDACTED]"
	}
	if u, err := url.Parse(safe.Store.RedisURL); err == nil && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "REDACTED")
			safe.Store.RedisURL = u.String()
		}
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first access.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			if cfg == nil {
				cfg = Default()
			}
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
