// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Inspect and change configuration.
//
// Examples:
//   studentconnect config show
//   studentconnect config get store.driver
//   studentconnect config set ui.theme light
//   studentconnect config keys

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/studentconnect/studentconnect-tui/internal/config"
)

// RunConfig dispatches the config subcommands.
func RunConfig(args Args, w io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	ap := args.Parser()

	switch sub := ap.Subcommand(); sub {
	case "", "show":
		if args.JSON {
			var redacted interface{}
			if err := json.Unmarshal([]byte(cfg.String()), &redacted); err != nil {
				return err
			}
			return NewJSONResponse("config show", redacted).Write(w)
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(w, k)
		}
		return nil

	case "get":
		key := ap.Positional(1)
		if key == "" {
			return errors.New("usage: studentconnect config get KEY")
		}
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if key == "auth.token_secret" {
			v = "[REDACTED]"
		}
		if args.JSON {
			return NewJSONResponse("config get", map[string]interface{}{"key": key, "value": v}).Write(w)
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		key, value := ap.Positional(1), ap.Positional(2)
		if key == "" || ap.PositionalCount() < 3 {
			return errors.New("usage: studentconnect config set KEY VALUE")
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if err := saveConfig(args, cfg); err != nil {
			return err
		}
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s (use show, path, get, set or keys)", sub)
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func saveConfig(args Args, cfg *config.Config) error {
	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
		return config.Save(cfg)
	}
	if strings.HasSuffix(args.ConfigPath, ".json") {
		return config.SaveJSON(cfg, args.ConfigPath)
	}
	return config.SaveTOML(cfg, args.ConfigPath)
}
