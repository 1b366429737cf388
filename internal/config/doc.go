// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for bestfriend.
//
// # Configuration Precedence
//
// Configuration is loaded from (later sources win):
//   - Built-in defaults
//   - ~/.bestfriend/config.toml (or the path given with --config)
//   - .env in the working directory (never overrides the real environment)
//   - Environment variables (BESTFRIEND_*)
//
// The directory can be moved with BESTFRIEND_HOME.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.API.Timeout
//
// Watch reloads the file when it changes on disk:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config, err error) { ... })
package config
