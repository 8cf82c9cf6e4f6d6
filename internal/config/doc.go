// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for albert.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - EndpointConfig: Assistant endpoint URL, timeout and rate limit
//   - UIConfig: Theme and rendering toggles
//   - HistoryConfig: Opt-in transcript archive
//   - Watcher: Reloads the file when it changes on disk
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ALBERT_*)
//   - ~/.albert/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoint := cfg.Endpoint.URL
package config
