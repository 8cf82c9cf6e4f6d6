// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ALBERT_ENDPOINT", "ALBERT_TIMEOUT", "ALBERT_RATE_LIMIT", "ALBERT_THEME",
		"ALBERT_LOG_LEVEL", "ALBERT_LOG_FILE", "ALBERT_HISTORY",
	} {
		t.Setenv(k, "")
	}
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000/chat", cfg.Endpoint.URL)
	assert.Zero(t, cfg.Endpoint.Timeout(), "exchanges wait indefinitely by default")
	assert.False(t, cfg.History.Enabled)
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromPath_PartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[endpoint]
url = "https://albert.example.com/chat"
timeout_secs = 90

[ui]
theme = "dark"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://albert.example.com/chat", cfg.Endpoint.URL)
	assert.Equal(t, 90*time.Second, cfg.Endpoint.Timeout())
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "info", cfg.Log.Level, "untouched sections keep defaults")
	assert.True(t, cfg.UI.Markdown)
}

func TestReadFile_SkipsEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALBERT_ENDPOINT", "http://env.example/chat")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600))

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, Default().Endpoint.URL, cfg.Endpoint.URL)

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/chat", loaded.Endpoint.URL)
}

func TestLoadFromPath_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[endpoint\nurl = 1"), 0600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[endpoint]
url = "not a url"
`), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "endpoint.url", verrs[0].Field)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Endpoint.URL = "/chat" }, "endpoint.url"},
		{"ftp url", func(c *Config) { c.Endpoint.URL = "ftp://host/chat" }, "endpoint.url"},
		{"negative timeout", func(c *Config) { c.Endpoint.TimeoutSecs = -1 }, "endpoint.timeout_secs"},
		{"negative rate", func(c *Config) { c.Endpoint.RateLimitPerMinute = -5 }, "endpoint.rate_limit_per_minute"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"max sessions", func(c *Config) { c.History.MaxSessions = -1 }, "history.max_sessions"},
		{"export format", func(c *Config) { c.Export.Format = "pdf" }, "export.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			verrs, ok := err.(ValidateErrors)
			require.True(t, ok)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "a: x; b: y", errs.Error())
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALBERT_ENDPOINT", "http://10.0.0.5:9000/chat")
	t.Setenv("ALBERT_TIMEOUT", "45")
	t.Setenv("ALBERT_RATE_LIMIT", "12")
	t.Setenv("ALBERT_THEME", "light")
	t.Setenv("ALBERT_LOG_LEVEL", "debug")
	t.Setenv("ALBERT_HISTORY", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "http://10.0.0.5:9000/chat", cfg.Endpoint.URL)
	assert.Equal(t, 45, cfg.Endpoint.TimeoutSecs)
	assert.Equal(t, 12, cfg.Endpoint.RateLimitPerMinute)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.History.Enabled)
}

func TestApplyEnvOverrides_IgnoresGarbageNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALBERT_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 0, cfg.Endpoint.TimeoutSecs)
}

// =============================================================================
// SAVE / GET / SET
// =============================================================================

func TestSaveTo_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Endpoint.URL = "https://albert.example.com/chat"
	cfg.History.Enabled = true
	require.NoError(t, SaveTo(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("endpoint.url", "http://example.com/chat"))
	require.NoError(t, cfg.Set("endpoint.timeout_secs", "30"))
	require.NoError(t, cfg.Set("history.enabled", "true"))

	v, err := cfg.Get("endpoint.url")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/chat", v)
	assert.Equal(t, 30, cfg.Endpoint.TimeoutSecs)
	assert.True(t, cfg.History.Enabled)

	assert.Error(t, cfg.Set("endpoint.timeout_secs", "thirty"))
	assert.Error(t, cfg.Set("history.enabled", "maybe"))
	_, err = cfg.Get("endpoint")
	assert.Error(t, err, "sections are not values")
	_, err = cfg.Get("endpoint.nope")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "endpoint.url")
	assert.Contains(t, keys, "ui.theme")
	assert.Contains(t, keys, "export.format")
	for _, k := range keys {
		_, err := Default().Get(k)
		assert.NoError(t, err, k)
	}
}

// =============================================================================
// GLOBAL
// =============================================================================

// TestConfig_ConcurrentAccess checks that Global and SetGlobal can be called
// concurrently. Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcher_ReloadsOnSave(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTo(Default(), path))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(c *Config) {
		select {
		case changes <- c:
		default:
		}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	updated := Default()
	updated.Endpoint.URL = "http://127.0.0.1:9999/chat"
	require.NoError(t, SaveTo(updated, path))

	select {
	case got := <-changes:
		assert.Equal(t, "http://127.0.0.1:9999/chat", got.Endpoint.URL)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcher_ReportsInvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTo(Default(), path))

	errs := make(chan error, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, nil, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the error")
	}
}

func TestWatcher_CloseWithoutWatch(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), 0, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
