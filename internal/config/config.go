// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for albert.
//
// Configuration file location:
//   - ~/.albert/config.toml (or the path given with --config)
//   - Built-in defaults
//
// Environment overrides (ALBERT_*) are applied last.
package config

import (
	"bytes"
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

	"github.com/jeranaias/albert-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete albert configuration.
type Config struct {
	Version string `toml:"version"`

	Endpoint EndpointConfig `toml:"endpoint"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
	History  HistoryConfig  `toml:"history"`
	Export   ExportConfig   `toml:"export"`
}

// EndpointConfig describes the assistant backend.
type EndpointConfig struct {
	// URL is the full chat endpoint, e.g. http://localhost:8000/chat
	URL string `toml:"url"`
	// TimeoutSecs bounds each exchange; 0 waits indefinitely
	TimeoutSecs int `toml:"timeout_secs"`
	// RateLimitPerMinute caps outbound requests; 0 is unlimited
	RateLimitPerMinute int `toml:"rate_limit_per_minute"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Markdown renders assistant replies as markdown
	Markdown bool `toml:"markdown"`
	// ShowTimestamps prints a time next to each bubble
	ShowTimestamps bool `toml:"show_timestamps"`
	// AltScreen runs the TUI in the alternate screen buffer
	AltScreen bool `toml:"alt_screen"`
	// AssistantName is shown in the header
	AssistantName string `toml:"assistant_name"`
	// Tagline is shown under the name
	Tagline string `toml:"tagline"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// File is the log path; empty uses ~/.albert/albert.log
	File string `toml:"file"`
}

// HistoryConfig controls the opt-in transcript archive.
type HistoryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	MaxSessions int    `toml:"max_sessions"`
}

// ExportConfig controls transcript export.
type ExportConfig struct {
	// Dir is where exported files are written
	Dir string `toml:"dir"`
	// Format is the default format: markdown, json, yaml
	Format string `toml:"format"`
}

// Timeout returns the endpoint timeout as a duration.
func (e EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Endpoint: EndpointConfig{
			URL:                "http://localhost:8000/chat",
			TimeoutSecs:        0, // the backend may take minutes to build a digest
			RateLimitPerMinute: 0,
		},
		UI: UIConfig{
			Theme:          "auto",
			Markdown:       true,
			ShowTimestamps: false,
			AltScreen:      true,
			AssistantName:  "Albert",
			Tagline:        "Your Personal News Butler",
		},
		Log: LogConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled:     false,
			MaxSessions: 200,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "markdown",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the albert configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".albert"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "albert.log")
	}
	return filepath.Join(dir, "albert.log")
}

// HistoryPath returns the effective archive database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "albert-history.db")
	}
	return filepath.Join(dir, "history.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path, falling back to defaults
// when the file does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file yields the
// defaults; a file that fails to parse or validate is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes path over the defaults without environment overrides or
// validation. It is what "config set" edits and writes back.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", statErr)
	}
	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults fills blank fields a partial file left empty.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		c.Endpoint.URL = d.Endpoint.URL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.AssistantName == "" {
		c.UI.AssistantName = d.UI.AssistantName
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Export.Dir == "" {
		c.Export.Dir = d.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path atomically.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# albert configuration file\n")
	buf.WriteString("# Changes are picked up while albert is running.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0755); err != nil {
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Endpoint.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Endpoint.URL),
		})
	}
	if c.Endpoint.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "endpoint.timeout_secs", Message: "cannot be negative"})
	}
	if c.Endpoint.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "endpoint.rate_limit_per_minute", Message: "cannot be negative"})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.History.MaxSessions < 0 {
		errs = append(errs, ValidationError{Field: "history.max_sessions", Message: "cannot be negative"})
	}

	validFormats := map[string]bool{"markdown": true, "md": true, "json": true, "yaml": true}
	if !validFormats[strings.ToLower(c.Export.Format)] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: markdown, json, yaml", c.Export.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - ALBERT_ENDPOINT: overrides endpoint.url
//   - ALBERT_TIMEOUT: overrides endpoint.timeout_secs
//   - ALBERT_RATE_LIMIT: overrides endpoint.rate_limit_per_minute
//   - ALBERT_THEME: overrides ui.theme
//   - ALBERT_LOG_LEVEL: overrides log.level
//   - ALBERT_LOG_FILE: overrides log.file
//   - ALBERT_HISTORY: enables or disables the archive
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ALBERT_ENDPOINT"); v != "" {
		c.Endpoint.URL = v
	}
	if v := os.Getenv("ALBERT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Endpoint.TimeoutSecs = n
		}
	}
	if v := os.Getenv("ALBERT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Endpoint.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALBERT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ALBERT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ALBERT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ALBERT_HISTORY"); v != "" {
		c.History.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "endpoint.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value from its string form using dot notation.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected a boolean: %w", key, err)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer: %w", key, err)
		}
		field.SetInt(int64(n))
	default:
		return fmt.Errorf("cannot set field: %s", key)
	}
	return nil
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	walkKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func walkKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("toml")
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			walkKeys(f.Type, name, keys)
			continue
		}
		*keys = append(*keys, name)
	}
}

// lookup resolves a dot-notation key to its settable field by TOML tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		found := false
		t := v.Type()
		for j := 0; j < t.NumField(); j++ {
			if t.Field(j).Tag.Get("toml") == part {
				v = v.Field(j)
				found = true
				break
			}
		}
		if !found {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i < len(parts)-1 && v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
	}
	return v, nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the global configuration instance, loading it on first use.
// Load errors are reported on stderr and defaults are used.
func Global() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		loaded, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			loaded = Default()
		}
		globalConfig = loaded
	}
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
}
