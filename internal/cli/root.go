// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/logging"
)

// optionalConfig marks commands that still run when the config file is
// broken, so the user can inspect or rewrite it.
const optionalConfig = "optional-config"

var errConfigLoad = errors.New("failed to load config")

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app carries the flags and the loaded configuration to every command.
type app struct {
	info BuildInfo

	// Global flags
	configPath string
	endpoint   string
	timeout    time.Duration
	verbose    bool

	// Resolved in PersistentPreRunE
	cfg      *config.Config
	cfgPath  string
	cfgError error
	logger   *zap.Logger
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the albert command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info, logger: zap.NewNop()}
	var plain bool

	root := &cobra.Command{
		Use:   "albert",
		Short: "Albert, your personal news butler, in the terminal",
		Long: `Albert answers in a chat: type a request, Albert acknowledges it at once
and replies when the assistant backend has your digest ready.

Run without arguments to start the full-screen chat. When stdin is not a
terminal, or with --plain, a line-oriented chat is used instead.`,
		Args:              usageArgs(cobra.NoArgs),
		Version:           versionString(info),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if plain || !IsTTY() || !IsStdoutTTY() {
				return a.runPlain(cmd)
			}
			return a.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.albert/config.toml)")
	root.PersistentFlags().StringVar(&a.endpoint, "endpoint", "", "assistant endpoint URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-message timeout (0 waits as long as the backend takes)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.Flags().BoolVar(&plain, "plain", false, "use the line-oriented chat")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	root.AddCommand(
		newChatCommand(a),
		newAskCommand(a),
		newConfigCommand(a),
		newHistoryCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(info BuildInfo) int {
	root := NewRootCommand(info)
	if err := usageError(root.Execute()); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		if p, err := config.ConfigPath(); err == nil {
			path = p
		}
	}
	a.cfgPath = path

	var cfg *config.Config
	var err error
	if path == "" {
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
		err = cfg.Validate()
	} else {
		cfg, err = config.LoadFromPath(path)
	}
	if err != nil {
		if cmd.Annotations[optionalConfig] == "" {
			return fmt.Errorf("%w: %w", errConfigLoad, err)
		}
		a.cfgError = err
		cfg = config.Default()
	}

	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errConfigLoad, err)
	}
	a.cfg = cfg
	config.SetGlobal(cfg)

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Path:    cfg.LogPath(),
		Verbose: a.verbose,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("config loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("path", path),
		zap.String("endpoint", cfg.Endpoint.URL),
		zap.Bool("history", cfg.History.Enabled))
	return nil
}

// applyFlags layers command-line overrides over cfg.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if a.endpoint != "" {
		cfg.Endpoint.URL = a.endpoint
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Endpoint.TimeoutSecs = int((a.timeout + time.Second - 1) / time.Second)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
}

// reloaded applies the flag overrides to a config the watcher just loaded,
// so flags keep winning over the file.
func (a *app) reloaded(cmd *cobra.Command, cfg *config.Config) *config.Config {
	a.applyFlags(cmd, cfg)
	config.SetGlobal(cfg)
	return cfg
}
