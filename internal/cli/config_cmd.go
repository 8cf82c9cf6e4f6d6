// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/albert-tui/internal/config"
)

// newConfigCommand builds "albert config".
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
		Long: `Show or edit the configuration file (~/.albert/config.toml).

Keys use dot notation, for example endpoint.url or ui.theme.`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.configInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  usageArgs(cobra.NoArgs),
			RunE:  a.configShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.cfgPath)
				return nil
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one effective setting",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE:  a.configGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting in the config file",
			Args:  usageArgs(cobra.ExactArgs(2)),
			RunE:  a.configSet,
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List every setting",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Keys(), "\n"))
				return nil
			},
		},
	)

	for _, sub := range cmd.Commands() {
		sub.Annotations = map[string]string{optionalConfig: "true"}
	}
	return cmd
}

func (a *app) configShow(cmd *cobra.Command, _ []string) error {
	if a.cfgError != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Config file ignored: "+a.cfgError.Error()))
	}
	fmt.Fprint(cmd.OutOrStdout(), a.cfg.String())
	return nil
}

func (a *app) configInit(cmd *cobra.Command, force bool) error {
	if a.cfgPath == "" {
		return newCommandError("config", "init", errors.New("no config path"))
	}
	if _, err := os.Stat(a.cfgPath); err == nil && !force {
		return newCommandError("config", "init", fmt.Errorf("%s already exists (use --force to overwrite)", a.cfgPath))
	}
	if err := config.SaveTo(config.Default(), a.cfgPath); err != nil {
		return newCommandError("config", "init", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Wrote "+a.cfgPath))
	return nil
}

func (a *app) configGet(cmd *cobra.Command, args []string) error {
	v, err := a.cfg.Get(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

// configSet edits the file itself, so environment and flag overrides are
// never written back.
func (a *app) configSet(cmd *cobra.Command, args []string) error {
	if a.cfgPath == "" {
		return newCommandError("config", "set", errors.New("no config path"))
	}
	cfg, err := config.ReadFile(a.cfgPath)
	if err != nil {
		return newCommandError("config", "set", err)
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errConfigLoad, err)
	}
	if err := config.SaveTo(cfg, a.cfgPath); err != nil {
		return newCommandError("config", "set", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
	return nil
}
