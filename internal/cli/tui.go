// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/ui/chat"
	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// runTUI starts the full-screen chat.
func (a *app) runTUI(cmd *cobra.Command) error {
	client := a.newClient(a.cfg)
	ctrl := a.newController(client)

	opts := chat.Options{
		Controller: ctrl,
		Config:     a.cfg,
		Theme:      styles.NewTheme(a.cfg.UI.Theme),
		Pinger:     client,
		Logger:     a.logger,
		NewSender: func(cfg *config.Config) session.Sender {
			return a.newClient(cfg)
		},
	}

	arch, err := a.openArchive(false)
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
	}
	if arch != nil {
		defer arch.Close()
		opts.Archive = arch
	}

	var progOpts []tea.ProgramOption
	if a.cfg.UI.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(chat.New(opts), progOpts...)

	if a.cfgPath != "" {
		w, err := config.NewWatcher(a.cfgPath, config.DefaultDebounce,
			func(cfg *config.Config) { p.Send(chat.ConfigReloadedMsg{Config: a.reloaded(cmd, cfg)}) },
			func(err error) { p.Send(chat.ConfigErrorMsg{Err: err}) },
		)
		if err == nil {
			err = w.Watch()
			defer w.Close()
		}
		if err != nil {
			a.logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	a.logger.Info("chat started", zap.String("session", ctrl.ID()), zap.String("endpoint", a.cfg.Endpoint.URL))
	_, err = p.Run()
	ctrl.Close()
	a.archiveSession(arch, ctrl)
	a.logger.Info("chat ended", zap.String("session", ctrl.ID()), zap.Int("messages", ctrl.Len()))
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}
