// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/storage"
	"github.com/jeranaias/albert-tui/internal/ui/components"
)

// archiveTimeout bounds the final history write on exit.
const archiveTimeout = 5 * time.Second

// newClient builds the assistant client for cfg.
func (a *app) newClient(cfg *config.Config) *assistant.Client {
	return assistant.New(cfg.Endpoint.URL,
		assistant.WithTimeout(cfg.Endpoint.Timeout()),
		assistant.WithRateLimit(cfg.Endpoint.RateLimitPerMinute),
		assistant.WithUserAgent("albert-tui/"+a.info.Version),
		assistant.WithLogger(a.logger),
	)
}

// newController starts a fresh session against sender.
func (a *app) newController(sender session.Sender) *session.Controller {
	return session.New(sender, session.WithLogger(a.logger))
}

// openArchive opens the history database. Unless force is set it returns
// nil when history is disabled.
func (a *app) openArchive(force bool) (*storage.Archive, error) {
	if !a.cfg.History.Enabled && !force {
		return nil, nil
	}
	return storage.Open(a.cfg.HistoryPath(), a.cfg.History.MaxSessions, a.logger)
}

// archiveSession writes the final transcript of ctrl. Sessions without a
// user message are skipped.
func (a *app) archiveSession(arch *storage.Archive, ctrl *session.Controller) {
	if arch == nil {
		return
	}
	conv := storage.Snapshot(ctrl)
	if !conv.HasUserMessages() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if _, err := arch.Save(ctx, conv); err != nil {
		a.logger.Warn("history save failed", zap.Error(err))
	}
}

// newMarkdown returns a renderer for replies printed to stdout: styled on a
// color terminal, plain otherwise, nil when markdown is off.
func (a *app) newMarkdown() *components.MarkdownRenderer {
	if !a.cfg.UI.Markdown {
		return nil
	}
	if !ColorsEnabled() {
		return components.NewPlainMarkdownRenderer()
	}
	return components.NewMarkdownRenderer(a.cfg.UI.Theme != "light")
}
