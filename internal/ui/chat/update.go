// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/albert-tui/internal/export"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/storage"
)

// archiveTimeout bounds a single history write.
const archiveTimeout = 5 * time.Second

// =============================================================================
// COLLABORATORS
// =============================================================================

// Pinger probes the endpoint host.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Archiver records transcripts. *storage.Archive satisfies it.
type Archiver interface {
	Save(ctx context.Context, conv *storage.StoredConversation) (string, error)
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// runExchangeCmd performs the outbound call off the update loop.
func runExchangeCmd(ctx context.Context, ex *session.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Exchange: ex, Outcome: ex.Run(ctx)}
	}
}

// pingCmd probes the endpoint once.
func pingCmd(ctx context.Context, p Pinger) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return PingResultMsg{Err: p.Ping(ctx)}
	}
}

// exportCmd writes conv in format to dir.
func exportCmd(conv *storage.StoredConversation, format, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		if dir != "" {
			opts.OutputDir = dir
		}
		path, err := export.Export(conv, format, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// archiveCmd saves conv to the history archive.
func archiveCmd(a Archiver, conv *storage.StoredConversation) tea.Cmd {
	if a == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		id, err := a.Save(ctx, conv)
		return ArchiveSavedMsg{ID: id, Err: err}
	}
}
