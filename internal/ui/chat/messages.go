// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/session"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of an exchange back to the update loop.
type ReplyMsg struct {
	Exchange *session.Exchange
	Outcome  assistant.Outcome
}

// =============================================================================
// ENDPOINT MESSAGES
// =============================================================================

// PingResultMsg reports whether the endpoint host answered.
type PingResultMsg struct {
	Err error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent when the config file changed and validated.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ConfigErrorMsg is sent when a changed config file failed to load.
type ConfigErrorMsg struct {
	Err error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// ExportDoneMsg reports the result of an /export command.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ArchiveSavedMsg reports a write to the history archive.
type ArchiveSavedMsg struct {
	ID  string
	Err error
}
