// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the opt-in transcript archive for albert.
//
// Sessions live in memory and are gone when albert exits. When history is
// enabled, each transcript is also written to a SQLite database so it can be
// listed, shown and exported later from the command line. Archived
// conversations are never loaded back into a live session.
//
// # Key Types
//
//   - Archive: SQLite-backed store (modernc.org/sqlite, no cgo)
//   - StoredConversation: Serializable conversation with metadata
//   - ConversationMeta: Lightweight metadata for listing
//
// # Usage
//
//	archive, err := storage.Open(cfg.HistoryPath(), cfg.History.MaxSessions, logger)
//	conv := storage.FromTranscript(ctrl.ID(), ctrl.CreatedAt(), ctrl.Transcript(), ctrl.LastModel(), ctrl.BackendSession())
//	id, err := archive.Save(ctx, conv)
//	metas, err := archive.List(ctx, 20)
package storage
