// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to Markdown, JSON or YAML files.
//
// Both the live TUI (/export) and the history command export through the
// same Exporter interface, so a live session and an archived one produce
// identical files.
//
// # Usage
//
//	conv := storage.FromTranscript(ctrl.ID(), ctrl.CreatedAt(), ctrl.Transcript(), ctrl.LastModel(), "")
//	path, err := export.Export(conv, "markdown", &export.Options{OutputDir: "."})
package export
