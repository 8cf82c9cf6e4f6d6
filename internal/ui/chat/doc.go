// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive chat screen.
//
// Model drives a session.Controller from bubbletea. Enter submits the draft:
// the user message and placeholder appear at once, the typing bubble starts
// and the outbound call runs as a tea.Cmd. Its ReplyMsg resolves the
// exchange on the update loop. The input stays disabled until then.
//
// A few slash commands are handled locally (/help, /export, /status,
// /quit). Any other text, slash or not, goes to Albert.
package chat
