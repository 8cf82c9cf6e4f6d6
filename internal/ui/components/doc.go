// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the albert TUI.
//
//   - Header: name, tagline, endpoint dot and model badge
//   - Bubble: one transcript entry, assistant text rendered as markdown
//   - TypingIndicator: three animated dots while a reply is awaited
//
// Components hold no conversation state; they render whatever transcript
// snapshot they are given.
package components
