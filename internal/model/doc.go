// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Message: Single immutable entry with role, content and timestamp
//   - Role: user or assistant
//   - Transcript: Append-only, ordered list of messages seeded with a greeting
//
// # Usage
//
//	t := model.NewTranscript(model.DefaultGreeting)
//	t.Append(model.NewUserMessage("latest news"))
//	last, _ := t.Last()
package model
