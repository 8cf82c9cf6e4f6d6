// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the chat session controller.
//
// A Controller holds the transcript, the pending draft and the
// awaiting-reply flag. A submission has two halves:
//
//	ex, ok := ctrl.Submit("latest news") // user message + placeholder, flag raised
//	out := ex.Run(ctx)                    // one POST to the endpoint
//	ctrl.Resolve(ex, out)                 // reply/apology/error appended, flag cleared
//
// The placeholder appended by Submit is never replaced; the eventual answer
// lands after it as a separate entry. Failures never surface as errors:
// every outcome becomes a transcript message and the session stays usable.
//
// Callers that can block use Converse, which runs all three steps.
package session
