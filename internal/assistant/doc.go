// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the HTTP client for the remote assistant endpoint.
//
// The endpoint is an opaque service that accepts one JSON POST per user
// message and answers with a JSON object whose "response" field holds the
// reply text:
//
//	POST /chat  {"message": "latest news"}
//	200 OK      {"response": "Top story...", "model": "gemini-2.5-flash"}
//
// # Key Types
//
//   - Client: Sends a message and classifies the result, no retries
//   - Outcome: Tagged result (reply, malformed, transport failure)
//
// # Usage
//
//	client := assistant.New(assistant.DefaultEndpoint, assistant.WithLogger(logger))
//	out := client.Send(ctx, "latest news")
//	switch out.Kind {
//	case assistant.OutcomeReply:
//	    fmt.Println(out.Text)
//	}
package assistant
