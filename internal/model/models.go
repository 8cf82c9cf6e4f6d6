// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// BACKEND MODEL INFO
// =============================================================================

// ModelInfo describes a backend model the assistant endpoint may report in
// its replies. It is only used for display.
type ModelInfo struct {
	// ID is the identifier the endpoint reports (e.g. "gemini-2.5-flash")
	ID string `json:"id"`

	// Name is the badge text shown in the header
	Name string `json:"name"`

	// Provider is who serves the model
	Provider string `json:"provider"`
}

// Models is the registry of backend models with friendly badge names.
var Models = map[string]ModelInfo{
	"gemini-2.5-flash": {ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "Google"},
	"gemini-2.5-pro":   {ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: "Google"},
	"gemini-2.0-flash": {ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "Google"},
	"gpt-4o":           {ID: "gpt-4o", Name: "GPT-4o", Provider: "OpenAI"},
	"gpt-4o-mini":      {ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: "OpenAI"},
	"claude-sonnet-4":  {ID: "claude-sonnet-4", Name: "Claude Sonnet 4", Provider: "Anthropic"},
}

// DefaultBadge is shown before the endpoint has reported a model.
const DefaultBadge = "Gemini 2.5 Flash"

// GetModelInfo looks a model up by ID. Provider prefixes such as
// "models/" or "google/" are ignored.
func GetModelInfo(id string) (ModelInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	info, ok := Models[key]
	return info, ok
}

// BadgeName returns the display name for a reported model ID. Unknown IDs
// are shown verbatim; the error sentinel the backend uses yields "".
func BadgeName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || id == "error" {
		return ""
	}
	if info, ok := GetModelInfo(id); ok {
		return info.Name
	}
	return id
}
