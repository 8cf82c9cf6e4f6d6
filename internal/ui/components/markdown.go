// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant replies with glamour. Renderers are
// cached per wrap width because building one parses a full style sheet.
type MarkdownRenderer struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer using glamour's dark or light style.
func NewMarkdownRenderer(dark bool) *MarkdownRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	return &MarkdownRenderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// NewPlainMarkdownRenderer creates a renderer without colors, for output
// that is piped or logged.
func NewPlainMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{style: "notty", renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders content wrapped at width. It returns content unchanged if
// glamour fails.
func (r *MarkdownRenderer) Render(content string, width int) string {
	if r == nil {
		return content
	}
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.renderers[width]
	if !ok {
		var err error
		tr, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return content
		}
		r.renderers[width] = tr
	}

	rendered, err := tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
