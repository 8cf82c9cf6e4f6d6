// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/albert-tui/internal/ui/components"
)

// =============================================================================
// RENDER CACHE
// =============================================================================

// renderCache holds rendered bubbles by message ID. Transcript entries never
// change once appended, so a bubble only re-renders when the width or the
// display settings change.
type renderCache struct {
	views map[string]string
}

func newRenderCache() *renderCache {
	return &renderCache{views: make(map[string]string)}
}

func (c *renderCache) reset() {
	c.views = make(map[string]string)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewport.View(),
		m.renderInput(),
		m.renderFooter(),
	)
}

// renderTranscript renders every message followed by the typing bubble.
func (m Model) renderTranscript() string {
	msgs := m.ctrl.Transcript()
	views := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		v, ok := m.bubbles.views[msg.ID]
		if !ok {
			b := components.NewBubble(msg, m.theme)
			b.Width = m.viewport.Width
			b.ShowTimestamp = m.cfg.UI.ShowTimestamps
			b.Markdown = m.markdown
			v = b.View()
			m.bubbles.views[msg.ID] = v
		}
		views = append(views, v)
	}
	if t := m.typing.View(); t != "" {
		views = append(views, t)
	}
	return strings.Join(views, "\n\n")
}

// renderInput renders the input box and the send control. The control is
// dimmed when the draft is blank or a reply is awaited.
func (m Model) renderInput() string {
	container := m.theme.InputContainer
	var field string
	if m.ctrl.AwaitingReply() {
		field = m.theme.InputPrompt.Render(m.input.Prompt) + m.theme.InputPlaceholder.Render(m.input.Placeholder)
	} else {
		container = m.theme.InputContainerFocus
		field = m.input.View()
	}

	send := m.theme.SendDisabled.Render(sendControlLabel)
	if m.ctrl.CanSubmit() {
		send = m.theme.SendEnabled.Render(sendControlLabel)
	}

	inner := m.viewport.Width - container.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(field) - lipgloss.Width(send)
	if gap < 1 {
		gap = 1
	}
	return container.Render(field + strings.Repeat(" ", gap) + send)
}

// renderFooter shows the current notice, or key help.
func (m Model) renderFooter() string {
	if m.notice != "" {
		style := m.theme.Notice
		if m.noticeError {
			style = m.theme.ErrorText
		}
		return m.theme.Footer.Render(style.Render(m.notice))
	}

	if !m.showHelp {
		return m.theme.Footer.Render(m.renderBindings(m.keys.ShortHelp()))
	}
	rows := make([]string, 0, 4)
	for _, group := range m.keys.FullHelp() {
		rows = append(rows, m.renderBindings(group))
	}
	rows = append(rows, m.theme.HelpDesc.Render("commands: "+strings.Join(commandNames(), " ")))
	return m.theme.Footer.Render(strings.Join(rows, "\n"))
}

func (m Model) renderBindings(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.HelpKey.Render(h.Key)+" "+m.theme.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, m.theme.HelpDesc.Render(" • "))
}
