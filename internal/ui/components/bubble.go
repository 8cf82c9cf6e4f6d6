// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/albert-tui/internal/model"
	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// Bubble renders one transcript entry: user messages right-aligned in
// indigo, assistant messages left-aligned under the avatar.
type Bubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool

	// Markdown renders assistant content; nil shows it as plain text.
	Markdown *MarkdownRenderer

	theme *styles.Theme
}

// NewBubble creates a bubble for msg.
func NewBubble(msg model.Message, theme *styles.Theme) *Bubble {
	return &Bubble{
		Message: msg,
		Width:   80,
		theme:   theme,
	}
}

// View renders the bubble.
func (b *Bubble) View() string {
	if b.Message.Role == model.RoleUser {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

// contentWidth is the widest a bubble's text may be: four fifths of the
// row, less the bubble padding.
func (b *Bubble) contentWidth() int {
	w := b.Width*4/5 - b.theme.AssistantBubble.GetHorizontalFrameSize()
	if w < 10 {
		w = 10
	}
	return w
}

// ==========================================================================
// USER BUBBLE
// ==========================================================================

func (b *Bubble) renderUserBubble() string {
	text := wordWrap(b.Message.Content, b.contentWidth())
	bubble := b.theme.UserBubble.Render(text)

	label := model.RoleUser.DisplayName()
	if b.ShowTimestamp {
		label = b.renderTimestamp() + " " + label
	}
	header := b.theme.Timestamp.Render(label)

	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE
// ==========================================================================

func (b *Bubble) renderAssistantBubble() string {
	var text string
	if b.Markdown != nil {
		text = b.Markdown.Render(b.Message.Content, b.contentWidth())
	} else {
		text = wordWrap(b.Message.Content, b.contentWidth())
	}
	bubble := b.theme.AssistantBubble.Render(strings.TrimRight(text, "\n"))

	parts := []string{b.theme.Avatar.Render("🦄 " + model.RoleAssistant.DisplayName())}
	if b.Message.Model != "" {
		parts = append(parts, b.theme.ModelBadge.Render(model.BadgeName(b.Message.Model)))
	}
	if b.ShowTimestamp {
		parts = append(parts, b.theme.Timestamp.Render(b.renderTimestamp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(parts, " "), bubble)
}

func (b *Bubble) renderTimestamp() string {
	if b.Message.Timestamp.IsZero() {
		return ""
	}
	return b.Message.Timestamp.Format("15:04")
}

// RenderTranscript renders every message, separated by a blank line.
func RenderTranscript(msgs []model.Message, width int, showTimestamps bool, md *MarkdownRenderer, theme *styles.Theme) string {
	views := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		b := NewBubble(msg, theme)
		b.Width = width
		b.ShowTimestamp = showTimestamps
		b.Markdown = md
		views = append(views, b.View())
	}
	return strings.Join(views, "\n\n")
}
