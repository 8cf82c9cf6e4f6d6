// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/albert-tui/internal/model"
	"github.com/jeranaias/albert-tui/internal/util"
)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation is an archived chat session.
type StoredConversation struct {
	ID             string    `json:"id" yaml:"id"`
	Summary        string    `json:"summary" yaml:"summary"`
	Model          string    `json:"model,omitempty" yaml:"model,omitempty"`
	BackendSession string    `json:"backend_session,omitempty" yaml:"backend_session,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`

	Messages []StoredMessage `json:"messages" yaml:"messages"`
}

// StoredMessage is one archived transcript entry.
type StoredMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Model     string    `json:"model,omitempty" yaml:"model,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

const (
	summaryLength = 50
	previewLength = 80

	// DefaultSummary names a conversation without user messages.
	DefaultSummary = "New conversation"
)

// FromTranscript snapshots a live transcript for archiving or export.
func FromTranscript(id string, createdAt time.Time, msgs []model.Message, lastModel, backendSession string) *StoredConversation {
	conv := &StoredConversation{
		ID:             id,
		Model:          lastModel,
		BackendSession: backendSession,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		Messages:       make([]StoredMessage, 0, len(msgs)),
	}
	for _, msg := range msgs {
		conv.Messages = append(conv.Messages, StoredMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.Content,
			Model:     msg.Model,
			Timestamp: msg.Timestamp,
		})
		if msg.Timestamp.After(conv.UpdatedAt) {
			conv.UpdatedAt = msg.Timestamp
		}
	}
	conv.Summary = conv.generateSummary()
	return conv
}

// Source is a live session that can be snapshotted.
// *session.Controller satisfies it.
type Source interface {
	ID() string
	CreatedAt() time.Time
	Transcript() []model.Message
	LastModel() string
	BackendSession() string
}

// Snapshot converts the current state of src.
func Snapshot(src Source) *StoredConversation {
	return FromTranscript(src.ID(), src.CreatedAt(), src.Transcript(), src.LastModel(), src.BackendSession())
}

// HasUserMessages reports whether the conversation contains anything the
// user typed. Sessions holding only the greeting are not worth archiving.
func (c *StoredConversation) HasUserMessages() bool {
	return c.firstUserContent() != ""
}

// generateSummary creates a summary from the first user message.
func (c *StoredConversation) generateSummary() string {
	if first := c.firstUserContent(); first != "" {
		return util.TruncateRunes(util.CollapseWhitespace(first), summaryLength)
	}
	return DefaultSummary
}

// GetPreview returns a one-line preview of the first user message.
func (c *StoredConversation) GetPreview() string {
	return util.TruncateRunes(util.CollapseWhitespace(c.firstUserContent()), previewLength)
}

// MessageCount returns the number of messages in the conversation.
func (c *StoredConversation) MessageCount() int {
	return len(c.Messages)
}

// Transcript converts the archived entries back to model messages.
func (c *StoredConversation) Transcript() []model.Message {
	out := make([]model.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		out = append(out, model.Message{
			ID:        m.ID,
			Role:      model.Role(m.Role),
			Content:   m.Content,
			Model:     m.Model,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func (c *StoredConversation) firstUserContent() string {
	for _, msg := range c.Messages {
		if msg.Role == model.RoleUser.String() && strings.TrimSpace(msg.Content) != "" {
			return msg.Content
		}
	}
	return ""
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions as a plain-text table.
func FormatSessionList(sessions []ConversationMeta) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("ID", 10) + " " + util.PadRight("Updated", 17) + " " + util.PadRight("Msgs", 5) + " Preview\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		preview := s.Preview
		if preview == "" {
			preview = s.Summary
		}
		sb.WriteString(util.PadRight(id, 10) + " " +
			util.PadRight(s.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			util.PadRight(strconv.Itoa(s.MessageCount), 5) + " " +
			util.TruncateWidth(preview, 36) + "\n")
	}
	return sb.String()
}
