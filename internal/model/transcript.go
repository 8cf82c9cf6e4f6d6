// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultGreeting is the assistant message every transcript starts with.
const DefaultGreeting = "Hi there, I am Albert, your personal assistant. 🦄\n\nHow can I help you?"

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered list of exchanged messages. Insertion order is
// chronological order is display order. It only grows.
//
// Transcript is not safe for concurrent use; the session controller owns it
// and serialises access.
type Transcript struct {
	messages  []Message
	createdAt time.Time
}

// NewTranscript creates a transcript seeded with a single assistant greeting.
// An empty greeting falls back to DefaultGreeting.
func NewTranscript(greeting string) *Transcript {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	return &Transcript{
		messages:  []Message{NewAssistantMessage(greeting)},
		createdAt: time.Now(),
	}
}

// Append adds msg to the end of the transcript. A missing ID or timestamp
// is filled in.
func (t *Transcript) Append(msg Message) Message {
	if msg.ID == "" {
		msg.ID = NewMessage(msg.Role, "").ID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// At returns the message at index i.
func (t *Transcript) At(i int) (Message, bool) {
	if i < 0 || i >= len(t.messages) {
		return Message{}, false
	}
	return t.messages[i], true
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	return t.At(len(t.messages) - 1)
}

// Messages returns a copy of all messages in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// CreatedAt returns when the transcript was seeded.
func (t *Transcript) CreatedAt() time.Time {
	return t.createdAt
}

// FirstUserMessage returns the earliest user message, used for titles.
func (t *Transcript) FirstUserMessage() (Message, bool) {
	for _, msg := range t.messages {
		if msg.Role == RoleUser {
			return msg, true
		}
	}
	return Message{}, false
}
