// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the chat session controller.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/model"
)

// =============================================================================
// FIXED MESSAGES
// =============================================================================

const (
	// PlaceholderText is appended right after every user message, before the
	// endpoint has answered. It stays in the transcript for good.
	PlaceholderText = "Understand. I will go fetch your updates. You will be directed to log in with your gmail account first (if not already logged in).\n\nIt may take up to 5 mins for the audio digest to be ready. I will ping you once it is done. Go get some coffee (or tea) then come back!"

	// ApologyText answers a reply without a usable "response" field.
	ApologyText = "Sorry, I couldn't process that. Please try again."

	// ConnectivityText answers a transport failure.
	ConnectivityText = "I'm having trouble connecting to my brain 😵.\n\nLet me get some human to help.\n\nDone. I have sent a support ticket to the customer service team."
)

// ErrNoSender is reported when an exchange runs without an assistant client.
var ErrNoSender = errors.New("no assistant endpoint configured")

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sender delivers one message to the assistant endpoint.
type Sender interface {
	Send(ctx context.Context, message string) assistant.Outcome
}

// EventKind identifies a controller state change.
type EventKind int

const (
	EventSubmitted EventKind = iota // user message and placeholder appended
	EventResolved                   // reply, apology or connectivity text appended
)

// Event is delivered to observers after the transcript has changed.
type Event struct {
	Kind     EventKind
	Exchange *Exchange
	Outcome  assistant.Outcome // EventResolved only
	Appended []model.Message
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange is one outstanding submission. It captures the sender that was
// current at submit time, so swapping endpoints never redirects a request
// already in flight.
type Exchange struct {
	ID        string
	Text      string
	StartedAt time.Time

	sender Sender
}

// Run performs the outbound call. It is safe to call from any goroutine and
// does not touch controller state.
func (ex *Exchange) Run(ctx context.Context) assistant.Outcome {
	if ex.sender == nil {
		return assistant.TransportFailure(ErrNoSender)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return ex.sender.Send(ctx, ex.Text)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the transcript, the draft and the awaiting-reply flag.
// At most one exchange is outstanding at any time.
type Controller struct {
	mu sync.Mutex

	id         string
	transcript *model.Transcript
	draft      string
	pending    *Exchange
	closed     bool
	lastModel  string
	sessionRef string

	sender    Sender
	logger    *zap.Logger
	observers []func(Event)
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	greeting  string
	logger    *zap.Logger
	observers []func(Event)
}

// WithGreeting overrides the seeded greeting.
func WithGreeting(greeting string) Option {
	return func(o *controllerOptions) { o.greeting = greeting }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *controllerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers fn to be called after every transcript change.
// Observers run on the caller's goroutine, outside the controller lock.
func WithObserver(fn func(Event)) Option {
	return func(o *controllerOptions) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// New creates a controller whose transcript holds only the greeting.
func New(sender Sender, opts ...Option) *Controller {
	o := controllerOptions{greeting: model.DefaultGreeting, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	id := uuid.NewString()
	return &Controller{
		id:         id,
		transcript: model.NewTranscript(o.greeting),
		sender:     sender,
		logger:     o.logger.With(zap.String("session", id)),
		observers:  o.observers,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// SetSender swaps the assistant client used by future submissions.
func (c *Controller) SetSender(s Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sender = s
}

// UpdateDraft stores the pending input text.
func (c *Controller) UpdateDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the pending input text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// AwaitingReply reports whether an exchange is outstanding.
func (c *Controller) AwaitingReply() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// CanSubmit reports whether the send control should be enabled for the
// current draft.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acceptsLocked(c.draft)
}

// Transcript returns a copy of the transcript in display order.
func (c *Controller) Transcript() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// Len returns the transcript length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Len()
}

// CreatedAt returns when the session began.
func (c *Controller) CreatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.CreatedAt()
}

// LastModel returns the most recent model the endpoint reported.
func (c *Controller) LastModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastModel
}

// BackendSession returns the most recent session id the endpoint reported.
func (c *Controller) BackendSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionRef
}

// Submit runs the synchronous half of a submission: it appends the user
// message and the placeholder, clears the draft and raises awaiting-reply.
// It returns false without touching state when text is blank, a reply is
// already awaited, or the controller is closed.
func (c *Controller) Submit(text string) (*Exchange, bool) {
	c.mu.Lock()
	if !c.acceptsLocked(text) {
		awaiting := c.pending != nil
		c.mu.Unlock()
		c.logger.Debug("submit ignored", zap.Bool("awaiting_reply", awaiting), zap.Bool("blank", strings.TrimSpace(text) == ""))
		return nil, false
	}

	user := c.transcript.Append(model.NewUserMessage(text))
	placeholder := c.transcript.Append(model.NewAssistantMessage(PlaceholderText))
	c.draft = ""

	ex := &Exchange{
		ID:        uuid.NewString(),
		Text:      text,
		StartedAt: time.Now(),
		sender:    c.sender,
	}
	c.pending = ex
	length := c.transcript.Len()
	c.mu.Unlock()

	c.logger.Info("message submitted", zap.String("exchange", ex.ID), zap.Int("transcript_len", length))
	c.notify(Event{Kind: EventSubmitted, Exchange: ex, Appended: []model.Message{user, placeholder}})
	return ex, true
}

// SubmitDraft submits the current draft.
func (c *Controller) SubmitDraft() (*Exchange, bool) {
	return c.Submit(c.Draft())
}

// Dispatch runs the outbound call for ex. It is equivalent to ex.Run and
// exists for callers that only hold the controller.
func (c *Controller) Dispatch(ctx context.Context, ex *Exchange) assistant.Outcome {
	if ex == nil {
		return assistant.TransportFailure(ErrNoSender)
	}
	return ex.Run(ctx)
}

// Resolve appends the reply for ex and clears awaiting-reply. The placeholder
// is left in place. Resolving a stale exchange or a closed controller is a
// no-op and returns false.
func (c *Controller) Resolve(ex *Exchange, out assistant.Outcome) bool {
	c.mu.Lock()
	if c.closed || ex == nil || c.pending != ex {
		c.mu.Unlock()
		c.logger.Debug("late resolution dropped", zap.Stringer("outcome", out.Kind))
		return false
	}

	reply := model.NewAssistantMessage(ReplyContent(out))
	if out.Kind == assistant.OutcomeReply {
		reply.Model = out.Model
		if out.Model != "" {
			c.lastModel = out.Model
		}
		if out.SessionID != "" {
			c.sessionRef = out.SessionID
		}
	}
	reply = c.transcript.Append(reply)
	c.pending = nil
	length := c.transcript.Len()
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("exchange", ex.ID),
		zap.Stringer("outcome", out.Kind),
		zap.Duration("elapsed", time.Since(ex.StartedAt)),
		zap.Int("transcript_len", length),
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}
	c.logger.Info("exchange resolved", fields...)

	c.notify(Event{Kind: EventResolved, Exchange: ex, Outcome: out, Appended: []model.Message{reply}})
	return true
}

// Converse submits text, waits for the endpoint and resolves the exchange.
// It returns false when the submission was not accepted.
func (c *Controller) Converse(ctx context.Context, text string) (assistant.Outcome, bool) {
	ex, ok := c.Submit(text)
	if !ok {
		return assistant.Outcome{}, false
	}
	out := ex.Run(ctx)
	c.Resolve(ex, out)
	return out, true
}

// Close detaches the controller. Later resolutions are dropped silently.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ReplyContent maps an outcome to the assistant text appended for it.
func ReplyContent(out assistant.Outcome) string {
	switch out.Kind {
	case assistant.OutcomeReply:
		if out.Text != "" {
			return out.Text
		}
		return ApologyText
	case assistant.OutcomeMalformed:
		return ApologyText
	default:
		return ConnectivityText
	}
}

func (c *Controller) acceptsLocked(text string) bool {
	return !c.closed && c.pending == nil && strings.TrimSpace(text) != ""
}

func (c *Controller) notify(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}
