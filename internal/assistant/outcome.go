// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"errors"
	"time"
)

// =============================================================================
// OUTCOME
// =============================================================================

// OutcomeKind tags the three ways a single exchange with the endpoint can end.
type OutcomeKind int

const (
	// OutcomeReply: 2xx with a non-empty string "response" field.
	OutcomeReply OutcomeKind = iota

	// OutcomeMalformed: 2xx and valid JSON, but no usable "response" field.
	OutcomeMalformed

	// OutcomeTransportFailure: network error, non-2xx, timeout or invalid JSON.
	OutcomeTransportFailure
)

// String returns the outcome kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReply:
		return "reply"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Send. Exactly one of the kinds applies;
// Text is only set for OutcomeReply and Err is only set for the other two.
type Outcome struct {
	Kind OutcomeKind

	// Reply fields
	Text      string
	Model     string
	SessionID string

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	// Err describes why the exchange was malformed or failed.
	Err error

	// Latency is the wall time of the exchange.
	Latency time.Duration
}

// Reply builds a well-formed reply outcome.
func Reply(text string) Outcome {
	return Outcome{Kind: OutcomeReply, Text: text}
}

// Malformed builds a malformed-response outcome.
func Malformed(reason error) Outcome {
	if reason == nil {
		reason = ErrMissingResponse
	}
	return Outcome{Kind: OutcomeMalformed, Err: reason}
}

// TransportFailure builds a transport-failure outcome.
func TransportFailure(err error) Outcome {
	if err == nil {
		err = errors.New("transport failure")
	}
	return Outcome{Kind: OutcomeTransportFailure, Err: err}
}

// OK reports whether the outcome carries a usable reply.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeReply
}
