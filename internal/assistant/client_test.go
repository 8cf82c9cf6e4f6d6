// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Idle keep-alive connections of the shared transport.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// newTestClient points a client at handler through a private transport so
// test servers can be closed cleanly.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	opts = append([]Option{WithHTTPClient(hc)}, opts...)
	return New(server.URL+"/chat", opts...)
}

// =============================================================================
// REQUEST SHAPE
// =============================================================================

func TestSend_RequestShape(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"ok"}`))
	})

	out := client.Send(context.Background(), "latest news")
	require.Equal(t, OutcomeReply, out.Kind, "err: %v", out.Err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"message": "latest news"}, gotBody)
}

// =============================================================================
// OUTCOME CLASSIFICATION
// =============================================================================

func TestSend_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind OutcomeKind
		wantText string
	}{
		{"well formed", 200, `{"response":"Here is your digest"}`, OutcomeReply, "Here is your digest"},
		{"extra fields", 200, `{"response":"hi","session_id":"abc","model":"gemini-2.5-flash"}`, OutcomeReply, "hi"},
		{"empty object", 200, `{}`, OutcomeMalformed, ""},
		{"empty string", 200, `{"response":""}`, OutcomeMalformed, ""},
		{"number", 200, `{"response":42}`, OutcomeMalformed, ""},
		{"null field", 200, `{"response":null}`, OutcomeMalformed, ""},
		{"array body", 200, `["response"]`, OutcomeMalformed, ""},
		{"null body", 200, `null`, OutcomeMalformed, ""},
		{"invalid json", 200, `{"response":`, OutcomeTransportFailure, ""},
		{"server error", 500, `{"detail":"boom"}`, OutcomeTransportFailure, ""},
		{"not found", 404, `not here`, OutcomeTransportFailure, ""},
		{"created counts as success", 201, `{"response":"made"}`, OutcomeReply, "made"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			out := client.Send(context.Background(), "hello")
			assert.Equal(t, tc.wantKind, out.Kind, "err: %v", out.Err)
			assert.Equal(t, tc.wantText, out.Text)
			assert.Equal(t, tc.status, out.StatusCode)
			if tc.wantKind != OutcomeReply {
				assert.Error(t, out.Err)
			}
		})
	}
}

func TestSend_ReplyMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"hi","session_id":"s-1","model":"gemini-2.5-flash"}`))
	})

	out := client.Send(context.Background(), "hello")
	require.True(t, out.OK())
	assert.Equal(t, "gemini-2.5-flash", out.Model)
	assert.Equal(t, "s-1", out.SessionID)
}

func TestSend_StatusErrorDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream down"}`))
	})

	out := client.Send(context.Background(), "hello")
	var se *StatusError
	require.True(t, errors.As(out.Err, &se), "want *StatusError, got %T", out.Err)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "upstream down", se.Detail)
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL + "/chat"
	server.Close()

	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	out := New(endpoint, WithHTTPClient(hc)).Send(context.Background(), "hello")
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
	assert.Equal(t, 0, out.StatusCode)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	out := client.Send(context.Background(), "hello")
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
	assert.True(t, errors.Is(out.Err, context.DeadlineExceeded), "err: %v", out.Err)
}

func TestSend_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"late"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := client.Send(ctx, "hello")
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
}

func TestSend_EmptyMessage(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	out := client.Send(context.Background(), "   ")
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
	assert.ErrorIs(t, out.Err, ErrEmptyMessage)
	assert.False(t, called, "blank messages must not reach the endpoint")
}

func TestSend_ResponseTooLarge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"`))
		w.Write([]byte(strings.Repeat("a", MaxResponseSize)))
		w.Write([]byte(`"}`))
	})

	out := client.Send(context.Background(), "hello")
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
	assert.ErrorIs(t, out.Err, ErrResponseTooLarge)
}

func TestSend_RateLimitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"ok"}`))
	}, WithRateLimit(1))

	first := client.Send(context.Background(), "one")
	require.True(t, first.OK())

	// The single token is spent; the next wait exceeds the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	second := client.Send(ctx, "two")
	assert.Equal(t, OutcomeTransportFailure, second.Kind)
}

// =============================================================================
// PING
// =============================================================================

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, client.Ping(context.Background()))

	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	unreachable := New("http://127.0.0.1:1/chat", WithHTTPClient(hc))
	assert.Error(t, unreachable.Ping(context.Background()))
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestPing_DeadlineCapped(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		deadline, hasDeadline = r.Context().Deadline()
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})}

	start := time.Now()
	client := New("http://albert.invalid/chat", WithHTTPClient(hc))
	require.NoError(t, client.Ping(context.Background()))

	require.True(t, hasDeadline)
	assert.Equal(t, 5*time.Second, pingTimeout)
	assert.WithinDuration(t, start.Add(pingTimeout), deadline, time.Second)
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Zero(t, c.Timeout())
}
