// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/storage"
	"github.com/jeranaias/albert-tui/internal/ui/components"
	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSender struct {
	mu   sync.Mutex
	out  assistant.Outcome
	sent []string
}

func (f *fakeSender) Send(_ context.Context, message string) assistant.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
	return f.out
}

func (f *fakeSender) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type pingingSender struct {
	fakeSender
	err error
}

func (p *pingingSender) Ping(context.Context) error { return p.err }

type fakeArchive struct {
	mu    sync.Mutex
	saved []*storage.StoredConversation
}

func (a *fakeArchive) Save(_ context.Context, conv *storage.StoredConversation) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, conv)
	return conv.ID, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func replyOutcome(text, modelID string) assistant.Outcome {
	out := assistant.Reply(text)
	out.Model = modelID
	return out
}

func newTestModel(t *testing.T, sender session.Sender, mutate func(*Options)) Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Markdown = false
	opts := Options{
		Controller: session.New(sender),
		Config:     cfg,
		Theme:      styles.NewTheme("dark"),
	}
	if mutate != nil {
		mutate(&opts)
	}
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findReply(t *testing.T, msgs []tea.Msg) ReplyMsg {
	t.Helper()
	for _, msg := range msgs {
		if r, ok := msg.(ReplyMsg); ok {
			return r
		}
	}
	t.Fatalf("no ReplyMsg among %d messages", len(msgs))
	return ReplyMsg{}
}

// submit types text, presses enter and returns the reply produced by the
// exchange command without applying it.
func submit(t *testing.T, m Model, text string) (Model, ReplyMsg) {
	t.Helper()
	m = typeText(t, m, text)
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	return m, findReply(t, collect(cmd))
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestSubmitAppendsUserMessageAndPlaceholder(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("Here is your digest.", "gpt-4o")}
	m := newTestModel(t, sender, nil)

	m = typeText(t, m, "latest news")
	assert.Equal(t, "latest news", m.ctrl.Draft())
	assert.True(t, m.ctrl.CanSubmit())

	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	msgs := m.ctrl.Transcript()
	require.Len(t, msgs, 3)
	assert.Equal(t, "latest news", msgs[1].Content)
	assert.Equal(t, session.PlaceholderText, msgs[2].Content)
	assert.True(t, m.ctrl.AwaitingReply())
	assert.True(t, m.typing.Active())
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.ctrl.Draft())
}

func TestReplyResolvesExchange(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("Here is your digest.", "gpt-4o")}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "latest news")
	next, _ := m.Update(reply)
	m = next.(Model)

	msgs := m.ctrl.Transcript()
	require.Len(t, msgs, 4)
	assert.Equal(t, session.PlaceholderText, msgs[2].Content)
	assert.Equal(t, "Here is your digest.", msgs[3].Content)
	assert.False(t, m.ctrl.AwaitingReply())
	assert.False(t, m.typing.Active())
	assert.Equal(t, "gpt-4o", m.header.ModelName)
	assert.Equal(t, components.StatusOnline, m.header.Status)
	assert.Equal(t, []string{"latest news"}, sender.Sent())
}

func TestTransportFailureShowsConnectivityText(t *testing.T) {
	sender := &fakeSender{out: assistant.TransportFailure(errors.New("connection refused"))}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "hi")
	next, _ := m.Update(reply)
	m = next.(Model)

	msgs := m.ctrl.Transcript()
	require.Len(t, msgs, 4)
	assert.Equal(t, session.ConnectivityText, msgs[3].Content)
	assert.Equal(t, components.StatusOffline, m.header.Status)
	assert.False(t, m.ctrl.AwaitingReply())
}

func TestMalformedReplyShowsApology(t *testing.T) {
	sender := &fakeSender{out: assistant.Malformed(assistant.ErrMissingResponse)}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "hi")
	next, _ := m.Update(reply)
	m = next.(Model)

	assert.Equal(t, session.ApologyText, m.ctrl.Transcript()[3].Content)
	assert.Equal(t, components.StatusOnline, m.header.Status)
}

func TestInputDisabledWhileAwaitingReply(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("ok", "")}
	m := newTestModel(t, sender, nil)

	m, _ = submit(t, m, "first")
	m = typeText(t, m, "second")
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.ctrl.Draft())

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 3, m.ctrl.Len())
}

func TestBlankSubmitIgnored(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)

	m = typeText(t, m, "   ")
	assert.False(t, m.ctrl.CanSubmit())

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.ctrl.Len())
	assert.False(t, m.ctrl.AwaitingReply())
}

func TestStaleReplyIgnored(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("ok", "")}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "hi")
	next, _ := m.Update(reply)
	m = next.(Model)
	next, _ = m.Update(reply)
	m = next.(Model)

	assert.Equal(t, 4, m.ctrl.Len())
}

// =============================================================================
// QUIT TESTS
// =============================================================================

func TestQuitDropsInFlightReply(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("late", "")}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "hi")
	m, cmd := press(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.ctrl.Closed())
	assert.Empty(t, m.View())

	next, _ := m.Update(reply)
	m = next.(Model)
	assert.Equal(t, 3, m.ctrl.Len())
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		args  []string
		ok    bool
	}{
		{"/help", "/help", []string{}, true},
		{"  /EXPORT json ", "/export", []string{"json"}, true},
		{"/quit", "/quit", []string{}, true},
		{"/weather today", "", nil, false},
		{"latest news", "", nil, false},
		{"", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := parseCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.name, c.name)
				assert.Equal(t, tt.args, c.args)
			}
		})
	}
}

func TestUnknownSlashTextIsSent(t *testing.T) {
	sender := &fakeSender{out: replyOutcome("ok", "")}
	m := newTestModel(t, sender, nil)

	m, reply := submit(t, m, "/weather")
	assert.Equal(t, 3, m.ctrl.Len())
	assert.Equal(t, "ok", reply.Outcome.Text)
	assert.Equal(t, []string{"/weather"}, sender.Sent())
}

func TestExportCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, &fakeSender{}, func(o *Options) {
		o.Config.Export.Dir = dir
	})

	m = typeText(t, m, "/export json")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.ctrl.Len())

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	done, ok := msgs[0].(ExportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.FileExists(t, done.Path)
	assert.True(t, strings.HasSuffix(done.Path, ".json"))

	next, _ := m.Update(done)
	m = next.(Model)
	assert.Contains(t, m.notice, "Exported to")
	assert.False(t, m.noticeError)
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)

	m = typeText(t, m, "/export pdf")
	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.True(t, m.noticeError)
	assert.Contains(t, m.notice, "unsupported export format")
}

func TestHelpCommandTogglesHelp(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)
	height := m.viewport.Height

	m = typeText(t, m, "/help")
	m, _ = press(t, m, tea.KeyEnter)
	assert.True(t, m.showHelp)
	assert.Less(t, m.viewport.Height, height)
	assert.Contains(t, m.View(), "/export")

	m, _ = press(t, m, tea.KeyF1)
	assert.False(t, m.showHelp)
	assert.Equal(t, height, m.viewport.Height)
}

func TestStatusCommand(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)

	m = typeText(t, m, "/status")
	m, _ = press(t, m, tea.KeyEnter)
	assert.Contains(t, m.notice, m.cfg.Endpoint.URL)
	assert.Contains(t, m.notice, "1 messages")
}

// =============================================================================
// COLLABORATOR TESTS
// =============================================================================

func TestPingResultUpdatesStatus(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)
	assert.Equal(t, components.StatusUnknown, m.header.Status)

	next, _ := m.Update(PingResultMsg{})
	m = next.(Model)
	assert.Equal(t, components.StatusOnline, m.header.Status)

	next, _ = m.Update(PingResultMsg{Err: errors.New("unreachable")})
	m = next.(Model)
	assert.Equal(t, components.StatusOffline, m.header.Status)
}

func TestConfigReloadSwapsSender(t *testing.T) {
	first := &fakeSender{out: replyOutcome("from first", "")}
	second := &pingingSender{fakeSender: fakeSender{out: replyOutcome("from second", "")}}

	var built []*config.Config
	m := newTestModel(t, first, func(o *Options) {
		o.NewSender = func(cfg *config.Config) session.Sender {
			built = append(built, cfg)
			return second
		}
	})

	cfg := config.Default()
	cfg.Endpoint.URL = "http://albert.example/chat"
	cfg.UI.Markdown = false
	next, cmd := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)
	require.Len(t, built, 1)
	assert.Equal(t, "Configuration reloaded", m.notice)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, PingResultMsg{}, msgs[0])

	_, reply := submit(t, m, "hi")
	assert.Equal(t, "from second", reply.Outcome.Text)
	assert.Empty(t, first.Sent())
	assert.Equal(t, []string{"hi"}, second.Sent())
}

func TestConfigErrorShowsNotice(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)

	next, _ := m.Update(ConfigErrorMsg{Err: errors.New("bad toml")})
	m = next.(Model)
	assert.True(t, m.noticeError)
	assert.Contains(t, m.notice, "bad toml")

	m = typeText(t, m, "x")
	assert.Empty(t, m.notice)
}

func TestArchiveSavedAfterReply(t *testing.T) {
	archive := &fakeArchive{}
	m := newTestModel(t, &fakeSender{out: replyOutcome("digest", "gpt-4o")}, func(o *Options) {
		o.Archive = archive
	})

	m, reply := submit(t, m, "latest news")
	next, cmd := m.Update(reply)
	m = next.(Model)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	saved, ok := msgs[0].(ArchiveSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, m.ctrl.ID(), saved.ID)

	require.Len(t, archive.saved, 1)
	conv := archive.saved[0]
	assert.Len(t, conv.Messages, 4)
	assert.Equal(t, "gpt-4o", conv.Model)
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestViewRendersChrome(t *testing.T) {
	m := newTestModel(t, &fakeSender{}, nil)

	view := m.View()
	assert.Contains(t, view, "Albert")
	assert.Contains(t, view, sendControlLabel)
	assert.Contains(t, view, "quit")
}

func TestViewShowsAwaitPlaceholder(t *testing.T) {
	m := newTestModel(t, &fakeSender{out: replyOutcome("ok", "")}, nil)

	m, _ = submit(t, m, "hi")
	assert.Contains(t, m.View(), awaitPlaceholder)
}
