// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/storage"
	"github.com/jeranaias/albert-tui/internal/ui/components"
	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

const (
	inputPlaceholder   = "Ask Albert for your news..."
	awaitPlaceholder   = "Albert is on it..."
	inputCharLimit     = 4000
	defaultWidth       = 80
	defaultHeight      = 24
	sendControlLabel   = "Send ➤"
	minViewportHeight  = 3
	inputAreaFrameRows = 2
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the chat view to its collaborators. Controller is required;
// everything else may be nil.
type Options struct {
	Controller *session.Controller
	Config     *config.Config
	Theme      *styles.Theme
	Pinger     Pinger
	Archive    Archiver
	Logger     *zap.Logger

	// NewSender builds the assistant client for a reloaded config. When it
	// returns a Pinger the header status follows the new endpoint.
	NewSender func(*config.Config) session.Sender
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctrl      *session.Controller
	cfg       *config.Config
	theme     *styles.Theme
	pinger    Pinger
	archive   Archiver
	newSender func(*config.Config) session.Sender
	logger    *zap.Logger

	keys     KeyMap
	header   *components.Header
	typing   components.TypingIndicator
	input    textinput.Model
	viewport viewport.Model
	markdown *components.MarkdownRenderer
	bubbles  *renderCache
	exch     *exchangeContext

	width    int
	height   int
	showHelp bool
	quitting bool

	notice      string
	noticeError bool
}

// New creates the chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	header := components.NewHeader(theme)
	applyBranding(header, cfg)

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Prompt = "✦ "
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.CharLimit = inputCharLimit
	ti.Focus()

	m := Model{
		ctrl:      opts.Controller,
		cfg:       cfg,
		theme:     theme,
		pinger:    opts.Pinger,
		archive:   opts.Archive,
		newSender: opts.NewSender,
		logger:    logger.Named("chat"),
		keys:      DefaultKeyMap(),
		header:    header,
		typing:    components.NewTypingIndicator(theme),
		input:     ti,
		viewport:  viewport.New(defaultWidth, defaultHeight),
		markdown:  newMarkdown(cfg, theme),
		bubbles:   newRenderCache(),
		exch:      newExchangeContext(),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.layout()
	m.refreshViewport(true)
	return m
}

// Init starts the cursor blink and the first endpoint probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, pingCmd(m.exch.current(), m.pinger))
}

// Controller returns the session controller behind the view.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case PingResultMsg:
		if msg.Err != nil {
			m.logger.Debug("endpoint ping failed", zap.Error(msg.Err))
			m.header.SetStatus(components.StatusOffline)
		} else {
			m.header.SetStatus(components.StatusOnline)
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.applyConfig(msg.Config)

	case ConfigErrorMsg:
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		m.setNotice("Config not reloaded: "+msg.Err.Error(), true)
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.setNotice("Export failed: "+msg.Err.Error(), true)
		} else {
			m.setNotice("Exported to "+msg.Path, false)
		}
		return m, nil

	case ArchiveSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("history save failed", zap.Error(msg.Err))
		} else {
			m.logger.Debug("history saved", zap.String("conversation", msg.ID))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.typing.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		m.refreshViewport(false)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize recomputes the layout for a new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Width != m.width {
		m.bubbles.reset()
	}
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	m.refreshViewport(true)
	return m, nil
}

// layout sizes the header, viewport and input from the current dimensions.
func (m *Model) layout() {
	width := m.width
	if width < 20 {
		width = 20
	}
	m.header.SetWidth(width)

	reserved := lipgloss.Height(m.header.View()) + m.inputHeight() + lipgloss.Height(m.renderFooter())
	vpHeight := m.height - reserved
	if vpHeight < minViewportHeight {
		vpHeight = minViewportHeight
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	inputWidth := width - m.theme.InputContainer.GetHorizontalFrameSize() -
		lipgloss.Width(m.input.Prompt) - lipgloss.Width(sendControlLabel) - 3
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth
}

func (m Model) inputHeight() int {
	return 1 + inputAreaFrameRows
}

// handleKey routes key presses. While a reply is awaited the input is
// disabled; only navigation, help and quit are honored.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.ctrl.AwaitingReply() {
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.handleSubmit()
	}

	if m.notice != "" {
		m.clearNotice()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.UpdateDraft(m.input.Value())
	return m, cmd
}

// handleSubmit sends the draft, or runs it when it is a known command.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	if cmd, ok := parseCommand(text); ok {
		m.input.Reset()
		m.ctrl.UpdateDraft("")
		return m.runCommand(cmd)
	}

	ex, ok := m.ctrl.Submit(text)
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.input.Placeholder = awaitPlaceholder
	m.clearNotice()

	typingCmd := m.typing.Start()
	m.refreshViewport(true)
	return m, tea.Batch(typingCmd, runExchangeCmd(m.exch.current(), ex))
}

// handleReply appends the exchange outcome to the transcript.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Resolve(msg.Exchange, msg.Outcome) {
		return m, nil
	}
	m.typing.Stop()
	m.input.Placeholder = inputPlaceholder

	if msg.Outcome.Kind == assistant.OutcomeTransportFailure {
		m.header.SetStatus(components.StatusOffline)
	} else {
		m.header.SetStatus(components.StatusOnline)
	}
	if id := m.ctrl.LastModel(); id != "" {
		m.header.SetModel(id)
	}

	m.refreshViewport(true)
	return m, archiveCmd(m.archive, m.snapshot())
}

// applyConfig adopts a reloaded config. The new endpoint only affects
// exchanges submitted afterwards.
func (m Model) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	if cfg == nil {
		return m, nil
	}
	m.cfg = cfg
	applyBranding(m.header, cfg)
	m.markdown = newMarkdown(cfg, m.theme)
	m.bubbles.reset()

	var cmd tea.Cmd
	if m.newSender != nil {
		sender := m.newSender(cfg)
		m.ctrl.SetSender(sender)
		if p, ok := sender.(Pinger); ok {
			m.pinger = p
			m.header.SetStatus(components.StatusUnknown)
			cmd = pingCmd(m.exch.current(), p)
		}
	}

	m.logger.Info("config reloaded", zap.String("endpoint", cfg.Endpoint.URL))
	m.setNotice("Configuration reloaded", false)
	m.layout()
	m.refreshViewport(false)
	return m, cmd
}

// quit detaches the controller and stops the program. Replies still in
// flight are cancelled and dropped.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.exch.cancelAll()
	m.ctrl.Close()
	return m, tea.Quit
}

// snapshot converts the live transcript for persistence.
func (m Model) snapshot() *storage.StoredConversation {
	return storage.Snapshot(m.ctrl)
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeError = isError
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeError = false
}

// refreshViewport re-renders the transcript. follow scrolls to the newest
// entry; otherwise the view only follows when already at the bottom.
func (m *Model) refreshViewport(follow bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

func applyBranding(h *components.Header, cfg *config.Config) {
	if cfg.UI.AssistantName != "" {
		h.Name = cfg.UI.AssistantName
	}
	if cfg.UI.Tagline != "" {
		h.Tagline = cfg.UI.Tagline
	}
}

func newMarkdown(cfg *config.Config, theme *styles.Theme) *components.MarkdownRenderer {
	if !cfg.UI.Markdown {
		return nil
	}
	return components.NewMarkdownRenderer(theme.IsDark)
}
