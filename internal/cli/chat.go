// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/model"
	"github.com/jeranaias/albert-tui/internal/session"
	"github.com/jeranaias/albert-tui/internal/ui/components"
)

const (
	replPrompt      = "You › "
	historyFileName = "chat_history"
)

// newChatCommand builds "albert chat".
func newChatCommand(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a chat with Albert",
		Long: `Start a chat with Albert.

The full-screen chat is used on a terminal. --plain, or a stdin that is not
a terminal, selects a line-oriented chat with input history.

Commands during a plain chat:
  /help    Show commands
  /quit    Exit (also /exit or Ctrl+D)`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if plain || !IsTTY() || !IsStdoutTTY() {
				return a.runPlain(cmd)
			}
			return a.runTUI(cmd)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use the line-oriented chat")
	return cmd
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input. *liner.State satisfies it.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for the plain chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, historyFileName),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line and records it in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history, readable by the owner only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// PLAIN CHAT
// =============================================================================

// runPlain runs the line-oriented chat on stdin and stdout.
func (a *app) runPlain(cmd *cobra.Command) error {
	ctrl := a.newController(a.newClient(a.cfg))
	arch, err := a.openArchive(false)
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
	}
	if arch != nil {
		defer arch.Close()
	}

	input := NewChatCLI()
	defer input.Close()

	r := &repl{
		ctrl:     ctrl,
		in:       input,
		out:      cmd.OutOrStdout(),
		markdown: a.newMarkdown(),
		width:    GetTerminalWidth(),
		name:     a.cfg.UI.AssistantName,
		logger:   a.logger,
	}
	err = r.run(cmd.Context())
	ctrl.Close()
	a.archiveSession(arch, ctrl)
	return err
}

// repl drives a controller from a line reader.
type repl struct {
	ctrl     *session.Controller
	in       lineReader
	out      io.Writer
	markdown *components.MarkdownRenderer
	width    int
	name     string
	logger   *zap.Logger
}

func (r *repl) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if first, ok := r.first(); ok {
		r.printMessage(first)
	}

	for {
		line, err := r.in.Prompt(replPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "/quit", "/exit", "/q":
			return nil
		case "/help", "/h":
			r.printHelp()
			continue
		}

		ex, ok := r.ctrl.Submit(line)
		if !ok {
			continue
		}
		r.printMessage(r.tail(1)[0])

		out := r.wait(ctx, ex)
		r.ctrl.Resolve(ex, out)
		r.printMessage(r.tail(1)[0])

		if ctx.Err() != nil {
			return nil
		}
	}
}

// wait runs ex; Ctrl+C while waiting cancels only this exchange.
func (r *repl) wait(ctx context.Context, ex *session.Exchange) assistant.Outcome {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return ex.Run(ctx)
}

func (r *repl) first() (model.Message, bool) {
	msgs := r.ctrl.Transcript()
	if len(msgs) == 0 {
		return model.Message{}, false
	}
	return msgs[0], true
}

func (r *repl) tail(n int) []model.Message {
	msgs := r.ctrl.Transcript()
	if len(msgs) < n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// printMessage writes an assistant message. User messages are already on
// screen from the prompt.
func (r *repl) printMessage(msg model.Message) {
	if msg.Role != model.RoleAssistant {
		return
	}
	label := "🦄 " + r.name
	if msg.Model != "" {
		label += " " + InfoStyle.Render("("+model.BadgeName(msg.Model)+")")
	}
	fmt.Fprintln(r.out, AssistantStyle.Render(label))
	fmt.Fprintln(r.out, renderReply(r.markdown, msg.Content, r.width))
	fmt.Fprintln(r.out)
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	fmt.Fprintln(r.out, LabelStyle.Render("/help")+InfoStyle.Render("Show commands"))
	fmt.Fprintln(r.out, LabelStyle.Render("/quit")+InfoStyle.Render("Exit (also /exit or Ctrl+D)"))
	fmt.Fprintln(r.out)
}

// renderReply renders content as markdown when a renderer is configured.
func renderReply(md *components.MarkdownRenderer, content string, width int) string {
	if md == nil {
		return content
	}
	return strings.TrimRight(md.Render(content, width), "\n")
}
