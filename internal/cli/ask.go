// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/albert-tui/internal/assistant"
	"github.com/jeranaias/albert-tui/internal/session"
)

// askOptions are the flags of "albert ask".
type askOptions struct {
	raw    bool
	asJSON bool
}

// askResult is the --json output of "albert ask".
type askResult struct {
	Response  string `json:"response"`
	Outcome   string `json:"outcome"`
	Model     string `json:"model,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Status    int    `json:"status,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// newAskCommand builds "albert ask".
func newAskCommand(a *app) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print Albert's reply",
		Long: `Send one message and print Albert's reply.

The words are joined into one message. Use "-" to read it from stdin.

Examples:
  albert ask latest news
  echo "what happened in tech today" | albert ask -
  albert ask --json latest news`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return newCommandError("ask", "read", err)
				}
				text = string(b)
			}
			return a.runAsk(cmd, text, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the reply without markdown rendering")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the reply as JSON")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, text string, opts askOptions) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is empty", ErrUsage)
	}

	ctrl := a.newController(a.newClient(a.cfg))
	out, ok := ctrl.Converse(cmd.Context(), text)
	if !ok {
		return fmt.Errorf("%w: message was not accepted", ErrUsage)
	}
	ctrl.Close()

	arch, err := a.openArchive(false)
	if err == nil && arch != nil {
		a.archiveSession(arch, ctrl)
		arch.Close()
	}

	reply := session.ReplyContent(out)
	w := cmd.OutOrStdout()
	if opts.asJSON {
		res := askResult{
			Response:  reply,
			Outcome:   out.Kind.String(),
			Model:     out.Model,
			SessionID: out.SessionID,
			Status:    out.StatusCode,
			LatencyMs: out.Latency.Milliseconds(),
		}
		if out.Err != nil {
			res.Error = out.Err.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		md := a.newMarkdown()
		if opts.raw {
			md = nil
		}
		fmt.Fprintln(w, renderReply(md, reply, GetTerminalWidth()))
	}

	if out.Kind == assistant.OutcomeTransportFailure {
		return fmt.Errorf("%w: %v", ErrEndpoint, out.Err)
	}
	return nil
}
