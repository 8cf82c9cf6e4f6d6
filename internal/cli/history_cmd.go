// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/albert-tui/internal/export"
	"github.com/jeranaias/albert-tui/internal/model"
	"github.com/jeranaias/albert-tui/internal/storage"
)

// newHistoryCommand builds "albert history".
func newHistoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived chats",
		Long: `Browse chats saved to the history archive.

Chats are only archived when history.enabled is true. A chat is named by
a unique prefix of its ID, by #N for the N-th most recent, or by "last".`,
	}

	var limit int
	var search string
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived chats, most recent first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withArchive(func(arch *storage.Archive) error {
				return historyList(cmd, arch, limit, search, asJSON)
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum chats to list (0 for all)")
	listCmd.Flags().StringVarP(&search, "search", "s", "", "only chats with a message containing this text")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	showCmd := &cobra.Command{
		Use:   "show <chat>",
		Short: "Print an archived chat",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArchive(func(arch *storage.Archive) error {
				conv, err := loadConversation(cmd.Context(), arch, args[0])
				if err != nil {
					return newCommandError("history", "show", err)
				}
				a.printConversation(cmd, conv)
				return nil
			})
		},
	}

	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export <chat>",
		Short: "Export an archived chat to markdown, JSON or YAML",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			if output == "" {
				output = a.cfg.Export.Dir
			}
			return a.withArchive(func(arch *storage.Archive) error {
				conv, err := loadConversation(cmd.Context(), arch, args[0])
				if err != nil {
					return newCommandError("history", "export", err)
				}
				opts := export.DefaultOptions()
				opts.OutputDir = output
				path, err := export.Export(conv, format, opts)
				if err != nil {
					return newCommandError("history", "export", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Exported to "+path))
				return nil
			})
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "", "markdown, json or yaml (default from config)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config)")

	deleteCmd := &cobra.Command{
		Use:   "delete <chat>",
		Short: "Delete an archived chat",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArchive(func(arch *storage.Archive) error {
				conv, err := loadConversation(cmd.Context(), arch, args[0])
				if err != nil {
					return newCommandError("history", "delete", err)
				}
				if err := arch.Delete(cmd.Context(), conv.ID); err != nil {
					return newCommandError("history", "delete", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Deleted "+shortID(conv.ID)))
				return nil
			})
		},
	}

	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Keep only the most recent chats",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withArchive(func(arch *storage.Archive) error {
				n, err := arch.Prune(cmd.Context(), keep)
				if err != nil {
					return newCommandError("history", "prune", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d chats\n", n)
				return nil
			})
		},
	}
	pruneCmd.Flags().IntVar(&keep, "keep", 50, "number of chats to keep")

	cmd.AddCommand(listCmd, showCmd, exportCmd, deleteCmd, pruneCmd)
	return cmd
}

// withArchive opens the archive for the duration of fn, whether or not
// history recording is enabled.
func (a *app) withArchive(fn func(*storage.Archive) error) error {
	arch, err := a.openArchive(true)
	if err != nil {
		return newCommandError("history", "open", err)
	}
	defer arch.Close()
	return fn(arch)
}

func historyList(cmd *cobra.Command, arch *storage.Archive, limit int, search string, asJSON bool) error {
	var metas []storage.ConversationMeta
	var err error
	if search != "" {
		metas, err = arch.Search(cmd.Context(), search)
		if err == nil && limit > 0 && len(metas) > limit {
			metas = metas[:limit]
		}
	} else {
		metas, err = arch.List(cmd.Context(), limit)
	}
	if err != nil {
		return newCommandError("history", "list", err)
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}
	fmt.Fprint(w, storage.FormatSessionList(metas))
	if len(metas) == 0 {
		fmt.Fprintln(w)
	}
	return nil
}

// loadConversation resolves "last", "#N" or an ID prefix.
func loadConversation(ctx context.Context, arch *storage.Archive, ref string) (*storage.StoredConversation, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.EqualFold(ref, "last"):
		return arch.LoadByIndex(ctx, 0)
	case strings.HasPrefix(ref, "#"):
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q is not a chat number", ErrUsage, ref)
		}
		return arch.LoadByIndex(ctx, n-1)
	default:
		return arch.Load(ctx, ref)
	}
}

// printConversation writes an archived chat as it appeared on screen.
func (a *app) printConversation(cmd *cobra.Command, conv *storage.StoredConversation) {
	w := cmd.OutOrStdout()
	md := a.newMarkdown()
	width := GetTerminalWidth()

	fmt.Fprintln(w, TitleStyle.Render(conv.Summary))
	fmt.Fprintln(w, LabelStyle.Render("ID")+conv.ID)
	fmt.Fprintln(w, LabelStyle.Render("Started")+conv.CreatedAt.Format("2006-01-02 15:04:05"))
	if conv.Model != "" {
		fmt.Fprintln(w, LabelStyle.Render("Model")+model.BadgeName(conv.Model))
	}
	fmt.Fprintln(w)

	for _, msg := range conv.Transcript() {
		stamp := InfoStyle.Render(msg.Timestamp.Format("15:04"))
		if msg.Role == model.RoleUser {
			fmt.Fprintln(w, PromptStyle.Render(msg.Role.DisplayName()), stamp)
			fmt.Fprintln(w, msg.Content)
		} else {
			fmt.Fprintln(w, AssistantStyle.Render("🦄 "+msg.Role.DisplayName()), stamp)
			fmt.Fprintln(w, renderReply(md, msg.Content, width))
		}
		fmt.Fprintln(w)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

