// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// =============================================================================
// CLI OUTPUT STYLES
// =============================================================================

var (
	// PromptStyle is the REPL prompt.
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.IndigoSoft).
			Bold(true)

	// AssistantStyle labels Albert's replies.
	AssistantStyle = lipgloss.NewStyle().
			Foreground(styles.Pink).
			Bold(true)

	// TitleStyle is used for command titles.
	TitleStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	// LabelStyle is used for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(16)

	// InfoStyle is used for secondary information.
	InfoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// SuccessStyle is used for completed operations.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// WarningStyle is used for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// ErrorStyle is used for errors.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)
