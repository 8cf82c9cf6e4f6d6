// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	ModelBadge     lipgloss.Style
	StatusOnline   lipgloss.Style
	StatusOffline  lipgloss.Style
	StatusUnknown  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Avatar          lipgloss.Style
	Timestamp       lipgloss.Style
	TypingBubble    lipgloss.Style
	TypingDot       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer      lipgloss.Style
	InputContainerFocus lipgloss.Style
	InputPrompt         lipgloss.Style
	InputPlaceholder    lipgloss.Style
	SendEnabled         lipgloss.Style
	SendDisabled        lipgloss.Style

	// ==========================================================================
	// FOOTER STYLES
	// ==========================================================================

	Footer    lipgloss.Style
	Notice    lipgloss.Style
	ErrorText lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background color.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.ModelBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Pink).
		Padding(0, 1)

	t.StatusOnline = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusOffline = lipgloss.NewStyle().Foreground(Rose)
	t.StatusUnknown = lipgloss.NewStyle().Foreground(Amber)

	// Message bubbles: user on the right in indigo, assistant on the left
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(IndigoDeep).
		Padding(0, 2)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Avatar = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TypingBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.TypingDot = lipgloss.NewStyle().
		Foreground(IndigoSoft)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputContainerFocus = t.InputContainer.
		BorderForeground(Indigo)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(IndigoSoft)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SendEnabled = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Indigo).
		Padding(0, 1)

	t.SendDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	// Footer
	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Notice = lipgloss.NewStyle().
		Foreground(Amber)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
