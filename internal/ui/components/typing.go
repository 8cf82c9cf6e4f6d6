// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingFrames animates three dots rising one after another.
var TypingFrames = []string{"• • •", "● • •", "• ● •", "• • ●", "• • •"}

// TypingIndicator is the "Albert is typing" bubble shown while a reply is
// awaited.
type TypingIndicator struct {
	spinner spinner.Model
	active  bool
	theme   *styles.Theme
}

// NewTypingIndicator creates an inactive indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: TypingFrames, FPS: time.Second / 5}),
		spinner.WithStyle(theme.TypingDot),
	)
	return TypingIndicator{spinner: s, theme: theme}
}

// Start activates the indicator and returns the first tick.
func (t *TypingIndicator) Start() tea.Cmd {
	if t.active {
		return nil
	}
	t.active = true
	return t.spinner.Tick
}

// Stop hides the indicator. Pending ticks are ignored.
func (t *TypingIndicator) Stop() {
	t.active = false
}

// Active reports whether the indicator is shown.
func (t TypingIndicator) Active() bool {
	return t.active
}

// Update advances the animation.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator bubble, or nothing when inactive.
func (t TypingIndicator) View() string {
	if !t.active {
		return ""
	}
	return t.theme.TypingBubble.Render(t.spinner.View())
}
