// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_Modes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark theme should report IsDark")
	}
	light := NewTheme("LIGHT")
	if light.IsDark {
		t.Error("light theme should not report IsDark")
	}
	if NewTheme("auto") == nil {
		t.Fatal("auto theme is nil")
	}
}

func TestTheme_StylesRenderText(t *testing.T) {
	theme := NewTheme("dark")

	styles := map[string]func(...string) string{
		"UserBubble":      theme.UserBubble.Render,
		"AssistantBubble": theme.AssistantBubble.Render,
		"ModelBadge":      theme.ModelBadge.Render,
		"SendEnabled":     theme.SendEnabled.Render,
		"Footer":          theme.Footer.Render,
	}
	for name, render := range styles {
		if out := render("albert"); !strings.Contains(out, "albert") {
			t.Errorf("%s dropped its text: %q", name, out)
		}
	}
}

func TestTheme_FocusBorderDiffers(t *testing.T) {
	theme := NewTheme("dark")
	if theme.InputContainer.GetBorderTopForeground() == theme.InputContainerFocus.GetBorderTopForeground() {
		t.Error("focused input should use a different border color")
	}
}
