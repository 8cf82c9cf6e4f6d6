// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/albert-tui/internal/model"
	"github.com/jeranaias/albert-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// EndpointStatus is the last known reachability of the assistant endpoint.
type EndpointStatus int

const (
	StatusUnknown EndpointStatus = iota
	StatusOnline
	StatusOffline
)

// String returns the display string for the status.
func (s EndpointStatus) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "connecting"
	}
}

// Header is the title bar: avatar, name, tagline, endpoint dot and the
// model badge.
type Header struct {
	Name      string
	Tagline   string
	ModelName string
	Status    EndpointStatus
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a Header with the Albert branding.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Name:    "Albert",
		Tagline: "Your Personal News Butler",
		Width:   80,
		theme:   theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the model reported by the endpoint.
func (h *Header) SetModel(id string) {
	h.ModelName = id
}

// SetStatus updates the endpoint dot.
func (h *Header) SetStatus(status EndpointStatus) {
	h.Status = status
}

// View renders the header.
func (h *Header) View() string {
	left := h.theme.HeaderTitle.Render("🦄 "+h.Name) + "  " + h.theme.HeaderSubtitle.Render(h.Tagline)

	var dot string
	switch h.Status {
	case StatusOnline:
		dot = h.theme.StatusOnline.Render("● " + h.Status.String())
	case StatusOffline:
		dot = h.theme.StatusOffline.Render("● " + h.Status.String())
	default:
		dot = h.theme.StatusUnknown.Render("○ " + h.Status.String())
	}

	right := dot
	if badge := h.badge(); badge != "" {
		right += " " + h.theme.ModelBadge.Render(badge)
	}

	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Too narrow for both halves: drop the tagline first.
		left = h.theme.HeaderTitle.Render("🦄 " + h.Name)
		gap = inner - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if gap < 1 {
		gap = 1
	}

	return h.theme.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// badge is the display name of the model, or the default badge until the
// endpoint reports one.
func (h *Header) badge() string {
	if h.ModelName == "" {
		return model.DefaultBadge
	}
	return model.BadgeName(h.ModelName)
}
