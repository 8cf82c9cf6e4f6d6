// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Indigo - Brand color, user bubbles, focus ring
var Indigo = lipgloss.AdaptiveColor{Light: "#6366F1", Dark: "#818CF8"}

// IndigoDeep - Darker indigo for user bubble backgrounds
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#4338CA"}

// IndigoSoft - Typing dots and the input sparkle
var IndigoSoft = lipgloss.AdaptiveColor{Light: "#A5B4FC", Dark: "#A5B4FC"}

// Pink - Header accent and the model badge
var Pink = lipgloss.AdaptiveColor{Light: "#DB2777", Dark: "#F472B6"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Emerald - Endpoint reachable
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Endpoint unreachable, errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Endpoint state unknown, notices
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Assistant bubble background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#CDD6F4"}

// TextSecondary - Labels, taglines
var TextSecondary = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, the disabled send control
var TextMuted = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#6C7086"}

// TextInverse - Text on indigo
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
