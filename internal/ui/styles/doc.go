// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for albert.
//
// All colors use Lip Gloss AdaptiveColor, so one palette serves light and
// dark terminals. The palette follows the indigo and pink of the Albert
// brand: indigo for the user and the focus ring, pink for the model badge.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	s := theme.UserBubble.Render("latest news")
package styles
