// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across albert.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth: terminal-column aware sizing
//   - CollapseWhitespace: one-line previews
//   - Slugify: ASCII file-name slugs with accents folded
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	name := util.Slugify(firstQuestion, "conversation") + ".md"
//	err := util.AtomicWriteFile(path, data, 0644)
package util
