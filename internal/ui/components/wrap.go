// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// wordWrap wraps text at width terminal columns, breaking words that are
// longer than a line. Existing newlines are kept.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		line := ""
		lineWidth := 0
		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > width {
				if lineWidth > 0 {
					out = append(out, line)
					line, lineWidth = "", 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			w := runewidth.StringWidth(word)
			switch {
			case w == 0:
			case lineWidth == 0:
				line, lineWidth = word, w
			case lineWidth+1+w <= width:
				line += " " + word
				lineWidth += 1 + w
			default:
				out = append(out, line)
				line, lineWidth = word, w
			}
		}
		if lineWidth > 0 {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// maxLineWidth returns the widest line of text in terminal columns.
func maxLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}
