// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// Banner renders the inline chat error. An empty message renders nothing.
func Banner(theme *styles.Theme, message string, width int) string {
	if message == "" {
		return ""
	}

	style := theme.Banner
	if width > 4 {
		// Margin and border take two columns each side.
		style = style.Width(width - 4)
	}
	text := theme.BannerText.Render(styles.StatusIndicators.Error + " " + message)
	hint := theme.Hint.Render("  (esc to dismiss)")
	return style.Render(text + hint)
}
