// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bestfriend-tui/internal/persona"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// Header renders the chat header: the persona's avatar, name and tagline.
func Header(theme *styles.Theme, p persona.Persona, width int) string {
	avatar := theme.HeaderAvatar.Render(Initial(p.Name))
	title := theme.HeaderTitle.Render(p.Name)
	subtitle := theme.HeaderSubtitle.Render(persona.Tagline)

	content := lipgloss.JoinHorizontal(lipgloss.Center,
		avatar,
		" ",
		lipgloss.JoinVertical(lipgloss.Left, title, subtitle),
	)

	style := theme.Header
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(content)
}

// Initial returns the upper-cased first rune of name, or "?" when empty.
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}
