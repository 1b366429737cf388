// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/jeranaias/bestfriend-tui/internal/ui/components"
)

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	return components.Header(m.theme, m.persona, m.width)
}

// renderTranscript renders the messages followed by the typing indicator
// and the banner, so the newest state is always at the bottom.
func (m Model) renderTranscript() string {
	var sections []string
	if len(m.snapshot.Messages) > 0 {
		sections = append(sections, m.renderer.RenderAll(m.snapshot.Messages))
	}
	if view := m.typing.View(); view != "" {
		sections = append(sections, view)
	}
	if banner := components.Banner(m.theme, m.snapshot.Banner, m.width); banner != "" {
		sections = append(sections, banner)
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

func (m Model) renderFooter() string {
	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	help = append(help, m.theme.ShortcutKey.Render("ctrl+c")+" "+m.theme.ShortcutDesc.Render("quit"))
	left := strings.Join(help, "  ")

	right := english.Plural(len(m.snapshot.Messages), "message", "messages")
	if !m.snapshot.CreatedAt.IsZero() {
		right += " · started " + humanize.Time(m.snapshot.CreatedAt)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return m.theme.Footer.Width(m.width).Render(left)
	}
	return m.theme.Footer.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func lipHeight(s string) int {
	if s == "" {
		return 0
	}
	return lipgloss.Height(s)
}
