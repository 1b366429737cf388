// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// Shared styles for line-mode output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Blue)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Green).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	MutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	UserPromptStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	FriendNameStyle = lipgloss.NewStyle().
			Foreground(styles.Green).
			Bold(true)
)

// field renders a "label value" line.
func field(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
