// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Blue - User identity, primary actions, links
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// BlueDeep - Button background
var BlueDeep = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#2563EB"}

// Green - Assistant identity
var Green = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Error banner background
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FFF1F2", Dark: "#4C0519"}

// Amber - Warnings and the masked-key reveal hint
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// SurfaceDim - Header and footer background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#181825"}

// SurfaceBright - Assistant message background
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#24273A"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Names and labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#A6ADC8"}

// TextMuted - Timestamps and hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on coloured backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicators are ASCII shapes shown next to coloured status text.
var StatusIndicators = struct {
	Error   string
	Warning string
	Info    string
	Lock    string
}{
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Lock:    "[#]",
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an informational message with its indicator.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Blue).
		Render(StatusIndicators.Info + " " + message)
}

// RenderLink renders text as an underlined link.
func RenderLink(text string) string {
	return lipgloss.NewStyle().Foreground(Blue).Underline(true).Render(text)
}
