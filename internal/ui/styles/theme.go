// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header         lipgloss.Style
	HeaderAvatar   lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// Messages
	UserAvatar      lipgloss.Style
	AssistantAvatar lipgloss.Style
	UserName        lipgloss.Style
	AssistantName   lipgloss.Style
	Timestamp       lipgloss.Style
	UserBody        lipgloss.Style
	AssistantBody   lipgloss.Style
	AssistantRow    lipgloss.Style

	// Typing indicator
	Spinner    lipgloss.Style
	TypingText lipgloss.Style

	// Error banner
	Banner     lipgloss.Style
	BannerText lipgloss.Style

	// Input and footer
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Footer         lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// Setup screen
	SetupBox      lipgloss.Style
	SetupIcon     lipgloss.Style
	SetupTitle    lipgloss.Style
	SetupSubtitle lipgloss.Style
	Label         lipgloss.Style
	Field         lipgloss.Style
	FieldFocused  lipgloss.Style
	FormError     lipgloss.Style
	Button        lipgloss.Style
	Hint          lipgloss.Style
	Notice        lipgloss.Style
	Link          lipgloss.Style
}

// SetupContentWidth is the inner width of the setup form. The widest line
// is the API key link.
const SetupContentWidth = 60

// SetupBoxWidth is the setup box width including its horizontal padding.
const SetupBoxWidth = SetupContentWidth + 6

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	isDark := true
	switch mode {
	case ModeDark:
	case ModeLight:
		isDark = false
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// MarkdownStyle returns the glamour standard style matching the background.
func (t *Theme) MarkdownStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Green).
		Bold(true).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Messages
	t.UserAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Blue).
		Bold(true).
		Padding(0, 1)

	t.AssistantAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Green).
		Bold(true).
		Padding(0, 1)

	t.UserName = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.AssistantName = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserBody = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(5)

	t.AssistantBody = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(3)

	t.AssistantRow = lipgloss.NewStyle().
		Background(SurfaceBright)

	// Typing indicator
	t.Spinner = lipgloss.NewStyle().
		Foreground(Green)

	t.TypingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Error banner
	t.Banner = lipgloss.NewStyle().
		Background(RoseDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1).
		Margin(0, 1)

	t.BannerText = lipgloss.NewStyle().
		Foreground(Rose)

	// Input and footer
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true)

	t.Footer = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextMuted).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Setup screen
	t.SetupBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 3).
		Width(SetupBoxWidth)

	t.SetupIcon = lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true)

	t.SetupTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.SetupSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.FieldFocused = t.Field.
		BorderForeground(Blue)

	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)

	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(BlueDeep).
		Bold(true).
		Padding(0, 2)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Link = lipgloss.NewStyle().
		Foreground(Blue).
		Underline(true)
}
