// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package setup provides the API key setup screen shown while no credential
// is configured.
package setup

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bestfriend-tui/internal/persona"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// APIKeysURL is where users create an OpenAI API key.
const APIKeysURL = "https://platform.openai.com/api-keys"

// SubmitMsg carries the key the user submitted.
type SubmitMsg struct {
	Key string
}

// KeyMap defines the setup screen bindings.
type KeyMap struct {
	Submit key.Binding
	Reveal key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start chatting"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "show/hide key"),
		),
	}
}

// Model is the setup screen.
type Model struct {
	theme   *styles.Theme
	persona persona.Persona
	keys    KeyMap
	input   textinput.Model

	err    string
	width  int
	height int
}

// New creates the setup screen with a masked, focused key field.
func New(theme *styles.Theme, p persona.Persona) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "sk-..."
	ti.CharLimit = 256
	ti.Width = styles.SetupContentWidth - 6
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()

	return Model{
		theme:   theme,
		persona: p,
		keys:    DefaultKeyMap(),
		input:   ti,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input for the setup screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Submit):
			value := m.input.Value()
			return m, func() tea.Msg { return SubmitMsg{Key: value} }

		case key.Matches(msg, m.keys.Reveal):
			if m.input.EchoMode == textinput.EchoPassword {
				m.input.EchoMode = textinput.EchoNormal
			} else {
				m.input.EchoMode = textinput.EchoPassword
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// SetError shows message under the field. Empty clears it.
func (m Model) SetError(message string) Model {
	m.err = message
	return m
}

// SetTheme restyles the screen.
func (m Model) SetTheme(theme *styles.Theme) Model {
	m.theme = theme
	return m
}

// Error returns the message shown under the field.
func (m Model) Error() string { return m.err }

// Revealed reports whether the key is shown in clear text.
func (m Model) Revealed() bool { return m.input.EchoMode == textinput.EchoNormal }

// Value returns the current field contents.
func (m Model) Value() string { return m.input.Value() }

// View renders the setup form centred in the window.
func (m Model) View() string {
	t := m.theme

	reveal := "show"
	if m.Revealed() {
		reveal = "hide"
	}

	lines := []string{
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center, t.SetupIcon.Render(styles.StatusIndicators.Lock)),
		"",
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center, t.SetupTitle.Render("Set up your AI Best Friend")),
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center,
			t.SetupSubtitle.Render("Enter your OpenAI API key to start chatting with "+m.persona.Name)),
		"",
		t.Label.Render("OpenAI API Key") + "  " + t.Hint.Render("ctrl+t "+reveal),
		t.FieldFocused.Width(styles.SetupContentWidth - 2).Render(m.input.View()),
	}
	if m.err != "" {
		lines = append(lines, t.FormError.Render(m.err))
	}
	lines = append(lines,
		"",
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center, t.Button.Render("Start Chatting")+" "+t.Hint.Render("(enter)")),
		"",
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center, t.Hint.Render("Need an API key?")),
		lipgloss.PlaceHorizontal(styles.SetupContentWidth, lipgloss.Center, t.Link.Render("Get one from OpenAI: "+APIKeysURL)),
		"",
		t.Notice.Width(styles.SetupContentWidth).Render(styles.StatusIndicators.Lock+" Your API key is stored locally and never sent to our servers. "+
			"It's only used to communicate directly with OpenAI."),
	)

	box := t.SetupBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
