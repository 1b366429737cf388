// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/persona"
	"github.com/jeranaias/bestfriend-tui/internal/ui/components"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SendMsg asks the root model to send Text.
type SendMsg struct {
	Text string
}

// CancelMsg asks the root model to cancel the pending reply.
type CancelMsg struct{}

// DismissBannerMsg asks the root model to clear the error banner.
type DismissBannerMsg struct{}

// Snapshot is the application state the chat screen renders.
type Snapshot struct {
	Messages  []*model.Message
	Banner    string
	Busy      bool
	CreatedAt time.Time
}

// =============================================================================
// MODEL
// =============================================================================

const (
	// InputCharLimit bounds a single chat message.
	InputCharLimit = 4000

	placeholderIdle = "Type your message..."
)

// Model is the chat screen.
type Model struct {
	theme   *styles.Theme
	persona persona.Persona
	keys    KeyMap

	viewport viewport.Model
	input    textinput.Model
	typing   components.TypingIndicator
	renderer *components.MessageRenderer

	snapshot Snapshot
	width    int
	height   int
	ready    bool
}

// New creates the chat screen.
func New(theme *styles.Theme, p persona.Persona, opts components.RenderOptions) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholderIdle
	ti.CharLimit = InputCharLimit
	ti.PromptStyle = theme.InputPrompt
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		theme:    theme,
		persona:  p,
		keys:     DefaultKeyMap(),
		viewport: vp,
		input:    ti,
		typing:   components.NewTypingIndicator(theme, p.Name),
		renderer: components.NewMessageRenderer(theme, opts),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		m.layout()
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.snapshot.Busy {
			return m, nil
		}
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return SendMsg{Text: text} }

	case key.Matches(msg, m.keys.Cancel):
		if m.snapshot.Busy {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		if m.snapshot.Banner != "" {
			return m, func() tea.Msg { return DismissBannerMsg{} }
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.snapshot.Busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	// "> " prompt plus the container padding
	inputWidth := m.width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.renderer.SetWidth(m.width - 2)
	m.layout()
	return m
}

// Sync replaces the rendered state and scrolls to the newest content.
func (m Model) Sync(s Snapshot) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case s.Busy && !m.typing.Active():
		m.typing, cmd = m.typing.Start()
		m.input.Blur()
		m.input.Placeholder = m.persona.Name + " is typing..."
	case !s.Busy && m.typing.Active():
		m.typing = m.typing.Stop()
		m.input.Placeholder = placeholderIdle
		cmd = m.input.Focus()
	}

	m.snapshot = s
	m.layout()
	m.viewport.GotoBottom()
	return m, cmd
}

// SetRenderOptions applies new presentation settings.
func (m Model) SetRenderOptions(opts components.RenderOptions) Model {
	m.renderer.SetOptions(opts)
	m.layout()
	return m
}

// SetTheme restyles the screen.
func (m Model) SetTheme(theme *styles.Theme) Model {
	m.theme = theme
	m.input.PromptStyle = theme.InputPrompt
	m.typing = m.typing.SetTheme(theme)
	m.renderer.SetTheme(theme)
	m.layout()
	return m
}

// Busy reports whether a reply is pending.
func (m Model) Busy() bool { return m.snapshot.Busy }

// Input returns the current input text.
func (m Model) Input() string { return m.input.Value() }

// layout sizes the viewport to the space left by the fixed sections and
// re-renders the transcript.
func (m *Model) layout() {
	if !m.ready {
		return
	}

	fixed := lipHeight(m.renderHeader()) + lipHeight(m.renderInput()) + lipHeight(m.renderFooter())
	height := m.height - fixed
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = height

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}
