// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// TypingIndicator shows that the assistant is composing a reply.
type TypingIndicator struct {
	spinner spinner.Model
	theme   *styles.Theme
	name    string

	active  bool
	started time.Time
}

// NewTypingIndicator creates an inactive indicator for the named assistant.
func NewTypingIndicator(theme *styles.Theme, name string) TypingIndicator {
	return TypingIndicator{
		spinner: newDotsSpinner(theme),
		theme:   theme,
		name:    name,
	}
}

// newDotsSpinner returns a spinner with a fresh ID, so ticks from an earlier
// run are rejected by its Update.
func newDotsSpinner(theme *styles.Theme) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
		FPS:    time.Second / 6,
	}
	s.Style = theme.Spinner
	return s
}

// Start activates the indicator and returns the first tick.
func (t TypingIndicator) Start() (TypingIndicator, tea.Cmd) {
	if t.active {
		return t, nil
	}
	t.active = true
	t.started = time.Now()
	t.spinner = newDotsSpinner(t.theme)
	return t, t.spinner.Tick
}

// Stop deactivates the indicator. Pending ticks are dropped by Update.
func (t TypingIndicator) Stop() TypingIndicator {
	t.active = false
	return t
}

// Active reports whether the indicator is showing.
func (t TypingIndicator) Active() bool { return t.active }

// SetTheme restyles the indicator.
func (t TypingIndicator) SetTheme(theme *styles.Theme) TypingIndicator {
	t.theme = theme
	t.spinner.Style = theme.Spinner
	return t
}

// Update advances the animation while active.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or nothing when inactive.
func (t TypingIndicator) View() string {
	if !t.active {
		return ""
	}

	label := t.theme.TypingText.Render(t.name + " is typing")
	elapsed := time.Since(t.started)
	out := t.theme.AssistantAvatar.Render(Initial(t.name)) + " " + label + t.spinner.View()
	if elapsed >= 3*time.Second {
		out += t.theme.Timestamp.Render(fmt.Sprintf(" %ds", int(elapsed.Seconds())))
	}
	return out
}
