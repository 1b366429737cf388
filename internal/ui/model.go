// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/app"
	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/ui/chat"
	"github.com/jeranaias/bestfriend-tui/internal/ui/components"
	"github.com/jeranaias/bestfriend-tui/internal/ui/setup"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg delivers a finished send task.
type ReplyMsg struct {
	Result app.Result
}

// ConfigChangedMsg carries a reloaded configuration. A non-nil Err means the
// reload failed and the current settings stay in effect.
type ConfigChangedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures the root model.
type Options struct {
	// UI is the initial [ui] configuration.
	UI config.UIConfig
	// ConfigUpdates delivers live configuration reloads. May be nil.
	ConfigUpdates <-chan ConfigChangedMsg
	// Logger receives UI diagnostics.
	Logger *slog.Logger
}

// Model is the root model. It is used through a pointer, like the
// underlying machine.
type Model struct {
	machine *app.Machine
	theme   *styles.Theme
	uiCfg   config.UIConfig
	updates <-chan ConfigChangedMsg
	logger  *slog.Logger

	setup setup.Model
	chat  chat.Model

	width  int
	height int
}

// NewModel builds the root model around machine. The machine should already
// have had Restore called so the first frame shows the right screen.
func NewModel(machine *app.Machine, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := styles.NewTheme(opts.UI.Theme)
	p := machine.Persona()

	m := &Model{
		machine: machine,
		theme:   theme,
		uiCfg:   opts.UI,
		updates: opts.ConfigUpdates,
		logger:  logger,
		setup:   setup.New(theme, p),
		chat:    chat.New(theme, p, renderOptions(opts.UI)),
	}
	m.sync()
	return m
}

func renderOptions(c config.UIConfig) components.RenderOptions {
	return components.RenderOptions{
		Markdown:        c.Markdown,
		ShowTimestamps:  c.ShowTimestamps,
		TimestampFormat: c.TimestampFormat,
	}
}

// Machine returns the state machine the model drives.
func (m *Model) Machine() *app.Machine { return m.machine }

// Theme returns the active theme.
func (m *Model) Theme() *styles.Theme { return m.theme }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.setup.Init(), m.chat.Init(), m.listenConfig()}
	if task := m.machine.Task(); task != nil {
		cmds = append(cmds, awaitReply(task))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		var c1, c2 tea.Cmd
		m.setup, c1 = m.setup.Update(msg)
		m.chat, c2 = m.chat.Update(msg)
		return m, tea.Batch(c1, c2)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q":
			m.cancelPending()
			return m, tea.Quit
		case "ctrl+c":
			if m.machine.Busy() {
				return m, m.dispatch(app.CancelRequested{})
			}
			return m, tea.Quit
		}

	case setup.SubmitMsg:
		return m, m.dispatch(app.KeySubmitted{Key: msg.Key})

	case chat.SendMsg:
		return m, m.dispatch(app.TextSubmitted{Text: msg.Text})

	case chat.CancelMsg:
		return m, m.dispatch(app.CancelRequested{})

	case chat.DismissBannerMsg:
		m.machine.DismissBanner()
		return m, m.sync()

	case ReplyMsg:
		m.logger.Debug("reply received",
			"task", msg.Result.TaskID,
			"elapsed", msg.Result.Elapsed,
			"ok", msg.Result.Err == nil,
		)
		return m, m.dispatch(msg.Result.Event())

	case ConfigChangedMsg:
		m.applyConfig(msg)
		return m, tea.Batch(m.sync(), m.listenConfig())
	}

	return m.forward(msg)
}

// forward hands msg to the visible screen.
func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.machine.Phase() == app.PhaseUnconfigured {
		m.setup, cmd = m.setup.Update(msg)
	} else {
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

// dispatch feeds ev to the machine, re-syncs the screens and, when a send
// started, returns a command that waits for it.
func (m *Model) dispatch(ev app.Event) tea.Cmd {
	out := m.machine.Dispatch(ev)
	if out.Err != nil {
		m.logger.Debug("dispatch failed", "error", out.Err)
	}
	cmd := m.sync()
	if out.Task != nil {
		return tea.Batch(cmd, awaitReply(out.Task))
	}
	return cmd
}

func (m *Model) cancelPending() {
	if task := m.machine.Task(); task != nil {
		task.Cancel()
	}
}

// sync pushes machine state into both screens.
func (m *Model) sync() tea.Cmd {
	formErr := ""
	if err := m.machine.FormError(); err != nil {
		formErr = apperr.Message(err, app.MsgPersistFailed)
	}
	m.setup = m.setup.SetError(formErr)

	conv := m.machine.Conversation()
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Sync(chat.Snapshot{
		Messages:  conv.All(),
		Banner:    apperr.Message(m.machine.Banner(), app.MsgSendFailed),
		Busy:      m.machine.Busy(),
		CreatedAt: conv.CreatedAt(),
	})
	return cmd
}

func (m *Model) applyConfig(msg ConfigChangedMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", "error", msg.Err)
		return
	}
	if msg.Config == nil {
		return
	}
	next := msg.Config.UI
	if next.Theme != m.uiCfg.Theme {
		m.theme = styles.NewTheme(next.Theme)
		m.setup = m.setup.SetTheme(m.theme)
		m.chat = m.chat.SetTheme(m.theme)
	}
	if next != m.uiCfg {
		m.chat = m.chat.SetRenderOptions(renderOptions(next))
	}
	m.uiCfg = next
	m.logger.Info("config reloaded", "theme", next.Theme, "markdown", next.Markdown)
}

// listenConfig waits for the next configuration reload.
func (m *Model) listenConfig() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// awaitReply blocks until task finishes and reports its result.
func awaitReply(task *app.SendTask) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Result: task.Await()}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.machine.Phase() == app.PhaseUnconfigured {
		return m.setup.View()
	}
	return m.chat.View()
}

// =============================================================================
// PROGRAM
// =============================================================================

// Run starts the full-screen program and blocks until it exits. Cancelling
// ctx stops the program.
func Run(ctx context.Context, machine *app.Machine, opts Options) error {
	m := NewModel(machine, opts)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	m.cancelPending()
	return err
}
