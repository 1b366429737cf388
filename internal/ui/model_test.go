// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bestfriend-tui/internal/app"
	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/credential"
	"github.com/jeranaias/bestfriend-tui/internal/logging"
	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/ui/chat"
	"github.com/jeranaias/bestfriend-tui/internal/ui/setup"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

type stubClient struct {
	mu    sync.Mutex
	ready bool
	send  func(ctx context.Context, history []model.ChatTurn) (string, error)
}

func (c *stubClient) Initialize(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = true
	return nil
}

func (c *stubClient) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *stubClient) Send(ctx context.Context, history []model.ChatTurn) (string, error) {
	if c.send != nil {
		return c.send(ctx, history)
	}
	return "Sounds great!", nil
}

func newTestModel(t *testing.T, client *stubClient, updates chan ConfigChangedMsg) (*Model, *credential.Store) {
	t.Helper()
	store := credential.NewStore(credential.NewMemoryBackend(), logging.Discard())
	machine := app.NewMachine(store, client,
		app.WithContext(t.Context()),
		app.WithLogger(logging.Discard()),
	)
	ui := config.Default().UI
	ui.Theme = styles.ModeLight
	ui.Markdown = false

	m := NewModel(machine, Options{UI: ui, ConfigUpdates: updates, Logger: logging.Discard()})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, store
}

func configure(t *testing.T, m *Model) {
	t.Helper()
	m.Update(setup.SubmitMsg{Key: "sk-test123"})
	require.Equal(t, app.PhaseReady, m.Machine().Phase())
}

func TestStartsOnSetupScreen(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)

	assert.Equal(t, app.PhaseUnconfigured, m.Machine().Phase())
	assert.Contains(t, m.View(), "Set up your AI Best Friend")
}

func TestSubmitKeyOpensChat(t *testing.T) {
	m, store := newTestModel(t, &stubClient{}, nil)
	configure(t, m)

	key, ok, err := store.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-test123", key)

	view := m.View()
	assert.Contains(t, view, "your AI best friend")
	assert.NotContains(t, view, "Set up your AI Best Friend")
}

func TestInvalidKeyShowsFormError(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)
	m.Update(setup.SubmitMsg{Key: "pk-nope"})

	assert.Equal(t, app.PhaseUnconfigured, m.Machine().Phase())
	assert.Contains(t, m.View(), `OpenAI API keys start with "sk-"`)
}

func TestSendAndReceive(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)
	configure(t, m)

	_, cmd := m.Update(chat.SendMsg{Text: "guess what"})
	assert.NotNil(t, cmd)
	assert.Equal(t, app.PhaseAwaitingReply, m.Machine().Phase())
	assert.Contains(t, m.View(), "Alex is typing")

	task := m.Machine().Task()
	require.NotNil(t, task)
	msg := awaitReply(task)()
	m.Update(msg)

	assert.Equal(t, app.PhaseReady, m.Machine().Phase())
	last := m.Machine().Conversation().Last()
	require.NotNil(t, last)
	assert.Equal(t, "Sounds great!", last.Content())
	assert.Contains(t, m.View(), "Sounds great!")
}

func TestFailedReplyShowsBanner(t *testing.T) {
	client := &stubClient{send: func(context.Context, []model.ChatTurn) (string, error) {
		return "", errors.New("connection reset")
	}}
	m, _ := newTestModel(t, client, nil)
	configure(t, m)

	m.Update(chat.SendMsg{Text: "hello?"})
	m.Update(awaitReply(m.Machine().Task())())

	assert.Equal(t, app.PhaseReady, m.Machine().Phase())
	assert.Contains(t, m.View(), app.MsgSendFailed)

	m.Update(chat.DismissBannerMsg{})
	assert.Nil(t, m.Machine().Banner())
	assert.NotContains(t, m.View(), app.MsgSendFailed)
}

func TestCtrlCCancelsWhenBusy(t *testing.T) {
	client := &stubClient{send: func(ctx context.Context, _ []model.ChatTurn) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	m, _ := newTestModel(t, client, nil)
	configure(t, m)

	m.Update(chat.SendMsg{Text: "long question"})
	task := m.Machine().Task()
	require.NotNil(t, task)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit)
	}

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task was not cancelled")
	}
	m.Update(ReplyMsg{Result: task.Await()})
	assert.Equal(t, app.PhaseReady, m.Machine().Phase())
}

func TestCtrlCQuitsWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestConfigReloadAppliesTheme(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)
	assert.Equal(t, styles.ModeLight, m.Theme().Mode)

	cfg := config.Default()
	cfg.UI.Theme = styles.ModeDark
	m.Update(ConfigChangedMsg{Config: cfg})
	assert.Equal(t, styles.ModeDark, m.Theme().Mode)

	m.Update(ConfigChangedMsg{Err: errors.New("bad toml")})
	assert.Equal(t, styles.ModeDark, m.Theme().Mode)
}

func TestListenConfig(t *testing.T) {
	updates := make(chan ConfigChangedMsg, 1)
	m, _ := newTestModel(t, &stubClient{}, updates)

	cfg := config.Default()
	updates <- ConfigChangedMsg{Config: cfg}
	msg := m.listenConfig()()
	assert.Equal(t, ConfigChangedMsg{Config: cfg}, msg)

	close(updates)
	assert.Nil(t, m.listenConfig()())
}

func TestListenConfigWithoutChannel(t *testing.T) {
	m, _ := newTestModel(t, &stubClient{}, nil)
	assert.Nil(t, m.listenConfig())
}
