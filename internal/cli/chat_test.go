// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"syscall"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bestfriend-tui/internal/app"
	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/cloud"
	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/credential"
	"github.com/jeranaias/bestfriend-tui/internal/logging"
	"github.com/jeranaias/bestfriend-tui/internal/model"
)

// scriptedLines replays a fixed list of inputs, then reports EOF.
type scriptedLines struct {
	inputs    []string
	prompts   []string
	passwords int
	history   []string
}

func (s *scriptedLines) next(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

func (s *scriptedLines) Prompt(prompt string) (string, error) { return s.next(prompt) }

func (s *scriptedLines) PasswordPrompt(prompt string) (string, error) {
	s.passwords++
	return s.next(prompt)
}

func (s *scriptedLines) AppendHistory(item string) { s.history = append(s.history, item) }

func (s *scriptedLines) Close() error { return nil }

type replyClient struct {
	mu    sync.Mutex
	ready bool
	send  func(ctx context.Context, history []model.ChatTurn) (string, error)
}

func (c *replyClient) Initialize(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = true
	return nil
}

func (c *replyClient) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *replyClient) Send(ctx context.Context, history []model.ChatTurn) (string, error) {
	if c.send != nil {
		return c.send(ctx, history)
	}
	return "That's **awesome**!", nil
}

func newTestREPL(t *testing.T, lines *scriptedLines, client *replyClient, store *credential.Store) (*repl, *bytes.Buffer, chan os.Signal) {
	t.Helper()
	if store == nil {
		store = credential.NewStore(credential.NewMemoryBackend(), logging.Discard())
	}
	machine := app.NewMachine(store, client,
		app.WithContext(t.Context()),
		app.WithLogger(logging.Discard()),
	)
	machine.Restore()

	var out bytes.Buffer
	sigs := make(chan os.Signal, 1)
	return &repl{
		machine:     machine,
		line:        lines,
		out:         &out,
		interrupts:  sigs,
		timeFormat:  config.Default().UI.TimestampFormat,
		render:      func(s string) string { return s },
		fingerprint: func() string { return "sk-...test" },
		location:    store.Location(),
		logger:      logging.Discard(),
	}, &out, sigs
}

func TestREPLConfiguresThenChats(t *testing.T) {
	lines := &scriptedLines{inputs: []string{"pk-nope", "sk-test123", "hi Alex"}}
	r, out, _ := newTestREPL(t, lines, &replyClient{}, nil)

	require.NoError(t, r.run())

	text := out.String()
	assert.Contains(t, text, credential.MsgBadPrefix)
	assert.Contains(t, text, "Key saved.")
	assert.Contains(t, text, "your AI best friend")
	assert.Contains(t, text, "That's **awesome**!")
	assert.Contains(t, text, "Bye! You sent 1 message.")
	assert.Equal(t, 2, lines.passwords)
	assert.Equal(t, app.PhaseReady, r.machine.Phase())
}

func TestREPLShowKeyEchoes(t *testing.T) {
	lines := &scriptedLines{inputs: []string{"sk-test123"}}
	r, _, _ := newTestREPL(t, lines, &replyClient{}, nil)
	r.showKey = true

	require.NoError(t, r.run())
	assert.Zero(t, lines.passwords)
}

func TestREPLRestoresStoredKey(t *testing.T) {
	store := credential.NewStore(credential.NewMemoryBackend(), logging.Discard())
	require.NoError(t, store.Set("sk-stored999"))

	lines := &scriptedLines{}
	r, out, _ := newTestREPL(t, lines, &replyClient{}, store)

	require.NoError(t, r.run())
	assert.Zero(t, lines.passwords)
	assert.NotContains(t, out.String(), "Set up your AI Best Friend")
	assert.Contains(t, out.String(), "Bye!")
}

func TestREPLQuitDuringSetup(t *testing.T) {
	lines := &scriptedLines{}
	r, _, _ := newTestREPL(t, lines, &replyClient{}, nil)

	assert.NoError(t, r.run())
	assert.Equal(t, app.PhaseUnconfigured, r.machine.Phase())
}

func TestREPLSlashCommands(t *testing.T) {
	lines := &scriptedLines{inputs: []string{"sk-test123", "hello", "/history", "/status", "/help", "/bogus", "/quit", "never sent"}}
	r, out, _ := newTestREPL(t, lines, &replyClient{}, nil)

	require.NoError(t, r.run())

	text := out.String()
	assert.Contains(t, text, "You: hello")
	assert.Contains(t, text, "Alex: That's **awesome**!")
	assert.Contains(t, text, "Ready")
	assert.Contains(t, text, "sk-...test")
	assert.Contains(t, text, "memory")
	assert.Contains(t, text, "/history")
	assert.Contains(t, text, "Unknown command /bogus")
	assert.Equal(t, 1, r.machine.Conversation().CountByRole(model.RoleUser))
	assert.Equal(t, []string{"never sent"}, lines.inputs)
}

func TestREPLShowsSendFailure(t *testing.T) {
	client := &replyClient{send: func(context.Context, []model.ChatTurn) (string, error) {
		return "", apperr.API(cloud.MsgSendFailed, io.ErrUnexpectedEOF)
	}}
	lines := &scriptedLines{inputs: []string{"sk-test123", "hello"}}
	r, out, _ := newTestREPL(t, lines, client, nil)

	require.NoError(t, r.run())
	assert.Contains(t, out.String(), cloud.MsgSendFailed)
	assert.Nil(t, r.machine.Banner())
	assert.Equal(t, 2, r.machine.Conversation().Len())
}

func TestREPLInterruptCancelsSend(t *testing.T) {
	started := make(chan struct{})
	client := &replyClient{send: func(ctx context.Context, _ []model.ChatTurn) (string, error) {
		close(started)
		<-ctx.Done()
		return "", apperr.API(cloud.MsgCancelled, ctx.Err())
	}}
	lines := &scriptedLines{inputs: []string{"sk-test123", "tell me a long story"}}
	r, out, sigs := newTestREPL(t, lines, client, nil)

	go func() {
		<-started
		sigs <- syscall.SIGINT
	}()

	require.NoError(t, r.run())
	assert.Contains(t, out.String(), cloud.MsgCancelled)
	assert.Equal(t, app.PhaseReady, r.machine.Phase())
}

func TestREPLPromptAbortExits(t *testing.T) {
	store := credential.NewStore(credential.NewMemoryBackend(), logging.Discard())
	require.NoError(t, store.Set("sk-stored999"))

	r, out, _ := newTestREPL(t, &scriptedLines{}, &replyClient{}, store)
	r.line = abortingLines{&scriptedLines{}}

	require.NoError(t, r.run())
	assert.Contains(t, out.String(), "Bye!")
}

type abortingLines struct{ *scriptedLines }

func (abortingLines) Prompt(string) (string, error) { return "", liner.ErrPromptAborted }

func TestREPLKeepsInputHistoryInMemory(t *testing.T) {
	home := isolate(t)

	lines := &scriptedLines{inputs: []string{"sk-test123", "hello", "/history"}}
	r, _, _ := newTestREPL(t, lines, &replyClient{}, nil)

	require.NoError(t, r.run())
	assert.Equal(t, []string{"hello", "/history"}, lines.history)

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
