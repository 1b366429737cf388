// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeCreds struct {
	mu     sync.Mutex
	key    string
	setErr error
	getErr error
	sets   int
	clears int
}

func (f *fakeCreds) Set(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.key = key
	return nil
}

func (f *fakeCreds) Get() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.key, f.key != "", nil
}

func (f *fakeCreds) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.key = ""
	return nil
}

type fakeClient struct {
	mu      sync.Mutex
	key     string
	initErr error
	send    func(ctx context.Context, history []model.ChatTurn) (string, error)
	seen    [][]model.ChatTurn
}

func (f *fakeClient) Initialize(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return f.initErr
	}
	f.key = key
	return nil
}

func (f *fakeClient) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key != ""
}

func (f *fakeClient) Send(ctx context.Context, history []model.ChatTurn) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, history)
	send := f.send
	f.mu.Unlock()
	if send == nil {
		return "hi there", nil
	}
	return send(ctx, history)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func newTestMachine(creds *fakeCreds, client *fakeClient, opts ...Option) *Machine {
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return NewMachine(creds, client, opts...)
}

// readyMachine returns a machine that accepted "sk-test123".
func readyMachine(t *testing.T, client *fakeClient) (*Machine, *fakeCreds) {
	t.Helper()
	creds := &fakeCreds{}
	m := newTestMachine(creds, client)
	out := m.Dispatch(KeySubmitted{Key: "sk-test123"})
	require.NoError(t, out.Err)
	require.Equal(t, PhaseReady, m.Phase())
	return m, creds
}

// complete waits for the outcome's task and feeds its result back.
func complete(t *testing.T, m *Machine, out Outcome) Outcome {
	t.Helper()
	require.NotNil(t, out.Task)
	return m.Dispatch(out.Task.Await().Event())
}

// =============================================================================
// SETUP
// =============================================================================

func TestMachine_StartsUnconfigured(t *testing.T) {
	m := newTestMachine(&fakeCreds{}, &fakeClient{})
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	assert.True(t, m.Conversation().IsEmpty())
	assert.Nil(t, m.Banner())
	assert.Nil(t, m.FormError())
	assert.False(t, m.Busy())
}

func TestMachine_SubmitKeySeedsWelcome(t *testing.T) {
	client := &fakeClient{}
	m, creds := readyMachine(t, client)

	assert.Equal(t, "sk-test123", creds.key)
	assert.Equal(t, "sk-test123", client.key)

	msgs := m.Conversation().All()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role())
	assert.Equal(t, m.Persona().Greeting(), msgs[0].Content())
}

func TestMachine_SubmitInvalidKey(t *testing.T) {
	creds := &fakeCreds{}
	m := newTestMachine(creds, &fakeClient{})

	out := m.Dispatch(KeySubmitted{Key: "abc"})
	assert.NoError(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	require.Error(t, m.FormError())
	assert.True(t, apperr.IsValidation(m.FormError()))
	assert.Zero(t, creds.sets)
	assert.True(t, m.Conversation().IsEmpty())

	// A valid retry clears the form error.
	out = m.Dispatch(KeySubmitted{Key: "sk-ok"})
	require.NoError(t, out.Err)
	assert.Nil(t, m.FormError())
	assert.Equal(t, PhaseReady, m.Phase())
}

func TestMachine_PersistFailureRollsBack(t *testing.T) {
	creds := &fakeCreds{setErr: errors.New("disk full")}
	m := newTestMachine(creds, &fakeClient{})

	out := m.Dispatch(KeySubmitted{Key: "sk-test123"})
	require.Error(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	assert.True(t, apperr.IsConfiguration(m.FormError()))
	assert.Equal(t, MsgPersistFailed, m.FormError().Error())
	assert.True(t, m.Conversation().IsEmpty())
}

func TestMachine_InitializeFailureRollsBack(t *testing.T) {
	client := &fakeClient{initErr: apperr.Configuration("OpenAI API key is required", nil)}
	creds := &fakeCreds{}
	m := newTestMachine(creds, client)

	out := m.Dispatch(KeySubmitted{Key: "sk-test123"})
	require.Error(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	assert.Equal(t, "OpenAI API key is required", m.FormError().Error())
	assert.Zero(t, creds.sets)
}

// =============================================================================
// RESTORE
// =============================================================================

func TestMachine_RestoreStoredKey(t *testing.T) {
	creds := &fakeCreds{key: "sk-stored"}
	client := &fakeClient{}
	m := newTestMachine(creds, client)

	out := m.Restore()
	require.NoError(t, out.Err)
	assert.Equal(t, PhaseReady, m.Phase())
	assert.Equal(t, "sk-stored", client.key)
	assert.Equal(t, 1, m.Conversation().Len())
}

func TestMachine_RestoreWithoutKey(t *testing.T) {
	m := newTestMachine(&fakeCreds{}, &fakeClient{})

	out := m.Restore()
	assert.NoError(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	assert.True(t, m.Conversation().IsEmpty())
}

func TestMachine_RestoreLookupError(t *testing.T) {
	m := newTestMachine(&fakeCreds{getErr: errors.New("locked")}, &fakeClient{})

	out := m.Restore()
	assert.Error(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
}

func TestMachine_RestoreInitFailureForgetsKey(t *testing.T) {
	creds := &fakeCreds{key: "sk-stored"}
	client := &fakeClient{initErr: errors.New("bad key")}
	m := newTestMachine(creds, client)

	out := m.Restore()
	assert.Error(t, out.Err)
	assert.Equal(t, PhaseUnconfigured, m.Phase())
	assert.Equal(t, 1, creds.clears)
	assert.Empty(t, creds.key)
	assert.Nil(t, m.FormError())
}

// =============================================================================
// CHAT
// =============================================================================

func TestMachine_SendAndReceive(t *testing.T) {
	client := &fakeClient{}
	m, _ := readyMachine(t, client)

	out := m.Dispatch(TextSubmitted{Text: "hello"})
	require.NoError(t, out.Err)
	assert.Equal(t, AwaitingReply{TaskID: "task-1"}, out.State)
	assert.True(t, m.Busy())
	assert.Equal(t, 2, m.Conversation().Len())

	out = complete(t, m, out)
	assert.Equal(t, PhaseReady, out.State.Phase())
	assert.Nil(t, m.Task())

	msgs := m.Conversation().All()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role())
	assert.Equal(t, model.RoleUser, msgs[1].Role())
	assert.Equal(t, "hello", msgs[1].Content())
	assert.Equal(t, model.RoleAssistant, msgs[2].Role())
	assert.Equal(t, "hi there", msgs[2].Content())

	// The request carried the welcome and the user message.
	require.Len(t, client.seen, 1)
	assert.Equal(t, []model.ChatTurn{
		{Role: model.RoleAssistant, Content: m.Persona().Greeting()},
		{Role: model.RoleUser, Content: "hello"},
	}, client.seen[0])
}

func TestMachine_SendFailureKeepsUserMessage(t *testing.T) {
	apiErr := apperr.API("Failed to get response from AI. Please check your API key and try again.", nil)
	client := &fakeClient{send: func(context.Context, []model.ChatTurn) (string, error) {
		return "", apiErr
	}}
	m, _ := readyMachine(t, client)

	out := complete(t, m, m.Dispatch(TextSubmitted{Text: "hello"}))
	assert.Equal(t, PhaseReady, out.State.Phase())
	assert.Equal(t, apiErr, m.Banner())

	msgs := m.Conversation().All()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content())

	// The next submission clears the banner.
	client.send = nil
	out = m.Dispatch(TextSubmitted{Text: "again"})
	assert.Nil(t, m.Banner())
	complete(t, m, out)
	assert.Equal(t, 4, m.Conversation().Len())
}

func TestMachine_ClientNotInitialized(t *testing.T) {
	client := &fakeClient{}
	m, _ := readyMachine(t, client)
	client.key = ""

	out := m.Dispatch(TextSubmitted{Text: "hello"})
	assert.Nil(t, out.Task)
	assert.Equal(t, PhaseReady, m.Phase())
	assert.True(t, apperr.IsConfiguration(m.Banner()))
	assert.Equal(t, 1, m.Conversation().Len())
	assert.Empty(t, client.seen)
}

func TestMachine_EmptyTextIgnored(t *testing.T) {
	m, _ := readyMachine(t, &fakeClient{})

	out := m.Dispatch(TextSubmitted{Text: "   "})
	assert.Nil(t, out.Task)
	assert.Equal(t, PhaseReady, m.Phase())
	assert.Equal(t, 1, m.Conversation().Len())
}

func TestMachine_SecondSendWhileAwaitingIgnored(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{send: func(ctx context.Context, _ []model.ChatTurn) (string, error) {
		<-release
		return "done", nil
	}}
	m, _ := readyMachine(t, client)

	first := m.Dispatch(TextSubmitted{Text: "one"})
	second := m.Dispatch(TextSubmitted{Text: "two"})
	assert.Nil(t, second.Task)
	assert.Equal(t, 2, m.Conversation().Len())

	close(release)
	complete(t, m, first)
	assert.Equal(t, 3, m.Conversation().Len())
}

func TestMachine_CancelInFlight(t *testing.T) {
	cancelled := apperr.API("Request cancelled.", context.Canceled)
	client := &fakeClient{send: func(ctx context.Context, _ []model.ChatTurn) (string, error) {
		<-ctx.Done()
		return "", cancelled
	}}
	m, _ := readyMachine(t, client)

	out := m.Dispatch(TextSubmitted{Text: "hello"})
	require.NotNil(t, out.Task)

	cancelOut := m.Dispatch(CancelRequested{})
	assert.Equal(t, PhaseAwaitingReply, cancelOut.State.Phase())

	select {
	case <-out.Task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not finish after cancel")
	}

	final := complete(t, m, out)
	assert.Equal(t, PhaseReady, final.State.Phase())
	assert.Equal(t, "Request cancelled.", m.Banner().Error())
	assert.Equal(t, 2, m.Conversation().Len())
}

func TestMachine_StaleReplyIgnored(t *testing.T) {
	m, _ := readyMachine(t, &fakeClient{})

	out := m.Dispatch(TextSubmitted{Text: "hello"})
	result := out.Task.Await()

	stale := m.Dispatch(ReplySucceeded{TaskID: "other", Text: "late"})
	assert.Equal(t, PhaseAwaitingReply, stale.State.Phase())
	assert.Equal(t, 2, m.Conversation().Len())

	m.Dispatch(result.Event())
	assert.Equal(t, PhaseReady, m.Phase())
	assert.Equal(t, 3, m.Conversation().Len())

	// A duplicate completion after the fact changes nothing.
	m.Dispatch(result.Event())
	assert.Equal(t, 3, m.Conversation().Len())
}

func TestMachine_RequestTimeout(t *testing.T) {
	client := &fakeClient{send: func(ctx context.Context, _ []model.ChatTurn) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	creds := &fakeCreds{}
	m := newTestMachine(creds, client, WithRequestTimeout(20*time.Millisecond))
	require.NoError(t, m.Dispatch(KeySubmitted{Key: "sk-test123"}).Err)

	out := m.Dispatch(TextSubmitted{Text: "hello"})
	result := out.Task.Await()
	assert.ErrorIs(t, result.Err, context.DeadlineExceeded)

	m.Dispatch(result.Event())
	assert.True(t, apperr.IsAPI(m.Banner()))
	assert.Equal(t, MsgSendFailed, m.Banner().Error())
}

func TestMachine_DismissBanner(t *testing.T) {
	client := &fakeClient{}
	m, _ := readyMachine(t, client)
	client.key = ""

	m.Dispatch(TextSubmitted{Text: "hello"})
	require.Error(t, m.Banner())
	m.DismissBanner()
	assert.Nil(t, m.Banner())
}

func TestSendTask_CancelIsIdempotent(t *testing.T) {
	task := startSend(context.Background(), "t", 0, &fakeClient{}, nil)
	res := task.Await()
	assert.Equal(t, "t", res.TaskID)
	assert.Equal(t, "hi there", res.Reply)

	task.Cancel()
	task.Cancel()
	assert.Equal(t, ReplySucceeded{TaskID: "t", Text: "hi there"}, res.Event())
}
