// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/bestfriend-tui/internal/model"
)

// Sender is the part of the completion client a send task needs.
type Sender interface {
	Send(ctx context.Context, history []model.ChatTurn) (string, error)
}

// Result is the outcome of a send task.
type Result struct {
	TaskID  string
	Reply   string
	Err     error
	Elapsed time.Duration
}

// Event converts the result into the event that completes the task.
func (r Result) Event() Event {
	if r.Err != nil {
		return ReplyFailed{TaskID: r.TaskID, Err: r.Err}
	}
	return ReplySucceeded{TaskID: r.TaskID, Text: r.Reply}
}

// SendTask is a single in-flight completion request. It completes exactly
// once, either with the reply or with an error (cancellation included).
type SendTask struct {
	id      string
	started time.Time

	mu     sync.Mutex
	cancel context.CancelFunc

	done   chan struct{}
	result Result
}

// startSend launches a request for history on its own goroutine.
func startSend(parent context.Context, id string, timeout time.Duration, sender Sender, history []model.ChatTurn) *SendTask {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	t := &SendTask{
		id:      id,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go t.run(ctx, sender, history)
	return t
}

func (t *SendTask) run(ctx context.Context, sender Sender, history []model.ChatTurn) {
	defer close(t.done)
	defer t.clear()

	reply, err := sender.Send(ctx, history)
	t.result = Result{
		TaskID:  t.id,
		Reply:   reply,
		Err:     err,
		Elapsed: time.Since(t.started),
	}
}

// ID returns the task identifier.
func (t *SendTask) ID() string { return t.id }

// Started returns when the task was launched.
func (t *SendTask) Started() time.Time { return t.started }

// Done is closed once the result is available.
func (t *SendTask) Done() <-chan struct{} { return t.done }

// Await blocks until the task completes and returns its result.
func (t *SendTask) Await() Result {
	<-t.done
	return t.result
}

// Cancel abandons the request. It is safe to call more than once and after
// completion.
func (t *SendTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *SendTask) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
