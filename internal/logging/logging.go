// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the process logger.
//
// The TUI owns the terminal, so it logs to a file only. The REPL and the
// other subcommands can additionally log to stderr through ConsoleHandler
// when --debug is given. API keys and message text are never logged.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Options configures Setup.
type Options struct {
	// Level is the minimum level written to the file.
	Level slog.Level
	// File is the log file path. Empty disables file logging.
	File string
	// Console also writes to Stderr.
	Console bool
	// ConsoleLevel is the minimum level written to the console.
	ConsoleLevel slog.Level
	// Stderr is the console writer. Nil means os.Stderr.
	Stderr io.Writer
	// NoColor disables console colour.
	NoColor bool
}

// Setup builds a logger from opts, installs it as the slog default and
// returns a closer for the log file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		handlers []slog.Handler
		closer   io.Closer = nopCloser{}
	)

	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, nil, err
		}
		closer = f
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: opts.Level}))
	}

	if opts.Console {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		handlers = append(handlers, NewConsoleHandler(out, ConsoleOptions{
			Level:      opts.ConsoleLevel,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor,
		}))
	}

	var logger *slog.Logger
	switch len(handlers) {
	case 0:
		logger = Discard()
	case 1:
		logger = slog.New(handlers[0])
	default:
		logger = slog.New(fanout(handlers))
	}

	slog.SetDefault(logger)
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Err returns an attribute for err under the "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
