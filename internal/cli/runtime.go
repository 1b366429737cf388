// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/jeranaias/bestfriend-tui/internal/app"
	"github.com/jeranaias/bestfriend-tui/internal/cloud"
	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/credential"
	"github.com/jeranaias/bestfriend-tui/internal/logging"
	"github.com/jeranaias/bestfriend-tui/internal/persona"
)

// runtime is everything a command needs, built from the global flags.
type runtime struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	store   *credential.Store
	persona persona.Persona

	closers []io.Closer
}

// runtimeOptions tunes openRuntime for a command.
type runtimeOptions struct {
	// console writes logs to stderr when --debug is set. The full-screen UI
	// owns the terminal, so it leaves this off.
	console bool
	// stderr receives console logs. Nil means os.Stderr.
	stderr io.Writer
}

// openRuntime loads configuration, sets up logging and opens the credential
// store. Close must be called when done.
func openRuntime(opts *globalOptions, ro runtimeOptions) (*runtime, error) {
	path, err := configPath(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if opts.debug {
		level = slog.LevelDebug
	}
	logFile, err := cfg.LogFile()
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.Setup(logging.Options{
		Level:        level,
		File:         logFile,
		Console:      ro.console && opts.debug,
		ConsoleLevel: slog.LevelDebug,
		Stderr:       ro.stderr,
		NoColor:      !ColorsEnabled(),
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		cfgPath: path,
		logger:  logger,
		persona: persona.Default(),
		closers: []io.Closer{logCloser},
	}

	dir, err := config.ConfigDir()
	if err != nil {
		rt.Close()
		return nil, err
	}
	backend, err := credential.Open(credential.Kind(cfg.Storage.Backend), dir, cfg.Storage.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	rt.store = credential.NewStore(backend, logger)
	rt.closers = append([]io.Closer{rt.store}, rt.closers...)

	logger.Debug("runtime ready",
		"config", path,
		"storage", cfg.Storage.Backend,
		"credential", rt.store.Location(),
	)
	return rt, nil
}

// newClient builds the completion client from the [api] section.
func (r *runtime) newClient() *cloud.Client {
	return cloud.NewClient(
		cloud.WithBaseURL(r.cfg.API.BaseURL),
		cloud.WithRateLimit(r.cfg.API.RequestsPerMinute),
		cloud.WithPersona(r.persona),
		cloud.WithLogger(r.logger),
	)
}

// newMachine wires client and store into a state machine and restores any
// stored credential.
func (r *runtime) newMachine(ctx context.Context, client app.CompletionClient) *app.Machine {
	m := app.NewMachine(r.store, client,
		app.WithContext(ctx),
		app.WithRequestTimeout(r.cfg.API.Timeout),
		app.WithPersona(r.persona),
		app.WithLogger(r.logger),
	)
	if out := m.Restore(); out.Err != nil {
		r.logger.Warn("could not restore stored credential", logging.Err(out.Err))
	}
	return m
}

// Close releases the store and the log file.
func (r *runtime) Close() error {
	var result *multierror.Error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	r.closers = nil
	return result.ErrorOrNil()
}
