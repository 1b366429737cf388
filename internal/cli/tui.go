// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/logging"
	"github.com/jeranaias/bestfriend-tui/internal/ui"
)

// errNoTerminal is returned when the full-screen UI cannot start.
var errNoTerminal = errors.New(`the full-screen chat needs an interactive terminal; try "bestfriend chat"`)

// runTUI opens the full-screen chat.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errNoTerminal
	}

	rt, err := openRuntime(opts, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	machine := rt.newMachine(ctx, rt.newClient())

	updates := make(chan ui.ConfigChangedMsg, 1)
	err = config.Watch(ctx, rt.cfgPath, func(cfg *config.Config, err error) {
		select {
		case updates <- ui.ConfigChangedMsg{Config: cfg, Err: err}:
		default:
			rt.logger.Debug("dropping config reload, previous one still pending")
		}
	})
	if err != nil {
		rt.logger.Warn("config hot reload disabled", logging.Err(err))
		updates = nil
	}

	rt.logger.Info("starting full-screen chat", "phase", machine.Phase().String())
	return ui.Run(ctx, machine, ui.Options{
		UI:            rt.cfg.UI,
		ConfigUpdates: updates,
		Logger:        rt.logger.With("component", "ui"),
	})
}
