// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/bestfriend-tui/internal/credential"
)

func newKeyCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored OpenAI API key",
	}

	var fromStdin bool
	set := &cobra.Command{
		Use:   "set [KEY]",
		Short: "Store an API key",
		Long: `Store an OpenAI API key. With no argument the key is read from a
hidden prompt, or from stdin with --stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySet(cmd, opts, args, fromStdin)
		},
	}
	set.Flags().BoolVar(&fromStdin, "stdin", false, "read the key from stdin")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a key is stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runKeyStatus(cmd, opts)
			},
		},
		set,
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runKeyClear(cmd, opts)
			},
		},
	)
	return cmd
}

func runKeyStatus(cmd *cobra.Command, opts *globalOptions) error {
	rt, err := openRuntime(opts, runtimeOptions{console: true, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	key, ok, err := rt.store.Get()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, field("API key", "not set"))
		fmt.Fprintln(out, MutedStyle.Render(`Run "bestfriend key set" or start "bestfriend" to add one.`))
		return nil
	}
	fmt.Fprintln(out, field("API key", credential.Mask(key)))
	fmt.Fprintln(out, field("Stored in", rt.store.Location()))
	if err := credential.Validate(key); err != nil {
		fmt.Fprintln(out, WarningStyle.Render("Warning: "+err.Error()))
	}
	return nil
}

func runKeySet(cmd *cobra.Command, opts *globalOptions, args []string, fromStdin bool) error {
	key, err := readKey(cmd, args, fromStdin)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if err := credential.Validate(key); err != nil {
		return err
	}

	rt, err := openRuntime(opts, runtimeOptions{console: true, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.Set(key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Key saved")+" "+MutedStyle.Render(credential.Mask(key)))
	return nil
}

// readKey takes the key from args, stdin or a hidden prompt, in that order.
func readKey(cmd *cobra.Command, args []string, fromStdin bool) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if fromStdin || !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 4096))
		if err != nil {
			return "", fmt.Errorf("failed to read key from stdin: %w", err)
		}
		return string(data), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "OpenAI API key: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return string(data), nil
}

func runKeyClear(cmd *cobra.Command, opts *globalOptions) error {
	rt, err := openRuntime(opts, runtimeOptions{console: true, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Key removed"))
	return nil
}
