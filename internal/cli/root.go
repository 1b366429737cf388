// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand builds the bestfriend command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "bestfriend",
		Short: "Chat with Alex, your AI best friend",
		Long: `bestfriend is a terminal chat client that talks to OpenAI as Alex,
a warm and supportive best friend. Run it with no arguments to open the
full-screen chat, or use "bestfriend chat" for a line-mode session.`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default is ~/.bestfriend/config.toml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newChatCommand(opts),
		newKeyCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error. SIGTERM
// cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:")+" "+err.Error())
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("bestfriend "+Version))
			fmt.Fprintln(out, field("Commit", GitCommit))
			fmt.Fprintln(out, field("Built", BuildDate))
		},
	}
}
