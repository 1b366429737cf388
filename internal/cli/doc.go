// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the bestfriend command tree.
//
// Running bestfriend with no subcommand opens the full-screen chat. The other
// commands are:
//
//	bestfriend chat [--show-key]     line-mode chat in the current terminal
//	bestfriend key status|set|clear  manage the stored OpenAI API key
//	bestfriend config path|show|init inspect or write the config file
//	bestfriend version               print version information
//
// Every command accepts --config PATH and --debug.
package cli
