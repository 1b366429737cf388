// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the bestfriend TUI.
//
// Colors are Lip Gloss AdaptiveColors so the same palette works on dark and
// light terminals. Theme bundles the styles the screens use and the glamour
// style used to render assistant Markdown.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	header := theme.HeaderTitle.Render("Alex")
package styles
