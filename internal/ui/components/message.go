// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

// RenderOptions controls how messages are drawn.
type RenderOptions struct {
	// Markdown renders assistant replies with glamour.
	Markdown bool
	// ShowTimestamps appends the send time to the name line.
	ShowTimestamps bool
	// TimestampFormat is a Go time layout.
	TimestampFormat string
}

// DefaultRenderOptions returns the options used when nothing is configured.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Markdown:        true,
		ShowTimestamps:  true,
		TimestampFormat: "15:04",
	}
}

// MessageRenderer renders transcript messages for a given width. Messages are
// immutable, so rendered output is cached per message ID until the width,
// theme or options change.
type MessageRenderer struct {
	theme *styles.Theme
	opts  RenderOptions
	width int

	markdown *glamour.TermRenderer
	cache    map[string]string
}

// NewMessageRenderer creates a renderer.
func NewMessageRenderer(theme *styles.Theme, opts RenderOptions) *MessageRenderer {
	return &MessageRenderer{
		theme: theme,
		opts:  opts,
		width: 80,
		cache: make(map[string]string),
	}
}

// SetWidth sets the available width.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.reset()
}

// SetOptions replaces the render options.
func (r *MessageRenderer) SetOptions(opts RenderOptions) {
	if opts == r.opts {
		return
	}
	r.opts = opts
	r.reset()
}

// SetTheme replaces the theme.
func (r *MessageRenderer) SetTheme(theme *styles.Theme) {
	r.theme = theme
	r.reset()
}

// Options returns the current options.
func (r *MessageRenderer) Options() RenderOptions { return r.opts }

func (r *MessageRenderer) reset() {
	r.markdown = nil
	r.cache = make(map[string]string)
}

// RenderAll renders msgs separated by blank lines.
func (r *MessageRenderer) RenderAll(msgs []*model.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, r.Render(msg))
	}
	return strings.Join(parts, "\n\n")
}

// Render renders a single message: a name line followed by the body.
func (r *MessageRenderer) Render(msg *model.Message) string {
	if msg == nil {
		return ""
	}
	if out, ok := r.cache[msg.ID()]; ok {
		return out
	}

	out := lipgloss.JoinVertical(lipgloss.Left, r.nameLine(msg), r.body(msg))
	r.cache[msg.ID()] = out
	return out
}

func (r *MessageRenderer) nameLine(msg *model.Message) string {
	var avatar, name string
	if msg.IsUser() {
		avatar = r.theme.UserAvatar.Render(Initial(msg.Role().DisplayName()))
		name = r.theme.UserName.Render(msg.Role().DisplayName())
	} else {
		avatar = r.theme.AssistantAvatar.Render(Initial(msg.Role().DisplayName()))
		name = r.theme.AssistantName.Render(msg.Role().DisplayName())
	}

	line := avatar + " " + name
	if r.opts.ShowTimestamps {
		line += "  " + r.theme.Timestamp.Render(msg.FormatTime(r.opts.TimestampFormat))
	}
	return line
}

func (r *MessageRenderer) body(msg *model.Message) string {
	if msg.IsAssistant() && r.opts.Markdown {
		if out, ok := r.renderMarkdown(msg.Content()); ok {
			return out
		}
	}

	style := r.theme.UserBody
	if msg.IsAssistant() {
		style = r.theme.AssistantBody
	}
	return style.Width(r.width).Render(msg.Content())
}

// renderMarkdown renders content with glamour. ok is false when rendering
// failed and the caller should fall back to plain text.
func (r *MessageRenderer) renderMarkdown(content string) (string, bool) {
	if r.markdown == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.theme.MarkdownStyle()),
			glamour.WithWordWrap(r.width-4),
		)
		if err != nil {
			return "", false
		}
		r.markdown = md
	}

	out, err := r.markdown.Render(content)
	if err != nil {
		return "", false
	}
	return strings.Trim(out, "\n"), true
}
