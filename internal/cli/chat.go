// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/bestfriend-tui/internal/app"
	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/config"
	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/ui/styles"
)

func newChatCommand(opts *globalOptions) *cobra.Command {
	var showKey bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in line mode",
		Long: `Chat with Alex one line at a time in the current terminal.

Type a message and press enter. Slash commands:
  /help     show commands
  /history  list the conversation so far
  /status   show connection and session details
  /quit     leave (ctrl+d also works)

Press ctrl+c while waiting for a reply to cancel it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts, showKey)
		},
	}
	cmd.Flags().BoolVar(&showKey, "show-key", false, "echo the API key while typing it")
	return cmd
}

func runChat(cmd *cobra.Command, opts *globalOptions, showKey bool) error {
	rt, err := openRuntime(opts, runtimeOptions{console: true, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close()

	client := rt.newClient()
	machine := rt.newMachine(cmd.Context(), client)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	r := &repl{
		machine:     machine,
		line:        line,
		out:         cmd.OutOrStdout(),
		interrupts:  sigs,
		showKey:     showKey,
		timeFormat:  rt.cfg.UI.TimestampFormat,
		render:      newReplyRenderer(rt.cfg.UI),
		fingerprint: client.KeyFingerprint,
		location:    rt.store.Location(),
		logger:      rt.logger.With("component", "repl"),
	}
	defer r.line.Close()

	return r.run()
}

// =============================================================================
// REPL
// =============================================================================

// lineReader is the part of liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// repl drives the state machine from a line-oriented terminal session.
type repl struct {
	machine    *app.Machine
	line       lineReader
	out        io.Writer
	interrupts <-chan os.Signal

	showKey     bool
	timeFormat  string
	render      func(string) string
	fingerprint func() string
	location    string
	logger      *slog.Logger
}

// errQuit ends the session without an error.
var errQuit = errors.New("quit")

func (r *repl) run() error {
	if r.machine.Phase() == app.PhaseUnconfigured {
		if err := r.configure(); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}

	if last := r.machine.Conversation().Last(); last != nil {
		r.printMessage(last)
	}

	for {
		input, err := r.line.Prompt(r.promptLabel())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				r.printGoodbye()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if err := r.handleCommand(input); errors.Is(err, errQuit) {
				r.printGoodbye()
				return nil
			}
			continue
		}

		r.send(input)
	}
}

func (r *repl) promptLabel() string {
	return "you> "
}

// configure asks for an API key until one is accepted.
func (r *repl) configure() error {
	fmt.Fprintln(r.out, TitleStyle.Render("Set up your AI Best Friend"))
	fmt.Fprintln(r.out, MutedStyle.Render("Enter your OpenAI API key to start chatting with "+r.machine.Persona().Name+"."))
	fmt.Fprintln(r.out, MutedStyle.Render("Need an API key? Get one from OpenAI: https://platform.openai.com/api-keys"))
	fmt.Fprintln(r.out)

	for r.machine.Phase() == app.PhaseUnconfigured {
		var (
			key string
			err error
		)
		if r.showKey {
			key, err = r.line.Prompt("OpenAI API key: ")
		} else {
			key, err = r.line.PasswordPrompt("OpenAI API key: ")
		}
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return errQuit
			}
			return err
		}

		r.machine.Dispatch(app.KeySubmitted{Key: key})
		if formErr := r.machine.FormError(); formErr != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render(styles.StatusIndicators.Error)+" "+
				apperr.Message(formErr, app.MsgPersistFailed))
		}
	}

	fmt.Fprintln(r.out, SuccessStyle.Render("Key saved.")+" "+MutedStyle.Render("Stored in "+r.location))
	fmt.Fprintln(r.out)
	return nil
}

// send dispatches text and waits for the reply. An interrupt cancels it.
func (r *repl) send(text string) {
	drain(r.interrupts)
	out := r.machine.Dispatch(app.TextSubmitted{Text: text})
	if out.Task == nil {
		r.printBanner()
		return
	}

	fmt.Fprintln(r.out, MutedStyle.Render(r.machine.Persona().Name+" is typing..."))

	task := out.Task
	select {
	case <-task.Done():
	case <-r.interrupts:
		r.machine.Dispatch(app.CancelRequested{})
		<-task.Done()
	}

	res := task.Await()
	r.logger.Debug("reply finished", "task", res.TaskID, "elapsed", res.Elapsed, "ok", res.Err == nil)
	r.machine.Dispatch(res.Event())

	if r.machine.Banner() != nil {
		r.printBanner()
		return
	}
	if last := r.machine.Conversation().Last(); last != nil && last.IsAssistant() {
		r.printMessage(last)
	}
}

// drain discards interrupts that arrived while no reply was pending.
func drain(ch <-chan os.Signal) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (r *repl) handleCommand(input string) error {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return errQuit
	case "/help", "/?":
		r.printHelp()
	case "/history":
		r.printHistory()
	case "/status":
		r.printStatus()
	default:
		fmt.Fprintln(r.out, WarningStyle.Render(styles.StatusIndicators.Warning)+
			" Unknown command "+name+". Type /help for the list.")
	}
	return nil
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	fmt.Fprintln(r.out, field("/help", "show this list"))
	fmt.Fprintln(r.out, field("/history", "list the conversation so far"))
	fmt.Fprintln(r.out, field("/status", "show connection and session details"))
	fmt.Fprintln(r.out, field("/quit", "leave the chat"))
}

// historyPreviewWidth bounds each /history line.
const historyPreviewWidth = 60

func (r *repl) printHistory() {
	conv := r.machine.Conversation()
	if conv.IsEmpty() {
		fmt.Fprintln(r.out, MutedStyle.Render("No messages yet."))
		return
	}
	for _, msg := range conv.All() {
		name := msg.Role().DisplayName()
		preview := strings.ReplaceAll(msg.Preview(historyPreviewWidth), "\n", " ")
		fmt.Fprintf(r.out, "%s %s %s\n",
			MutedStyle.Render(msg.FormatTime(r.timeFormat)),
			nameStyle(msg).Render(name+":"),
			preview,
		)
	}
}

func (r *repl) printStatus() {
	conv := r.machine.Conversation()
	fmt.Fprintln(r.out, TitleStyle.Render("Status"))
	fmt.Fprintln(r.out, field("State", r.machine.Phase().String()))
	fmt.Fprintln(r.out, field("API key", r.fingerprint()))
	fmt.Fprintln(r.out, field("Stored in", r.location))
	fmt.Fprintln(r.out, field("Messages", humanize.Comma(int64(conv.Len()))))
	fmt.Fprintln(r.out, field("Started", humanize.Time(conv.CreatedAt())))
}

// =============================================================================
// OUTPUT
// =============================================================================

func nameStyle(msg *model.Message) lipgloss.Style {
	if msg.IsUser() {
		return UserPromptStyle
	}
	return FriendNameStyle
}

func (r *repl) printMessage(msg *model.Message) {
	name := msg.Role().DisplayName()
	fmt.Fprintln(r.out, nameStyle(msg).Render(name)+" "+MutedStyle.Render(msg.FormatTime(r.timeFormat)))
	fmt.Fprintln(r.out, strings.TrimRight(r.render(msg.Content()), "\n"))
	fmt.Fprintln(r.out)
}

func (r *repl) printBanner() {
	err := r.machine.Banner()
	if err == nil {
		return
	}
	fmt.Fprintln(r.out, ErrorStyle.Render(styles.StatusIndicators.Error)+" "+apperr.Message(err, app.MsgSendFailed))
	r.machine.DismissBanner()
}

func (r *repl) printGoodbye() {
	n := r.machine.Conversation().CountByRole(model.RoleUser)
	if n == 0 {
		fmt.Fprintln(r.out, MutedStyle.Render("Bye!"))
		return
	}
	fmt.Fprintln(r.out, MutedStyle.Render(fmt.Sprintf("Bye! You sent %s. Talk soon.",
		english.Plural(n, "message", "messages"))))
}

// newReplyRenderer returns a Markdown renderer for assistant replies, or an
// identity function when Markdown is off or stdout is not a terminal.
func newReplyRenderer(c config.UIConfig) func(string) string {
	plain := func(s string) string { return s }
	if !c.Markdown || !IsStdoutTTY() {
		return plain
	}

	style := "dark"
	if styles.NewTheme(c.Theme).MarkdownStyle() == "light" {
		style = "light"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(TerminalWidth()-4),
	)
	if err != nil {
		return plain
	}
	return func(s string) string {
		out, err := tr.Render(s)
		if err != nil {
			return s
		}
		return strings.Trim(out, "\n")
	}
}

var _ lineReader = (*liner.State)(nil)
