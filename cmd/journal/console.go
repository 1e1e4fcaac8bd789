package main

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Proton-105/voice-journal/internal/capture"
	"github.com/Proton-105/voice-journal/internal/conversation"
	"github.com/Proton-105/voice-journal/internal/display"
	"github.com/Proton-105/voice-journal/internal/health"
	"github.com/Proton-105/voice-journal/internal/lifecycle"
	"github.com/Proton-105/voice-journal/internal/ops"
	"github.com/Proton-105/voice-journal/internal/speech"
	"github.com/Proton-105/voice-journal/pkg/metrics"
)

const consoleHelp = `Type what you would say; each line is one capture.
/sell    sell your entries for the current offer
/cancel  decline the offer
/log     show the entry log
/status  show the meter
/help    show this help
/quit    exit`

func newConsoleCmd(a *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Journal from the terminal, one line per utterance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				sessionID = a.cfg.Journal.SessionID
			}
			return a.runConsole(cmd.Context(), sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id, defaults to journal.session_id")

	return cmd
}

func (a *app) runConsole(ctx context.Context, sessionID string, in io.Reader, out io.Writer) error {
	b, err := openBackend(ctx, *a.cfg, a.log)
	if err != nil {
		return err
	}

	shutdown := lifecycle.NewShutdown(a.log)
	shutdown.Register("store", func(context.Context) error { return b.close() })
	defer a.runShutdown(shutdown)

	console := display.NewConsole(out)
	speaker := speech.NewQueue(speech.NewWriterPlayer(out, console.Assistant), a.log)

	registry := conversation.NewRegistry(func(ctx context.Context, id string) (*conversation.Machine, error) {
		cfg := a.machineConfig(id, b.store)
		cfg.Speaker = speaker
		cfg.Display = console
		cfg.Status = console
		return conversation.New(ctx, cfg)
	})

	m, err := registry.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	checker := health.NewChecker(a.log)
	checker.AddCheck("store", health.NewStoreChecker(b.store))
	a.startOps(ctx, ops.RegistrySessions{Registry: registry}, checker, shutdown)

	go metrics.NewSessionCollector(registry, 0).Run(ctx)

	m.Welcome(ctx)
	console.Println(consoleHelp)

	return newREPL(m, console, a.report(console)).Run(ctx, in)
}

// report shows the user message of err on the console.
func (a *app) report(console *display.Console) func(ctx context.Context, err error) {
	return func(ctx context.Context, err error) {
		msg, _ := a.errHandler.Handle(ctx, err)
		console.Println(msg)
	}
}

// repl maps console lines to machine events.
type repl struct {
	machine *conversation.Machine
	console *display.Console
	report  func(ctx context.Context, err error)
}

func newREPL(m *conversation.Machine, console *display.Console, report func(context.Context, error)) *repl {
	return &repl{machine: m, console: console, report: report}
}

// Run reads lines until EOF, /quit or ctx is done.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if !r.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle applies one line. It returns false when the session should end.
func (r *repl) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "/quit", "/exit":
		return false
	case "/sell":
		if _, err := r.machine.Sell(ctx); err != nil {
			r.report(ctx, err)
		}
	case "/cancel":
		r.machine.Cancel(ctx)
	case "/log":
		r.console.Log(r.machine.Snapshot())
	case "/status":
		r.console.Render(r.machine.Snapshot())
	case "/help":
		r.console.Println(consoleHelp)
	default:
		if strings.HasPrefix(line, "/") {
			r.console.Println(consoleHelp)
			return true
		}
		if err := r.machine.Listen(ctx, capture.Transcript(line)); err != nil {
			r.report(ctx, err)
		}
	}

	return true
}
