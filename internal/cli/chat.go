package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/assetbot"
	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/internal/presentation/tui"
	"github.com/aretw0/assetbot/pkg/domain"
)

// ChatOptions configures an interactive chat loop.
type ChatOptions struct {
	SessionKey string
	Identity   string
	In         io.Reader
	Out        io.Writer
	Render     tui.Renderer
	Logger     *slog.Logger
}

// Commands the loop handles itself instead of sending to the engine.
const (
	cmdExit    = "/exit"
	cmdQuit    = "/quit"
	cmdSession = "/session"
)

// RunChat reads one message per line from In and prints each reply to Out until
// the input ends, the context is cancelled, or the user types /exit.
func RunChat(ctx context.Context, eng *assetbot.Engine, opts ChatOptions) error {
	render := opts.Render
	if render == nil {
		render = tui.Plain
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if state, err := eng.Inspect(ctx, opts.SessionKey); err == nil {
		logger.Info("Session Resumed", "session_key", opts.SessionKey, "stage", state.Stage())
		printSystemMessage(opts.Out, "Resuming session '%s' at %s.", opts.SessionKey, state.Stage())
	} else if errors.Is(err, domain.ErrSessionNotFound) {
		printSystemMessage(opts.Out, "Session '%s' active. Say hello to start, %s to leave.", opts.SessionKey, cmdExit)
	} else {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, opts.In)
	for {
		fmt.Fprint(opts.Out, "> ")

		var line string
		var open bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return nil
		case line, open = <-lines:
		}
		if !open {
			fmt.Fprintln(opts.Out)
			return nil
		}

		switch strings.TrimSpace(line) {
		case cmdExit, cmdQuit:
			return nil
		case cmdSession:
			state, err := eng.Inspect(ctx, opts.SessionKey)
			if err != nil {
				printSystemMessage(opts.Out, "No state yet.")
				continue
			}
			printSystemMessage(opts.Out, "stage=%s status=%s turns=%d", state.Stage(), state.Status, len(state.History))
			continue
		}

		reply, err := eng.RunTurn(ctx, opts.SessionKey, opts.Identity, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !reply.Handled {
			printSystemMessage(opts.Out, "(no reply)")
			continue
		}

		out, err := render(reply.AssistantText)
		if err != nil {
			out, _ = tui.Plain(reply.AssistantText)
		}
		fmt.Fprint(opts.Out, out)

		if reply.Status == domain.StatusClosed {
			printSystemMessage(opts.Out, "Session closed. Say hello to start a new request.")
		}
	}
}

// readLines feeds lines from r into a channel so the loop can also watch ctx.
// The goroutine ends when r does.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
