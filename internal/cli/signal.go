package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// InterruptedError is the cancellation cause of a chat ended by a signal.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("chat interrupted by %s", e.Signal)
}

// Interrupt scopes a chat to the process lifetime. The first SIGINT or SIGTERM
// cancels Context with an *InterruptedError cause, so the turn in flight
// observes cancellation before its session is saved.
type Interrupt struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// WatchInterrupts starts listening for SIGINT and SIGTERM until Stop is called
// or parent ends.
func WatchInterrupts(parent context.Context) *Interrupt {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return watch(parent, ch, func() { signal.Stop(ch) })
}

func watch(parent context.Context, signals <-chan os.Signal, release func()) *Interrupt {
	ctx, cancel := context.WithCancelCause(parent)
	in := &Interrupt{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(in.done)
		defer release()
		select {
		case sig := <-signals:
			cancel(&InterruptedError{Signal: sig})
		case <-ctx.Done():
		}
	}()
	return in
}

// Context returns the chat context.
func (in *Interrupt) Context() context.Context {
	return in.ctx
}

// Stop cancels the context and stops signal delivery. It is safe to call more than once.
func (in *Interrupt) Stop() {
	in.cancel(nil)
	<-in.done
}

// Signal returns the signal that ended the chat, or nil if it ended any other way.
func (in *Interrupt) Signal() os.Signal {
	var ie *InterruptedError
	if errors.As(context.Cause(in.ctx), &ie) {
		return ie.Signal
	}
	return nil
}
