// Package tui renders the chat transcript for terminals.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns an assistant reply into terminal output.
type Renderer func(reply string) (string, error)

// NewRenderer returns a glamour markdown renderer when out is a terminal and
// a plain pass-through otherwise, so piped transcripts stay free of escape codes.
func NewRenderer(out *os.File) Renderer {
	if !IsTerminal(out) {
		return Plain
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return Plain
	}
	return func(reply string) (string, error) {
		return r.Render(reply)
	}
}

// Plain returns the reply followed by a newline.
func Plain(reply string) (string, error) {
	return strings.TrimRight(reply, "\n") + "\n", nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
