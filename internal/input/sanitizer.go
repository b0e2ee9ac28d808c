// Package input cleans raw chat messages before they reach the dialogue engine.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is the byte limit applied when none is configured.
const DefaultMaxSize = 4096

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control characters.
type Sanitizer struct {
	// MaxSize is the largest accepted message in bytes. Zero or less means DefaultMaxSize.
	MaxSize int
}

// Clean returns the sanitized message.
// Oversized input is rejected rather than truncated, so a turn never acts on half a message.
func (s Sanitizer) Clean(raw string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(raw) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(raw), limit)
	}
	if !utf8.ValidString(raw) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(raw, unsafeControl) < 0 {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// unsafeControl matches control characters other than newline, tab and carriage return.
// ESC is among them, which keeps ANSI sequences out of logs and the terminal.
func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
