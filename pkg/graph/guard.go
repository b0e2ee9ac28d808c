package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/assetbot/pkg/domain"
)

// GuardKind enumerates the predicates an edge can use.
type GuardKind string

const (
	// GuardAlways matches every message. Use it as the last edge of a stage.
	GuardAlways GuardKind = "always"
	// GuardEmpty matches a blank message.
	GuardEmpty GuardKind = "empty"
	// GuardNotEmpty matches any non-blank message.
	GuardNotEmpty GuardKind = "not_empty"
	// GuardEqualsAny matches when the whole message equals one of Params (case-insensitive).
	GuardEqualsAny GuardKind = "equals_any"
	// GuardContainsAny matches when the message contains one of Params (case-insensitive).
	GuardContainsAny GuardKind = "contains_any"
	// GuardNoProgress matches when the pending request has no field collected yet.
	GuardNoProgress GuardKind = "no_progress"
	// GuardStatusIs matches when the session status equals Params[0].
	GuardStatusIs GuardKind = "status_is"
)

var guardKinds = map[GuardKind]bool{
	GuardAlways:      true,
	GuardEmpty:       true,
	GuardNotEmpty:    true,
	GuardEqualsAny:   true,
	GuardContainsAny: true,
	GuardNoProgress:  true,
	GuardStatusIs:    true,
}

// Guard is a predicate over (state, message), expressed as data so tables can be
// inspected, validated and serialized.
type Guard struct {
	Kind   GuardKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Params []string  `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Always returns a guard that matches every message.
func Always() Guard { return Guard{Kind: GuardAlways} }

// Empty returns a guard matching blank messages.
func Empty() Guard { return Guard{Kind: GuardEmpty} }

// NotEmpty returns a guard matching any non-blank message.
func NotEmpty() Guard { return Guard{Kind: GuardNotEmpty} }

// EqualsAny returns a guard matching a message equal to one of words.
func EqualsAny(words ...string) Guard { return Guard{Kind: GuardEqualsAny, Params: words} }

// ContainsAny returns a guard matching a message containing one of words.
func ContainsAny(words ...string) Guard { return Guard{Kind: GuardContainsAny, Params: words} }

// NoProgress returns a guard matching sessions with an empty pending request.
func NoProgress() Guard { return Guard{Kind: GuardNoProgress} }

// StatusIs returns a guard matching sessions with the given status.
func StatusIs(status domain.Status) Guard {
	return Guard{Kind: GuardStatusIs, Params: []string{string(status)}}
}

// Validate checks the kind is known and the parameters fit it.
func (g Guard) Validate() error {
	if !guardKinds[g.Kind] {
		return fmt.Errorf("unknown guard kind %q", g.Kind)
	}
	switch g.Kind {
	case GuardEqualsAny, GuardContainsAny:
		if len(g.Params) == 0 {
			return fmt.Errorf("guard %q requires at least one parameter", g.Kind)
		}
	case GuardStatusIs:
		if len(g.Params) != 1 {
			return fmt.Errorf("guard %q requires exactly one parameter", g.Kind)
		}
	}
	return nil
}

// Match evaluates the guard. Unknown kinds never match.
func (g Guard) Match(state *domain.ConversationState, message string) bool {
	switch g.Kind {
	case GuardAlways:
		return true
	case GuardEmpty:
		return strings.TrimSpace(message) == ""
	case GuardNotEmpty:
		return strings.TrimSpace(message) != ""
	case GuardEqualsAny:
		norm := Normalize(message)
		for _, p := range g.Params {
			if norm == Normalize(p) {
				return true
			}
		}
		return false
	case GuardContainsAny:
		_, ok := FirstKeyword(message, g.Params)
		return ok
	case GuardNoProgress:
		return state.Pending.Empty()
	case GuardStatusIs:
		return len(g.Params) == 1 && string(state.Status) == g.Params[0]
	default:
		return false
	}
}

func (g Guard) String() string {
	if len(g.Params) == 0 {
		return string(g.Kind)
	}
	return fmt.Sprintf("%s(%s)", g.Kind, strings.Join(g.Params, ","))
}

// Normalize lower-cases and trims a message, dropping trailing punctuation,
// so "Hello!" compares equal to "hello".
func Normalize(message string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(message)), "!.?, ")
}

// FirstKeyword returns the first entry of vocabulary (in declaration order) that occurs
// in message as a case-insensitive substring.
func FirstKeyword(message string, vocabulary []string) (string, bool) {
	lower := strings.ToLower(message)
	for _, word := range vocabulary {
		w := strings.ToLower(strings.TrimSpace(word))
		if w != "" && strings.Contains(lower, w) {
			return word, true
		}
	}
	return "", false
}
