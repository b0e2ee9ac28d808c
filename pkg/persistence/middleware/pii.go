package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultPIIPatterns match email addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s\-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks text matching the patterns in the
// transcript before it is stored. Masking is one-way: a reloaded session keeps the mask.
// The identity and pending request are left alone since they drive the request itself.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionKey string, state *domain.ConversationState) error {
	// Clone so the engine's in-memory state keeps the original text.
	masked := state.Clone()
	for i := range masked.History {
		for _, p := range m.patterns {
			masked.History[i].Content = p.ReplaceAllString(masked.History[i].Content, Mask)
		}
	}
	return m.next.Save(ctx, sessionKey, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionKey string) (*domain.ConversationState, error) {
	return m.next.Load(ctx, sessionKey)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionKey string) error {
	return m.next.Delete(ctx, sessionKey)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
