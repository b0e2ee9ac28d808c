package ports

import (
	"context"

	"github.com/aretw0/assetbot/pkg/domain"
)

// StateStore defines the interface for persisting conversation state beyond process memory.
type StateStore interface {
	// Save persists the state for a given session key.
	Save(ctx context.Context, sessionKey string, state *domain.ConversationState) error

	// Load retrieves the state for a given session key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionKey string) (*domain.ConversationState, error)

	// Delete removes the state for a given session key.
	Delete(ctx context.Context, sessionKey string) error

	// List returns the keys of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
