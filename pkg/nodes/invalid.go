package nodes

import (
	"context"

	"github.com/aretw0/assetbot/pkg/domain"
)

// InvalidQuery answers input no other edge accepted. The stage is left as is.
type InvalidQuery struct {
	Dialogue Dialogue
}

func (n *InvalidQuery) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	return commit(state, state.Stage(), n.Dialogue.render(n.Dialogue.Prompts.Invalid, vars{}), nil)
}
