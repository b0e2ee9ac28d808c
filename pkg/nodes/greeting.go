package nodes

import (
	"context"

	"github.com/aretw0/assetbot/pkg/domain"
)

// Greeting opens (or reopens) a request cycle and asks for an asset type.
type Greeting struct {
	Dialogue Dialogue
}

func (n *Greeting) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	reply := n.Dialogue.render(n.Dialogue.Prompts.Greeting, vars{})
	if err := commit(state, domain.StageAwaitingAssetType, reply, &domain.PendingRequest{}); err != nil {
		return err
	}
	state.Status = domain.StatusActive
	return nil
}
