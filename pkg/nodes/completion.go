package nodes

import (
	"context"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
)

// Completion ends a request cycle. A farewell closes the session; anything else
// clears the pending request and asks for the next asset type.
type Completion struct {
	Dialogue Dialogue
}

func (n *Completion) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	d := n.Dialogue
	_, mentionsAsset := graph.FirstKeyword(message, d.Vocabulary)

	if matchesAny(message, d.Farewells) && !mentionsAsset {
		reply := d.render(d.Prompts.Farewell, vars{})
		if err := commit(state, domain.StageRequestCompleted, reply, &domain.PendingRequest{}); err != nil {
			return err
		}
		state.Status = domain.StatusClosed
		return nil
	}

	if err := commit(state, domain.StageAwaitingAssetType, d.render(d.Prompts.Continue, vars{}), &domain.PendingRequest{}); err != nil {
		return err
	}
	// A new cycle reopens a session closed by an earlier farewell.
	state.Status = domain.StatusActive
	return nil
}
