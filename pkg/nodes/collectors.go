package nodes

import (
	"context"
	"strings"

	"github.com/aretw0/assetbot/pkg/domain"
)

// ConfigurationCollector records the whole message as the chosen configuration.
type ConfigurationCollector struct {
	Dialogue Dialogue
}

func (n *ConfigurationCollector) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	d := n.Dialogue
	assetType, ok := state.Pending.AssetType()
	if !ok {
		// Configuration without an asset type: start over at asset collection.
		return commit(state, domain.StageAwaitingAssetType, d.render(d.Prompts.AssetUnrecognized, vars{}), nil)
	}

	configuration := strings.TrimSpace(message)
	if configuration == "" {
		return commit(state, domain.StageAwaitingConfiguration, d.render(d.Prompts.AskConfiguration, vars{AssetType: assetType}), nil)
	}

	pending := state.Pending
	if err := pending.SetConfiguration(configuration); err != nil {
		return err
	}
	return commit(state, domain.StageAwaitingReason, d.render(d.Prompts.AskReason, vars{AssetType: assetType}), &pending)
}

// ReasonCollector records the reason and summarizes the completed request.
type ReasonCollector struct {
	Dialogue Dialogue
}

func (n *ReasonCollector) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	d := n.Dialogue
	assetType, hasAsset := state.Pending.AssetType()
	configuration, hasConfig := state.Pending.Configuration()
	switch {
	case !hasAsset:
		return commit(state, domain.StageAwaitingAssetType, d.render(d.Prompts.AssetUnrecognized, vars{}), nil)
	case !hasConfig:
		return commit(state, domain.StageAwaitingConfiguration, d.render(d.Prompts.AskConfiguration, vars{AssetType: assetType}), nil)
	}

	reason := strings.TrimSpace(message)
	if reason == "" {
		return commit(state, domain.StageAwaitingReason, d.render(d.Prompts.AskReason, vars{AssetType: assetType}), nil)
	}

	pending := state.Pending
	if err := pending.SetReason(reason); err != nil {
		return err
	}
	reply := d.render(d.Prompts.Summary, vars{
		AssetType:     assetType,
		Configuration: configuration,
		Reason:        reason,
	})
	return commit(state, domain.StageRequestCompleted, reply, &pending)
}
