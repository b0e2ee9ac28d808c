package nodes

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/ports"
)

// AssetTypeCollector recognizes the requested asset type and offers its configurations.
//
// The first vocabulary entry found in the message wins. If the inventory reports the
// asset available, the type is recorded and the session moves on to configuration.
// Unavailable assets, inventory failures and unrecognized messages keep the session
// waiting for an asset type.
type AssetTypeCollector struct {
	Dialogue  Dialogue
	Inventory ports.Inventory
	Logger    *slog.Logger

	// Timeout bounds each inventory call; zero leaves it to the caller's context.
	Timeout time.Duration
}

func (n *AssetTypeCollector) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	d := n.Dialogue
	assetType, ok := graph.FirstKeyword(message, d.Vocabulary)
	if !ok {
		reply := d.render(d.Prompts.AssetUnrecognized, vars{})
		return commit(state, domain.StageAwaitingAssetType, reply, nil)
	}

	available, configs := n.lookup(ctx, state.SessionKey, assetType)
	if !available {
		reply := d.render(d.Prompts.AssetUnavailable, vars{AssetType: assetType})
		return commit(state, domain.StageAwaitingAssetType, reply, nil)
	}

	pending := state.Pending
	if err := pending.SetAssetType(assetType); err != nil {
		return err
	}

	prompt := d.Prompts.AssetAvailable
	if len(configs) == 0 {
		prompt = d.Prompts.NoConfigurations
	}
	reply := d.render(prompt, vars{AssetType: assetType, Options: configs})
	return commit(state, domain.StageAwaitingConfiguration, reply, &pending)
}

// lookup queries the inventory. Any failure is reported as unavailable.
func (n *AssetTypeCollector) lookup(ctx context.Context, sessionKey, assetType string) (bool, []string) {
	if n.Inventory == nil {
		return false, nil
	}
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	available, err := n.Inventory.CheckAvailability(ctx, assetType)
	if err != nil {
		n.logger().Warn("Inventory availability check failed",
			"session_key", sessionKey,
			"asset_type", assetType,
			"err", err,
		)
		return false, nil
	}
	if !available {
		return false, nil
	}

	configs, err := n.Inventory.GetConfigurations(ctx, assetType)
	if err != nil {
		n.logger().Warn("Inventory configuration lookup failed",
			"session_key", sessionKey,
			"asset_type", assetType,
			"err", err,
		)
		return false, nil
	}
	return true, configs
}

func (n *AssetTypeCollector) logger() *slog.Logger {
	if n.Logger == nil {
		return logging.NewNop()
	}
	return n.Logger
}
