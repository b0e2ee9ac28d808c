package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/assetbot/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"session_key", e.SessionKey,
				"node_id", e.NodeID,
				"stage", e.FromStage,
			)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"session_key", e.SessionKey,
				"node_id", e.NodeID,
				"from", e.FromStage,
				"to", e.ToStage,
			)
		},
		OnInventoryLookup: func(ctx context.Context, e *domain.InventoryEvent) {
			logger.DebugContext(ctx, "inventory_lookup",
				"session_key", e.SessionKey,
				"asset_type", e.AssetType,
				"available", e.Available,
				"options", e.Options,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
	}
}
