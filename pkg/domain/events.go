package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter       EventType = "node_enter"
	EventNodeLeave       EventType = "node_leave"
	EventInventoryLookup EventType = "inventory_lookup"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	SessionKey string    `json:"session_key"`
}

// NodeEvent represents entry into or exit from a dialogue node.
type NodeEvent struct {
	EventBase
	NodeID    string `json:"node_id"`
	FromStage Stage  `json:"from_stage"`
	ToStage   Stage  `json:"to_stage,omitempty"`
}

// InventoryEvent represents one lookup against the inventory port.
type InventoryEvent struct {
	EventBase
	AssetType string        `json:"asset_type"`
	Available bool          `json:"available"`
	Options   int           `json:"options"`
	Duration  time.Duration `json:"duration"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter       func(context.Context, *NodeEvent)
	OnNodeLeave       func(context.Context, *NodeEvent)
	OnInventoryLookup func(context.Context, *InventoryEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:       chainNode(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave:       chainNode(h.OnNodeLeave, other.OnNodeLeave),
		OnInventoryLookup: chainInventory(h.OnInventoryLookup, other.OnInventoryLookup),
	}
}

func chainNode(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainInventory(a, b func(context.Context, *InventoryEvent)) func(context.Context, *InventoryEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *InventoryEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
