package inventory

import (
	"context"
	"time"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/ports"
)

// Instrumented reports every inventory call through OnInventoryLookup, timed and
// tagged with the session key carried by the context.
type Instrumented struct {
	next  ports.Inventory
	hooks domain.LifecycleHooks
	now   func() time.Time
}

// Instrument wraps inv. Without an OnInventoryLookup hook it returns inv unchanged.
func Instrument(inv ports.Inventory, hooks domain.LifecycleHooks) ports.Inventory {
	if inv == nil || hooks.OnInventoryLookup == nil {
		return inv
	}
	return &Instrumented{next: inv, hooks: hooks, now: time.Now}
}

func (i *Instrumented) CheckAvailability(ctx context.Context, assetType string) (bool, error) {
	start := i.now()
	available, err := i.next.CheckAvailability(ctx, assetType)
	i.emit(ctx, assetType, available, 0, i.now().Sub(start), err != nil)
	return available, err
}

func (i *Instrumented) GetConfigurations(ctx context.Context, assetType string) ([]string, error) {
	start := i.now()
	configs, err := i.next.GetConfigurations(ctx, assetType)
	i.emit(ctx, assetType, err == nil, len(configs), i.now().Sub(start), err != nil)
	return configs, err
}

func (i *Instrumented) emit(ctx context.Context, assetType string, available bool, options int, d time.Duration, isErr bool) {
	i.hooks.OnInventoryLookup(ctx, &domain.InventoryEvent{
		EventBase: domain.EventBase{
			Timestamp:  i.now(),
			Type:       domain.EventInventoryLookup,
			SessionKey: domain.SessionKeyFromContext(ctx),
		},
		AssetType: assetType,
		Available: available,
		Options:   options,
		Duration:  d,
		IsError:   isErr,
	})
}
