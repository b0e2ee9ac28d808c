package ports

import "context"

// Inventory is the external asset-inventory capability queried by dialogue nodes.
// Both calls are read-only. Callers treat any error as "no data".
type Inventory interface {
	// CheckAvailability reports whether the asset type can currently be requested.
	CheckAvailability(ctx context.Context, assetType string) (bool, error)

	// GetConfigurations returns the configuration descriptors for the asset type,
	// in the order they should be offered to the user.
	GetConfigurations(ctx context.Context, assetType string) ([]string, error)
}
