// Package inventory provides ports.Inventory implementations.
package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnknownAssetType is returned for asset types the inventory does not track.
var ErrUnknownAssetType = errors.New("unknown asset type")

// Item describes one asset type in a Static inventory.
type Item struct {
	Available      bool     `json:"available" yaml:"available" mapstructure:"available"`
	Configurations []string `json:"configurations" yaml:"configurations" mapstructure:"configurations"`
}

// Static is an in-memory inventory. Lookups are case-insensitive.
// Safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewStatic builds an inventory over items, keyed by asset type.
func NewStatic(items map[string]Item) *Static {
	s := &Static{items: make(map[string]Item, len(items))}
	for name, item := range items {
		s.Set(name, item)
	}
	return s
}

// DefaultItems is the stock on hand when nothing else is configured.
func DefaultItems() map[string]Item {
	return map[string]Item{
		"laptop":   {Available: true, Configurations: []string{"Dell i5 16GB", "MacBook Pro M1", "Lenovo ThinkPad"}},
		"monitor":  {Available: false, Configurations: []string{"24inch Dell", "27inch LG", "32inch Samsung"}},
		"keyboard": {Available: true, Configurations: []string{"Mechanical", "Wireless", "Standard"}},
		"mouse":    {Available: true, Configurations: []string{"Wireless", "Gaming", "Standard"}},
	}
}

// Set adds or replaces an asset type.
func (s *Static) Set(assetType string, item Item) {
	configs := make([]string, len(item.Configurations))
	copy(configs, item.Configurations)
	item.Configurations = configs

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[normalize(assetType)] = item
}

func (s *Static) CheckAvailability(ctx context.Context, assetType string) (bool, error) {
	item, err := s.get(assetType)
	if err != nil {
		return false, err
	}
	return item.Available, nil
}

// GetConfigurations returns a copy of the configured options, in order.
func (s *Static) GetConfigurations(ctx context.Context, assetType string) ([]string, error) {
	item, err := s.get(assetType)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(item.Configurations))
	copy(out, item.Configurations)
	return out, nil
}

func (s *Static) get(assetType string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[normalize(assetType)]
	if !ok {
		return Item{}, ErrUnknownAssetType
	}
	return item, nil
}

func normalize(assetType string) string {
	return strings.ToLower(strings.TrimSpace(assetType))
}
