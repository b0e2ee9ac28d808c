package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "assetbot:session:", cfg.RedisPrefix)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.True(t, cfg.RedisLock)
	assert.Equal(t, 5*time.Second, cfg.InventoryTimeout)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Empty(t, cfg.SQLitePath)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ASSETBOT_LOG_LEVEL":         "debug",
		"ASSETBOT_STORE":             " Redis ",
		"ASSETBOT_REDIS_DB":          "3",
		"ASSETBOT_REDIS_TTL":         "90m",
		"ASSETBOT_INVENTORY_URL":     " http://inventory.local ",
		"ASSETBOT_INVENTORY_TIMEOUT": "750ms",
		"ASSETBOT_MAX_INPUT_SIZE":    "512",
		"STORE":                      "ignored without prefix",
	})
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.RedisTTL)
	assert.Equal(t, "http://inventory.local", cfg.InventoryURL)
	assert.Equal(t, 750*time.Millisecond, cfg.InventoryTimeout)
	assert.Equal(t, 512, cfg.MaxInputSize)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"Unknown Store":     {"ASSETBOT_STORE": "postgres"},
		"Unknown Level":     {"ASSETBOT_LOG_LEVEL": "chatty"},
		"Bad Duration":      {"ASSETBOT_REDIS_TTL": "soon"},
		"Non Positive Size": {"ASSETBOT_MAX_INPUT_SIZE": "0"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(environ)
			assert.Error(t, err)
		})
	}
}

func TestParseDialogue_Empty(t *testing.T) {
	d, err := ParseDialogue(nil)
	require.NoError(t, err)

	assert.Equal(t, nodes.DefaultDialogue(), d.Dialogue)
	assert.Nil(t, d.Inventory)
	assert.Equal(t, graph.DefaultTable(d.Dialogue.Vocabulary, d.Dialogue.Greetings).Definition(), d.Table.Definition())
}

func TestParseDialogue_Full(t *testing.T) {
	data := []byte(`
vocabulary: [headset, laptop]
greetings: [howdy]
prompts:
  greeting: "Howdy! Pick one: {asset_types}"
inventory:
  headset:
    available: true
    configurations: [Wired, Bluetooth]
flow:
  initial:
    - target: greeting
      guard: {kind: always}
  awaiting_asset_type:
    - target: asset_type
      guard: {kind: contains_any, params: [headset, laptop]}
    - target: invalid
      guard: {kind: always}
`)
	d, err := ParseDialogue(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"headset", "laptop"}, d.Dialogue.Vocabulary)
	assert.Equal(t, []string{"howdy"}, d.Dialogue.Greetings)
	assert.Equal(t, "Howdy! Pick one: {asset_types}", d.Dialogue.Prompts.Greeting)
	assert.Equal(t, nodes.DefaultDialogue().Prompts.Summary, d.Dialogue.Prompts.Summary, "unset prompts keep their defaults")

	require.Contains(t, d.Inventory, "headset")
	assert.Equal(t, []string{"Wired", "Bluetooth"}, d.Inventory["headset"].Configurations)

	edges := d.Table.Edges(domain.StageAwaitingAssetType)
	require.Len(t, edges, 2)
	assert.Equal(t, graph.NodeAssetType, edges[0].Target)
	assert.Equal(t, graph.ContainsAny("headset", "laptop"), edges[0].Guard)
	assert.False(t, d.Table.HasEdges(domain.StageAwaitingReason))
}

func TestParseDialogue_Rejects(t *testing.T) {
	tests := map[string]string{
		"Unknown Key":    "vocabluary: [laptop]",
		"Unknown Stage":  "flow:\n  handle_unavailable:\n    - {target: invalid, guard: {kind: always}}",
		"Unknown Node":   "flow:\n  initial:\n    - {target: welcome, guard: {kind: always}}",
		"Unknown Guard":  "flow:\n  initial:\n    - {target: greeting, guard: {kind: sometimes}}",
		"Malformed YAML": "vocabulary: [laptop",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDialogue([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadDialogue_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialogue.yaml")
	require.NoError(t, os.WriteFile(path, []byte("farewells: [later]\n"), 0o644))

	d, err := LoadDialogue(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"later"}, d.Dialogue.Farewells)

	_, err = LoadDialogue(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
