package nodes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory answers from fixed tables and counts calls.
type fakeInventory struct {
	available map[string]bool
	configs   map[string][]string
	err       error
	calls     int
}

func (f *fakeInventory) CheckAvailability(ctx context.Context, assetType string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.available[assetType], nil
}

func (f *fakeInventory) GetConfigurations(ctx context.Context, assetType string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.configs[assetType], nil
}

func laptopInventory(available bool) *fakeInventory {
	return &fakeInventory{
		available: map[string]bool{"laptop": available},
		configs:   map[string][]string{"laptop": {"Dell i5 16GB", "MacBook Pro M1"}},
	}
}

func stateAt(t *testing.T, stage domain.Stage) *domain.ConversationState {
	t.Helper()
	s := domain.NewConversationState("emp-1", "emp-1@example.com")
	require.NoError(t, s.SetStage(stage))
	return s
}

func lastReply(t *testing.T, s *domain.ConversationState) string {
	t.Helper()
	reply, ok := s.LastAssistant()
	require.True(t, ok, "expected an assistant turn")
	return reply
}

func TestGreeting(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), nil)
	s := domain.NewConversationState("emp-1", "")

	require.NoError(t, set[graph.NodeGreeting].Process(context.Background(), s, "hi"))

	assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
	assert.Contains(t, lastReply(t, s), "What type of asset are you looking for?")
	assert.Contains(t, lastReply(t, s), "laptop, monitor, keyboard, mouse, desktop")
	assert.Len(t, s.History, 1)
}

func TestAssetTypeCollector_Available(t *testing.T) {
	inv := laptopInventory(true)
	set := nodes.Defaults(nodes.DefaultDialogue(), inv)
	s := stateAt(t, domain.StageAwaitingAssetType)

	require.NoError(t, set[graph.NodeAssetType].Process(context.Background(), s, "I need a laptop"))

	assert.Equal(t, domain.StageAwaitingConfiguration, s.Stage())
	asset, ok := s.Pending.AssetType()
	assert.True(t, ok)
	assert.Equal(t, "laptop", asset)

	reply := lastReply(t, s)
	assert.Contains(t, reply, "- Dell i5 16GB\n- MacBook Pro M1")
	assert.Less(t, strings.Index(reply, "Dell i5 16GB"), strings.Index(reply, "MacBook Pro M1"))
}

func TestAssetTypeCollector_Unavailable(t *testing.T) {
	inv := laptopInventory(false)
	set := nodes.Defaults(nodes.DefaultDialogue(), inv)
	s := stateAt(t, domain.StageAwaitingAssetType)
	before := s.Pending

	require.NoError(t, set[graph.NodeAssetType].Process(context.Background(), s, "I need a laptop"))

	assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
	assert.Contains(t, lastReply(t, s), "I apologize")
	assert.Equal(t, before, s.Pending)
}

func TestAssetTypeCollector_InventoryFailureIsUnavailable(t *testing.T) {
	inv := &fakeInventory{err: errors.New("connection refused")}
	set := nodes.Defaults(nodes.DefaultDialogue(), inv)
	s := stateAt(t, domain.StageAwaitingAssetType)

	require.NoError(t, set[graph.NodeAssetType].Process(context.Background(), s, "laptop"))

	assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
	reply := lastReply(t, s)
	assert.Contains(t, reply, "I apologize")
	assert.NotContains(t, reply, "connection refused", "transport errors never reach the user")
}

func TestAssetTypeCollector_Unrecognized(t *testing.T) {
	inv := laptopInventory(true)
	set := nodes.Defaults(nodes.DefaultDialogue(), inv)
	s := stateAt(t, domain.StageAwaitingAssetType)

	require.NoError(t, set[graph.NodeAssetType].Process(context.Background(), s, "purple"))

	assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
	assert.Contains(t, lastReply(t, s), "laptop, monitor, keyboard, mouse, desktop")
	assert.Zero(t, inv.calls, "no inventory call without a recognized keyword")
}

func TestAssetTypeCollector_NoConfigurations(t *testing.T) {
	inv := &fakeInventory{available: map[string]bool{"desktop": true}}
	set := nodes.Defaults(nodes.DefaultDialogue(), inv)
	s := stateAt(t, domain.StageAwaitingAssetType)

	require.NoError(t, set[graph.NodeAssetType].Process(context.Background(), s, "Desktop"))

	assert.Equal(t, domain.StageAwaitingConfiguration, s.Stage())
	assert.Contains(t, lastReply(t, s), "no predefined configurations")
}

func TestConfigurationCollector(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), nil)
	s := stateAt(t, domain.StageAwaitingConfiguration)
	require.NoError(t, s.Pending.SetAssetType("laptop"))

	require.NoError(t, set[graph.NodeConfiguration].Process(context.Background(), s, "MacBook Pro M1"))

	config, ok := s.Pending.Configuration()
	assert.True(t, ok)
	assert.Equal(t, "MacBook Pro M1", config)
	assert.Equal(t, domain.StageAwaitingReason, s.Stage())
	assert.Contains(t, lastReply(t, s), "reason")

	t.Run("Without Asset Type", func(t *testing.T) {
		s := stateAt(t, domain.StageAwaitingConfiguration)
		require.NoError(t, set[graph.NodeConfiguration].Process(context.Background(), s, "MacBook Pro M1"))
		assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
		_, ok := s.Pending.Configuration()
		assert.False(t, ok)
	})
}

func TestReasonCollector(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), nil)
	s := stateAt(t, domain.StageAwaitingReason)
	require.NoError(t, s.Pending.SetAssetType("laptop"))
	require.NoError(t, s.Pending.SetConfiguration("MacBook Pro M1"))

	require.NoError(t, set[graph.NodeReason].Process(context.Background(), s, "my laptop broke"))

	reason, _ := s.Pending.Reason()
	assert.Equal(t, "my laptop broke", reason)
	assert.Equal(t, domain.StageRequestCompleted, s.Stage())

	reply := lastReply(t, s)
	assert.Contains(t, reply, "laptop")
	assert.Contains(t, reply, "MacBook Pro M1")
	assert.Contains(t, reply, "my laptop broke")
}

func TestCompletion(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), nil)
	completed := func(t *testing.T) *domain.ConversationState {
		s := stateAt(t, domain.StageRequestCompleted)
		require.NoError(t, s.Pending.SetAssetType("mouse"))
		require.NoError(t, s.Pending.SetConfiguration("Wireless"))
		require.NoError(t, s.Pending.SetReason("new hire"))
		return s
	}

	t.Run("Continue Cycle", func(t *testing.T) {
		s := completed(t)
		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "yes please"))
		assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
		assert.True(t, s.Pending.Empty())
		assert.Equal(t, domain.StatusActive, s.Status)
	})

	t.Run("Farewell Closes", func(t *testing.T) {
		s := completed(t)
		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "No, thanks!"))
		assert.Equal(t, domain.StageRequestCompleted, s.Stage())
		assert.Equal(t, domain.StatusClosed, s.Status)
	})

	t.Run("Continue After Farewell Reopens", func(t *testing.T) {
		s := completed(t)
		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "bye"))
		require.Equal(t, domain.StatusClosed, s.Status)

		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "actually one more thing"))
		assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
		assert.Equal(t, domain.StatusActive, s.Status)
	})

	t.Run("Farewell Word Inside Another Word", func(t *testing.T) {
		s := completed(t)
		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "I know what I want"))
		assert.Equal(t, domain.StatusActive, s.Status)
	})

	t.Run("Asset Mention Wins Over Farewell", func(t *testing.T) {
		s := completed(t)
		require.NoError(t, set[graph.NodeCompletion].Process(context.Background(), s, "thanks, I also need a monitor"))
		assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
		assert.Equal(t, domain.StatusActive, s.Status)
	})
}

func TestInvalidQuery_KeepsStage(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), nil)
	for _, stage := range domain.Stages {
		s := stateAt(t, stage)
		require.NoError(t, set[graph.NodeInvalid].Process(context.Background(), s, ""))
		assert.Equal(t, stage, s.Stage())
		assert.Contains(t, lastReply(t, s), "asset-related")
	}
}

func TestEveryNodeAppendsExactlyOneTurn(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), laptopInventory(true))
	for id, node := range set {
		s := stateAt(t, domain.StageAwaitingAssetType)
		require.NoError(t, node.Process(context.Background(), s, "laptop"), "node %s", id)
		assert.Len(t, s.History, 1, "node %s", id)
	}
}

func TestDialogue_CustomWording(t *testing.T) {
	d := nodes.Dialogue{
		Vocabulary: []string{"headset", "laptop"},
		Prompts:    nodes.Prompts{Greeting: "Hey! Pick one of: {asset_types}"},
	}
	set := nodes.Defaults(d, nil)
	s := domain.NewConversationState("emp-1", "")

	require.NoError(t, set[graph.NodeGreeting].Process(context.Background(), s, "hi"))
	assert.Equal(t, "Hey! Pick one of: headset, laptop", lastReply(t, s))

	filled := d.WithDefaults()
	assert.Equal(t, nodes.DefaultDialogue().Prompts.Summary, filled.Prompts.Summary)
	assert.Equal(t, []string{"headset", "laptop"}, filled.Vocabulary)
}

func TestNodeFunc_InvalidStageLeavesStateUntouched(t *testing.T) {
	broken := nodes.NodeFunc(func(ctx context.Context, s *domain.ConversationState, message string) error {
		return s.SetStage("handle_unavailable")
	})
	s := stateAt(t, domain.StageAwaitingAssetType)

	err := broken.Process(context.Background(), s, "laptop")
	var stageErr *domain.InvalidStageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageAwaitingAssetType, s.Stage())
	assert.Empty(t, s.History)
}
