package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/assetbot/internal/runtime"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInventory struct {
	available bool
	configs   []string
}

func (s stubInventory) CheckAvailability(ctx context.Context, assetType string) (bool, error) {
	return s.available, nil
}

func (s stubInventory) GetConfigurations(ctx context.Context, assetType string) ([]string, error) {
	return s.configs, nil
}

var laptops = stubInventory{available: true, configs: []string{"Dell i5 16GB", "MacBook Pro M1"}}

func newEngine(t *testing.T, inv stubInventory, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	d := nodes.DefaultDialogue()
	engine, err := runtime.NewEngine(
		graph.DefaultTable(d.Vocabulary, d.Greetings),
		nodes.Defaults(d, inv),
		append([]runtime.EngineOption{runtime.WithGreetings(d.Greetings...)}, opts...)...,
	)
	require.NoError(t, err)
	return engine
}

func lastAssistant(t *testing.T, s *domain.ConversationState) string {
	t.Helper()
	reply, ok := s.LastAssistant()
	require.True(t, ok)
	return reply
}

func TestRunTurn_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		inventory stubInventory
		setup     func(t *testing.T, s *domain.ConversationState)
		message   string
		check     func(t *testing.T, before, after *domain.ConversationState)
	}{
		{
			name:    "New Session Greeting",
			message: "hi",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				assert.Equal(t, domain.StageAwaitingAssetType, after.Stage())
				assert.Contains(t, lastAssistant(t, after), "What type of asset")
			},
		},
		{
			name:      "Available Asset",
			inventory: laptops,
			setup:     atStage(domain.StageAwaitingAssetType),
			message:   "I need a laptop",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				assert.Equal(t, domain.StageAwaitingConfiguration, after.Stage())
				asset, _ := after.Pending.AssetType()
				assert.Equal(t, "laptop", asset)
				reply := lastAssistant(t, after)
				assert.Less(t, strings.Index(reply, "Dell i5 16GB"), strings.Index(reply, "MacBook Pro M1"))
				assert.GreaterOrEqual(t, strings.Index(reply, "Dell i5 16GB"), 0)
			},
		},
		{
			name:      "Unavailable Asset",
			inventory: stubInventory{available: false},
			setup:     atStage(domain.StageAwaitingAssetType),
			message:   "I need a laptop",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				assert.Equal(t, domain.StageAwaitingAssetType, after.Stage())
				assert.Contains(t, lastAssistant(t, after), "apologize")
				assert.Equal(t, before.Pending, after.Pending)
			},
		},
		{
			name: "Configuration",
			setup: func(t *testing.T, s *domain.ConversationState) {
				require.NoError(t, s.Pending.SetAssetType("laptop"))
				require.NoError(t, s.SetStage(domain.StageAwaitingConfiguration))
			},
			message: "MacBook Pro M1",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				config, _ := after.Pending.Configuration()
				assert.Equal(t, "MacBook Pro M1", config)
				assert.Equal(t, domain.StageAwaitingReason, after.Stage())
			},
		},
		{
			name: "Reason Completes Request",
			setup: func(t *testing.T, s *domain.ConversationState) {
				require.NoError(t, s.Pending.SetAssetType("laptop"))
				require.NoError(t, s.Pending.SetConfiguration("MacBook Pro M1"))
				require.NoError(t, s.SetStage(domain.StageAwaitingReason))
			},
			message: "my laptop broke",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				reason, _ := after.Pending.Reason()
				assert.Equal(t, "my laptop broke", reason)
				assert.Equal(t, domain.StageRequestCompleted, after.Stage())
				reply := lastAssistant(t, after)
				for _, want := range []string{"laptop", "MacBook Pro M1", "my laptop broke"} {
					assert.Contains(t, reply, want)
				}
			},
		},
		{
			name:      "Unrecognized Asset",
			inventory: laptops,
			setup:     atStage(domain.StageAwaitingAssetType),
			message:   "purple",
			check: func(t *testing.T, before, after *domain.ConversationState) {
				assert.Equal(t, domain.StageAwaitingAssetType, after.Stage())
				reply := lastAssistant(t, after)
				for _, asset := range nodes.DefaultDialogue().Vocabulary {
					assert.Contains(t, reply, asset)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(t, tt.inventory)
			state := domain.NewConversationState("emp-1", "")
			if tt.setup != nil {
				tt.setup(t, state)
			}
			before := state.Clone()

			after, res, err := engine.RunTurn(context.Background(), state, tt.message)
			require.NoError(t, err)
			assert.True(t, res.Handled)
			assert.Equal(t, before.Stage(), res.FromStage)
			assert.Equal(t, after.Stage(), res.ToStage)
			require.Len(t, after.History, len(before.History)+2)
			assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: tt.message}, after.History[len(before.History)])
			tt.check(t, before, after)
		})
	}
}

func atStage(stage domain.Stage) func(t *testing.T, s *domain.ConversationState) {
	return func(t *testing.T, s *domain.ConversationState) {
		require.NoError(t, s.SetStage(stage))
	}
}

func TestRunTurn_FullConversation(t *testing.T) {
	engine := newEngine(t, laptops)
	state := domain.NewConversationState("emp-1", "")

	script := []struct {
		message string
		stage   domain.Stage
	}{
		{"Hello", domain.StageAwaitingAssetType},
		{"a laptop please", domain.StageAwaitingConfiguration},
		{"Dell i5 16GB", domain.StageAwaitingReason},
		{"new hire", domain.StageRequestCompleted},
		{"no thanks", domain.StageRequestCompleted},
	}

	var prev []domain.Turn
	for _, step := range script {
		var err error
		state, _, err = engine.RunTurn(context.Background(), state, step.message)
		require.NoError(t, err)
		assert.Equal(t, step.stage, state.Stage(), "after %q", step.message)

		require.Greater(t, len(state.History), len(prev))
		assert.Equal(t, prev, state.History[:len(prev)], "history is append-only")
		prev = append([]domain.Turn(nil), state.History...)
	}
	assert.Equal(t, domain.StatusClosed, state.Status)

	// A greeting reopens a closed session.
	state, _, err := engine.RunTurn(context.Background(), state, "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, state.Status)
	assert.Equal(t, domain.StageAwaitingAssetType, state.Stage())
}

func TestRunTurn_GreetingOverride(t *testing.T) {
	engine := newEngine(t, laptops)

	t.Run("Nothing Collected", func(t *testing.T) {
		state := domain.NewConversationState("emp-1", "")
		require.NoError(t, state.SetStage(domain.StageAwaitingReason))

		_, res, err := engine.RunTurn(context.Background(), state, "Good morning!")
		require.NoError(t, err)
		assert.Equal(t, graph.NodeGreeting, res.NodeID)
		assert.Equal(t, domain.StageAwaitingAssetType, state.Stage())
	})

	t.Run("Request In Progress", func(t *testing.T) {
		state := domain.NewConversationState("emp-1", "")
		require.NoError(t, state.Pending.SetAssetType("laptop"))
		require.NoError(t, state.Pending.SetConfiguration("Dell i5 16GB"))
		require.NoError(t, state.SetStage(domain.StageAwaitingReason))

		_, res, err := engine.RunTurn(context.Background(), state, "hi")
		require.NoError(t, err)
		assert.Equal(t, graph.NodeReason, res.NodeID)
		reason, _ := state.Pending.Reason()
		assert.Equal(t, "hi", reason)
	})
}

func TestRunTurn_NoEdgeMatches(t *testing.T) {
	table := graph.NewTable().
		AddEdge(domain.StageAwaitingAssetType, graph.NodeAssetType, graph.NotEmpty())
	engine, err := runtime.NewEngine(table, nodes.Defaults(nodes.DefaultDialogue(), laptops))
	require.NoError(t, err)

	state := domain.NewConversationState("emp-1", "")
	require.NoError(t, state.SetStage(domain.StageAwaitingAssetType))

	after, res, err := engine.RunTurn(context.Background(), state, "   ")
	require.NoError(t, err)
	assert.False(t, res.Handled)
	assert.Empty(t, res.NodeID)
	assert.Equal(t, domain.StageAwaitingAssetType, after.Stage())
	assert.Empty(t, after.History)
}

func TestRunTurn_StageFallback(t *testing.T) {
	// Only the initial stage has edges; everything else falls back to its bound node.
	table := graph.NewTable().AddEdge(domain.StageInitial, graph.NodeGreeting, graph.Always())
	engine, err := runtime.NewEngine(table, nodes.Defaults(nodes.DefaultDialogue(), laptops))
	require.NoError(t, err)

	state := domain.NewConversationState("emp-1", "")
	require.NoError(t, state.SetStage(domain.StageAwaitingAssetType))

	_, res, err := engine.RunTurn(context.Background(), state, "keyboard")
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.Equal(t, graph.NodeAssetType, res.NodeID)
	assert.Equal(t, domain.StageAwaitingConfiguration, state.Stage())
}

func TestRunTurn_LifecycleHooks(t *testing.T) {
	var entered, left []*domain.NodeEvent
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) { entered = append(entered, e) },
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) { left = append(left, e) },
	}
	engine := newEngine(t, laptops, runtime.WithLifecycleHooks(hooks))

	state := domain.NewConversationState("emp-7", "")
	_, _, err := engine.RunTurn(context.Background(), state, "hi")
	require.NoError(t, err)

	require.Len(t, entered, 1)
	require.Len(t, left, 1)
	assert.Equal(t, "greeting", entered[0].NodeID)
	assert.Equal(t, "emp-7", entered[0].SessionKey)
	assert.Equal(t, domain.EventNodeEnter, entered[0].Type)
	assert.Equal(t, domain.StageInitial, left[0].FromStage)
	assert.Equal(t, domain.StageAwaitingAssetType, left[0].ToStage)
}

func TestRunTurn_InvalidStageFromNode(t *testing.T) {
	set := nodes.Defaults(nodes.DefaultDialogue(), laptops)
	set[graph.NodeAssetType] = nodes.NodeFunc(func(ctx context.Context, s *domain.ConversationState, message string) error {
		return s.SetStage("handle_unavailable")
	})
	d := nodes.DefaultDialogue()
	engine, err := runtime.NewEngine(graph.DefaultTable(d.Vocabulary, d.Greetings), set)
	require.NoError(t, err)

	state := domain.NewConversationState("emp-1", "")
	require.NoError(t, state.SetStage(domain.StageAwaitingAssetType))

	_, res, err := engine.RunTurn(context.Background(), state, "laptop")
	var stageErr *domain.InvalidStageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "handle_unavailable", stageErr.Value)
	assert.False(t, res.Handled)
	assert.Equal(t, domain.StageAwaitingAssetType, state.Stage())
	assert.Empty(t, state.History)
}

func TestRunTurn_CancelledContext(t *testing.T) {
	engine := newEngine(t, laptops)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := domain.NewConversationState("emp-1", "")
	_, _, err := engine.RunTurn(ctx, state, "hi")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, state.History)
	assert.Equal(t, domain.StageInitial, state.Stage())
}

func TestRunTurn_OversizedInputIsUnclassified(t *testing.T) {
	engine := newEngine(t, laptops, runtime.WithMaxInputSize(16))
	state := domain.NewConversationState("emp-1", "")
	require.NoError(t, state.SetStage(domain.StageAwaitingAssetType))

	_, res, err := engine.RunTurn(context.Background(), state, "I need a laptop for the new office downstairs")
	require.NoError(t, err)
	assert.Equal(t, graph.NodeInvalid, res.NodeID)
	require.Len(t, state.History, 1, "rejected input is not recorded")
	assert.Equal(t, domain.RoleAssistant, state.History[0].Role)
}

func TestNewEngine_RejectsUnknownTargets(t *testing.T) {
	table := graph.NewTable().AddEdge(domain.StageInitial, "welcome", graph.Always())
	_, err := runtime.NewEngine(table, nodes.Defaults(nodes.DefaultDialogue(), laptops))
	assert.ErrorContains(t, err, `unknown target node "welcome"`)
}

func TestNewEngine_RejectsEmptyNodeSet(t *testing.T) {
	d := nodes.DefaultDialogue()
	table := graph.DefaultTable(d.Vocabulary, d.Greetings)

	_, err := runtime.NewEngine(table, nodes.Set{})
	assert.ErrorContains(t, err, "node set is empty")

	_, err = runtime.NewEngine(table, nil)
	assert.ErrorContains(t, err, "node set is empty")
}
