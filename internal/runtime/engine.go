package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/assetbot/internal/input"
	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
)

// Engine drives one conversation turn at a time over a transition table.
// It holds no per-session data; callers serialize turns of the same session.
type Engine struct {
	table      *graph.Table
	nodes      nodes.Set
	stageNodes map[domain.Stage]graph.NodeID
	greeting   graph.Guard
	sanitizer  input.Sanitizer
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithGreetings sets the phrases that restart a request cycle from any stage
// while nothing has been collected yet.
func WithGreetings(greetings ...string) EngineOption {
	return func(e *Engine) {
		e.greeting = graph.EqualsAny(greetings...)
	}
}

// WithStageNodes overrides the node run for stages that have no edges.
func WithStageNodes(m map[domain.Stage]graph.NodeID) EngineOption {
	return func(e *Engine) {
		e.stageNodes = m
	}
}

// WithMaxInputSize sets the byte limit for incoming messages.
func WithMaxInputSize(n int) EngineOption {
	return func(e *Engine) {
		e.sanitizer.MaxSize = n
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// DefaultStageNodes binds every stage to the node that normally handles it.
func DefaultStageNodes() map[domain.Stage]graph.NodeID {
	return map[domain.Stage]graph.NodeID{
		domain.StageInitial:               graph.NodeGreeting,
		domain.StageAwaitingAssetType:     graph.NodeAssetType,
		domain.StageAwaitingConfiguration: graph.NodeConfiguration,
		domain.StageAwaitingReason:        graph.NodeReason,
		domain.StageRequestCompleted:      graph.NodeCompletion,
		domain.StageInvalid:               graph.NodeInvalid,
	}
}

// NewEngine validates the table and fallback bindings against the node set.
func NewEngine(table *graph.Table, set nodes.Set, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		table:      table,
		nodes:      set,
		stageNodes: DefaultStageNodes(),
		greeting:   graph.EqualsAny(nodes.DefaultDialogue().Greetings...),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if table == nil {
		return nil, fmt.Errorf("transition table is required")
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("node set is empty")
	}
	if err := table.Validate(set.IDs()...); err != nil {
		return nil, fmt.Errorf("invalid transition table: %w", err)
	}
	for stage, id := range e.stageNodes {
		if _, ok := set[id]; !ok && !table.HasEdges(stage) {
			return nil, fmt.Errorf("stage %s falls back to unknown node %q", stage, id)
		}
	}
	return e, nil
}

// TurnResult describes what a turn did.
type TurnResult struct {
	NodeID    graph.NodeID
	Handled   bool
	FromStage domain.Stage
	ToStage   domain.Stage
}

// RunTurn processes one user message against state, mutating it in place.
//
// At most one node runs. When the current stage has edges but none accept the message,
// the state is returned unchanged with Handled set to false.
// Errors are limited to a cancelled context, observed before any node runs, and a node
// producing an invalid stage (*domain.InvalidStageError), in which case the turn leaves
// no trace: the user message is dropped from the history along with the node's changes.
func (e *Engine) RunTurn(ctx context.Context, state *domain.ConversationState, message string) (*domain.ConversationState, TurnResult, error) {
	from := state.Stage()
	result := TurnResult{FromStage: from, ToStage: from}
	if err := ctx.Err(); err != nil {
		return state, result, err
	}

	msg := e.clean(state.SessionKey, message)
	turns := len(state.History)
	if msg != "" {
		state.AppendUser(msg)
	}

	id, ok := e.route(state, msg)
	if !ok {
		e.logger.Debug("No edge matched",
			"session_key", state.SessionKey,
			"stage", from,
		)
		return state, result, nil
	}
	node := e.nodes[id]

	var before *domain.ConversationState
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		before = state.Clone()
	}

	ctx = domain.ContextWithSessionKey(ctx, state.SessionKey)
	e.emitNodeEnter(ctx, state.SessionKey, id, from)
	err := node.Process(ctx, state, msg)
	to := state.Stage()
	e.emitNodeLeave(ctx, state.SessionKey, id, from, to)

	result.NodeID = id
	if err != nil {
		state.History = state.History[:turns]
		e.logger.Error("Node produced an invalid transition",
			"session_key", state.SessionKey,
			"node_id", id,
			"err", err,
		)
		return state, result, fmt.Errorf("node %s: %w", id, err)
	}

	result.Handled = true
	result.ToStage = to

	if before != nil {
		attrs := []any{"session_key", state.SessionKey, "node_id", id, "from", from, "to", to}
		if diff := domain.Diff(before, state); diff != nil {
			if diff.Status != nil {
				attrs = append(attrs, "status", *diff.Status)
			}
			if diff.Pending != nil {
				attrs = append(attrs, "pending_changed", true)
			}
		}
		e.logger.Debug("Turn processed", attrs...)
	}
	return state, result, nil
}

// route picks the node for this turn: greeting override first, then the table,
// then the stage fallback for stages the table does not mention.
func (e *Engine) route(state *domain.ConversationState, msg string) (graph.NodeID, bool) {
	if msg != "" && state.Pending.Empty() && e.greeting.Match(state, msg) {
		if _, ok := e.nodes[graph.NodeGreeting]; ok {
			return graph.NodeGreeting, true
		}
	}

	stage := state.Stage()
	if e.table.HasEdges(stage) {
		return e.table.Resolve(state, msg)
	}

	id, ok := e.stageNodes[stage]
	if !ok {
		return "", false
	}
	_, ok = e.nodes[id]
	return id, ok
}

// clean sanitizes and trims the message. Rejected input continues as an empty message,
// which the flow answers with a re-prompt.
func (e *Engine) clean(sessionKey, message string) string {
	msg, err := e.sanitizer.Clean(message)
	if err != nil {
		e.logger.Warn("Discarding unacceptable input",
			"session_key", sessionKey,
			"size", len(message),
			"err", err,
		)
		return ""
	}
	return strings.TrimSpace(msg)
}

func (e *Engine) emitNodeEnter(ctx context.Context, sessionKey string, id graph.NodeID, from domain.Stage) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp:  e.now(),
			Type:       domain.EventNodeEnter,
			SessionKey: sessionKey,
		},
		NodeID:    string(id),
		FromStage: from,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, sessionKey string, id graph.NodeID, from, to domain.Stage) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp:  e.now(),
			Type:       domain.EventNodeLeave,
			SessionKey: sessionKey,
		},
		NodeID:    string(id),
		FromStage: from,
		ToStage:   to,
	})
}
