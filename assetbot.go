package assetbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/assetbot/internal/input"
	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/internal/runtime"
	"github.com/aretw0/assetbot/pkg/adapters/inventory"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
	"github.com/aretw0/assetbot/pkg/ports"
	"github.com/aretw0/assetbot/pkg/session"
)

// Engine is the high-level entry point: it owns the sessions of a process and runs
// one dialogue turn per call.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	table    *graph.Table
	recorder ports.RequestRecorder
	logger   *slog.Logger

	dialogue         nodes.Dialogue
	inventory        ports.Inventory
	store            ports.StateStore
	locker           ports.DistributedLocker
	lockTTL          time.Duration
	hooks            domain.LifecycleHooks
	inventoryTimeout time.Duration
	maxInputSize     int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithInventory sets the inventory queried for availability and configurations.
// The default is a static inventory with inventory.DefaultItems.
func WithInventory(inv ports.Inventory) Option {
	return func(e *Engine) {
		e.inventory = inv
	}
}

// WithInventoryTimeout bounds each inventory call.
func WithInventoryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.inventoryTimeout = d
	}
}

// WithStore persists sessions beyond the process.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes turns of one session across processes sharing a store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithRecorder receives every completed request.
func WithRecorder(recorder ports.RequestRecorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithDialogue replaces vocabulary and wording. Empty fields keep their defaults.
func WithDialogue(d nodes.Dialogue) Option {
	return func(e *Engine) {
		e.dialogue = d
	}
}

// WithTable replaces the default transition table.
func WithTable(t *graph.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithMaxInputSize sets the byte limit for user messages.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInputSize = n
	}
}

// New builds an Engine. With no options it serves the default flow from memory
// against the built-in static inventory.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:       logging.NewNop(),
		maxInputSize: input.DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.dialogue = e.dialogue.WithDefaults()
	if e.table == nil {
		e.table = graph.DefaultTable(e.dialogue.Vocabulary, e.dialogue.Greetings)
	}
	if e.inventory == nil {
		e.inventory = inventory.NewStatic(inventory.DefaultItems())
	}

	set := nodes.Defaults(e.dialogue,
		inventory.Instrument(e.inventory, e.hooks),
		nodes.WithLogger(e.logger),
		nodes.WithLookupTimeout(e.inventoryTimeout),
	)

	rt, err := runtime.NewEngine(e.table, set,
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithGreetings(e.dialogue.Greetings...),
		runtime.WithMaxInputSize(e.maxInputSize),
	)
	if err != nil {
		return nil, err
	}
	e.runtime = rt

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.store != nil {
		sessionOpts = append(sessionOpts, session.WithStore(e.store))
	}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
		if e.lockTTL > 0 {
			sessionOpts = append(sessionOpts, session.WithLockTTL(e.lockTTL))
		}
	}
	e.sessions = session.NewManager(sessionOpts...)
	return e, nil
}

// Reply is the outcome of one turn as seen by the user.
type Reply struct {
	// AssistantText is the reply to show. Empty when Handled is false.
	AssistantText string
	Stage         domain.Stage
	Status        domain.Status
	// Handled is false when no edge accepted the message and nothing changed.
	Handled bool
	NodeID  graph.NodeID
}

// RunTurn feeds one user message into the session identified by sessionKey,
// creating the session on first contact. identity is recorded on creation.
func (e *Engine) RunTurn(ctx context.Context, sessionKey, identity, message string) (Reply, error) {
	var reply Reply
	err := e.sessions.WithSession(ctx, sessionKey, identity, func(ctx context.Context, state *domain.ConversationState) error {
		_, res, err := e.runtime.RunTurn(ctx, state, message)
		if err != nil {
			return err
		}

		reply = Reply{
			Stage:   state.Stage(),
			Status:  state.Status,
			Handled: res.Handled,
			NodeID:  res.NodeID,
		}
		if res.Handled {
			reply.AssistantText, _ = state.LastAssistant()
		}
		if res.Handled && res.FromStage != domain.StageRequestCompleted && res.ToStage == domain.StageRequestCompleted {
			e.record(ctx, state)
		}
		return nil
	})
	if err != nil {
		return Reply{}, fmt.Errorf("turn for session %s: %w", sessionKey, err)
	}
	return reply, nil
}

// record hands the completed request to the recorder. Failures are logged only:
// the user already has their confirmation.
func (e *Engine) record(ctx context.Context, state *domain.ConversationState) {
	if e.recorder == nil || !state.Pending.Complete() {
		return
	}
	assetType, _ := state.Pending.AssetType()
	configuration, _ := state.Pending.Configuration()
	reason, _ := state.Pending.Reason()

	req := &ports.AssetRequest{
		SessionKey:    state.SessionKey,
		Identity:      state.Identity,
		AssetType:     assetType,
		Configuration: configuration,
		Reason:        reason,
		Status:        ports.RequestPending,
	}
	if err := e.recorder.Record(ctx, req); err != nil {
		e.logger.Error("Failed to record asset request",
			"session_key", state.SessionKey,
			"asset_type", assetType,
			"err", err,
		)
		return
	}
	e.logger.Info("Asset request recorded",
		"session_key", state.SessionKey,
		"request_id", req.ID,
		"asset_type", assetType,
	)
}

// Inspect returns a copy of a session's state.
func (e *Engine) Inspect(ctx context.Context, sessionKey string) (*domain.ConversationState, error) {
	return e.sessions.Snapshot(ctx, sessionKey)
}

// Sessions lists known session keys.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Forget deletes a session from memory and the store.
func (e *Engine) Forget(ctx context.Context, sessionKey string) error {
	return e.sessions.Delete(ctx, sessionKey)
}

// Table returns the transition table in use.
func (e *Engine) Table() *graph.Table {
	return e.table
}

// Mermaid renders the transition table, highlighting the overlay if given.
func (e *Engine) Mermaid(overlay *graph.Overlay) string {
	return graph.GenerateMermaid(e.table, overlay)
}
