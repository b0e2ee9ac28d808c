package nodes

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/ports"
)

// Node processes one turn.
//
// Process appends exactly one assistant turn and may change the stage and the pending
// request. It never fails on user input: unmatched input gets a clarification.
// The only error it returns is *domain.InvalidStageError, which means the node itself is
// broken; in that case the state is left untouched.
type Node interface {
	Process(ctx context.Context, state *domain.ConversationState, message string) error
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, state *domain.ConversationState, message string) error

func (f NodeFunc) Process(ctx context.Context, state *domain.ConversationState, message string) error {
	return f(ctx, state, message)
}

// Set maps node identifiers to their processors.
type Set map[graph.NodeID]Node

// IDs returns the identifiers in the set.
func (s Set) IDs() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Option configures the nodes built by Defaults.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// WithLogger sets the logger used to report inventory failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLookupTimeout bounds each inventory call. Zero means no timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *config) {
		c.lookupTimeout = d
	}
}

// Defaults builds the shipped node set over the given dialogue data and inventory.
func Defaults(d Dialogue, inventory ports.Inventory, opts ...Option) Set {
	cfg := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	d = d.WithDefaults()

	return Set{
		graph.NodeGreeting:      &Greeting{Dialogue: d},
		graph.NodeAssetType:     &AssetTypeCollector{Dialogue: d, Inventory: inventory, Logger: cfg.logger, Timeout: cfg.lookupTimeout},
		graph.NodeConfiguration: &ConfigurationCollector{Dialogue: d},
		graph.NodeReason:        &ReasonCollector{Dialogue: d},
		graph.NodeCompletion:    &Completion{Dialogue: d},
		graph.NodeInvalid:       &InvalidQuery{Dialogue: d},
	}
}

// commit applies a node's outcome as one step: the stage is validated before anything
// is written, so a rejected stage leaves the state untouched.
func commit(state *domain.ConversationState, stage domain.Stage, reply string, pending *domain.PendingRequest) error {
	if err := state.SetStage(stage); err != nil {
		return err
	}
	if pending != nil {
		state.Pending = *pending
	}
	state.AppendAssistant(reply)
	return nil
}

// matchesAny reports whether the message is, or contains as whole words, one of phrases.
func matchesAny(message string, phrases []string) bool {
	norm := graph.Normalize(message)
	if norm == "" {
		return false
	}
	words := strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, p := range phrases {
		phrase := graph.Normalize(p)
		if phrase == "" {
			continue
		}
		if phrase == norm {
			return true
		}
		if strings.Contains(phrase, " ") {
			if strings.Contains(norm, phrase) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == phrase {
				return true
			}
		}
	}
	return false
}
