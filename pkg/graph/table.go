package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/assetbot/pkg/domain"
)

// NodeID names a dialogue node registered with the engine.
type NodeID string

// Identifiers of the shipped dialogue nodes.
const (
	NodeGreeting      NodeID = "greeting"
	NodeAssetType     NodeID = "asset_type"
	NodeConfiguration NodeID = "configuration"
	NodeReason        NodeID = "reason"
	NodeCompletion    NodeID = "completion"
	NodeInvalid       NodeID = "invalid"
)

// Edge is a guarded transition from a stage to the node that handles the turn.
type Edge struct {
	Target NodeID `json:"target" yaml:"target" mapstructure:"target"`
	Guard  Guard  `json:"guard" yaml:"guard" mapstructure:"guard"`
}

// Table maps each stage to its ordered edges.
// Resolution is first-match: edge order is part of the table's contract.
type Table struct {
	edges map[domain.Stage][]Edge
	order []domain.Stage
}

// NewTable creates an empty transition table.
func NewTable() *Table {
	return &Table{edges: make(map[domain.Stage][]Edge)}
}

// AddEdge appends an edge to the stage's list. Edges are evaluated in the order added.
func (t *Table) AddEdge(from domain.Stage, target NodeID, guard Guard) *Table {
	if _, ok := t.edges[from]; !ok {
		t.order = append(t.order, from)
	}
	t.edges[from] = append(t.edges[from], Edge{Target: target, Guard: guard})
	return t
}

// Edges returns a copy of the edges declared for a stage.
func (t *Table) Edges(from domain.Stage) []Edge {
	src := t.edges[from]
	out := make([]Edge, len(src))
	copy(out, src)
	return out
}

// HasEdges reports whether any edge is declared for the stage.
func (t *Table) HasEdges(from domain.Stage) bool {
	return len(t.edges[from]) > 0
}

// Stages returns the stages with declared edges, in declaration order.
func (t *Table) Stages() []domain.Stage {
	out := make([]domain.Stage, len(t.order))
	copy(out, t.order)
	return out
}

// Resolve evaluates the edges of the state's current stage in declaration order and
// returns the target of the first guard that matches. It returns false if none match.
func (t *Table) Resolve(state *domain.ConversationState, message string) (NodeID, bool) {
	for _, e := range t.edges[state.Stage()] {
		if e.Guard.Match(state, message) {
			return e.Target, true
		}
	}
	return "", false
}

// Validate checks every stage is a member of the enumeration, every guard is well formed,
// and every target is one of known.
func (t *Table) Validate(known ...NodeID) error {
	knownSet := make(map[NodeID]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	var errs []error
	for _, stage := range t.order {
		if !stage.Valid() {
			errs = append(errs, &domain.InvalidStageError{Value: string(stage)})
			continue
		}
		for i, e := range t.edges[stage] {
			if err := e.Guard.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s edge %d: %w", stage, i, err))
			}
			if len(known) > 0 && !knownSet[e.Target] {
				errs = append(errs, fmt.Errorf("%s edge %d: unknown target node %q", stage, i, e.Target))
			}
		}
	}
	return errors.Join(errs...)
}

// Definition is the serializable form of a table, keyed by stage name.
type Definition map[string][]Edge

// Definition exports the table in declaration order of each stage's edges.
func (t *Table) Definition() Definition {
	def := make(Definition, len(t.order))
	for _, stage := range t.order {
		def[string(stage)] = t.Edges(stage)
	}
	return def
}

// FromDefinition builds a table from its serializable form.
// Stages are added in domain.Stages order so the result is deterministic.
func FromDefinition(def Definition) (*Table, error) {
	t := NewTable()
	for key := range def {
		if _, err := domain.ParseStage(key); err != nil {
			return nil, err
		}
	}
	for _, stage := range domain.Stages {
		for _, e := range def[string(stage)] {
			t.AddEdge(stage, e.Target, e.Guard)
		}
	}
	return t, nil
}
