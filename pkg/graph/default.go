package graph

import "github.com/aretw0/assetbot/pkg/domain"

// DefaultTable returns the shipped request flow.
//
// A greeting edge always precedes the catch-all edges of a stage, otherwise greetings
// would be swallowed once a session has any stage set.
func DefaultTable(vocabulary, greetings []string) *Table {
	t := NewTable()

	t.AddEdge(domain.StageInitial, NodeGreeting, Always())

	t.AddEdge(domain.StageAwaitingAssetType, NodeGreeting, EqualsAny(greetings...)).
		AddEdge(domain.StageAwaitingAssetType, NodeAssetType, NotEmpty()).
		AddEdge(domain.StageAwaitingAssetType, NodeInvalid, Always())

	t.AddEdge(domain.StageAwaitingConfiguration, NodeConfiguration, NotEmpty()).
		AddEdge(domain.StageAwaitingConfiguration, NodeInvalid, Always())

	t.AddEdge(domain.StageAwaitingReason, NodeReason, NotEmpty()).
		AddEdge(domain.StageAwaitingReason, NodeInvalid, Always())

	t.AddEdge(domain.StageRequestCompleted, NodeGreeting, EqualsAny(greetings...)).
		AddEdge(domain.StageRequestCompleted, NodeCompletion, Always())

	t.AddEdge(domain.StageInvalid, NodeGreeting, EqualsAny(greetings...)).
		AddEdge(domain.StageInvalid, NodeAssetType, ContainsAny(vocabulary...)).
		AddEdge(domain.StageInvalid, NodeInvalid, Always())

	return t
}

// AllNodes lists the shipped node identifiers.
func AllNodes() []NodeID {
	return []NodeID{NodeGreeting, NodeAssetType, NodeConfiguration, NodeReason, NodeCompletion, NodeInvalid}
}
