/*
Package graph implements the transition table of the dialogue engine.

A Table maps each stage to an ordered list of edges. Each edge names the node that
handles the turn and carries a Guard, a small tagged predicate (kind plus parameters)
rather than an opaque function, so tables can be validated, rendered as Mermaid,
logged, and loaded from configuration.

Resolution is first-match: the edges of the current stage are evaluated in
declaration order and the first guard that matches selects the node.
*/
package graph
