// Package dag provides a small directed graph keyed by string IDs with cycle
// detection and a deterministic topological order.
//
// The compiler uses it to model group instantiation: an edge from group G to
// scope S means S instantiates G, so G must be emitted before S. All iteration
// follows insertion order, so results never depend on map ordering.
package dag
