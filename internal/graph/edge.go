// Package graph implements the ArrayEqualityGraph of spec.md §3/§4.3: an
// undirected graph over array terms, with edges carrying the index/value
// lists observed on each side of a store-chain equality, and a BFS
// propagation step that relates select-terms across the graph.
//
// The graph itself is built once at preprocessing time and is static across
// epochs; only each edge's InImplicant flag and IndexValues are cleared and
// rebuilt per epoch (spec.md §5 "Shared state").
//
// Grounded on katalvlaran-lvlath's core.Graph + bfs.BFS: the adjacency
// structure and BFS traversal are delegated to lvlath, while the
// domain-specific edge payload (index/value lists, in_implicant) lives in
// this package.
package graph

import "github.com/L-Jun-Jie/megasampler/internal/expr"

// Side identifies which store-chain of an equality an IndexValue record
// came from.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// IndexValue is one record of the sorted index_values sequence of spec.md
// §3: an (index, value) pair from one side of a store-chain equality,
// tagged with its concrete index value (under the current epoch's model),
// a serial number for stable tie-breaking, and which side it came from.
type IndexValue struct {
	IndexExpr     *expr.Node
	ValueExpr     *expr.Node
	IndexConcrete int64
	Serial        int
	Side          Side
}

// Edge represents one formula-level array equality between two store-chains
// rooted at array constants A and B (spec.md §3, ArrayEqualityEdge).
type Edge struct {
	A, B *expr.Node // root array terms (ArrayVar nodes)

	AIndices, AValues []*expr.Node
	BIndices, BValues []*expr.Node

	Eq *expr.Node // the original equality expression

	// InImplicant and IndexValues are per-epoch mutable fields, cleared by
	// Graph.ResetEpoch at the start of every epoch.
	InImplicant bool
	IndexValues []IndexValue
}

// Other returns the root array term on the opposite side of name.
func (e *Edge) Other(name string) *expr.Node {
	if e.A.Name == name {
		return e.B
	}
	return e.A
}

// SameName returns true if e is a self-loop (A == B), the "a = a" boundary
// case of spec.md §8: exactly one edge, no index/value constraints.
func (e *Edge) SameName() bool { return e.A.Name == e.B.Name }
