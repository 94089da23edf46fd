package graph

import (
	"github.com/katalvlaran/lvlath/core"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
)

// Graph is the ArrayEqualityGraph of spec.md §3: a mapping from array_name
// to the list of edges incident to it. The lvlath core.Graph member mirrors
// the same vertex/edge structure purely for traversal (propagate.go uses it);
// the domain payload lives in adjacency below, keyed the same way spec.md
// describes ("Mapping array_name -> list<ArrayEqualityEdge>").
type Graph struct {
	adjacency map[string][]*Edge
	lv        *core.Graph
}

// New returns an empty ArrayEqualityGraph.
func New() *Graph {
	return &Graph{
		adjacency: map[string][]*Edge{},
		lv:        core.NewGraph(),
	}
}

// AddEdge registers e under both endpoint names (spec.md §3: "Each equality
// appears under both endpoint names (unless a==b, in which case once)").
func (g *Graph) AddEdge(e *Edge) {
	_ = g.lv.AddVertex(e.A.Name)
	g.adjacency[e.A.Name] = append(g.adjacency[e.A.Name], e)
	if e.SameName() {
		return
	}
	_ = g.lv.AddVertex(e.B.Name)
	g.adjacency[e.B.Name] = append(g.adjacency[e.B.Name], e)
	_, _ = g.lv.AddEdge(e.A.Name, e.B.Name, 0)
}

// Edges returns every edge incident to arrayName, in insertion order.
func (g *Graph) Edges(arrayName string) []*Edge {
	return g.adjacency[arrayName]
}

// EdgeForEquality returns the edge registered for eq, an array-equality
// node rooted (on at least one side) at arrayName. eq must be the very
// node pointer that buildArrayEqualityGraph saw — the rewriter calls this
// with a literal taken straight from the preprocessed formula tree that
// produced this graph, so pointer identity is sufficient and avoids
// recomputing a structural key on every lookup.
func (g *Graph) EdgeForEquality(arrayName string, eq *expr.Node) *Edge {
	for _, e := range g.adjacency[arrayName] {
		if e.Eq == eq {
			return e
		}
	}
	return nil
}

// HasArray reports whether arrayName has any recorded edge.
func (g *Graph) HasArray(arrayName string) bool {
	return g.lv.HasVertex(arrayName)
}

// ResetEpoch clears every edge's per-epoch mutable fields (spec.md §5): a
// fresh epoch starts with no array equality "in the implicant" and no
// index_values recorded, since those depend on the new epoch's model.
func (g *Graph) ResetEpoch() {
	seen := map[*Edge]bool{}
	for _, edges := range g.adjacency {
		for _, e := range edges {
			if seen[e] {
				continue
			}
			seen[e] = true
			e.InImplicant = false
			e.IndexValues = nil
		}
	}
}

// Underlying exposes the lvlath graph for BFS traversal in propagate.go.
func (g *Graph) Underlying() *core.Graph { return g.lv }
