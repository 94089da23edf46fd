package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/graph"
)

func edge(a, b string) *graph.Edge {
	return &graph.Edge{
		A:  expr.ArrayVariable(a),
		B:  expr.ArrayVariable(b),
		Eq: expr.NEq(expr.ArrayVariable(a), expr.ArrayVariable(b)),
	}
}

func TestAddEdgeRegistersUnderBothEndpoints(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	g.AddEdge(e)

	assert.Len(t, g.Edges("a"), 1)
	assert.Len(t, g.Edges("b"), 1)
	assert.True(t, g.HasArray("a"))
	assert.True(t, g.HasArray("b"))
}

func TestAddEdgeSelfLoopRegistersOnce(t *testing.T) {
	g := graph.New()
	e := edge("a", "a")
	g.AddEdge(e)
	assert.Len(t, g.Edges("a"), 1)
	assert.True(t, e.SameName())
}

func TestEdgeForEqualityFindsByPointerIdentity(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	g.AddEdge(e)

	found := g.EdgeForEquality("a", e.Eq)
	assert.Same(t, e, found)

	other := expr.NEq(expr.ArrayVariable("a"), expr.ArrayVariable("b"))
	assert.Nil(t, g.EdgeForEquality("a", other), "a structurally-equal but distinct node must not match")
}

func TestResetEpochClearsPerEpochFieldsOnce(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	g.AddEdge(e)
	e.InImplicant = true
	e.IndexValues = []graph.IndexValue{{IndexConcrete: 1}}

	g.ResetEpoch()

	assert.False(t, e.InImplicant)
	assert.Nil(t, e.IndexValues)
}

func TestOtherReturnsOppositeEndpoint(t *testing.T) {
	e := edge("a", "b")
	assert.Equal(t, "b", e.Other("a").Name)
	assert.Equal(t, "a", e.Other("b").Name)
}

func TestPropagateSelectUnknownArrayIsNoop(t *testing.T) {
	g := graph.New()
	err := g.PropagateSelect("nonexistent", 0, func(graph.IndexValue) {}, func(string, string) {})
	assert.NoError(t, err)
}

func TestPropagateSelectCrossesWhenNoIndexMatches(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	e.InImplicant = true
	e.IndexValues = []graph.IndexValue{{IndexConcrete: 99}}
	g.AddEdge(e)

	var crossedFrom, crossedTo string
	err := g.PropagateSelect("a", 5, func(graph.IndexValue) {
		t.Fatal("unexpected pin")
	}, func(from, to string) {
		crossedFrom, crossedTo = from, to
	})
	assert.NoError(t, err)
	assert.Equal(t, "a", crossedFrom)
	assert.Equal(t, "b", crossedTo)
}

func TestPropagateSelectPinsWhenIndexMatches(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	e.InImplicant = true
	want := graph.IndexValue{IndexConcrete: 5}
	e.IndexValues = []graph.IndexValue{want}
	g.AddEdge(e)

	var pinned graph.IndexValue
	crossed := false
	err := g.PropagateSelect("a", 5, func(iv graph.IndexValue) {
		pinned = iv
	}, func(string, string) {
		crossed = true
	})
	assert.NoError(t, err)
	assert.Equal(t, want, pinned)
	assert.False(t, crossed)
}

func TestPropagateSelectSkipsEdgesNotInImplicant(t *testing.T) {
	g := graph.New()
	e := edge("a", "b")
	e.InImplicant = false
	g.AddEdge(e)

	crossed := false
	err := g.PropagateSelect("a", 5, func(graph.IndexValue) {}, func(string, string) {
		crossed = true
	})
	assert.NoError(t, err)
	assert.False(t, crossed)
}
