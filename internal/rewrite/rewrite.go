// Package rewrite implements the Array-equality Rewriter of spec.md §4.3:
// it replaces every array-equality conjunct produced by the implicant
// extractor with integer/select conjuncts, recording per-epoch state on
// the static ArrayEqualityGraph, then propagates select terms occurring
// in the result across that graph by BFS.
package rewrite

import (
	"sort"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/graph"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

// Run rewrites lits (the implicant's conjuncts) under model m against the
// static graph g, mutating each array equality's edge for this epoch
// (spec.md §5: InImplicant/IndexValues are per-epoch, reset by the caller
// via g.ResetEpoch before the first epoch that reuses g). The returned
// list contains every non-array-equality literal unchanged, plus the
// index-ordering, value, and select-propagation constraints this step
// derives; no array-equality literal survives into the result.
func Run(lits []*expr.Node, m *model.Model, g *graph.Graph) ([]*expr.Node, error) {
	out := make([]*expr.Node, 0, len(lits))
	for _, lit := range lits {
		if !lit.IsArrayEq() {
			out = append(out, lit)
			continue
		}
		added, err := rewriteEquality(lit, m, g)
		if err != nil {
			return nil, err
		}
		out = append(out, added...)
	}
	return propagate(out, m, g)
}

// rewriteEquality implements spec.md §4.3 steps 1-7 for a single array
// equality conjunct.
func rewriteEquality(eq *expr.Node, m *model.Model, g *graph.Graph) ([]*expr.Node, error) {
	rootA := expr.ArrayRootName(eq.Args[0])
	edge := g.EdgeForEquality(rootA, eq)
	if edge == nil {
		return nil, megaerrors.New(megaerrors.KindUnknownResult,
			"array-equality rewriter: no graph edge recorded for observed equality "+eq.String())
	}
	edge.InImplicant = true

	ivs := buildIndexValues(edge, m)
	// edge.IndexValues is the pre-dedupe sorted sequence: the BFS
	// propagation step (graph.PropagateSelect) needs every concrete index
	// the store chains touch, not just the deduplicated representatives.
	edge.IndexValues = ivs

	out := indexOrderingConstraints(ivs)
	out = append(out, valueConstraints(dedupeAdjacent(ivs), edge)...)
	return out, nil
}

// buildIndexValues implements spec.md §4.3 step 3: evaluate every index
// expression on both sides under m, then sort ascending by concrete
// value, breaking ties by side and finally by original (serial) order.
func buildIndexValues(edge *graph.Edge, m *model.Model) []graph.IndexValue {
	var ivs []graph.IndexValue
	serial := 0
	for i, idx := range edge.AIndices {
		ivs = append(ivs, graph.IndexValue{
			IndexExpr:     idx,
			ValueExpr:     edge.AValues[i],
			IndexConcrete: oracle.EvalInt(idx, m),
			Serial:        serial,
			Side:          graph.SideA,
		})
		serial++
	}
	for i, idx := range edge.BIndices {
		ivs = append(ivs, graph.IndexValue{
			IndexExpr:     idx,
			ValueExpr:     edge.BValues[i],
			IndexConcrete: oracle.EvalInt(idx, m),
			Serial:        serial,
			Side:          graph.SideB,
		})
		serial++
	}
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].IndexConcrete != ivs[j].IndexConcrete {
			return ivs[i].IndexConcrete < ivs[j].IndexConcrete
		}
		if ivs[i].Side != ivs[j].Side {
			return ivs[i].Side < ivs[j].Side
		}
		return ivs[i].Serial < ivs[j].Serial
	})
	return ivs
}

// indexOrderingConstraints implements spec.md §4.3 step 4.
func indexOrderingConstraints(ivs []graph.IndexValue) []*expr.Node {
	var out []*expr.Node
	for i := 0; i+1 < len(ivs); i++ {
		a, b := ivs[i], ivs[i+1]
		switch {
		case a.IndexConcrete < b.IndexConcrete:
			out = append(out, expr.NLt(expr.NSub(a.IndexExpr, b.IndexExpr), expr.Int(0)))
		case a.IndexConcrete == b.IndexConcrete:
			out = append(out, expr.NEq(a.IndexExpr, b.IndexExpr))
		}
	}
	return out
}

// dedupeAdjacent implements spec.md §4.3 step 5: drop a record whose
// concrete value and side both match the previously kept record.
func dedupeAdjacent(ivs []graph.IndexValue) []graph.IndexValue {
	var out []graph.IndexValue
	for _, iv := range ivs {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IndexConcrete == iv.IndexConcrete && last.Side == iv.Side {
				continue
			}
		}
		out = append(out, iv)
	}
	return out
}

// valueConstraints implements spec.md §4.3 step 6, sweeping left to right
// over the deduplicated index_values.
func valueConstraints(ivs []graph.IndexValue, edge *graph.Edge) []*expr.Node {
	var out []*expr.Node
	for i := 0; i < len(ivs); i++ {
		cur := ivs[i]
		if i+1 >= len(ivs) || ivs[i+1].IndexConcrete > cur.IndexConcrete {
			opposite := edge.Other(sideArrayName(edge, cur.Side))
			out = append(out, expr.NEq(expr.NSelect(opposite, cur.IndexExpr), cur.ValueExpr))
			continue
		}
		next := ivs[i+1]
		out = append(out, expr.NEq(cur.ValueExpr, next.ValueExpr))
		i++ // advance past both records, per step 6's "advance past both"
	}
	return out
}

func sideArrayName(edge *graph.Edge, s graph.Side) string {
	if s == graph.SideA {
		return edge.A.Name
	}
	return edge.B.Name
}

// propagate implements spec.md §4.3's BFS-propagation step: every select
// term occurring anywhere in lits is propagated, once each (deduplicated
// by structural identity), across the graph from its own array.
func propagate(lits []*expr.Node, m *model.Model, g *graph.Graph) ([]*expr.Node, error) {
	seen := map[string]bool{}
	var selects []*expr.Node
	for _, lit := range lits {
		for _, s := range expr.CollectSelects(lit) {
			k := s.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			selects = append(selects, s)
		}
	}

	out := append([]*expr.Node(nil), lits...)
	for _, sel := range selects {
		arrName := expr.ArrayRootName(sel.Args[0])
		idx := sel.Args[1]
		idxVal := oracle.EvalInt(idx, m)

		err := g.PropagateSelect(arrName, idxVal,
			func(iv graph.IndexValue) {
				out = append(out, expr.NEq(idx, iv.IndexExpr))
			},
			func(from, to string) {
				out = append(out, expr.NEq(
					expr.NSelect(expr.ArrayVariable(from), idx),
					expr.NSelect(expr.ArrayVariable(to), idx),
				))
			},
		)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
