package graph

import (
	"github.com/katalvlaran/lvlath/bfs"
)

// findMatch reports whether idxVal equals the concrete value of any record
// in ivs, returning that record if so.
func findMatch(ivs []IndexValue, idxVal int64) (IndexValue, bool) {
	for _, iv := range ivs {
		if iv.IndexConcrete == idxVal {
			return iv, true
		}
	}
	return IndexValue{}, false
}

// PropagateSelect implements the BFS-propagation step of spec.md §4.3: for
// a select(A, idx) with concrete value idxVal, it walks the graph starting
// at A over edges marked InImplicant. At each candidate edge (curr,
// neighbor), if idxVal matches a concrete index recorded on that edge,
// the index is pinned by a store: onPin is called with the matching
// record and the BFS does not cross that edge. Otherwise the BFS crosses
// into neighbor and onCross is called with the (curr, neighbor) pair the
// crossing happened over, so the caller can emit
// select(curr, idx) = select(neighbor, idx) — pairwise per hop, which
// chains by transitivity of equality across a multi-array BFS path the
// same as a single direct relation would.
func (g *Graph) PropagateSelect(startArray string, idxVal int64, onPin func(IndexValue), onCross func(fromArray, toArray string)) error {
	if !g.HasArray(startArray) {
		return nil
	}
	_, err := bfs.BFS(g.lv, startArray,
		bfs.WithFilterNeighbor(func(curr, neighbor string) bool {
			cross := false
			for _, e := range g.adjacency[curr] {
				if !e.InImplicant {
					continue
				}
				other := e.Other(curr)
				if other.Name != neighbor {
					continue
				}
				if iv, ok := findMatch(e.IndexValues, idxVal); ok {
					onPin(iv)
				} else {
					cross = true
				}
			}
			if cross {
				onCross(curr, neighbor)
			}
			return cross
		}),
	)
	return err
}
