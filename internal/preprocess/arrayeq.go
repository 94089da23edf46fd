package preprocess

import (
	"fmt"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/graph"
)

// decomposeChain walks a store-chain term down to its constant root,
// collecting (index, value) pairs in outermost-to-innermost order, per
// spec.md §4.1 step 3. Fails with MalformedArrayTerm if the term bottoms
// out in anything other than an ArrayVar.
func decomposeChain(n *expr.Node) (root *expr.Node, indices, values []*expr.Node, err error) {
	for n.Kind == expr.Store {
		indices = append(indices, n.Args[1])
		values = append(values, n.Args[2])
		n = n.Args[0]
	}
	if n.Kind != expr.ArrayVar {
		return nil, nil, nil, megaerrors.New(megaerrors.KindMalformedArrayTerm,
			fmt.Sprintf("array-equality side rooted in %s is neither a constant array nor a store-chain", n.Kind))
	}
	return n, indices, values, nil
}

// buildArrayEqualityGraph scans f for every array-sorted equality atom and
// registers a graph.Edge for it under both endpoint array names, per
// spec.md §4.1 step 3. f must already be in NNF (so every equality is a
// plain Eq node, never wrapped in Not).
func buildArrayEqualityGraph(f *expr.Node) (*graph.Graph, error) {
	g := graph.New()
	var visitErr error
	expr.Walk(f, func(n *expr.Node) bool {
		if visitErr != nil {
			return false
		}
		if !n.IsArrayEq() {
			return true
		}
		rootA, idxA, valA, err := decomposeChain(n.Args[0])
		if err != nil {
			visitErr = err
			return false
		}
		rootB, idxB, valB, err := decomposeChain(n.Args[1])
		if err != nil {
			visitErr = err
			return false
		}
		g.AddEdge(&graph.Edge{
			A: rootA, B: rootB,
			AIndices: idxA, AValues: valA,
			BIndices: idxB, BValues: valB,
			Eq: n,
		})
		return true
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return g, nil
}
