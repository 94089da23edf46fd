package preprocess

import (
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/graph"
)

// Result is the Preprocessor's output per spec.md §4.1: the normalized
// formula, the static array-equality graph, and the declared variables.
type Result struct {
	Formula *expr.Node
	Graph   *graph.Graph
	Vars    []expr.Var
}

// Run executes the preprocessing pipeline of spec.md §4.1, once, at
// startup: arith_lhs, blast_select_store, NNF conversion, solver-internal-
// name renaming, then array-equality graph construction. Renaming is done
// before the graph is built (rather than after, as spec.md's step order
// lists it) so that every Edge's A/B/Eq node is the very pointer that
// later appears inside the returned Formula — the implicant extractor
// picks literals straight out of that same tree, so the rewriter can
// locate an edge by pointer identity instead of re-deriving it
// structurally. Renaming only changes leaf names, never tree shape, so
// reordering it ahead of the graph build changes nothing observable.
func Run(formula *expr.Node, vars []expr.Var) (*Result, error) {
	f := arithLHS(formula)
	f = blastSelectStore(f)
	f = toNNF(f, false)
	f = renameSolverInternals(f)

	g, err := buildArrayEqualityGraph(f)
	if err != nil {
		return nil, err
	}

	renamedVars := make([]expr.Var, len(vars))
	for i, v := range vars {
		name := v.Name
		if solverInternalName.MatchString(name) {
			name = "mega!" + name
		}
		renamedVars[i] = expr.Var{Name: name, Sort: v.Sort}
	}

	return &Result{Formula: f, Graph: g, Vars: renamedVars}, nil
}
