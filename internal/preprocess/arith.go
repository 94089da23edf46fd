package preprocess

import "github.com/L-Jun-Jie/megasampler/internal/expr"

// arithLHS implements spec.md §4.1 step 1's "arith_lhs" normalization: for
// every integer comparison whose right-hand side is not already a bare
// numeric constant, rewrite `lhs op rhs` to `(lhs - rhs) op 0`, so every
// comparison downstream (implicant extraction, strengthening) can assume
// its RHS is a constant. Boolean structure and array equalities are left
// alone; the rewrite only touches int-sorted comparisons.
func arithLHS(n *expr.Node) *expr.Node {
	if n == nil {
		return nil
	}
	args := make([]*expr.Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = arithLHS(a)
	}
	rebuilt := rebuild(n, args)

	if !rebuilt.Kind.IsComparison() || rebuilt.Args[0].Sort != expr.SortInt {
		return rebuilt
	}
	lhs, rhs := rebuilt.Args[0], rebuilt.Args[1]
	if rhs.Kind == expr.IntConst {
		return rebuilt
	}
	moved := expr.NSub(lhs, rhs)
	return rebuildComparison(rebuilt.Kind, moved, expr.Int(0))
}

func rebuildComparison(k expr.Kind, lhs, rhs *expr.Node) *expr.Node {
	switch k {
	case expr.Eq:
		return expr.NEq(lhs, rhs)
	case expr.Distinct:
		return expr.NDistinct(lhs, rhs)
	case expr.Le:
		return expr.NLe(lhs, rhs)
	case expr.Ge:
		return expr.NGe(lhs, rhs)
	case expr.Lt:
		return expr.NLt(lhs, rhs)
	case expr.Gt:
		return expr.NGt(lhs, rhs)
	default:
		panic("preprocess: rebuildComparison: not a comparison kind")
	}
}

// rebuild returns a node of n's kind/sort/leaf-payload with args as its
// operands, sharing n's leaf fields for leaf kinds.
func rebuild(n *expr.Node, args []*expr.Node) *expr.Node {
	if n.IsLeaf() {
		return n
	}
	return &expr.Node{Kind: n.Kind, Sort: n.Sort, Args: args}
}
