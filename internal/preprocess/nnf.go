package preprocess

import "github.com/L-Jun-Jie/megasampler/internal/expr"

// toNNF implements spec.md §4.1 step 2: negations pushed to atoms, no ite
// at the boolean level, connectives restricted to and/or/negated-atom.
// negate carries whether the enclosing context wants the negation of n.
func toNNF(n *expr.Node, negate bool) *expr.Node {
	switch n.Kind {
	case expr.Not:
		return toNNF(n.Args[0], !negate)

	case expr.And:
		children := make([]*expr.Node, len(n.Args))
		for i, a := range n.Args {
			children[i] = toNNF(a, negate)
		}
		if negate {
			return expr.NOr(children...)
		}
		return expr.NAnd(children...)

	case expr.Or:
		children := make([]*expr.Node, len(n.Args))
		for i, a := range n.Args {
			children[i] = toNNF(a, negate)
		}
		if negate {
			return expr.NAnd(children...)
		}
		return expr.NOr(children...)

	case expr.Ite:
		if n.Sort != expr.SortBool {
			// Non-boolean ite (over ints/arrays) is not a boolean connective
			// and is left as a leaf term inside whatever atom contains it;
			// only its condition needs no NNF treatment.
			return n
		}
		cond, then, els := n.Args[0], n.Args[1], n.Args[2]
		expanded := expr.NOr(
			expr.NAnd(cond, then),
			expr.NAnd(expr.NNot(cond), els),
		)
		return toNNF(expanded, negate)

	case expr.BoolConst:
		if negate {
			return expr.Bool(!n.BoolValue)
		}
		return n

	case expr.BoolVar:
		if negate {
			return expr.NNot(n)
		}
		return n

	case expr.Eq, expr.Distinct, expr.Le, expr.Ge, expr.Lt, expr.Gt:
		if !negate {
			return n
		}
		return negateComparison(n)

	default:
		// Any other kind reaching here is an int/array-sorted term nested
		// inside an atom already handled above; pass through unchanged.
		return n
	}
}

// negateComparison returns the comparison entailed by ¬n, per De Morgan over
// the relational operators: ¬(a=b) is distinct, ¬(a≠b) is =, ¬(a≤b) is a>b,
// etc. Array equalities negate to Distinct the same way; the rewriter does
// not further decompose a negated array equality (spec.md is silent on
// that case; it is left as an ordinary atom that strengthening will reject
// with NoRuleForStrengthening, which is a safe, recoverable disposition).
func negateComparison(n *expr.Node) *expr.Node {
	a, b := n.Args[0], n.Args[1]
	switch n.Kind {
	case expr.Eq:
		return expr.NDistinct(a, b)
	case expr.Distinct:
		return expr.NEq(a, b)
	case expr.Le:
		return expr.NGt(a, b)
	case expr.Ge:
		return expr.NLt(a, b)
	case expr.Lt:
		return expr.NGe(a, b)
	case expr.Gt:
		return expr.NLe(a, b)
	default:
		panic("preprocess: negateComparison: not a comparison kind")
	}
}
