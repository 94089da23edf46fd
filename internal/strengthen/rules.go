package strengthen

import (
	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/interval"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

// strengthenAtom dispatches on lhs's structure, per spec.md §4.4's
// "Rules over the lhs structure" table.
func strengthenAtom(imap *interval.Map, classes equivClasses, lhs *expr.Node, op Op, c int64, m *model.Model) error {
	switch lhs.Kind {
	case expr.IntVar:
		tighten(imap, lhs, op, c)
		return nil

	case expr.Select:
		return strengthenSelect(imap, classes, lhs, op, c, m)

	case expr.UMinus:
		return strengthenAtom(imap, classes, lhs.Args[0], reverseOp(op), negateConst(c), m)

	case expr.Add:
		return strengthenAdd(imap, classes, lhs, op, c, m)

	case expr.Sub:
		sum := expr.NAdd(lhs.Args[0], expr.NUMinus(lhs.Args[1]))
		return strengthenAtom(imap, classes, sum, op, c, m)

	case expr.Mul:
		return strengthenMul(imap, classes, lhs, op, c, m)

	default:
		return megaerrors.New(megaerrors.KindNoRuleForStrengthening,
			"no strengthening rule for lhs kind "+lhs.Kind.String())
	}
}

// strengthenSelect implements spec.md §4.4's select-equivalence-class
// rule: syntactic aliases of the same (array, concrete index) under m
// share one interval, keyed in the IntervalMap by each alias's own
// select term.
func strengthenSelect(imap *interval.Map, classes equivClasses, sel *expr.Node, op Op, c int64, m *model.Model) error {
	arrName := expr.ArrayRootName(sel.Args[0])
	idxVal := oracle.EvalInt(sel.Args[1], m)

	byIdx, ok := classes[arrName]
	if !ok {
		byIdx = map[int64][]*expr.Node{}
		classes[arrName] = byIdx
	}
	members := byIdx[idxVal]
	if len(members) > 0 {
		if iv, ok := imap.Get(members[0]); ok {
			imap.Set(sel, iv)
		}
	}
	byIdx[idxVal] = append(members, sel)

	bound := boundFor(op, c)
	for _, member := range byIdx[idxVal] {
		imap.Tighten(member, bound)
	}
	return nil
}

// strengthenAdd implements spec.md §4.4's addition rule: constant
// children fold into c; what remains, if anything, is recursed on as a
// whole if there was at least one constant child, otherwise the slack
// between c and v(lhs) is distributed across the non-constant children.
func strengthenAdd(imap *interval.Map, classes equivClasses, lhs *expr.Node, op Op, c int64, m *model.Model) error {
	var constSum int64
	var nonConst []*expr.Node
	for _, a := range lhs.Args {
		if a.Kind == expr.IntConst {
			constSum += a.IntValue
			continue
		}
		nonConst = append(nonConst, a)
	}
	if len(nonConst) == 0 {
		return nil
	}

	if len(nonConst) != len(lhs.Args) {
		return strengthenAtom(imap, classes, sumOf(nonConst), op, c-constSum, m)
	}

	if op == OpEq {
		for _, child := range nonConst {
			if err := strengthenAtom(imap, classes, child, OpEq, oracle.EvalInt(child, m), m); err != nil {
				return err
			}
		}
		return nil
	}

	vLhs := oracle.EvalInt(lhs, m)
	n := int64(len(nonConst))
	var d int64
	if op == OpLe {
		d = c - vLhs
	} else {
		d = vLhs - c
	}
	base, rem := d/n, d%n
	for i, child := range nonConst {
		share := base
		if int64(i) < rem {
			share++
		}
		vChild := oracle.EvalInt(child, m)
		var childBound int64
		if op == OpLe {
			childBound = vChild + share
		} else {
			childBound = vChild - share
		}
		if err := strengthenAtom(imap, classes, child, op, childBound, m); err != nil {
			return err
		}
	}
	return nil
}

func sumOf(args []*expr.Node) *expr.Node {
	if len(args) == 1 {
		return args[0]
	}
	return expr.NAdd(args...)
}

// strengthenMul implements spec.md §4.4's multiplication rules: with at
// least one constant factor, fold the constants into a divisor on c and
// recurse on the remaining product; with none, pin each factor's sign and
// magnitude to maintain the observed product under m.
func strengthenMul(imap *interval.Map, classes equivClasses, lhs *expr.Node, op Op, c int64, m *model.Model) error {
	var constFactors []int64
	var nonConst []*expr.Node
	for _, a := range lhs.Args {
		if a.Kind == expr.IntConst {
			constFactors = append(constFactors, a.IntValue)
			continue
		}
		nonConst = append(nonConst, a)
	}
	if len(constFactors) == 0 {
		return strengthenMulNoConst(imap, classes, nonConst, op, m)
	}

	k := int64(1)
	for _, f := range constFactors {
		k *= f
	}
	if k == 0 {
		// The literal holds at m regardless of the non-constant factors
		// (0 op c is either trivially true, or m would not satisfy the
		// literal in the first place); nothing to tighten.
		return nil
	}
	if k < 0 {
		op = reverseOp(op)
	}

	var cPrime int64
	switch op {
	case OpGe:
		cPrime = ceilDiv(c, k)
	case OpLe:
		cPrime = floorDiv(c, k)
	default:
		if c%k != 0 {
			return nil
		}
		cPrime = c / k
	}

	return strengthenAtom(imap, classes, sumOf(nonConst), op, cPrime, m)
}

// strengthenMulNoConst implements spec.md §4.4's "Multiplication with no
// constant factors" rule. Each factor is pinned relative to its own
// concrete value under m so as to preserve its observed sign and,
// depending on the observed product's sign and on whether the literal
// demands the product not rise (≤) or not fall (≥), bounds each factor's
// magnitude toward zero or away from it: for a positive product ≤ shrinks
// magnitudes and ≥ grows them; for a negative product the two are swapped;
// for a zero product ≤ shrinks magnitudes and ≥ pins every factor.
// Equality pins every factor to its exact observed value, which trivially
// preserves the product.
func strengthenMulNoConst(imap *interval.Map, classes equivClasses, factors []*expr.Node, op Op, m *model.Model) error {
	prod := int64(1)
	for _, f := range factors {
		prod *= oracle.EvalInt(f, m)
	}
	if prod < 0 && op != OpEq {
		op = reverseOp(op)
	} else if prod == 0 && op == OpGe {
		op = OpEq
	}
	for _, f := range factors {
		v := oracle.EvalInt(f, m)
		var bound interval.Interval
		switch op {
		case OpEq:
			bound = interval.Point(v)
		case OpLe:
			if v >= 0 {
				bound = interval.Interval{Low: 0, High: v}
			} else {
				bound = interval.Interval{Low: v, High: 0}
			}
		default: // OpGe
			if v >= 0 {
				bound = interval.Interval{Low: v, High: interval.PosInf}
			} else {
				bound = interval.Interval{Low: interval.NegInf, High: v}
			}
		}
		imap.Tighten(f, bound)
	}
	return nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
