// Package strengthen implements the Strengthener of spec.md §4.4: a
// recursive, per-literal rule system that builds an IntervalMap entailed
// by the rewritten literal list under the seed model.
//
// Grounded on original_source/strengthen.cpp's literal-structure dispatch,
// reworked as Go recursion over expr.Node with the teacher's multi-pass,
// rule-table dispatch style (kanso-lang-kanso's internal/semantic passes).
package strengthen

import (
	"math"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/interval"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

// Op is a normalized comparison operator: every literal is reduced to one
// of these three before the per-lhs-structure rules run.
type Op int

const (
	OpLe Op = iota
	OpGe
	OpEq
)

// equivClasses tracks spec.md §4.4's array_equivalence_classes[A][i]: for
// one epoch, the set of select-index expressions on array A observed with
// concrete value i.
type equivClasses map[string]map[int64][]*expr.Node

// Run builds an IntervalMap entailed by lits under m, per spec.md §4.4.
// A literal for which no rule applies is dropped (NoRuleForStrengthening
// is a recoverable disposition per spec.md §7: the caller's box may end
// up looser than optimal, but every literal that WAS applied still holds,
// so soundness is preserved); any other error aborts the whole epoch.
func Run(lits []*expr.Node, m *model.Model) (*interval.Map, error) {
	imap := interval.New()
	classes := equivClasses{}
	for _, lit := range lits {
		if err := strengthenLiteral(imap, classes, lit, m, false); err != nil {
			if isNoRule(err) {
				continue
			}
			return nil, err
		}
	}
	return imap, nil
}

func isNoRule(err error) bool {
	me, ok := err.(*megaerrors.Error)
	return ok && me.Kind == megaerrors.KindNoRuleForStrengthening
}

// strengthenLiteral implements the top-level dispatch of spec.md §4.4:
// boolean constants/variables need no interval update, Not re-enters with
// the sense flipped, and every comparison kind normalizes to (lhs, op, c)
// before recursing into the lhs's structure.
func strengthenLiteral(imap *interval.Map, classes equivClasses, n *expr.Node, m *model.Model, negate bool) error {
	switch n.Kind {
	case expr.Not:
		return strengthenLiteral(imap, classes, n.Args[0], m, !negate)
	case expr.BoolConst, expr.BoolVar:
		return nil
	case expr.Eq, expr.Distinct, expr.Le, expr.Ge, expr.Lt, expr.Gt:
		if n.Args[0].Sort == expr.SortArray {
			// The rewriter removes every array equality, so an array Eq
			// here means the pipeline was not run in order; an array
			// Distinct (a negated array equality) is never rewritten and
			// is rejected here as a literal with no rule.
			return megaerrors.New(megaerrors.KindNoRuleForStrengthening,
				"strengthener reached an unrewritten array equality")
		}
		lhs, op, c, err := normalize(n, negate, m)
		if err != nil {
			return err
		}
		return strengthenAtom(imap, classes, lhs, op, c, m)
	default:
		return megaerrors.New(megaerrors.KindNoRuleForStrengthening,
			"literal is not a boolean atom: "+n.Kind.String())
	}
}

// normalize reduces a (possibly sense-flipped) comparison to (lhs, op, c)
// with op one of ≤, ≥, = and c a concrete int64 evaluated under m: strict
// comparisons move their slack into c, and ≠ picks whichever strict side m
// actually satisfies.
func normalize(n *expr.Node, negate bool, m *model.Model) (*expr.Node, Op, int64, error) {
	kind := n.Kind
	if negate {
		kind = negatedKind(kind)
	}
	a, b := n.Args[0], n.Args[1]
	switch kind {
	case expr.Eq:
		return a, OpEq, oracle.EvalInt(b, m), nil
	case expr.Distinct:
		va, vb := oracle.EvalInt(a, m), oracle.EvalInt(b, m)
		if va < vb {
			return a, OpLe, vb - 1, nil
		}
		return a, OpGe, vb + 1, nil
	case expr.Le:
		return a, OpLe, oracle.EvalInt(b, m), nil
	case expr.Ge:
		return a, OpGe, oracle.EvalInt(b, m), nil
	case expr.Lt:
		return a, OpLe, oracle.EvalInt(b, m) - 1, nil
	case expr.Gt:
		return a, OpGe, oracle.EvalInt(b, m) + 1, nil
	default:
		return nil, 0, 0, megaerrors.New(megaerrors.KindNoRuleForStrengthening,
			"unsupported comparison kind "+kind.String())
	}
}

func negatedKind(k expr.Kind) expr.Kind {
	switch k {
	case expr.Eq:
		return expr.Distinct
	case expr.Distinct:
		return expr.Eq
	case expr.Le:
		return expr.Gt
	case expr.Ge:
		return expr.Lt
	case expr.Lt:
		return expr.Ge
	case expr.Gt:
		return expr.Le
	default:
		return k
	}
}

func reverseOp(op Op) Op {
	switch op {
	case OpLe:
		return OpGe
	case OpGe:
		return OpLe
	default:
		return OpEq
	}
}

// negateConst returns -c, saturating at PosInf if c is NegInf (so a
// negated bound never silently wraps around int64's range).
func negateConst(c int64) int64 {
	if c == math.MinInt64 {
		return math.MaxInt64
	}
	return -c
}

// boundFor returns the Interval to meet a term with for (op, c): ≤ only
// tightens the upper endpoint, ≥ only the lower, = pins both.
func boundFor(op Op, c int64) interval.Interval {
	switch op {
	case OpLe:
		return interval.Interval{Low: interval.NegInf, High: c}
	case OpGe:
		return interval.Interval{Low: c, High: interval.PosInf}
	default:
		return interval.Point(c)
	}
}

func tighten(imap *interval.Map, term *expr.Node, op Op, c int64) {
	imap.Tighten(term, boundFor(op, c))
}
