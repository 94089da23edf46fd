// Package implicant extracts an m-implicant from an NNF formula and a
// satisfying model, per spec.md §4.2.
package implicant

import (
	"math/rand"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

// Extract walks f (already in NNF) guided by m, returning an ordered list
// of literals whose conjunction is satisfied by m and propositionally
// entails f. For an And node every child is visited; for an Or node only
// one satisfied child is chosen, uniformly at random via rnd, and
// recursed into — this is what makes the result a single conjunctive
// branch rather than the whole formula. Any other node is an atom and is
// emitted as-is.
//
// f must evaluate to true under m (the caller is expected to have just
// obtained m from a satisfying Oracle.Check), or Extract returns an
// error: landing on an Or node with no satisfied child, or any atom that
// m disagrees with, means the caller passed an inconsistent (f, m) pair.
func Extract(f *expr.Node, m *model.Model, rnd *rand.Rand) ([]*expr.Node, error) {
	var lits []*expr.Node
	if err := extract(f, m, rnd, &lits); err != nil {
		return nil, err
	}
	return lits, nil
}

func extract(n *expr.Node, m *model.Model, rnd *rand.Rand, out *[]*expr.Node) error {
	switch n.Kind {
	case expr.And:
		for _, c := range n.Args {
			if err := extract(c, m, rnd, out); err != nil {
				return err
			}
		}
		return nil

	case expr.Or:
		var satisfied []*expr.Node
		for _, c := range n.Args {
			if oracle.EvalBool(c, m) {
				satisfied = append(satisfied, c)
			}
		}
		if len(satisfied) == 0 {
			return megaerrors.New(megaerrors.KindUnknownResult,
				"implicant extraction: disjunction has no child satisfied by the seed model")
		}
		pick := satisfied[rnd.Intn(len(satisfied))]
		return extract(pick, m, rnd, out)

	default:
		if !oracle.EvalBool(n, m) {
			return megaerrors.New(megaerrors.KindUnknownResult,
				"implicant extraction: atom disagrees with the seed model")
		}
		*out = append(*out, n)
		return nil
	}
}
