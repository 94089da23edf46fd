// Package refsolver is the bounded-enumeration reference Oracle described in
// SPEC_FULL.md's DOMAIN STACK section: it answers the Oracle contract of
// spec.md §6 by brute-force search over a small integer domain, so the
// generalize-and-sample engine is exercisable from Go tests without a real
// SMT solver binding. It is not a substitute for Z3 on real workloads.
package refsolver

import (
	"context"
	"math/rand"
	"os"
	"sort"
	"time"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
	"github.com/L-Jun-Jie/megasampler/internal/smtlib"
)

// Solver is a reference Oracle over a fixed-size integer domain.
type Solver struct {
	vars  []expr.Var
	root  *expr.Node // conjunction of hard assertions, nil = true
	soft  []softAssertion
	rnd   *rand.Rand
	last  *model.Model

	// DomainLow/DomainHigh bound every int variable and every array cell
	// value considered during search. Small by design: this Oracle exists
	// to exercise the pipeline end-to-end, not to solve real workloads.
	DomainLow, DomainHigh int64

	// ArrayDefault is the default value completion for any array cell whose
	// index is never mentioned in the formula.
	ArrayDefault int64

	stack []frame
}

type softAssertion struct {
	expr   *expr.Node
	weight float64
}

// Option configures a new Solver.
type Option func(*Solver)

func WithDomain(low, high int64) Option {
	return func(s *Solver) { s.DomainLow, s.DomainHigh = low, high }
}

func WithSeed(seed int64) Option {
	return func(s *Solver) { s.rnd = rand.New(rand.NewSource(seed)) }
}

// New constructs a Solver directly from a formula and its declared
// variables (bypassing Parse, which is for loading from an SMT-LIB2 file
// via internal/smtlib).
func New(root *expr.Node, vars []expr.Var, opts ...Option) *Solver {
	s := &Solver{
		root:         root,
		vars:         vars,
		rnd:          rand.New(rand.NewSource(1)),
		DomainLow:    -32,
		DomainHigh:   32,
		ArrayDefault: 0,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Parse reads an SMT-LIB2 file using internal/smtlib and installs the
// parsed formula and declared variables as this Solver's hard assertions,
// so a freshly constructed *Solver{} can be used directly as an Oracle
// without a separate New call.
func (s *Solver) Parse(path string) (*expr.Node, []expr.Var, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, megaerrors.Wrap(megaerrors.KindParseError, path, err)
	}
	parsed, err := smtlib.Parse(string(src))
	if err != nil {
		return nil, nil, err
	}
	s.root = parsed.Formula
	s.vars = parsed.Vars
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(1))
	}
	if s.DomainHigh == 0 && s.DomainLow == 0 {
		s.DomainLow, s.DomainHigh = -32, 32
	}
	return parsed.Formula, parsed.Vars, nil
}

// ApplyTactics is a no-op passthrough: refsolver formulas are expected to
// already be in the simplified/NNF form the real tactic pipeline would
// produce (internal/preprocess.Run performs that transformation in Go
// directly, rather than asking the Oracle to do it).
func (s *Solver) ApplyTactics(f *expr.Node, tactics []string) (*expr.Node, error) {
	return f, nil
}

func (s *Solver) AddSoft(e *expr.Node, weight float64) {
	s.soft = append(s.soft, softAssertion{expr: e, weight: weight})
}

func (s *Solver) AddHard(e *expr.Node) {
	if s.root == nil {
		s.root = e
		return
	}
	s.root = expr.NAnd(s.root, e)
}

func (s *Solver) ClearSoft() { s.soft = nil }

type frame struct {
	root *expr.Node
	soft []softAssertion
}

func (s *Solver) Push() {
	s.stack = append(s.stack, frame{root: s.root, soft: append([]softAssertion(nil), s.soft...)})
}

func (s *Solver) Pop() {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.root, s.soft = top.root, top.soft
}

func (s *Solver) Eval(e *expr.Node, m *model.Model) (oracle.Value, error) {
	return oracle.EvalConcrete(e, m), nil
}

// Check runs the bounded search, respecting ctx cancellation and timeout.
// Among satisfying assignments it returns the one maximizing total
// satisfied-soft-assertion weight, breaking ties using s.rnd (an internal
// detail of this particular backend, not the Driver's single PRNG).
func (s *Solver) Check(ctx context.Context, timeout time.Duration) (oracle.Result, error) {
	deadline := time.Now().Add(timeout)
	cctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var best *model.Model
	bestScore := -1.0
	var bestScored []*model.Model

	found := false
	err := s.search(cctx, 0, model.New(), func(m *model.Model) bool {
		found = true
		score := s.softScore(m)
		if score > bestScore {
			bestScore = score
			bestScored = []*model.Model{m}
		} else if score == bestScore {
			bestScored = append(bestScored, cloneModel(m))
		}
		return false // keep searching for a better-scoring model
	})
	if err != nil {
		if cctx.Err() != nil {
			return oracle.Unknown, nil
		}
		return oracle.Unknown, err
	}
	if cctx.Err() != nil {
		// search stops quietly once cctx expires, so a cut-short
		// enumeration must not be mistaken for an exhaustive one.
		return oracle.Unknown, nil
	}
	if !found {
		return oracle.Unsat, nil
	}
	best = bestScored[s.rnd.Intn(len(bestScored))]
	s.last = best
	return oracle.Sat, nil
}

func (s *Solver) softScore(m *model.Model) float64 {
	var total float64
	for _, sa := range s.soft {
		if oracle.EvalConcrete(sa.expr, m).MustBool() {
			total += sa.weight
		}
	}
	return total
}

func (s *Solver) GetModel() (*model.Model, error) {
	if s.last == nil {
		return nil, megaerrors.New(megaerrors.KindUnknownResult, "GetModel called before a Sat Check")
	}
	return s.last, nil
}

// search assigns the idx'th int/bool variable, then at the base case
// resolves every array cell the formula actually reads before evaluating.
// onSat is called for each satisfying model found and returns whether to
// stop early.
func (s *Solver) search(ctx context.Context, idx int, m *model.Model, onSat func(*model.Model) bool) error {
	if ctx.Err() != nil {
		return nil
	}
	if idx == len(s.vars) {
		return s.searchArrays(ctx, m, onSat)
	}
	v := s.vars[idx]
	switch v.Sort {
	case expr.SortBool:
		for _, b := range [2]int64{0, 1} {
			m2 := cloneModel(m)
			m2.SetInt(v.Name, b)
			if err := s.search(ctx, idx+1, m2, onSat); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	case expr.SortInt:
		for val := s.DomainLow; val <= s.DomainHigh; val++ {
			m2 := cloneModel(m)
			m2.SetInt(v.Name, val)
			if err := s.search(ctx, idx+1, m2, onSat); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	case expr.SortArray:
		// array variables themselves carry no scalar assignment; their
		// cells are resolved in searchArrays.
		return s.search(ctx, idx+1, m, onSat)
	}
	return nil
}

type cellKey struct {
	arr string
	idx int64
}

func (s *Solver) searchArrays(ctx context.Context, m *model.Model, onSat func(*model.Model) bool) error {
	if s.root == nil {
		return s.finish(m, onSat)
	}
	selects := expr.CollectSelects(s.root)
	seen := map[cellKey]bool{}
	var cells []cellKey
	for _, sel := range selects {
		arrName := selectArrayName(sel.Args[0])
		idx := oracle.EvalConcrete(sel.Args[1], m).MustInt()
		ck := cellKey{arr: arrName, idx: idx}
		if !seen[ck] {
			seen[ck] = true
			cells = append(cells, ck)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].arr != cells[j].arr {
			return cells[i].arr < cells[j].arr
		}
		return cells[i].idx < cells[j].idx
	})
	for _, v := range s.vars {
		if v.Sort == expr.SortArray {
			m.ArrayDefaults[v.Name] = s.ArrayDefault
		}
	}
	return s.assignCells(ctx, cells, 0, m, onSat)
}

func (s *Solver) assignCells(ctx context.Context, cells []cellKey, idx int, m *model.Model, onSat func(*model.Model) bool) error {
	if ctx.Err() != nil {
		return nil
	}
	if idx == len(cells) {
		return s.finish(m, onSat)
	}
	for val := s.DomainLow; val <= s.DomainHigh; val++ {
		m2 := cloneModel(m)
		m2.SetArray(cells[idx].arr, cells[idx].idx, val)
		if err := s.assignCells(ctx, cells, idx+1, m2, onSat); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func (s *Solver) finish(m *model.Model, onSat func(*model.Model) bool) error {
	if s.root != nil && !oracle.EvalConcrete(s.root, m).MustBool() {
		return nil
	}
	onSat(m)
	return nil
}

func selectArrayName(a *expr.Node) string {
	for a.Kind == expr.Store {
		a = a.Args[0]
	}
	return a.Name
}

func cloneModel(m *model.Model) *model.Model {
	c := model.New()
	for k, v := range m.Ints {
		c.Ints[k] = v
	}
	for arr, bucket := range m.Arrays {
		nb := make(map[int64]int64, len(bucket))
		for k, v := range bucket {
			nb[k] = v
		}
		c.Arrays[arr] = nb
	}
	for k, v := range m.ArrayDefaults {
		c.ArrayDefaults[k] = v
	}
	return c
}

var _ oracle.PlainOracle = (*Solver)(nil)
