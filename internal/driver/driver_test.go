package driver

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L-Jun-Jie/megasampler/internal/config"
	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/interval"
	"github.com/L-Jun-Jie/megasampler/internal/oracle/refsolver"
)

// presetOracle wraps a *refsolver.Solver but serves Parse from a fixed
// formula/vars pair instead of reading a file, so driver tests don't need
// to touch the filesystem.
type presetOracle struct {
	*refsolver.Solver
	formula  *expr.Node
	vars     []expr.Var
	parseErr error
}

func (p *presetOracle) Parse(string) (*expr.Node, []expr.Var, error) {
	if p.parseErr != nil {
		return nil, nil, p.parseErr
	}
	return p.formula, p.vars, nil
}

func newPresetOracle(f *expr.Node, vars []expr.Var, opts ...refsolver.Option) *presetOracle {
	return &presetOracle{Solver: refsolver.New(f, vars, opts...), formula: f, vars: vars}
}

func TestRunEndToEndCollectsUniqueSamplesUpToCap(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NAnd(expr.NGe(x, expr.Int(3)), expr.NLe(x, expr.Int(5)))
	vars := []expr.Var{{Name: "x", Sort: expr.SortInt}}

	var lines []string
	d := &Driver{
		Oracle: newPresetOracle(f, vars, refsolver.WithDomain(0, 10)),
		Config: config.Config{
			InputPath:        "unused.smt2",
			SampleCap:        3,
			TimeBudget:       5 * time.Second,
			ConfiguredRounds: 20,
			MinRate:          0,
		},
		Log:        zerolog.Nop(),
		EmitSample: func(line string) { lines = append(lines, line) },
		Seed:       42,
	}

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.UniqueValidSamples)
	assert.Len(t, lines, 3)
}

func TestRunStopsImmediatelyOnUnsat(t *testing.T) {
	d := &Driver{
		Oracle: newPresetOracle(expr.Bool(false), nil),
		Config: config.Config{
			InputPath:  "unused.smt2",
			SampleCap:  10,
			TimeBudget: time.Second,
		},
		Log:        zerolog.Nop(),
		EmitSample: func(string) {},
		Seed:       1,
	}

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Epochs)
	assert.Zero(t, rep.UniqueValidSamples)
}

func TestRunPropagatesParseErrorToCaller(t *testing.T) {
	d := &Driver{
		Oracle: &presetOracle{Solver: refsolver.New(nil, nil), parseErr: assertErr{}},
		Config: config.Config{InputPath: "bad.smt2", TimeBudget: time.Second},
		Log:    zerolog.Nop(),
	}

	_, err := d.Run(context.Background())
	assert.Error(t, err)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestRunRespectsExpiredTimeBudget(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NGe(x, expr.Int(0))
	d := &Driver{
		Oracle:     newPresetOracle(f, []expr.Var{{Name: "x", Sort: expr.SortInt}}, refsolver.WithDomain(0, 5)),
		Config:     config.Config{InputPath: "unused.smt2", SampleCap: 1_000_000, TimeBudget: 0},
		Log:        zerolog.Nop(),
		EmitSample: func(string) {},
		Seed:       3,
	}

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Epochs, "a zero time budget must expire before the first epoch runs")
}

func TestBlockingConstraintBuildsDisjunctionOfOutOfRangeLiterals(t *testing.T) {
	x := expr.IntVariable("x")
	imap := interval.New()
	imap.Tighten(x, interval.Interval{Low: 2, High: 8})

	c := blockingConstraint(imap)
	assert.Equal(t, expr.Or, c.Kind)
	require.Len(t, c.Args, 2)
}

func TestBlockingConstraintEmptyMapIsFalse(t *testing.T) {
	c := blockingConstraint(interval.New())
	assert.Equal(t, expr.BoolConst, c.Kind)
	assert.False(t, c.BoolValue)
}

func TestApplyRandomSoftAssertionsHandlesIntAndBoolVarsWithoutPanic(t *testing.T) {
	o := refsolver.New(expr.Bool(true), nil)
	vars := []expr.Var{{Name: "x", Sort: expr.SortInt}, {Name: "c", Sort: expr.SortBool}}
	rnd := rand.New(rand.NewSource(1))

	assert.NotPanics(t, func() { applyRandomSoftAssertions(o, vars, rnd) })
}

// TestRunEndToEndArrayEqualityScenario exercises spec.md's scenario 3:
// F := (store(a,i,v) = store(b,j,w)) ∧ (i ≠ j) ∧ (i=1) ∧ (j=2) ∧ (v=5) ∧
// (w=7). Before the extensional array-equality fix this panicked inside
// refsolver.Solver.Check's finish step the first time it evaluated the
// array-equality conjunct, so the Implicant Extractor, Array-equality
// Rewriter, and Strengthener (exercised earlier only via hand-built models
// bypassing the Oracle) were never reachable through a real Driver run.
func TestRunEndToEndArrayEqualityScenario(t *testing.T) {
	a := expr.ArrayVariable("a")
	b := expr.ArrayVariable("b")
	i := expr.IntVariable("i")
	j := expr.IntVariable("j")
	v := expr.IntVariable("v")
	w := expr.IntVariable("w")

	eq := expr.NEq(expr.NStore(a, i, v), expr.NStore(b, j, w))
	f := expr.NAnd(
		eq,
		expr.NDistinct(i, j),
		expr.NEq(i, expr.Int(1)),
		expr.NEq(j, expr.Int(2)),
		expr.NEq(v, expr.Int(5)),
		expr.NEq(w, expr.Int(7)),
	)
	vars := []expr.Var{
		{Name: "a", Sort: expr.SortArray},
		{Name: "b", Sort: expr.SortArray},
		{Name: "i", Sort: expr.SortInt},
		{Name: "j", Sort: expr.SortInt},
		{Name: "v", Sort: expr.SortInt},
		{Name: "w", Sort: expr.SortInt},
	}

	var lines []string
	d := &Driver{
		Oracle: newPresetOracle(f, vars, refsolver.WithDomain(-8, 8)),
		Config: config.Config{
			InputPath:        "unused.smt2",
			SampleCap:        1,
			TimeBudget:       5 * time.Second,
			ConfiguredRounds: 5,
			MinRate:          0,
		},
		Log:        zerolog.Nop(),
		EmitSample: func(line string) { lines = append(lines, line) },
		Seed:       7,
	}

	rep, err := d.Run(context.Background())
	require.NoError(t, err, "array-equality literal must evaluate, not panic, end to end")
	require.GreaterOrEqual(t, rep.Epochs, 1)
	require.NotEmpty(t, lines)

	fields := parseSampleLine(lines[0])
	assert.Equal(t, "1", fields["i"])
	assert.Equal(t, "2", fields["j"])
	assert.Equal(t, "5", fields["v"])
	assert.Equal(t, "7", fields["w"])
	if got, ok := fields["b[1]"]; ok {
		assert.Equal(t, "5", got, "b[i] must equal a's own written value at the shared index")
	}
	if got, ok := fields["a[2]"]; ok {
		assert.Equal(t, "7", got, "a[j] must equal b's own written value at the shared index")
	}
}

func parseSampleLine(line string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(line, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func TestIsKindMatchesWrappedErrorKind(t *testing.T) {
	err := megaerrors.New(megaerrors.KindTimeout, "retry under plain solver also returned unknown")
	assert.True(t, isKind(err, megaerrors.KindTimeout))
	assert.False(t, isKind(err, megaerrors.KindParseError))
}
