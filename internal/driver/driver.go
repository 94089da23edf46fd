// Package driver implements the Driver of spec.md §4.6/§5: it owns the
// run's single PRNG, per-category timers, time/sample budgets, and the
// epoch loop that threads a seed model through the Implicant Extractor,
// Array-equality Rewriter, Strengthener, and Sampling Loop.
//
// Grounded on original_source/main.cpp and megasampler.cpp's top-level
// run loop.
package driver

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/L-Jun-Jie/megasampler/internal/config"
	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/implicant"
	"github.com/L-Jun-Jie/megasampler/internal/interval"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
	"github.com/L-Jun-Jie/megasampler/internal/preprocess"
	"github.com/L-Jun-Jie/megasampler/internal/report"
	"github.com/L-Jun-Jie/megasampler/internal/rewrite"
	"github.com/L-Jun-Jie/megasampler/internal/sampling"
	"github.com/L-Jun-Jie/megasampler/internal/strengthen"
)

// perCallTimeout bounds every Oracle Check call (spec.md §5: "50s").
const perCallTimeout = 50 * time.Second

// Driver runs the generalize-and-sample epoch loop to completion.
type Driver struct {
	Oracle oracle.Oracle
	Config config.Config
	Log    zerolog.Logger

	// EmitSample is called once per newly emitted unique sample, in
	// emission order, so the caller can stream it straight to the
	// `<input>.samples` file (spec.md §6) without buffering the whole
	// run in memory.
	EmitSample func(line string)

	// Seed fixes the PRNG's seed; zero means "seed from wall-clock time
	// at startup" per spec.md §5. Tests that need PRNG determinism
	// (spec.md §8 invariant 7) set this explicitly.
	Seed int64
}

// Run executes the full epoch loop and returns the final report. It
// never returns a non-nil error for a terminal-success disposition
// (Unsat, Unknown, or time budget expiry); those produce a normal report
// with no error, matching spec.md §6's exit-code-0 contract. Only
// ParseError/MalformedArrayTerm-class failures (or any unexpected Oracle
// error) return a non-nil error, for the caller to map to exit code 1.
func (d *Driver) Run(ctx context.Context) (*report.Report, error) {
	seed := d.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	f, vars, err := d.Oracle.Parse(d.Config.InputPath)
	if err != nil {
		return nil, err
	}
	f, err = d.Oracle.ApplyTactics(f, []string{"simplify(arith_lhs+blast_select_store)", "nnf"})
	if err != nil {
		return nil, err
	}
	pre, err := preprocess.Run(f, vars)
	if err != nil {
		return nil, err
	}

	uniqueness := map[string]bool{}
	rep := &report.Report{MethodName: "megasampler"}
	deadline := time.Now().Add(d.Config.TimeBudget)
	var widthSum float64
	var widthSamples int

	for {
		if time.Now().After(deadline) {
			d.Log.Debug().Msg("time budget expired")
			return rep, nil
		}
		if d.Config.SampleCap > 0 && rep.UniqueValidSamples >= d.Config.SampleCap {
			return rep, nil
		}

		cont, err := d.epoch(ctx, rnd, pre, uniqueness, rep, &widthSum, &widthSamples, deadline)
		if err != nil {
			return nil, err
		}
		if !cont {
			return rep, nil
		}
	}
}

// epoch runs exactly one iteration of the loop described in spec.md
// §4.6. It returns cont=false when the run should stop (Unsat or a
// fatal-to-the-run error was already handled), cont=true to keep
// looping.
func (d *Driver) epoch(
	ctx context.Context,
	rnd *rand.Rand,
	pre *preprocess.Result,
	uniqueness map[string]bool,
	rep *report.Report,
	widthSum *float64,
	widthSamples *int,
	deadline time.Time,
) (cont bool, err error) {
	d.Oracle.Push()
	defer d.Oracle.Pop()

	applyRandomSoftAssertions(d.Oracle, pre.Vars, rnd)

	res, err := oracle.CheckWithRetry(ctx, d.Oracle, perCallTimeout)
	if err != nil {
		if isKind(err, megaerrors.KindTimeout) {
			d.Log.Debug().Msg("epoch aborted: check-sat timed out twice")
			return true, nil
		}
		return false, err
	}
	if res == oracle.Unsat {
		d.Log.Debug().Msg("oracle reported unsat; run complete")
		return false, nil
	}

	m, err := d.Oracle.GetModel()
	if err != nil {
		return false, err
	}
	rep.Epochs++

	t0 := time.Now()
	lits, err := implicant.Extract(pre.Formula, m, rnd)
	rep.Timing.ImplicantMS += time.Since(t0).Milliseconds()
	if err != nil {
		d.Log.Debug().Err(err).Msg("epoch aborted: implicant extraction failed")
		return true, nil
	}

	pre.Graph.ResetEpoch()
	t1 := time.Now()
	lits, err = rewrite.Run(lits, m, pre.Graph)
	rep.Timing.RewriteMS += time.Since(t1).Milliseconds()
	if err != nil {
		d.Log.Debug().Err(err).Msg("epoch aborted: array-equality rewriting failed")
		return true, nil
	}

	t2 := time.Now()
	imap, err := strengthen.Run(lits, m)
	rep.Timing.StrengthenMS += time.Since(t2).Milliseconds()
	if err != nil {
		d.Log.Debug().Err(err).Msg("epoch aborted: strengthening failed")
		return true, nil
	}
	if imap.HasBottom() {
		d.Log.Debug().Msg("epoch aborted: interval map collapsed to bottom")
		return true, nil
	}

	if d.Config.IntervalSize {
		if avg, overflowed := imap.AverageWidth(); !overflowed {
			*widthSum += avg
			*widthSamples++
			rep.AverageIntervalSize = *widthSum / float64(*widthSamples)
		}
		rep.InfiniteIntervals += imap.InfiniteKeys()
	}

	remaining := int64(0)
	if d.Config.SampleCap > 0 {
		remaining = d.Config.SampleCap - rep.UniqueValidSamples
	}
	samplingCfg := sampling.Config{
		ConfiguredRounds: d.Config.ConfiguredRounds,
		MinRate:          d.Config.MinRate,
		Blocking:         d.Config.Blocking,
		ExhaustEpoch:     d.Config.ExhaustEpoch,
		MaxSamples:       remaining,
	}

	t3 := time.Now()
	lines, sstats := sampling.Run(imap, m, pre.Vars, rnd, uniqueness, samplingCfg, func() bool {
		return time.Now().After(deadline)
	})
	rep.Timing.SamplingMS += time.Since(t3).Milliseconds()

	rep.TotalSamples += sstats.SamplesTried
	rep.ValidSamples += sstats.ValidSamples
	rep.UniqueValidSamples += sstats.NewUnique
	for _, line := range lines {
		d.EmitSample(line)
	}

	if d.Config.Blocking {
		d.Oracle.AddHard(blockingConstraint(imap))
	}

	d.Log.Debug().
		Int("epoch", rep.Epochs).
		Int("rounds", sstats.Rounds).
		Int64("unique", sstats.NewUnique).
		Msg("epoch complete")

	return true, nil
}

func isKind(err error, k megaerrors.Kind) bool {
	me, ok := err.(*megaerrors.Error)
	return ok && me.Kind == k
}

// applyRandomSoftAssertions implements spec.md §4.6's "seed model biased
// by random soft assertions on variables": each declared variable gets a
// coin-flip chance of a soft assertion nudging the next model away from one
// specific small concrete value, so epochs explore varied regions of the
// space instead of always returning the oracle's default witness.
func applyRandomSoftAssertions(o oracle.Oracle, vars []expr.Var, rnd *rand.Rand) {
	const biasWindow = 10
	for _, v := range vars {
		if rnd.Intn(2) == 0 {
			continue
		}
		switch v.Sort {
		case expr.SortInt:
			target := rnd.Int63n(2*biasWindow+1) - biasWindow
			o.AddSoft(expr.NDistinct(expr.IntVariable(v.Name), expr.Int(target)), 1.0)
		case expr.SortBool:
			lit := expr.BoolVariable(v.Name)
			if rnd.Intn(2) == 0 {
				lit = expr.NNot(lit)
			}
			o.AddSoft(lit, 1.0)
		}
	}
}

// blockingConstraint implements spec.md §4.5's "Blocking": it appends
// ¬(⋀_k l_k ≤ k ≤ h_k) to the Oracle's hard constraints, built directly
// in NNF (as a disjunction of out-of-range literals, one- or two-sided
// per key depending on which bound is finite) so it needs no further
// rewriting before the Oracle's next check-sat.
func blockingConstraint(imap *interval.Map) *expr.Node {
	var disjuncts []*expr.Node
	for _, e := range imap.Entries() {
		if e.Interval.IsBottom() {
			continue
		}
		if e.Interval.Low != interval.NegInf {
			disjuncts = append(disjuncts, expr.NLt(e.Term, expr.Int(e.Interval.Low)))
		}
		if e.Interval.High != interval.PosInf {
			disjuncts = append(disjuncts, expr.NGt(e.Term, expr.Int(e.Interval.High)))
		}
	}
	if len(disjuncts) == 0 {
		return expr.Bool(false)
	}
	return expr.NOr(disjuncts...)
}
