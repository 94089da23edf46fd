// Package sampling implements the Sampling Loop of spec.md §4.5: drawing
// points from an IntervalMap, validating them against a seed model's
// array commitments, and emitting unique samples.
package sampling

import (
	"math"
	"math/rand"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/interval"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

// MaxSamplesPerRound bounds draws attempted within a single round, per
// spec.md §4.5.
const MaxSamplesPerRound = 100

// Config controls the round budget and stopping behavior of one call to
// Run, per spec.md §4.5/§6.
type Config struct {
	ConfiguredRounds int
	MinRate          float64
	Blocking         bool
	ExhaustEpoch     bool
	// MaxSamples is the unique-sample budget still remaining for the run;
	// zero means unbounded. It both caps MAX_ROUNDS (max_samples/128) and
	// is polled as the per-epoch sample cap of spec.md §4.5's rate-control
	// bullet.
	MaxSamples int64
}

// Stats summarizes one Run call for the driver's accumulated statistics
// (spec.md §4.6).
type Stats struct {
	Rounds       int
	SamplesTried int64
	ValidSamples int64
	NewUnique    int64
}

// Run executes spec.md §4.5's sampling loop for one epoch. seen is the
// run-wide uniqueness set (canonical Model.String lines already emitted);
// Run adds every newly emitted line to it and returns those lines. timeUp
// is polled between rounds; when it reports true, Run stops as if the
// round-count cap were reached.
func Run(imap *interval.Map, seed *model.Model, vars []expr.Var, rnd *rand.Rand, seen map[string]bool, cfg Config, timeUp func() bool) ([]string, Stats) {
	var stats Stats

	if imap.Len() == 0 {
		// Nothing is constrained: there is no meaningful point to draw
		// from an empty box, so the epoch contributes no samples but
		// still counts as having run one round (spec.md §8 boundary test).
		stats.Rounds = 1
		return nil, stats
	}

	order := make([]string, len(vars))
	for i, v := range vars {
		order[i] = v.Name
	}

	entries := imap.Entries()
	maxRounds := roundBudget(entries, cfg)

	var emitted []string
	for cfg.ExhaustEpoch || stats.Rounds < maxRounds {
		if timeUp() {
			break
		}
		if cfg.MaxSamples > 0 && stats.NewUnique >= cfg.MaxSamples {
			break
		}
		stats.Rounds++

		var tried, newUnique int64
		for d := 0; d < MaxSamplesPerRound; d++ {
			if cfg.MaxSamples > 0 && stats.NewUnique >= cfg.MaxSamples {
				break
			}
			tried++
			stats.SamplesTried++

			line, ok := draw(entries, seed, order, rnd)
			if !ok {
				continue
			}
			stats.ValidSamples++
			if seen[line] {
				continue
			}
			seen[line] = true
			newUnique++
			stats.NewUnique++
			emitted = append(emitted, line)
		}

		if tried == 0 {
			break
		}
		if float64(newUnique)/float64(tried) < cfg.MinRate {
			break
		}
	}

	return emitted, stats
}

// roundBudget implements spec.md §4.5's round-budget formula.
func roundBudget(entries []interval.Entry, cfg Config) int {
	c := 1.0
	for _, e := range entries {
		c *= coefficient(e.Interval)
	}
	if cfg.Blocking {
		c += float64(len(entries))
	}

	maxRounds := cfg.ConfiguredRounds
	if ceiled := int(math.Ceil(c)); ceiled > maxRounds {
		maxRounds = ceiled
	}
	if cfg.MaxSamples > 0 {
		if capped := int(cfg.MaxSamples / 128); capped < maxRounds {
			maxRounds = capped
		}
	}
	if maxRounds < 1 {
		maxRounds = 1
	}
	return maxRounds
}

// coefficient implements spec.md §4.5's per-key round-budget factor f.
func coefficient(iv interval.Interval) float64 {
	if iv.IsInfinite() {
		return 4
	}
	w := float64(iv.Width())
	return 1 + math.Log2(1+math.Log2(1+w))
}

// draw performs one draw per spec.md §4.5 steps 1-4: a fresh store seeded
// from seed's assignments, with each IntervalMap key redrawn uniformly
// and select-terms validated against whatever the store already committed
// to for that (array, concrete index).
func draw(entries []interval.Entry, seed *model.Model, order []string, rnd *rand.Rand) (string, bool) {
	store := model.New()
	for name, v := range seed.ArrayDefaults {
		store.ArrayDefaults[name] = v
	}
	for arr, bucket := range seed.Arrays {
		nb := make(map[int64]int64, len(bucket))
		for k, v := range bucket {
			nb[k] = v
		}
		store.Arrays[arr] = nb
	}
	for name, v := range seed.Ints {
		store.Ints[name] = v
	}

	for _, e := range entries {
		if e.Term.Kind != expr.IntVar {
			continue
		}
		store.Ints[e.Term.Name] = e.Interval.RandomInRange(rnd)
	}

	for _, e := range entries {
		if e.Term.Kind != expr.Select {
			continue
		}
		arrName := expr.ArrayRootName(e.Term.Args[0])
		idx := oracle.EvalInt(e.Term.Args[1], store)

		if existing, ok := store.GetArray(arrName, idx); ok {
			if !e.Interval.IsInRange(existing) {
				return "", false
			}
			continue
		}
		store.SetArray(arrName, idx, e.Interval.RandomInRange(rnd))
	}

	return store.String(order), true
}
