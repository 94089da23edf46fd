// Package config holds the megasampler CLI's resolved flag values, plain
// struct style, mirroring kanso-lang-kanso's configuration-by-struct
// idiom rather than a framework-driven options object.
package config

import "time"

// Config is the fully-resolved set of run parameters, populated by
// cmd/megasampler from cobra flags (spec.md §6).
type Config struct {
	InputPath string

	// SampleCap is the global unique-sample cap (-n), default 1,000,000.
	SampleCap int64
	// TimeBudget is the wall-clock budget (-t), default 3600s.
	TimeBudget time.Duration

	Blocking     bool
	IntervalSize bool
	ExhaustEpoch bool
	Debug        bool

	// SMTBit, SMTBV, SAT select bitvector-sampler strategies that live
	// outside this module's core (spec.md §6); recognized so the CLI
	// doesn't reject them, but megasampler's core only handles QF_LIA and
	// QF_ALIA.
	SMTBit bool
	SMTBV  bool
	SAT    bool

	// ConfiguredRounds and MinRate feed the sampling loop's round budget
	// and rate control (spec.md §4.5); spec.md leaves their defaults
	// unspecified; see DESIGN.md for the chosen values.
	ConfiguredRounds int
	MinRate          float64
}

// Default returns a Config with every spec.md §6-documented default
// filled in.
func Default() Config {
	return Config{
		SampleCap:        1_000_000,
		TimeBudget:       3600 * time.Second,
		ConfiguredRounds: 10,
		MinRate:          0.05,
	}
}
