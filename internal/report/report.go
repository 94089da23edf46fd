// Package report defines the JSON report of spec.md §6's "Persisted
// state": epochs, sample counts, and interval statistics, plus the
// per-category timing breakdown of SPEC_FULL.md's supplemented features,
// grounded on original_source/sampler.h's timer fields.
package report

import "encoding/json"

// Timing is the per-category wall-clock breakdown accumulated across
// every epoch of a run.
type Timing struct {
	ImplicantMS  int64 `json:"implicant_ms"`
	RewriteMS    int64 `json:"rewrite_ms"`
	StrengthenMS int64 `json:"strengthen_ms"`
	SamplingMS   int64 `json:"sampling_ms"`
}

// Report is the flat JSON document spec.md §6 describes; cmd/megasampler
// writes it alongside the samples file after every successful run.
type Report struct {
	Epochs              int     `json:"epochs"`
	TotalSamples        int64   `json:"total_samples"`
	ValidSamples        int64   `json:"valid_samples"`
	UniqueValidSamples  int64   `json:"unique_valid_samples"`
	InfiniteIntervals   int     `json:"infinite_intervals"`
	AverageIntervalSize float64 `json:"average_interval_size"`
	MethodName          string  `json:"method_name"`
	Timing              Timing  `json:"timing"`
}

// MarshalIndent renders r as pretty-printed JSON for the report file.
func (r *Report) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
