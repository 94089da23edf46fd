package interval

import (
	"sort"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
)

// Map is the IntervalMap of spec.md §3: a mapping from a formula term
// (variable or select(array,index)) to an Interval, keyed by structural
// equality on the term. Insertion order is irrelevant to semantics;
// Entries() returns a deterministic order for callers (the sampling loop)
// that need one.
type Map struct {
	terms     map[string]*expr.Node
	intervals map[string]Interval
}

// New returns an empty IntervalMap.
func New() *Map {
	return &Map{terms: map[string]*expr.Node{}, intervals: map[string]Interval{}}
}

// Tighten meets the interval currently stored for term (Top() if term is
// new) with bound, per the Interval.SetLowerBound/SetUpperBound monotone
// semantics, and records the result.
func (m *Map) Tighten(term *expr.Node, bound Interval) {
	k := term.Key()
	cur, ok := m.intervals[k]
	if !ok {
		cur = Top()
		m.terms[k] = term
	}
	cur = cur.SetLowerBound(bound.Low)
	cur = cur.SetUpperBound(bound.High)
	m.intervals[k] = cur
}

// Get returns the interval recorded for term, and whether term is present.
func (m *Map) Get(term *expr.Node) (Interval, bool) {
	iv, ok := m.intervals[term.Key()]
	return iv, ok
}

// GetByKey looks a term up by its already-computed structural key.
func (m *Map) GetByKey(key string) (Interval, bool) {
	iv, ok := m.intervals[key]
	return iv, ok
}

// Set directly assigns term's interval, overwriting any prior bound
// (used when initializing a new member of a select-equivalence class from
// an existing member's interval — spec.md §4.4).
func (m *Map) Set(term *expr.Node, iv Interval) {
	m.terms[term.Key()] = term
	m.intervals[term.Key()] = iv
}

// Has reports whether term has an entry.
func (m *Map) Has(term *expr.Node) bool {
	_, ok := m.intervals[term.Key()]
	return ok
}

// Len returns the number of distinct keys.
func (m *Map) Len() int { return len(m.intervals) }

// HasBottom reports whether any key maps to an empty interval. Per spec.md
// §3, a caller finding this true must discard the current epoch rather than
// sample from the map.
func (m *Map) HasBottom() bool {
	for _, iv := range m.intervals {
		if iv.IsBottom() {
			return true
		}
	}
	return false
}

// Entry pairs a term with its interval, for deterministic iteration.
type Entry struct {
	Term     *expr.Node
	Interval Interval
}

// Entries returns every (term, interval) pair, sorted by a stable key
// derived from select-nesting depth then structural key string, matching
// the draw order the sampling loop requires (spec.md §4.5 step 3).
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.intervals))
	for k, term := range m.terms {
		out = append(out, Entry{Term: term, Interval: m.intervals[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Term.SelectDepth(), out[j].Term.SelectDepth()
		if di != dj {
			return di < dj
		}
		return out[i].Term.Key() < out[j].Term.Key()
	})
	return out
}

// InfiniteKeys returns the number of entries whose interval is one-sided
// infinite or Top (infinite on both sides), for the --interval-size
// statistics (spec.md §6).
func (m *Map) InfiniteKeys() int {
	n := 0
	for _, iv := range m.intervals {
		if iv.IsInfinite() || iv.IsTop() {
			n++
		}
	}
	return n
}

// AverageWidth returns the mean width across non-bottom entries, saturating
// per-entry per Interval.Width, used for the average_interval_size report
// field. Overflow of the sum itself is reported via overflowed=true and the
// sampler proceeds treating the map as maximally loose for statistics only
// (spec.md §7, OverflowInSize).
func (m *Map) AverageWidth() (avg float64, overflowed bool) {
	var sum float64
	n := 0
	for _, iv := range m.intervals {
		if iv.IsBottom() {
			continue
		}
		n++
		w := iv.Width()
		if w == PosInf {
			overflowed = true
			sum += float64(PosInf)
			continue
		}
		sum += float64(w)
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), overflowed
}
