// Package model implements the Model store of spec.md §3: a partial
// assignment of integer variables and sparse array contents, written at most
// once per key within a single sample, and the ConcreteModel returned by an
// Oracle's get_model/random-biased model calls.
//
// Grounded on original_source/model.h, which backs each array by a
// std::map<int64_t,int64_t> plus a default value used to complete eval().
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Model is a partial assignment: integers per name, and a sparse
// index->value map per array name. It backs both a seed ConcreteModel
// returned by the Oracle and the per-draw store built by the sampling loop.
type Model struct {
	Ints   map[string]int64
	Arrays map[string]map[int64]int64

	// ArrayDefaults supplies the "default-value completion" behavior the
	// Oracle's eval(expr, model, complete=true) contract requires: reading an
	// index never explicitly written returns this value instead of failing.
	ArrayDefaults map[string]int64
}

// New returns an empty Model.
func New() *Model {
	return &Model{
		Ints:          map[string]int64{},
		Arrays:        map[string]map[int64]int64{},
		ArrayDefaults: map[string]int64{},
	}
}

// SetInt writes v for name. Per spec.md §3 this must happen at most once per
// sample; SetInt panics on a conflicting second write to the same name with
// a different value, since that would indicate a logic bug upstream rather
// than a legitimate race (the model store is never shared across
// goroutines).
func (m *Model) SetInt(name string, v int64) {
	if cur, ok := m.Ints[name]; ok && cur != v {
		panic(fmt.Sprintf("model: conflicting write to int var %q: %d then %d", name, cur, v))
	}
	m.Ints[name] = v
}

// HasInt reports whether name has been written.
func (m *Model) HasInt(name string) (int64, bool) {
	v, ok := m.Ints[name]
	return v, ok
}

// SetArray writes arr[idx] = v. A conflicting second write panics for the
// same reason as SetInt.
func (m *Model) SetArray(arr string, idx, v int64) {
	bucket, ok := m.Arrays[arr]
	if !ok {
		bucket = map[int64]int64{}
		m.Arrays[arr] = bucket
	}
	if cur, ok := bucket[idx]; ok && cur != v {
		panic(fmt.Sprintf("model: conflicting write to %s[%d]: %d then %d", arr, idx, cur, v))
	}
	bucket[idx] = v
}

// GetArray returns arr[idx] and whether it has been explicitly written (as
// opposed to completed from the default).
func (m *Model) GetArray(arr string, idx int64) (int64, bool) {
	bucket, ok := m.Arrays[arr]
	if !ok {
		return 0, false
	}
	v, ok := bucket[idx]
	return v, ok
}

// EvalArray returns arr[idx], falling back to the array's default value if
// idx was never explicitly written, per the Oracle's complete=true
// evaluation contract.
func (m *Model) EvalArray(arr string, idx int64) int64 {
	if v, ok := m.GetArray(arr, idx); ok {
		return v
	}
	return m.ArrayDefaults[arr]
}

// String serializes the model to the canonical sample-line format of
// spec.md §6: "var0:val0;var1:val1;...;array0[i]:v;..." with keys in
// declaration order. order, when non-nil, fixes that ordering; any name not
// present in order is appended afterward sorted, so the function stays
// total even for partially-specified declaration orders (used by the
// uniqueness filter, which does not care about declaration order).
func (m *Model) String(order []string) string {
	var b strings.Builder
	first := true
	write := func(s string) {
		if !first {
			b.WriteByte(';')
		}
		first = false
		b.WriteString(s)
	}

	seen := map[string]bool{}
	for _, name := range order {
		if v, ok := m.Ints[name]; ok {
			write(fmt.Sprintf("%s:%d", name, v))
			seen[name] = true
			continue
		}
		if bucket, ok := m.Arrays[name]; ok {
			for _, idx := range sortedKeys(bucket) {
				write(fmt.Sprintf("%s[%d]:%d", name, idx, bucket[idx]))
			}
			seen[name] = true
		}
	}

	var remainingInts []string
	for name := range m.Ints {
		if !seen[name] {
			remainingInts = append(remainingInts, name)
		}
	}
	sort.Strings(remainingInts)
	for _, name := range remainingInts {
		write(fmt.Sprintf("%s:%d", name, m.Ints[name]))
	}

	var remainingArrays []string
	for name := range m.Arrays {
		if !seen[name] {
			remainingArrays = append(remainingArrays, name)
		}
	}
	sort.Strings(remainingArrays)
	for _, name := range remainingArrays {
		bucket := m.Arrays[name]
		for _, idx := range sortedKeys(bucket) {
			write(fmt.Sprintf("%s[%d]:%d", name, idx, bucket[idx]))
		}
	}

	return b.String()
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
