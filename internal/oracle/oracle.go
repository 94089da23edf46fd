// Package oracle defines the external SMT-solver contract of spec.md §6:
// the core treats the solver as a black box that parses a formula, answers
// check-sat, and returns a concrete model — it never reasons about the
// solver's internals.
//
// A production binding (e.g. cgo to Z3) would implement Oracle directly.
// This module ships one reference implementation, refsolver, that answers
// the same contract over small bounded domains by enumeration, so the
// generalize-and-sample engine can be exercised end-to-end in tests without
// a solver binding — none is available anywhere in the example pack this
// module was grounded on.
package oracle

import (
	"context"
	"time"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/model"
)

// Result is the outcome of a check-sat call.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Oracle is the external collaborator contract of spec.md §6. Every method
// may block; the Driver is the only caller and treats each call as a
// suspension point (spec.md §5).
type Oracle interface {
	// Parse reads path and returns the root formula plus its declared
	// variables. Returns a *errors.Error{Kind: KindParseError} on failure.
	Parse(path string) (*expr.Node, []expr.Var, error)

	// ApplyTactics runs the named tactics once at startup (spec.md §6:
	// "simplify" with arith_lhs + blast_select_store, then "nnf") and
	// returns the transformed formula.
	ApplyTactics(f *expr.Node, tactics []string) (*expr.Node, error)

	// Check asks for satisfiability, bounded by timeout (spec.md: 50s
	// per-call default, passed in by the caller and enforced by the
	// implementation); cancelling ctx also ends the call.
	Check(ctx context.Context, timeout time.Duration) (Result, error)

	// GetModel returns a concrete model witnessing the last Sat result.
	GetModel() (*model.Model, error)

	// AddSoft pushes a soft (weighted) assertion used to bias the next
	// seed model (spec.md §4.6).
	AddSoft(e *expr.Node, weight float64)

	// AddHard pushes a hard constraint, e.g. a blocking clause (spec.md
	// §4.5 "Blocking") or a negated array equality.
	AddHard(e *expr.Node)

	// Push/Pop manage the incremental assertion stack.
	Push()
	Pop()

	// Eval performs total evaluation of e under m with default-value
	// completion (spec.md §6: "eval(expr, model, complete=true)").
	Eval(e *expr.Node, m *model.Model) (Value, error)
}

// Value is the tagged result of Eval: exactly one of IsInt or IsBool holds.
type Value struct {
	IsBool bool
	Int    int64
	Bool   bool
}

func IntValue(v int64) Value  { return Value{Int: v} }
func BoolValue(v bool) Value  { return Value{IsBool: true, Bool: v} }

// MustInt panics if v is not an int Value; used where the caller has
// already checked e.Sort == expr.SortInt.
func (v Value) MustInt() int64 {
	if v.IsBool {
		panic("oracle: expected int value, got bool")
	}
	return v.Int
}

// MustBool panics if v is not a bool Value.
func (v Value) MustBool() bool {
	if !v.IsBool {
		panic("oracle: expected bool value, got int")
	}
	return v.Bool
}
