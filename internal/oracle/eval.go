package oracle

import (
	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/model"
)

// EvalConcrete is the shared total-evaluation routine backing the Oracle
// Eval contract: given a model with (possibly incomplete) array contents,
// it evaluates e to a concrete Value, completing any unwritten array index
// with that array's default value. Every Oracle implementation in this
// module (refsolver, and any future solver binding) can delegate Eval to
// this function; it is also called directly by the implicant extractor,
// array-equality rewriter, and strengthener, all of which need v(e) = m(e)
// without a round trip through the Oracle interface.
func EvalConcrete(e *expr.Node, m *model.Model) Value {
	switch e.Kind {
	case expr.IntConst:
		return IntValue(e.IntValue)
	case expr.BoolConst:
		return BoolValue(e.BoolValue)
	case expr.IntVar:
		v, _ := m.HasInt(e.Name)
		return IntValue(v)
	case expr.BoolVar:
		v, _ := m.HasInt(e.Name)
		return BoolValue(v != 0)
	case expr.UMinus:
		return IntValue(-EvalConcrete(e.Args[0], m).MustInt())
	case expr.Add:
		var sum int64
		for _, a := range e.Args {
			sum += EvalConcrete(a, m).MustInt()
		}
		return IntValue(sum)
	case expr.Sub:
		return IntValue(EvalConcrete(e.Args[0], m).MustInt() - EvalConcrete(e.Args[1], m).MustInt())
	case expr.Mul:
		prod := int64(1)
		for _, a := range e.Args {
			prod *= EvalConcrete(a, m).MustInt()
		}
		return IntValue(prod)
	case expr.Select:
		arrName := rootArrayName(e.Args[0])
		idx := EvalConcrete(e.Args[1], m).MustInt()
		return IntValue(m.EvalArray(arrName, idx))
	case expr.Store:
		// Stores are only ever evaluated as the operand of a Select in
		// practice (blast_select_store removes nested selects over stores
		// before this point); evaluating one directly is not needed by any
		// caller and is left unimplemented intentionally.
		panic("oracle: EvalConcrete called directly on a store term")
	case expr.Eq:
		return BoolValue(evalEqual(e.Args[0], e.Args[1], m))
	case expr.Distinct:
		return BoolValue(!evalEqual(e.Args[0], e.Args[1], m))
	case expr.Le:
		return BoolValue(EvalConcrete(e.Args[0], m).MustInt() <= EvalConcrete(e.Args[1], m).MustInt())
	case expr.Ge:
		return BoolValue(EvalConcrete(e.Args[0], m).MustInt() >= EvalConcrete(e.Args[1], m).MustInt())
	case expr.Lt:
		return BoolValue(EvalConcrete(e.Args[0], m).MustInt() < EvalConcrete(e.Args[1], m).MustInt())
	case expr.Gt:
		return BoolValue(EvalConcrete(e.Args[0], m).MustInt() > EvalConcrete(e.Args[1], m).MustInt())
	case expr.And:
		for _, a := range e.Args {
			if !EvalConcrete(a, m).MustBool() {
				return BoolValue(false)
			}
		}
		return BoolValue(true)
	case expr.Or:
		for _, a := range e.Args {
			if EvalConcrete(a, m).MustBool() {
				return BoolValue(true)
			}
		}
		return BoolValue(false)
	case expr.Not:
		return BoolValue(!EvalConcrete(e.Args[0], m).MustBool())
	case expr.Ite:
		if EvalConcrete(e.Args[0], m).MustBool() {
			return EvalConcrete(e.Args[1], m)
		}
		return EvalConcrete(e.Args[2], m)
	default:
		panic("oracle: EvalConcrete: unhandled kind " + e.Kind.String())
	}
}

func evalEqual(a, b *expr.Node, m *model.Model) bool {
	switch {
	case a.Sort == expr.SortBool:
		return EvalConcrete(a, m).MustBool() == EvalConcrete(b, m).MustBool()
	case a.Sort == expr.SortArray:
		return evalArrayEqual(a, b, m)
	default:
		return EvalConcrete(a, m).MustInt() == EvalConcrete(b, m).MustInt()
	}
}

// evalArrayEqual implements extensional array equality: two store-chain
// terms are equal under m iff every index either chain writes, or m
// assigns in either root array, resolves to the same value on both sides
// (a chain's own write first, else its root's value under m), and the two
// roots' default values agree for every remaining index. This is the
// only place a Store term is evaluated directly, since it must inspect the
// chain's own index/value writes rather than completing through a single
// root array's contents.
func evalArrayEqual(a, b *expr.Node, m *model.Model) bool {
	rootA, overridesA := materializeStoreChain(a, m)
	rootB, overridesB := materializeStoreChain(b, m)

	defaultA := m.ArrayDefaults[rootA]
	defaultB := m.ArrayDefaults[rootB]
	if rootA != rootB && defaultA != defaultB {
		return false
	}

	seen := map[int64]bool{}
	for idx := range overridesA {
		seen[idx] = true
	}
	for idx := range overridesB {
		seen[idx] = true
	}
	for idx := range m.Arrays[rootA] {
		seen[idx] = true
	}
	for idx := range m.Arrays[rootB] {
		seen[idx] = true
	}
	for idx := range seen {
		va, ok := overridesA[idx]
		if !ok {
			va = m.EvalArray(rootA, idx)
		}
		vb, ok := overridesB[idx]
		if !ok {
			vb = m.EvalArray(rootB, idx)
		}
		if va != vb {
			return false
		}
	}
	return true
}

// materializeStoreChain walks a down to its constant root, folding every
// store write along the way; an outer (later) write to an index shadows an
// inner (earlier) one, matching store-chain read semantics.
func materializeStoreChain(a *expr.Node, m *model.Model) (root string, overrides map[int64]int64) {
	overrides = map[int64]int64{}
	for a.Kind == expr.Store {
		idx := EvalConcrete(a.Args[1], m).MustInt()
		if _, ok := overrides[idx]; !ok {
			overrides[idx] = EvalConcrete(a.Args[2], m).MustInt()
		}
		a = a.Args[0]
	}
	return a.Name, overrides
}

// rootArrayName walks through a (possibly store-free, post
// blast_select_store) array term to its constant root name.
func rootArrayName(a *expr.Node) string {
	for a.Kind == expr.Store {
		a = a.Args[0]
	}
	return a.Name
}

// EvalInt is a convenience wrapper over EvalConcrete for int-sorted e.
func EvalInt(e *expr.Node, m *model.Model) int64 { return EvalConcrete(e, m).MustInt() }

// EvalBool is a convenience wrapper over EvalConcrete for bool-sorted e.
func EvalBool(e *expr.Node, m *model.Model) bool { return EvalConcrete(e, m).MustBool() }
