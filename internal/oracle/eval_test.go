package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/model"
	"github.com/L-Jun-Jie/megasampler/internal/oracle"
)

func TestEvalConcreteArithmetic(t *testing.T) {
	x := expr.IntVariable("x")
	y := expr.IntVariable("y")
	e := oracle.EvalConcrete(expr.NAdd(expr.NMul(expr.Int(2), x), y), modelWith(t, "x", 3, "y", 4))
	assert.Equal(t, int64(10), e.MustInt())
}

func TestEvalConcreteSelectUsesArrayDefault(t *testing.T) {
	a := expr.ArrayVariable("a")
	m := model.New()
	m.ArrayDefaults["a"] = 42
	sel := expr.NSelect(a, expr.Int(0))

	v := oracle.EvalConcrete(sel, m)
	assert.Equal(t, int64(42), v.MustInt())
}

func TestEvalConcreteSelectPrefersWrittenCell(t *testing.T) {
	m := model.New()
	m.SetArray("a", 5, 99)
	m.ArrayDefaults["a"] = 0
	sel := expr.NSelect(expr.ArrayVariable("a"), expr.Int(5))

	assert.Equal(t, int64(99), oracle.EvalConcrete(sel, m).MustInt())
}

func TestEvalConcreteIteTakesMatchingBranch(t *testing.T) {
	c := expr.BoolVariable("c")
	m := model.New()
	m.SetInt("c", 1)
	ite := expr.NIte(c, expr.Int(1), expr.Int(2))
	assert.Equal(t, int64(1), oracle.EvalConcrete(ite, m).MustInt())
}

func TestEvalConcreteDistinctIsNegatedEquality(t *testing.T) {
	x := expr.IntVariable("x")
	m := model.New()
	m.SetInt("x", 1)
	d := expr.NDistinct(x, expr.Int(1))
	assert.False(t, oracle.EvalConcrete(d, m).MustBool())
}

func TestEvalConcreteArrayEqualityMatchesOnSharedOverrides(t *testing.T) {
	a := expr.ArrayVariable("a")
	b := expr.ArrayVariable("b")
	// store(a,1,5) = store(b,2,7), i != j so a[2]=w, b[1]=v must hold: here
	// we directly assert the eventual rewriter-derived facts and check the
	// store-chain equality itself evaluates true once they do.
	lhs := expr.NStore(a, expr.Int(1), expr.Int(5))
	rhs := expr.NStore(b, expr.Int(2), expr.Int(7))
	eq := expr.NEq(lhs, rhs)

	m := model.New()
	m.ArrayDefaults["a"] = 0
	m.ArrayDefaults["b"] = 0
	m.SetArray("b", 1, 5) // b[1] must equal a's own write of 5 at index 1
	m.SetArray("a", 2, 7) // a[2] must equal b's own write of 7 at index 2

	assert.True(t, oracle.EvalConcrete(eq, m).MustBool(), "store chains must compare extensionally, not panic")
}

func TestEvalConcreteArrayEqualityDisagreesOnOverride(t *testing.T) {
	a := expr.ArrayVariable("a")
	b := expr.ArrayVariable("b")
	eq := expr.NEq(expr.NStore(a, expr.Int(1), expr.Int(5)), expr.NStore(b, expr.Int(2), expr.Int(7)))

	m := model.New()
	m.ArrayDefaults["a"] = 0
	m.ArrayDefaults["b"] = 0
	m.SetArray("b", 1, 99) // disagrees with a's write of 5 at index 1

	assert.False(t, oracle.EvalConcrete(eq, m).MustBool())
}

func TestEvalConcreteArrayEqualityRequiresMatchingDefaultsElsewhere(t *testing.T) {
	a := expr.ArrayVariable("a")
	b := expr.ArrayVariable("b")
	eq := expr.NEq(a, b)

	m := model.New()
	m.ArrayDefaults["a"] = 0
	m.ArrayDefaults["b"] = 1

	assert.False(t, oracle.EvalConcrete(eq, m).MustBool(), "distinct default values must disagree on every unwritten index")
}

func TestEvalConcreteArrayEqualitySameRootIsAlwaysEqual(t *testing.T) {
	a := expr.ArrayVariable("a")
	eq := expr.NEq(a, a)

	m := model.New()
	m.ArrayDefaults["a"] = 3

	assert.True(t, oracle.EvalConcrete(eq, m).MustBool())
}

func TestEvalConcreteArrayDistinctIsNegatedExtensionalEquality(t *testing.T) {
	a := expr.ArrayVariable("a")
	b := expr.ArrayVariable("b")
	d := expr.NDistinct(a, b)

	m := model.New()
	m.ArrayDefaults["a"] = 0
	m.ArrayDefaults["b"] = 0

	assert.False(t, oracle.EvalConcrete(d, m).MustBool(), "equal defaults and no overrides means the arrays are equal, so distinct is false")
}

func TestEvalIntAndEvalBoolWrappers(t *testing.T) {
	m := model.New()
	m.SetInt("x", 7)
	assert.Equal(t, int64(7), oracle.EvalInt(expr.IntVariable("x"), m))
	assert.True(t, oracle.EvalBool(expr.NLe(expr.Int(1), expr.Int(2)), m))
}

func modelWith(t *testing.T, kv ...interface{}) *model.Model {
	t.Helper()
	m := model.New()
	for i := 0; i+1 < len(kv); i += 2 {
		m.SetInt(kv[i].(string), int64(kv[i+1].(int)))
	}
	return m
}
