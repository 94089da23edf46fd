package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
)

func TestKeyStructuralEquality(t *testing.T) {
	a := expr.NAdd(expr.IntVariable("x"), expr.Int(1))
	b := expr.NAdd(expr.IntVariable("x"), expr.Int(1))
	c := expr.NAdd(expr.IntVariable("x"), expr.Int(2))

	assert.Equal(t, a.Key(), b.Key(), "structurally identical nodes must share a key")
	assert.NotEqual(t, a.Key(), c.Key())
	assert.True(t, expr.Equal(a, b))
	assert.False(t, expr.Equal(a, c))
}

func TestKeyIgnoresPointerIdentity(t *testing.T) {
	// Two separately-built trees representing the same term must compare
	// equal by Key even though they are different *Node allocations —
	// IntervalMap/ArrayEqualityGraph key off Key(), never pointer identity.
	sel1 := expr.NSelect(expr.ArrayVariable("a"), expr.IntVariable("i"))
	sel2 := expr.NSelect(expr.ArrayVariable("a"), expr.IntVariable("i"))
	assert.NotSame(t, sel1, sel2)
	assert.Equal(t, sel1.Key(), sel2.Key())
}

func TestIsLeaf(t *testing.T) {
	assert.True(t, expr.Int(3).IsLeaf())
	assert.True(t, expr.IntVariable("x").IsLeaf())
	assert.False(t, expr.NAdd(expr.Int(1), expr.Int(2)).IsLeaf())
}

func TestIsArrayEq(t *testing.T) {
	arrEq := expr.NEq(expr.ArrayVariable("a"), expr.ArrayVariable("b"))
	intEq := expr.NEq(expr.IntVariable("x"), expr.Int(1))
	assert.True(t, arrEq.IsArrayEq())
	assert.False(t, intEq.IsArrayEq())
}

func TestSelectDepth(t *testing.T) {
	a := expr.ArrayVariable("a")
	i := expr.IntVariable("i")
	sel1 := expr.NSelect(a, i)
	nested := expr.NSelect(a, sel1)

	assert.Equal(t, 0, i.SelectDepth())
	assert.Equal(t, 1, sel1.SelectDepth())
	assert.Equal(t, 2, nested.SelectDepth())
}

func TestCollectVarsDedupesInFirstEncounteredOrder(t *testing.T) {
	f := expr.NAnd(
		expr.NEq(expr.IntVariable("x"), expr.IntVariable("y")),
		expr.NEq(expr.IntVariable("x"), expr.Int(0)),
	)
	vars := expr.CollectVars(f)
	assert.Equal(t, []expr.Var{{Name: "x", Sort: expr.SortInt}, {Name: "y", Sort: expr.SortInt}}, vars)
}

func TestCollectSelectsDedupesStructurally(t *testing.T) {
	a := expr.ArrayVariable("a")
	i := expr.IntVariable("i")
	f := expr.NAnd(
		expr.NEq(expr.NSelect(a, i), expr.Int(1)),
		expr.NEq(expr.NSelect(a, i), expr.Int(1)),
	)
	sels := expr.CollectSelects(f)
	assert.Len(t, sels, 1)
}

func TestArrayRootNameWalksStoreChain(t *testing.T) {
	root := expr.ArrayVariable("a")
	chain := expr.NStore(expr.NStore(root, expr.Int(0), expr.Int(1)), expr.Int(1), expr.Int(2))
	assert.Equal(t, "a", expr.ArrayRootName(chain))
	assert.Equal(t, "a", expr.ArrayRootName(root))
}
