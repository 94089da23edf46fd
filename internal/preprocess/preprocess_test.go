package preprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/preprocess"
)

func TestRunConvertsToNNF(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NNot(expr.NAnd(expr.NLe(x, expr.Int(0)), expr.NGe(x, expr.Int(10))))

	res, err := preprocess.Run(f, []expr.Var{{Name: "x", Sort: expr.SortInt}})
	require.NoError(t, err)

	assert.Equal(t, expr.Or, res.Formula.Kind)
	for _, child := range res.Formula.Args {
		assert.NotEqual(t, expr.Not, child.Kind, "negation must be pushed to atoms, not left over a connective")
	}
}

func TestRunRenamesSolverInternalNames(t *testing.T) {
	v := expr.IntVariable("z3name!0")
	f := expr.NEq(v, expr.Int(1))

	res, err := preprocess.Run(f, []expr.Var{{Name: "z3name!0", Sort: expr.SortInt}})
	require.NoError(t, err)

	assert.Equal(t, "mega!z3name!0", res.Formula.Args[0].Name)
	assert.Equal(t, "mega!z3name!0", res.Vars[0].Name)
	assert.True(t, preprocess.IsToolIntroduced(res.Vars[0].Name))
}

func TestRunBuildsArrayEqualityGraphWithRenamedPointers(t *testing.T) {
	a := expr.ArrayVariable("z3name!a")
	b := expr.ArrayVariable("z3name!b")
	eq := expr.NEq(a, b)

	res, err := preprocess.Run(eq, nil)
	require.NoError(t, err)

	// The graph must be built over the *renamed* tree: HasArray must find
	// the post-rename name, and EdgeForEquality must match the pointer
	// that ended up inside res.Formula (not the pre-rename original eq).
	assert.True(t, res.Graph.HasArray("mega!z3name!a"))
	assert.False(t, res.Graph.HasArray("z3name!a"))

	found := res.Graph.EdgeForEquality("mega!z3name!a", res.Formula)
	assert.NotNil(t, found)
}

func TestRunFailsOnMalformedArrayEquality(t *testing.T) {
	// RHS of the array equality is an int-sorted select wrapped to look
	// array-sorted would be a type error upstream; here we directly craft
	// a node whose Sort lies about being an array without an ArrayVar or
	// Store root, to exercise decomposeChain's failure path.
	bad := &expr.Node{Kind: expr.IntConst, Sort: expr.SortArray, IntValue: 0}
	eq := &expr.Node{Kind: expr.Eq, Sort: expr.SortBool, Args: []*expr.Node{expr.ArrayVariable("a"), bad}}

	_, err := preprocess.Run(eq, nil)
	require.Error(t, err)
	me, ok := err.(*megaerrors.Error)
	require.True(t, ok)
	assert.Equal(t, megaerrors.KindMalformedArrayTerm, me.Kind)
}

func TestRunBlastsSelectOverStore(t *testing.T) {
	a := expr.ArrayVariable("a")
	store := expr.NStore(a, expr.Int(0), expr.Int(1))
	sel := expr.NSelect(store, expr.Int(0))
	f := expr.NEq(sel, expr.Int(1))

	res, err := preprocess.Run(f, nil)
	require.NoError(t, err)

	// After blast_select_store, no Select should sit directly atop a Store.
	var check func(n *expr.Node)
	check = func(n *expr.Node) {
		if n.Kind == expr.Select {
			assert.NotEqual(t, expr.Store, n.Args[0].Kind)
		}
		for _, c := range n.Args {
			check(c)
		}
	}
	check(res.Formula)
}
