package implicant_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
	"github.com/L-Jun-Jie/megasampler/internal/implicant"
	"github.com/L-Jun-Jie/megasampler/internal/model"
)

func TestExtractAndRecursesIntoEveryChild(t *testing.T) {
	x := expr.IntVariable("x")
	y := expr.IntVariable("y")
	f := expr.NAnd(expr.NLe(x, expr.Int(5)), expr.NGe(y, expr.Int(0)))

	m := model.New()
	m.SetInt("x", 1)
	m.SetInt("y", 1)

	rnd := rand.New(rand.NewSource(1))
	lits, err := implicant.Extract(f, m, rnd)
	require.NoError(t, err)
	assert.Len(t, lits, 2)
}

func TestExtractOrPicksExactlyOneSatisfiedChild(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NOr(expr.NEq(x, expr.Int(1)), expr.NEq(x, expr.Int(2)), expr.NEq(x, expr.Int(3)))

	m := model.New()
	m.SetInt("x", 2)

	rnd := rand.New(rand.NewSource(1))
	lits, err := implicant.Extract(f, m, rnd)
	require.NoError(t, err)
	require.Len(t, lits, 1)
	assert.Equal(t, expr.Eq, lits[0].Kind)
}

func TestExtractErrorsWhenOrHasNoSatisfiedChild(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NOr(expr.NEq(x, expr.Int(1)), expr.NEq(x, expr.Int(2)))

	m := model.New()
	m.SetInt("x", 99)

	rnd := rand.New(rand.NewSource(1))
	_, err := implicant.Extract(f, m, rnd)
	assert.Error(t, err)
}

func TestExtractErrorsWhenAtomDisagreesWithModel(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NEq(x, expr.Int(1))

	m := model.New()
	m.SetInt("x", 2)

	rnd := rand.New(rand.NewSource(1))
	_, err := implicant.Extract(f, m, rnd)
	assert.Error(t, err)
}

func TestExtractIsDeterministicForAFixedSeed(t *testing.T) {
	x := expr.IntVariable("x")
	f := expr.NOr(expr.NEq(x, expr.Int(1)), expr.NEq(x, expr.Int(1)), expr.NEq(x, expr.Int(1)))
	m := model.New()
	m.SetInt("x", 1)

	lits1, err := implicant.Extract(f, m, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	lits2, err := implicant.Extract(f, m, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, lits1[0].Key(), lits2[0].Key())
}
