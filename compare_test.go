package opa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/opa"
	"github.com/nozzle/opa/ordinal"
)

var compareData = [][]float64{
	{1, 2, 4},
	{3, 2, 1},
	{1, 1, 1},
	{1, 2, 1},
	{2, 3, 4},
	{4, 2, 3},
}

func fitWithChance(t *testing.T, hyp []float64, cfg opa.Config) *opa.Model {
	t.Helper()
	h, err := opa.NewHypothesis(hyp, ordinal.Pairwise)
	require.NoError(t, err)
	m, err := opa.Fit(compareData, h, cfg)
	require.NoError(t, err)
	m, err = m.AddChanceValues(context.Background())
	require.NoError(t, err)
	return m
}

func TestCompareHypothesesSelf(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 200
	m := fitWithChance(t, []float64{1, 2, 3}, cfg)

	for _, twoTailed := range []bool{true, false} {
		c, err := opa.CompareHypotheses(m, m, twoTailed)
		require.NoError(t, err)
		assert.Equal(t, 0.0, c.PCCDiff)
		assert.Equal(t, 1.0, c.ChanceValue)
		assert.Equal(t, 200, c.Total)
		assert.Equal(t, opa.KindHypothesisComparison, c.Kind())
	}
}

func TestCompareHypothesesSymmetry(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 300
	a := fitWithChance(t, []float64{1, 2, 3}, cfg)
	b := fitWithChance(t, []float64{3, 2, 1}, cfg)

	ab, err := opa.CompareHypotheses(a, b, true)
	require.NoError(t, err)
	ba, err := opa.CompareHypotheses(b, a, true)
	require.NoError(t, err)

	assert.Equal(t, ab.PCCDiff, ba.PCCDiff)
	assert.Equal(t, ab.ChanceValue, ba.ChanceValue)
	assert.True(t, ab.TwoTailed)
	require.Len(t, ab.Diffs, 300)

	// The retained difference distributions mirror each other.
	for i := range ab.Diffs {
		assert.InDelta(t, -ba.Diffs[i], ab.Diffs[i], 1e-12)
	}
}

func TestCompareHypothesesOneTailed(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 300
	a := fitWithChance(t, []float64{1, 2, 3}, cfg)
	b := fitWithChance(t, []float64{3, 2, 1}, cfg)

	one, err := opa.CompareHypotheses(a, b, false)
	require.NoError(t, err)
	two, err := opa.CompareHypotheses(a, b, true)
	require.NoError(t, err)

	assert.False(t, one.TwoTailed)
	// One-tailed counts only the signed upper tail, never more than the
	// two-tailed count.
	assert.LessOrEqual(t, one.ChanceValue, two.ChanceValue)
}

func TestCompareHypothesesRequiresChanceValues(t *testing.T) {
	h, err := opa.NewHypothesis([]float64{1, 2, 3}, ordinal.Pairwise)
	require.NoError(t, err)
	bare, err := opa.Fit(compareData, h, opa.DefaultConfig())
	require.NoError(t, err)

	cfg := opa.DefaultConfig()
	cfg.NReps = 100
	fitted := fitWithChance(t, []float64{1, 2, 3}, cfg)

	_, err = opa.CompareHypotheses(bare, fitted, true)
	assert.ErrorIs(t, err, opa.ErrNoChanceValues)
	_, err = opa.CompareHypotheses(fitted, bare, true)
	assert.ErrorIs(t, err, opa.ErrNoChanceValues)
}

func TestCompareHypothesesRequiresStochastic(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 100
	stoch := fitWithChance(t, []float64{1, 2, 3}, cfg)
	exact := fitWithChance(t, []float64{1, 2, 3}, exactConfig())

	_, err := opa.CompareHypotheses(exact, stoch, true)
	assert.ErrorIs(t, err, opa.ErrNoChanceValues)
}

func TestCompareHypothesesRequiresMatchingReps(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 100
	a := fitWithChance(t, []float64{1, 2, 3}, cfg)
	cfg.NReps = 200
	b := fitWithChance(t, []float64{1, 2, 3}, cfg)

	_, err := opa.CompareHypotheses(a, b, true)
	assert.ErrorIs(t, err, opa.ErrNoChanceValues)
}

func TestCompareGroups(t *testing.T) {
	data := [][]float64{
		{1, 2, 3},
		{1, 3, 2},
		{3, 2, 1},
		{2, 3, 1},
	}
	groups := []string{"young", "young", "old", "old"}
	cfg := opa.DefaultConfig()
	cfg.NReps = 200

	h, err := opa.NewHypothesis([]float64{1, 2, 3}, ordinal.Pairwise)
	require.NoError(t, err)
	g, err := opa.FitGrouped(data, h, groups, cfg)
	require.NoError(t, err)
	g, err = g.AddChanceValues(context.Background())
	require.NoError(t, err)

	c, err := opa.CompareGroups(g, "young", "old", true)
	require.NoError(t, err)
	assert.Equal(t, opa.KindGroupComparison, c.Kind())
	assert.Equal(t, "young", c.GroupA)
	assert.Equal(t, "old", c.GroupB)
	// young 5/6, old 1/6: observed difference of 4/6 * 100.
	assert.InDelta(t, 400.0/6, c.PCCDiff, 1e-9)
	assert.GreaterOrEqual(t, c.ChanceValue, 0.0)
	assert.LessOrEqual(t, c.ChanceValue, 1.0)
	assert.Equal(t, 200, c.Total)

	// Order of the two groups must not change the two-tailed result.
	rev, err := opa.CompareGroups(g, "old", "young", true)
	require.NoError(t, err)
	assert.Equal(t, c.PCCDiff, rev.PCCDiff)
	assert.Equal(t, c.ChanceValue, rev.ChanceValue)

	_, err = opa.CompareGroups(g, "young", "ancient", true)
	assert.ErrorIs(t, err, opa.ErrUnknownGroup)
}

func TestCompareGroupsSelf(t *testing.T) {
	data := [][]float64{
		{1, 2, 3},
		{1, 3, 2},
		{3, 2, 1},
		{2, 3, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 100

	h, err := opa.NewHypothesis([]float64{1, 2, 3}, ordinal.Pairwise)
	require.NoError(t, err)
	g, err := opa.FitGrouped(data, h, []string{"a", "a", "b", "b"}, cfg)
	require.NoError(t, err)
	g, err = g.AddChanceValues(context.Background())
	require.NoError(t, err)

	c, err := opa.CompareGroups(g, "a", "a", true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.PCCDiff)
	assert.Equal(t, 1.0, c.ChanceValue)
}
