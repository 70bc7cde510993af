package opa_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/opa"
)

func TestCompareConditions(t *testing.T) {
	data := [][]float64{
		{1, 2, 4},
		{3, 2, 1},
		{1, 1, 1},
		{1, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 200

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)
	cc, err := opa.CompareConditions(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, opa.KindConditionComparison, cc.Kind())
	assert.Equal(t, 3, cc.K)

	r, c := cc.PCCs.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)

	// Diagonal and upper triangle are placeholders.
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			assert.Truef(t, math.IsNaN(cc.PCCs.At(i, j)), "PCCs(%d,%d)", i, j)
			assert.Truef(t, math.IsNaN(cc.ChanceValues.At(i, j)), "ChanceValues(%d,%d)", i, j)
		}
	}

	// Conditions 1 vs 2: column pairs (1,2) (3,2) (1,1) (1,2) against
	// sub-hypothesis [1,2] give relations +1,-1,0,+1 -> 2 of 4 correct.
	assert.InDelta(t, 50.0, cc.PCCs.At(1, 0), 1e-9)
	// Conditions 1 vs 3: (1,4) (3,1) (1,1) (1,1) -> 1 of 4.
	assert.InDelta(t, 25.0, cc.PCCs.At(2, 0), 1e-9)
	// Conditions 2 vs 3: (2,4) (2,1) (1,1) (2,1) -> 1 of 4.
	assert.InDelta(t, 25.0, cc.PCCs.At(2, 1), 1e-9)

	for _, idx := range [][2]int{{1, 0}, {2, 0}, {2, 1}} {
		v := cc.ChanceValues.At(idx[0], idx[1])
		assert.GreaterOrEqualf(t, v, 0.0, "ChanceValues(%d,%d)", idx[0], idx[1])
		assert.LessOrEqualf(t, v, 1.0, "ChanceValues(%d,%d)", idx[0], idx[1])
	}
}

func TestCompareConditionsReproducible(t *testing.T) {
	data := [][]float64{
		{1, 2, 4},
		{3, 2, 1},
		{1, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 100
	cfg.Seed = 11

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)

	a, err := opa.CompareConditions(context.Background(), m)
	require.NoError(t, err)
	b, err := opa.CompareConditions(context.Background(), m)
	require.NoError(t, err)

	assert.True(t, mat64Equal(a.ChanceValues.RawMatrix().Data, b.ChanceValues.RawMatrix().Data))
}

// mat64Equal compares two float slices treating NaN as equal to NaN.
func mat64Equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompareConditionsJointlyUnobservedPair(t *testing.T) {
	// Conditions 1 and 2 are never observed together, so their cell must
	// stay a placeholder while the other pairs are computed.
	data := [][]float64{
		{1, math.NaN(), 2},
		{math.NaN(), 1, 2},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 50

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)
	cc, err := opa.CompareConditions(context.Background(), m)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(cc.PCCs.At(1, 0)))
	assert.False(t, math.IsNaN(cc.PCCs.At(2, 0)))
	assert.False(t, math.IsNaN(cc.PCCs.At(2, 1)))
	assert.Equal(t, 100.0, cc.PCCs.At(2, 0))
	assert.Equal(t, 100.0, cc.PCCs.At(2, 1))
}

func TestCompareConditionsCancellation(t *testing.T) {
	data := [][]float64{
		{1, 2, 4},
		{3, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 1 << 20

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = opa.CompareConditions(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}
