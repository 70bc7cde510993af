package opa_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/opa"
)

func TestFormatChanceValue(t *testing.T) {
	assert.Equal(t, "<0.001", opa.FormatChanceValue(0, 1000))
	assert.Equal(t, "<0.0417", opa.FormatChanceValue(0, 24))
	assert.Equal(t, "0.05", opa.FormatChanceValue(0.05, 1000))
	assert.Equal(t, "1", opa.FormatChanceValue(1, 1000))
}

func TestSummarizeModel(t *testing.T) {
	data := [][]float64{
		{1, 2, 4},
		{3, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 100

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)
	m, err = m.AddChanceValues(context.Background())
	require.NoError(t, err)

	var sb strings.Builder
	opa.Summarize(&sb, m)
	out := sb.String()

	assert.Contains(t, out, "2 individuals, 3 conditions")
	assert.Contains(t, out, "Group PCC: 50.00")
	assert.Contains(t, out, "Group chance-value")
	assert.Contains(t, out, "stochastic")
}

func TestSummarizeGrouped(t *testing.T) {
	data := [][]float64{
		{1, 2, 3},
		{3, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 50

	g, err := opa.FitGrouped(data, ascendingHypothesis(t, 3), []string{"a", "b"}, cfg)
	require.NoError(t, err)

	var sb strings.Builder
	opa.Summarize(&sb, g)
	out := sb.String()

	assert.Contains(t, out, "2 groups")
	assert.Contains(t, out, `Group "a"`)
	assert.Contains(t, out, `Group "b"`)
	assert.Contains(t, out, "Pooled across groups")
}

func TestSummarizeComparison(t *testing.T) {
	cfg := opa.DefaultConfig()
	cfg.NReps = 100
	m := fitWithChance(t, []float64{1, 2, 3}, cfg)

	c, err := opa.CompareHypotheses(m, m, true)
	require.NoError(t, err)

	var sb strings.Builder
	opa.Summarize(&sb, c)
	out := sb.String()

	assert.Contains(t, out, "PCC difference between hypotheses: 0.00")
	assert.Contains(t, out, "two-tailed")
}

func TestSummarizeConditions(t *testing.T) {
	data := [][]float64{
		{1, 2, 4},
		{3, 2, 1},
	}
	cfg := opa.DefaultConfig()
	cfg.NReps = 50

	m, err := opa.Fit(data, ascendingHypothesis(t, 3), cfg)
	require.NoError(t, err)
	cc, err := opa.CompareConditions(context.Background(), m)
	require.NoError(t, err)

	var sb strings.Builder
	opa.Summarize(&sb, cc)
	out := sb.String()

	assert.Contains(t, out, "3 conditions")
	assert.Contains(t, out, "PCCs (lower triangle)")
	assert.Contains(t, out, "Chance-values (lower triangle)")
}
