package opa

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConditionComparison holds the pairwise condition results: for every
// unordered pair of conditions, the group PCC and chance-value of the
// 2-condition sub-problem.
type ConditionComparison struct {
	// K is the number of conditions.
	K int
	// PCCs and ChanceValues are strictly lower-triangular K x K matrices:
	// entry (j, i) with j > i holds the result of comparing conditions i
	// and j. The diagonal and upper triangle hold NaN placeholders, as
	// does any pair with no jointly observed rows.
	PCCs         *mat.Dense
	ChanceValues *mat.Dense
}

// Kind implements Result.
func (c *ConditionComparison) Kind() Kind { return KindConditionComparison }

// CompareConditions runs the full fit-and-significance pipeline on every
// 2-condition sub-problem of a fitted model: for each condition pair, rows
// missing either condition are dropped, the corresponding two-element
// sub-hypothesis is scored against the two-column sub-data, and the group
// PCC and chance-value land in the lower triangle of the result matrices.
func CompareConditions(ctx context.Context, m *Model) (*ConditionComparison, error) {
	k := m.K
	pccs := nanDense(k, k)
	cvals := nanDense(k, k)

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			var sub [][]float64
			for _, row := range m.data {
				if math.IsNaN(row[i]) || math.IsNaN(row[j]) {
					continue
				}
				sub = append(sub, []float64{row[i], row[j]})
			}
			if len(sub) == 0 {
				// No row observes both conditions; the pair stays NaN.
				continue
			}

			subH, err := NewHypothesis([]float64{m.Hypothesis.values[i], m.Hypothesis.values[j]}, m.Hypothesis.pairing)
			if err != nil {
				return nil, fmt.Errorf("opa: conditions %d and %d: %w", i, j, err)
			}
			fitted, err := Fit(sub, subH, m.Config)
			if err != nil {
				return nil, fmt.Errorf("opa: conditions %d and %d: %w", i, j, err)
			}
			fitted, err = fitted.AddChanceValues(ctx)
			if err != nil {
				return nil, fmt.Errorf("opa: conditions %d and %d: %w", i, j, err)
			}

			pccs.Set(j, i, fitted.GroupPCC)
			cvals.Set(j, i, fitted.Chance.GroupValue)
		}
	}

	return &ConditionComparison{K: k, PCCs: pccs, ChanceValues: cvals}, nil
}

func nanDense(r, c int) *mat.Dense {
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.Set(i, j, math.NaN())
		}
	}
	return d
}
