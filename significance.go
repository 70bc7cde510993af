package opa

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/nozzle/opa/resample"
)

// Chance holds the empirical significance results attached to a fitted
// model: chance-values, their denominators, and the retained reference
// distributions.
type Chance struct {
	// Method records how the reference distributions were generated.
	Method resample.Method

	// RowValues holds one chance-value per row: the fraction of that
	// row's reorderings scoring a PCC at least the observed PCC.
	RowValues []float64
	// RowTotals holds the matching denominators (permutation count for
	// Exact, NReps for Stochastic). A chance-value of 0 means "less than
	// 1/RowTotals", the resolution limit of the test.
	RowTotals []int

	// GroupValue is the pooled group chance-value: total exceed count
	// over total replicate count across all rows — a pooled ratio, not a
	// mean of the per-row values. GroupTotal is its denominator.
	GroupValue float64
	GroupTotal int

	// RowDistributions retains each row's replicate PCCs. Row lengths
	// differ under the exact method when rows differ in missingness.
	RowDistributions [][]float64
	// Replicates is the replicate-PCC matrix for the stochastic method:
	// one row per replicate draw, one column per individual. Nil for the
	// exact method.
	Replicates *mat.Dense
	// GroupReplicates is the pooled group-level PCC per stochastic
	// replicate draw, the sequence the comparison layer differences
	// against another model's. Nil for the exact method.
	GroupReplicates []float64

	// Warnings carries non-fatal advisories, such as factorial blowup on
	// the exact method.
	Warnings []resample.BlowupWarning
}

// AddChanceValues computes chance-values and reference distributions for the
// fitted model and returns an augmented copy; the receiver is unchanged.
// Random draws derive from Config.Seed and the row position, so results are
// reproducible for any worker count. The context cancels long enumerations.
func (m *Model) AddChanceValues(ctx context.Context) (*Model, error) {
	res, err := resample.Run(ctx, m.rowsFinite, m.hypConformed, m.Hypothesis.pairing, m.Config.Threshold, m.RowPCCs, resampleConfig(m.Config))
	if err != nil {
		return nil, err
	}

	out := *m
	out.Chance = newChance(res.Rows, m.Config, m.rowsFinite)
	return &out, nil
}

// AddChanceValues computes chance-values for every group and for the pooled
// whole, from a single resampling pass over all rows, and returns an
// augmented copy. Each row keeps the same derived random stream whether it
// is scored as part of its group or of the whole, so the group and pooled
// chance-values are mutually consistent.
func (g *GroupedModel) AddChanceValues(ctx context.Context) (*GroupedModel, error) {
	pooled := g.Pooled
	res, err := resample.Run(ctx, pooled.rowsFinite, pooled.hypConformed, pooled.Hypothesis.pairing, pooled.Config.Threshold, pooled.RowPCCs, resampleConfig(pooled.Config))
	if err != nil {
		return nil, err
	}

	out := *g
	wholeCopy := *pooled
	wholeCopy.Chance = newChance(res.Rows, pooled.Config, pooled.rowsFinite)
	out.Pooled = &wholeCopy

	out.Groups = make([]*Model, len(g.Groups))
	for gi, gm := range g.Groups {
		rows := make([]*resample.Row, gm.N)
		for k, ri := range gm.RowIndex {
			rows[k] = res.Rows[ri]
		}
		mCopy := *gm
		mCopy.Chance = newChance(rows, gm.Config, gm.rowsFinite)
		out.Groups[gi] = &mCopy
	}
	return &out, nil
}

func resampleConfig(cfg Config) resample.Config {
	return resample.Config{
		Method:     cfg.Method,
		NReps:      cfg.NReps,
		Seed:       cfg.Seed,
		NumWorkers: cfg.NumWorkers,
	}
}

// newChance pools per-row reference distributions into a Chance record.
func newChance(rows []*resample.Row, cfg Config, finite [][]float64) *Chance {
	n := len(rows)
	ch := &Chance{
		Method:           cfg.Method,
		RowValues:        make([]float64, n),
		RowTotals:        make([]int, n),
		RowDistributions: make([][]float64, n),
	}

	sumExceed := 0
	for i, row := range rows {
		ch.RowValues[i] = float64(row.Exceed) / float64(row.Total)
		ch.RowTotals[i] = row.Total
		ch.RowDistributions[i] = row.PCCs
		sumExceed += row.Exceed
		ch.GroupTotal += row.Total
	}
	ch.GroupValue = float64(sumExceed) / float64(ch.GroupTotal)

	if cfg.Method == resample.Exact {
		ch.Warnings = resample.WarnBlowup(finite)
		return ch
	}

	// Stochastic draws are index-aligned across rows, so replicate r of
	// the whole group is the pooled PCC of every row's r-th reordering.
	ch.Replicates = mat.NewDense(cfg.NReps, n, nil)
	ch.GroupReplicates = make([]float64, cfg.NReps)
	totalRelations := 0
	for _, row := range rows {
		totalRelations += row.Relations
	}
	for r := 0; r < cfg.NReps; r++ {
		matches := 0
		for i, row := range rows {
			ch.Replicates.Set(r, i, row.PCCs[r])
			matches += row.Matches[r]
		}
		ch.GroupReplicates[r] = float64(matches) / float64(totalRelations) * 100
	}
	return ch
}
