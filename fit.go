package opa

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nozzle/opa/ordinal"
	"github.com/nozzle/opa/resample"
)

// Model is a hypothesis fit to one sample of rows: per-row match statistics,
// the pooled group PCC, and, after AddChanceValues, the chance-values and
// reference distributions.
type Model struct {
	// Config echoes the configuration the model was fit with.
	Config Config
	// Hypothesis is the hypothesis the data was scored against.
	Hypothesis *Hypothesis
	// Group is the group label when the model is part of a grouped fit,
	// empty otherwise.
	Group string

	// N is the number of rows, K the number of conditions.
	N, K int
	// CorrectPairs and TotalPairs are the pooled match tallies across all
	// rows. GroupPCC is their ratio times 100 — a pooled rate, not the
	// mean of the per-row PCCs (the two differ whenever missing values
	// make row relation counts unequal).
	CorrectPairs int
	TotalPairs   int
	GroupPCC     float64

	// Per-row results, index-aligned with RowIndex.
	RowPCCs      []float64
	RowMatches   []int
	RowRelations []int
	// RowIndex maps each position back to the row's index in the original
	// data matrix.
	RowIndex []int

	// Chance holds chance-values and reference distributions once
	// AddChanceValues has run; nil before that.
	Chance *Chance

	// Retained inputs for resampling and condition comparison.
	data         [][]float64 // original rows, missing as NaN
	rowsFinite   [][]float64 // finite values per row
	hypConformed [][]float64 // hypothesis conformed to each row
}

// Kind implements Result.
func (m *Model) Kind() Kind { return KindSingleGroup }

// GroupedModel is one hypothesis fit independently to each level of a
// grouping partition, plus a pooled fit across all rows combined.
type GroupedModel struct {
	// Config echoes the configuration of the fit.
	Config Config
	// Hypothesis is shared by every group.
	Hypothesis *Hypothesis
	// Groups holds one model per level, in order of first appearance.
	Groups []*Model
	// Pooled is the whole-sample fit, pooling rows across all groups
	// under the same pooled-ratio rule.
	Pooled *Model
}

// Kind implements Result.
func (g *GroupedModel) Kind() Kind { return KindMultiGroup }

// Group returns the model for a group label, or nil if the label is
// unknown.
func (g *GroupedModel) Group(name string) *Model {
	for _, m := range g.Groups {
		if m.Group == name {
			return m
		}
	}
	return nil
}

// Fit scores every row of data against the hypothesis and pools the results.
// data is N rows by K columns with math.NaN marking missing cells; it is
// never mutated. Configuration and shape problems fail before any row is
// scored; a row with fewer than two finite values aborts the fit with a
// *ordinal.DegenerateRowError.
func Fit(data [][]float64, h *Hypothesis, cfg Config) (*Model, error) {
	if err := validate(data, h, nil, cfg); err != nil {
		return nil, err
	}
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	return fitRows(data, idx, h, cfg, "")
}

// FitMatrix is Fit for callers holding their data in a gonum matrix.
func FitMatrix(data *mat.Dense, h *Hypothesis, cfg Config) (*Model, error) {
	r, c := data.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		mat.Row(rows[i], i, data)
	}
	return Fit(rows, h, cfg)
}

// FitGrouped fits the hypothesis independently to each level of the grouping
// vector (one label per row, at least two distinct levels) and additionally
// pools all rows into one whole-sample fit.
func FitGrouped(data [][]float64, h *Hypothesis, groups []string, cfg Config) (*GroupedModel, error) {
	if err := validate(data, h, groups, cfg); err != nil {
		return nil, err
	}

	levels := make([]string, 0, 2)
	byLevel := make(map[string][]int)
	for i, g := range groups {
		if _, ok := byLevel[g]; !ok {
			levels = append(levels, g)
		}
		byLevel[g] = append(byLevel[g], i)
	}
	if len(levels) < 2 {
		return nil, fmt.Errorf("%w: grouping has %d level(s), need at least 2", ErrInvalidConfig, len(levels))
	}

	out := &GroupedModel{Config: cfg, Hypothesis: h, Groups: make([]*Model, 0, len(levels))}
	for _, level := range levels {
		m, err := fitRows(data, byLevel[level], h, cfg, level)
		if err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, m)
	}

	all := make([]int, len(data))
	for i := range all {
		all[i] = i
	}
	pooled, err := fitRows(data, all, h, cfg, "")
	if err != nil {
		return nil, err
	}
	out.Pooled = pooled
	return out, nil
}

// validate applies the fail-fast configuration and shape checks shared by
// Fit and FitGrouped.
func validate(data [][]float64, h *Hypothesis, groups []string, cfg Config) error {
	if cfg.Threshold < 0 {
		return fmt.Errorf("%w: threshold %v is negative", ErrInvalidConfig, cfg.Threshold)
	}
	switch cfg.Method {
	case resample.Stochastic:
		if cfg.NReps < 1 {
			return fmt.Errorf("%w: nreps %d, need at least 1", ErrInvalidConfig, cfg.NReps)
		}
	case resample.Exact:
	default:
		return fmt.Errorf("%w: unknown method %v", ErrInvalidConfig, cfg.Method)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: data has no rows", ErrShapeMismatch)
	}
	for i, row := range data {
		if len(row) != h.Len() {
			return fmt.Errorf("%w: row %d has %d columns, hypothesis has %d conditions",
				ErrShapeMismatch, i, len(row), h.Len())
		}
	}
	if groups != nil && len(groups) != len(data) {
		return fmt.Errorf("%w: %d group labels for %d rows", ErrShapeMismatch, len(groups), len(data))
	}
	return nil
}

// fitRows scores the rows of data selected by idx and pools the results.
// Inputs are assumed validated.
func fitRows(data [][]float64, idx []int, h *Hypothesis, cfg Config, group string) (*Model, error) {
	n := len(idx)
	m := &Model{
		Config:       cfg,
		Hypothesis:   h,
		Group:        group,
		N:            n,
		K:            h.Len(),
		RowPCCs:      make([]float64, n),
		RowMatches:   make([]int, n),
		RowRelations: make([]int, n),
		RowIndex:     make([]int, n),
		data:         make([][]float64, n),
		rowsFinite:   make([][]float64, n),
		hypConformed: make([][]float64, n),
	}

	for k, ri := range idx {
		row := data[ri]
		score, err := ordinal.ScoreRow(row, h.values, h.pairing, cfg.Threshold)
		if err != nil {
			return nil, fmt.Errorf("opa: row %d: %w", ri, err)
		}

		hyp, finite := ordinal.Conform(h.values, row)
		m.RowIndex[k] = ri
		m.RowPCCs[k] = score.PCC
		m.RowMatches[k] = score.Matches
		m.RowRelations[k] = score.Relations
		m.CorrectPairs += score.Matches
		m.TotalPairs += score.Relations

		m.data[k] = append([]float64(nil), row...)
		m.rowsFinite[k] = finite
		m.hypConformed[k] = hyp
	}

	// TotalPairs > 0 by construction: every surviving row has at least one
	// relation.
	m.GroupPCC = float64(m.CorrectPairs) / float64(m.TotalPairs) * 100
	return m, nil
}
