// Package opa implements ordinal pattern analysis, a non-parametric method
// for quantifying how well a hypothesized ordering of measurement conditions
// matches observed repeated-measures data.
//
// Each data row is reduced to a vector of signed ordinal relations (see the
// ordinal package) and compared against the same encoding of the hypothesis,
// yielding a percent correct classification (PCC) per row and a pooled PCC
// for the whole sample. Significance is estimated empirically: each row's
// values are reordered, exhaustively or by seeded Monte Carlo sampling, and
// the chance-value is the fraction of reorderings scoring at least the
// observed PCC.
//
// Basic usage:
//
//	h, _ := opa.NewHypothesis([]float64{1, 2, 3, 4}, ordinal.Pairwise)
//	model, _ := opa.Fit(data, h, opa.DefaultConfig())
//	model, _ = model.AddChanceValues(ctx)
package opa

import (
	"fmt"
	"math"

	"github.com/nozzle/opa/ordinal"
	"github.com/nozzle/opa/resample"
)

// Config configures fitting and significance testing.
type Config struct {
	// Threshold is the equality threshold for data relations: an absolute
	// difference of at most Threshold counts as a tie. Must be >= 0. The
	// hypothesis itself is always encoded with threshold 0.
	// Default: 0
	Threshold float64

	// Method selects how reference distributions are generated:
	// resample.Stochastic (NReps random reorderings per row) or
	// resample.Exact (every permutation; factorial cost).
	// Default: resample.Stochastic
	Method resample.Method

	// NReps is the number of random reorderings per row for the
	// stochastic method.
	// Default: 1000
	NReps int

	// Seed drives all random draws. Identical seeds give identical
	// chance-values regardless of worker count.
	// Default: 42
	Seed int64

	// NumWorkers is the number of goroutines for the per-row replicate
	// loop. 0 = one per CPU.
	// Default: 0
	NumWorkers int
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:  0,
		Method:     resample.Stochastic,
		NReps:      1000,
		Seed:       42,
		NumWorkers: 0,
	}
}

// Kind identifies the concrete type behind a Result.
type Kind int

const (
	// KindSingleGroup is a *Model: one hypothesis fit to one sample.
	KindSingleGroup Kind = iota
	// KindMultiGroup is a *GroupedModel: per-group fits plus a pooled whole.
	KindMultiGroup
	// KindHypothesisComparison is a *HypothesisComparison.
	KindHypothesisComparison
	// KindGroupComparison is a *GroupComparison.
	KindGroupComparison
	// KindConditionComparison is a *ConditionComparison.
	KindConditionComparison
)

func (k Kind) String() string {
	switch k {
	case KindSingleGroup:
		return "single-group fit"
	case KindMultiGroup:
		return "multi-group fit"
	case KindHypothesisComparison:
		return "hypothesis comparison"
	case KindGroupComparison:
		return "group comparison"
	case KindConditionComparison:
		return "condition comparison"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the union of everything the analysis can produce. Presentation
// code switches on Kind (or the concrete type) rather than reflecting over
// fields.
type Result interface {
	Kind() Kind
}

// Hypothesis is a hypothesized relative ordering of K measurement
// conditions. Only the relative order of its values carries meaning.
// Immutable once constructed.
type Hypothesis struct {
	values    []float64
	pairing   ordinal.Pairing
	relations []ordinal.Relation
}

// NewHypothesis builds a hypothesis from condition values and a pairing
// scheme. At least two conditions are required and values must not be
// missing. The relation vector is encoded once, with threshold 0, and
// cached.
func NewHypothesis(values []float64, pairing ordinal.Pairing) (*Hypothesis, error) {
	if pairing != ordinal.Pairwise && pairing != ordinal.Adjacent {
		return nil, fmt.Errorf("%w: %v", ordinal.ErrUnknownPairing, pairing)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: hypothesis has %d conditions, need at least 2", ErrInvalidConfig, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: hypothesis value %d is missing", ErrInvalidConfig, i)
		}
	}

	vals := make([]float64, len(values))
	copy(vals, values)
	rels, err := ordinal.Encode(vals, pairing, 0)
	if err != nil {
		return nil, err
	}
	return &Hypothesis{values: vals, pairing: pairing, relations: rels}, nil
}

// Len returns the number of conditions K.
func (h *Hypothesis) Len() int { return len(h.values) }

// Pairing returns the pairing scheme the hypothesis was encoded under.
func (h *Hypothesis) Pairing() ordinal.Pairing { return h.pairing }

// RelationCount returns the length of the hypothesis relation vector.
func (h *Hypothesis) RelationCount() int { return len(h.relations) }

// Values returns a copy of the condition values.
func (h *Hypothesis) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Relations returns a copy of the cached relation vector.
func (h *Hypothesis) Relations() []ordinal.Relation {
	out := make([]ordinal.Relation, len(h.relations))
	copy(out, h.relations)
	return out
}
