package opa

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// HypothesisComparison is the chance-value for the PCC difference between
// two models fit to the same data under different hypotheses.
type HypothesisComparison struct {
	// PCCDiff is the absolute difference of the two group PCCs.
	PCCDiff float64
	// ChanceValue is the fraction of replicate differences at least as
	// large as PCCDiff (absolute differences when TwoTailed).
	ChanceValue float64
	// TwoTailed records which tail rule produced ChanceValue.
	TwoTailed bool
	// Total is the number of replicate differences, the chance-value's
	// denominator.
	Total int
	// Diffs retains the replicate difference distribution.
	Diffs []float64
}

// Kind implements Result.
func (c *HypothesisComparison) Kind() Kind { return KindHypothesisComparison }

// GroupComparison is the chance-value for the PCC difference between two
// groups of one grouped fit.
type GroupComparison struct {
	// GroupA and GroupB name the compared groups.
	GroupA, GroupB string
	// PCCDiff is the absolute difference of the two group PCCs.
	PCCDiff float64
	// ChanceValue is the fraction of replicate differences at least as
	// large as PCCDiff (absolute differences when TwoTailed).
	ChanceValue float64
	// TwoTailed records which tail rule produced ChanceValue.
	TwoTailed bool
	// Total is the number of replicate differences.
	Total int
	// Diffs retains the replicate difference distribution.
	Diffs []float64
}

// Kind implements Result.
func (c *GroupComparison) Kind() Kind { return KindGroupComparison }

// CompareHypotheses estimates how likely a group-PCC difference at least as
// large as the observed one arises by chance, by differencing the two
// models' group-level replicate-PCC sequences replicate by replicate. Both
// models must carry stochastic chance-values with the same replicate count.
func CompareHypotheses(a, b *Model, twoTailed bool) (*HypothesisComparison, error) {
	ra, rb, err := alignedReplicates(a, b)
	if err != nil {
		return nil, err
	}

	diff, cval, diffs := diffDistribution(a.GroupPCC, b.GroupPCC, ra, rb, twoTailed)
	return &HypothesisComparison{
		PCCDiff:     diff,
		ChanceValue: cval,
		TwoTailed:   twoTailed,
		Total:       len(diffs),
		Diffs:       diffs,
	}, nil
}

// CompareGroups estimates the chance-value for the PCC difference between
// two groups of a grouped fit, using the groups' stored replicate-PCC
// sequences. The grouped model must carry stochastic chance-values.
func CompareGroups(g *GroupedModel, groupA, groupB string, twoTailed bool) (*GroupComparison, error) {
	a := g.Group(groupA)
	if a == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, groupA)
	}
	b := g.Group(groupB)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, groupB)
	}

	ra, rb, err := alignedReplicates(a, b)
	if err != nil {
		return nil, err
	}

	diff, cval, diffs := diffDistribution(a.GroupPCC, b.GroupPCC, ra, rb, twoTailed)
	return &GroupComparison{
		GroupA:      groupA,
		GroupB:      groupB,
		PCCDiff:     diff,
		ChanceValue: cval,
		TwoTailed:   twoTailed,
		Total:       len(diffs),
		Diffs:       diffs,
	}, nil
}

// alignedReplicates extracts the two models' group-level replicate
// sequences, checking they can be matched draw for draw.
func alignedReplicates(a, b *Model) ([]float64, []float64, error) {
	ra := groupReplicates(a)
	rb := groupReplicates(b)
	if ra == nil || rb == nil {
		return nil, nil, ErrNoChanceValues
	}
	if len(ra) != len(rb) {
		return nil, nil, fmt.Errorf("%w: replicate counts differ (%d vs %d)", ErrNoChanceValues, len(ra), len(rb))
	}
	return ra, rb, nil
}

func groupReplicates(m *Model) []float64 {
	if m.Chance == nil {
		return nil
	}
	return m.Chance.GroupReplicates
}

// diffDistribution computes the observed absolute PCC difference, the
// element-wise replicate difference distribution, and the fraction of
// differences at least as extreme as observed.
func diffDistribution(pccA, pccB float64, ra, rb []float64, twoTailed bool) (pccDiff, chanceValue float64, diffs []float64) {
	pccDiff = math.Abs(pccA - pccB)

	diffs = make([]float64, len(ra))
	floats.SubTo(diffs, ra, rb)

	exceed := 0
	for _, d := range diffs {
		if twoTailed {
			d = math.Abs(d)
		}
		if d >= pccDiff {
			exceed++
		}
	}
	return pccDiff, float64(exceed) / float64(len(diffs)), diffs
}
