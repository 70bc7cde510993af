// Package ordinal encodes numeric sequences as signed ordinal relation
// vectors and scores how well one sequence's ordering predicts another's.
//
// A sequence of K values is reduced to a vector of pairwise (every i < j
// pair) or adjacent (consecutive pairs only) relations, each in {+1, 0, -1}
// under a configurable equality threshold. Two relation vectors are compared
// element-wise to produce a percent correct classification (PCC) score.
package ordinal

import (
	"errors"
	"fmt"
	"math"
)

// Pairing selects which index pairs of a sequence contribute a relation.
type Pairing int

const (
	// Pairwise emits one relation for every unordered pair of positions,
	// K*(K-1)/2 relations for a sequence of length K. Pairs are enumerated
	// with i ascending and, within each i, j ascending: (0,1), (0,2), ...,
	// (0,K-1), (1,2), ... Downstream index arithmetic relies on this order.
	Pairwise Pairing = iota

	// Adjacent emits one relation per consecutive pair, K-1 relations.
	Adjacent
)

// ErrShortSequence is returned when a sequence has fewer than two values and
// therefore cannot form any relation.
var ErrShortSequence = errors.New("ordinal: sequence must contain at least 2 values")

// ErrUnknownPairing is returned for a Pairing value outside the defined set.
var ErrUnknownPairing = errors.New("ordinal: unknown pairing type")

func (p Pairing) String() string {
	switch p {
	case Pairwise:
		return "pairwise"
	case Adjacent:
		return "adjacent"
	default:
		return fmt.Sprintf("Pairing(%d)", int(p))
	}
}

// ParsePairing converts a configuration string into a Pairing.
func ParsePairing(s string) (Pairing, error) {
	switch s {
	case "pairwise":
		return Pairwise, nil
	case "adjacent":
		return Adjacent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPairing, s)
	}
}

// RelationCount returns the number of relations a sequence of length k
// produces under this pairing.
func (p Pairing) RelationCount(k int) int {
	if p == Adjacent {
		return k - 1
	}
	return k * (k - 1) / 2
}

// Relation is a single signed ordinal relation.
type Relation int8

const (
	// Less indicates the second value is smaller than the first by more
	// than the threshold.
	Less Relation = -1
	// Tie indicates the two values differ by no more than the threshold.
	Tie Relation = 0
	// Greater indicates the second value is larger than the first by more
	// than the threshold.
	Greater Relation = 1
	// Missing propagates a missing (NaN) input value.
	Missing Relation = math.MinInt8
)

// SignWithThreshold returns the sign of x relative to a non-negative
// equality threshold t: Greater when x > t, Less when x < -t, Tie otherwise.
// With t = 0 this is the ordinary sign function. NaN input yields Missing.
// Note the two comparisons are independent: the value is tested against +t
// and -t, not rounded toward zero.
func SignWithThreshold(x, t float64) Relation {
	switch {
	case math.IsNaN(x):
		return Missing
	case x > t:
		return Greater
	case x < -t:
		return Less
	default:
		return Tie
	}
}

// Diffs returns the differences that feed the relation encoding: for
// Pairwise, xs[j]-xs[i] for every i < j in enumeration order; for Adjacent,
// the consecutive differences xs[k+1]-xs[k].
func Diffs(xs []float64, p Pairing) []float64 {
	if len(xs) < 2 {
		return nil
	}
	if p == Adjacent {
		out := make([]float64, len(xs)-1)
		for k := 0; k+1 < len(xs); k++ {
			out[k] = xs[k+1] - xs[k]
		}
		return out
	}

	out := make([]float64, 0, p.RelationCount(len(xs)))
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			out = append(out, xs[j]-xs[i])
		}
	}
	return out
}

// Encode converts a sequence into its relation vector under the given
// pairing and equality threshold. Missing (NaN) values propagate into
// Missing relations; callers scoring data rows are expected to strip
// missing values first (see Conform).
func Encode(xs []float64, p Pairing, threshold float64) ([]Relation, error) {
	if len(xs) < 2 {
		return nil, ErrShortSequence
	}

	diffs := Diffs(xs, p)
	rels := make([]Relation, len(diffs))
	for i, d := range diffs {
		rels[i] = SignWithThreshold(d, threshold)
	}
	return rels, nil
}

// Conform strips missing values from row and removes the hypothesis entries
// at the same original positions, so the two come out position-aligned. The
// hypothesis itself must not contain missing values; it is the row's
// missingness that drives removal.
func Conform(hypothesis, row []float64) (hypConformed, rowFinite []float64) {
	hypConformed = make([]float64, 0, len(row))
	rowFinite = make([]float64, 0, len(row))
	for i, v := range row {
		if math.IsNaN(v) {
			continue
		}
		rowFinite = append(rowFinite, v)
		hypConformed = append(hypConformed, hypothesis[i])
	}
	return hypConformed, rowFinite
}
