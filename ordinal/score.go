package ordinal

import "fmt"

// RowScore is the result of scoring one data row against a hypothesis.
type RowScore struct {
	// Matches is the number of relations the row classifies the same way
	// as the hypothesis.
	Matches int
	// Relations is the number of relations actually evaluated. It shrinks
	// when the row has missing values, since a missing value invalidates
	// every relation incident on it.
	Relations int
	// PCC is the percent correct classification: Matches/Relations * 100.
	PCC float64
}

// DegenerateRowError reports a row with fewer than two non-missing values,
// which cannot form any relation.
type DegenerateRowError struct {
	// Finite is the number of non-missing values in the row.
	Finite int
}

func (e *DegenerateRowError) Error() string {
	return fmt.Sprintf("ordinal: row has %d finite values, need at least 2", e.Finite)
}

// ScoreRow scores one data row against a raw hypothesis of the same length.
// Missing values are stripped from the row, the hypothesis is conformed to
// the surviving positions, and the two are encoded and compared element-wise.
// The hypothesis is always encoded with threshold 0; the supplied threshold
// applies only to the row.
func ScoreRow(row, hypothesis []float64, p Pairing, threshold float64) (RowScore, error) {
	hyp, finite := Conform(hypothesis, row)
	if len(finite) < 2 {
		return RowScore{}, &DegenerateRowError{Finite: len(finite)}
	}

	hypRel, err := Encode(hyp, p, 0)
	if err != nil {
		return RowScore{}, err
	}
	rowRel, err := Encode(finite, p, threshold)
	if err != nil {
		return RowScore{}, err
	}

	matches := 0
	for i := range hypRel {
		if rowRel[i] == hypRel[i] {
			matches++
		}
	}

	n := len(hypRel)
	return RowScore{
		Matches:   matches,
		Relations: n,
		PCC:       float64(matches) / float64(n) * 100,
	}, nil
}

// CountMatches counts how many relations of an already-encoded hypothesis a
// candidate ordering of values classifies the same way, without allocating
// the intermediate relation vector. vals must already be free of missing
// values and of the length the hypothesis encoding was built from. This is
// the hot path of the resampling engine.
func CountMatches(hypRel []Relation, vals []float64, p Pairing, threshold float64) int {
	matches := 0
	if p == Adjacent {
		for k := 0; k+1 < len(vals); k++ {
			if SignWithThreshold(vals[k+1]-vals[k], threshold) == hypRel[k] {
				matches++
			}
		}
		return matches
	}

	idx := 0
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			if SignWithThreshold(vals[j]-vals[i], threshold) == hypRel[idx] {
				matches++
			}
			idx++
		}
	}
	return matches
}
