// Package resample builds empirical reference distributions for ordinal
// pattern analysis by rescoring reorderings of each data row against a
// hypothesis, either exhaustively over every permutation or by seeded Monte
// Carlo sampling.
package resample

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/nozzle/opa/internal/parallel"
	"github.com/nozzle/opa/internal/rand"
	"github.com/nozzle/opa/ordinal"
)

// Method selects how reference distributions are generated.
type Method int

const (
	// Stochastic draws NReps independent uniform-random reorderings of each
	// row's finite values.
	Stochastic Method = iota

	// Exact enumerates every permutation of each row's finite values. The
	// permutation count is factorial in the row length; see BlowupLimit.
	Exact
)

// ErrUnknownMethod is returned for a Method value outside the defined set.
var ErrUnknownMethod = errors.New("resample: unknown method")

// ErrInvalidReps is returned when the stochastic method is configured with
// fewer than one replicate.
var ErrInvalidReps = errors.New("resample: nreps must be at least 1")

// ErrExactTooLarge is returned when a row has so many finite values that its
// permutation count does not fit in an int. Enumeration could never finish
// at that size; use the stochastic method instead.
var ErrExactTooLarge = errors.New("resample: too many finite values for exact enumeration")

// maxExact is the largest row length whose factorial fits in an int64.
const maxExact = 20

func (m Method) String() string {
	switch m {
	case Stochastic:
		return "stochastic"
	case Exact:
		return "exact"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a configuration string into a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "stochastic":
		return Stochastic, nil
	case "exact":
		return Exact, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// BlowupLimit is the number of finite values per row above which the exact
// method emits a BlowupWarning. 11 values already imply ~4e7 permutations
// per row.
const BlowupLimit = 10

// BlowupWarning reports that the exact method was requested on a row whose
// finite-value count implies an impractically large permutation count. It is
// advisory: the enumeration still runs.
type BlowupWarning struct {
	// Row is the index of the offending row.
	Row int
	// Finite is the row's finite-value count.
	Finite int
	// Permutations is factorial(Finite), as a float to survive overflow.
	Permutations float64
}

func (w BlowupWarning) Error() string {
	return fmt.Sprintf("resample: exact method on row %d with %d finite values implies %.3g permutations",
		w.Row, w.Finite, w.Permutations)
}

// Config configures a resampling run.
type Config struct {
	// Method selects exact enumeration or stochastic sampling.
	Method Method
	// NReps is the number of random reorderings per row (stochastic only).
	NReps int
	// Seed is the base seed. Each row's generator is derived from it and
	// the row index, so results are reproducible regardless of worker
	// scheduling.
	Seed int64
	// NumWorkers is the number of goroutines for the per-row loop.
	// 0 = one per CPU.
	NumWorkers int
}

// Row is the reference distribution for a single data row.
type Row struct {
	// PCCs holds one replicate PCC per reordering.
	PCCs []float64
	// Matches holds the corresponding raw match counts. Needed to pool
	// group-level PCCs across rows within one replicate draw.
	Matches []int
	// Relations is the row's relation count, constant across replicates.
	Relations int
	// Exceed counts replicates with PCC at least the observed PCC.
	Exceed int
	// Total is the number of replicates: factorial(finite) for Exact,
	// NReps for Stochastic. It is the denominator of the row's
	// chance-value and bounds the resolution of the test.
	Total int
}

// Result is the outcome of a resampling run across all rows.
type Result struct {
	Rows []*Row
}

// WarnBlowup returns advisory warnings for every row whose finite-value
// count makes exact enumeration impractical. Callers using the Exact method
// should surface these before starting a run.
func WarnBlowup(rows [][]float64) []BlowupWarning {
	var warnings []BlowupWarning
	for i, vals := range rows {
		if len(vals) > BlowupLimit {
			warnings = append(warnings, BlowupWarning{
				Row:          i,
				Finite:       len(vals),
				Permutations: factorial(len(vals)),
			})
		}
	}
	return warnings
}

// Run generates a reference distribution per row. rows holds each row's
// finite values (missing values already stripped), hyps the hypothesis
// values conformed to each row, and observed each row's observed PCC. The
// three slices are index-aligned.
func Run(ctx context.Context, rows, hyps [][]float64, p ordinal.Pairing, threshold float64, observed []float64, cfg Config) (*Result, error) {
	switch cfg.Method {
	case Stochastic:
		if cfg.NReps < 1 {
			return nil, ErrInvalidReps
		}
	case Exact:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, cfg.Method)
	}
	if len(hyps) != len(rows) || len(observed) != len(rows) {
		return nil, fmt.Errorf("resample: %d rows, %d hypotheses, %d observed PCCs", len(rows), len(hyps), len(observed))
	}

	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = parallel.NumWorkers()
	}

	out, err := parallel.Map(len(rows), workers, func(i int) (*Row, error) {
		hypRel, err := ordinal.Encode(hyps[i], p, 0)
		if err != nil {
			return nil, fmt.Errorf("resample: row %d: %w", i, err)
		}
		if cfg.Method == Exact {
			return exactRow(ctx, rows[i], hypRel, p, threshold, observed[i])
		}
		rng := rand.New(rand.Derive(cfg.Seed, i))
		return stochasticRow(ctx, rows[i], hypRel, p, threshold, observed[i], cfg.NReps, rng)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Rows: out}, nil
}

// ctxCheckInterval is how many replicates each row processes between
// cancellation checks.
const ctxCheckInterval = 4096

// exactRow rescores every permutation of vals against the encoded
// hypothesis.
func exactRow(ctx context.Context, vals []float64, hypRel []ordinal.Relation, p ordinal.Pairing, threshold, observed float64) (*Row, error) {
	n := len(vals)
	if n > maxExact {
		return nil, fmt.Errorf("%w: %d values", ErrExactTooLarge, n)
	}
	relations := p.RelationCount(n)
	row := &Row{Relations: relations}

	gen := combin.NewPermutationGenerator(n, n)
	idx := make([]int, n)
	perm := make([]float64, n)

	for gen.Next() {
		if row.Total%ctxCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		gen.Permutation(idx)
		for k, src := range idx {
			perm[k] = vals[src]
		}
		tally(row, hypRel, perm, p, threshold, relations, observed)
	}
	return row, nil
}

// stochasticRow rescores nreps random reorderings of vals drawn with the
// row's own generator.
func stochasticRow(ctx context.Context, vals []float64, hypRel []ordinal.Relation, p ordinal.Pairing, threshold, observed float64, nreps int, rng *rand.MT19937) (*Row, error) {
	relations := p.RelationCount(len(vals))
	row := &Row{
		Relations: relations,
		PCCs:      make([]float64, 0, nreps),
		Matches:   make([]int, 0, nreps),
	}

	work := make([]float64, len(vals))
	copy(work, vals)

	for r := 0; r < nreps; r++ {
		if r%ctxCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rng.Shuffle(len(work), func(i, j int) {
			work[i], work[j] = work[j], work[i]
		})
		tally(row, hypRel, work, p, threshold, relations, observed)
	}
	return row, nil
}

// tally scores one reordering and records the replicate.
func tally(row *Row, hypRel []ordinal.Relation, vals []float64, p ordinal.Pairing, threshold float64, relations int, observed float64) {
	m := ordinal.CountMatches(hypRel, vals, p, threshold)
	pcc := float64(m) / float64(relations) * 100
	row.PCCs = append(row.PCCs, pcc)
	row.Matches = append(row.Matches, m)
	if pcc >= observed {
		row.Exceed++
	}
	row.Total++
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
