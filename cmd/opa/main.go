// Command opa runs an ordinal pattern analysis on a CSV data file.
//
// Each CSV row is one individual, each column one measurement condition.
// Empty cells and the literal "NA" are treated as missing. An optional group
// column assigns individuals to groups for a grouped fit.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nozzle/opa"
	"github.com/nozzle/opa/ordinal"
	"github.com/nozzle/opa/resample"
)

type options struct {
	hypothesis string
	pairing    string
	threshold  float64
	method     string
	nreps      int
	seed       int64
	workers    int
	header     bool
	groupCol   int
	conditions bool
	verbose    bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "opa [flags] data.csv",
		Short: "Ordinal pattern analysis with permutation-based significance testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.hypothesis, "hypothesis", "", "comma-separated hypothesis values, e.g. 1,2,3 (required)")
	cmd.Flags().StringVar(&opts.pairing, "pairing", "pairwise", "pairing type: pairwise or adjacent")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "equality threshold for data relations")
	cmd.Flags().StringVar(&opts.method, "method", "stochastic", "significance method: stochastic or exact")
	cmd.Flags().IntVar(&opts.nreps, "nreps", 1000, "random reorderings per row (stochastic method)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker goroutines, 0 = one per CPU")
	cmd.Flags().BoolVar(&opts.header, "header", false, "treat the first CSV row as a header")
	cmd.Flags().IntVar(&opts.groupCol, "group-column", -1, "zero-based index of a group label column, -1 for none")
	cmd.Flags().BoolVar(&opts.conditions, "conditions", false, "also run the pairwise condition comparison")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "print progress")
	cmd.MarkFlagRequired("hypothesis")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, opts options) error {
	pairing, err := ordinal.ParsePairing(opts.pairing)
	if err != nil {
		return err
	}
	method, err := resample.ParseMethod(opts.method)
	if err != nil {
		return err
	}
	hypVals, err := parseFloats(opts.hypothesis)
	if err != nil {
		return fmt.Errorf("parsing hypothesis: %w", err)
	}
	h, err := opa.NewHypothesis(hypVals, pairing)
	if err != nil {
		return err
	}

	data, groups, err := loadCSV(path, opts.header, opts.groupCol)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if opts.verbose {
		fmt.Printf("Loaded %d rows with %d conditions\n", len(data), h.Len())
	}
	if method == resample.Exact {
		for i, row := range data {
			finite := 0
			for _, v := range row {
				if !math.IsNaN(v) {
					finite++
				}
			}
			if finite > resample.BlowupLimit {
				fmt.Fprintf(os.Stderr, "warning: row %d has %d finite values; exact enumeration is factorial in the row length\n", i, finite)
			}
		}
	}

	cfg := opa.Config{
		Threshold:  opts.threshold,
		Method:     method,
		NReps:      opts.nreps,
		Seed:       opts.seed,
		NumWorkers: opts.workers,
	}

	var result opa.Result
	var pooled *opa.Model
	if groups != nil {
		fitted, err := opa.FitGrouped(data, h, groups, cfg)
		if err != nil {
			return err
		}
		fitted, err = fitted.AddChanceValues(ctx)
		if err != nil {
			return err
		}
		result, pooled = fitted, fitted.Pooled
	} else {
		fitted, err := opa.Fit(data, h, cfg)
		if err != nil {
			return err
		}
		fitted, err = fitted.AddChanceValues(ctx)
		if err != nil {
			return err
		}
		result, pooled = fitted, fitted
	}

	opa.Summarize(os.Stdout, result)

	if opts.conditions {
		if opts.verbose {
			fmt.Println("Running pairwise condition comparison")
		}
		cc, err := opa.CompareConditions(ctx, pooled)
		if err != nil {
			return err
		}
		fmt.Println()
		opa.Summarize(os.Stdout, cc)
	}
	return nil
}

// loadCSV reads the data matrix and the optional group column. Empty cells
// and "NA" become NaN.
func loadCSV(path string, header bool, groupCol int) ([][]float64, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	var data [][]float64
	var groups []string
	for ln, rec := range records {
		if groupCol >= len(rec) {
			return nil, nil, fmt.Errorf("line %d: group column %d out of range", ln+1, groupCol)
		}
		row := make([]float64, 0, len(rec))
		for col, cell := range rec {
			if col == groupCol {
				groups = append(groups, strings.TrimSpace(cell))
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d, column %d: %w", ln+1, col+1, err)
			}
			row = append(row, v)
		}
		data = append(data, row)
	}
	return data, groups, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
