package opa

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
)

// FormatChanceValue renders a chance-value for display. A value of 0 means
// no replicate reached the observed PCC, so it prints as "<1/total" to state
// the resolution limit of the test instead of claiming impossibility.
func FormatChanceValue(v float64, total int) string {
	if v == 0 && total > 0 {
		return fmt.Sprintf("<%.3g", 1/float64(total))
	}
	return fmt.Sprintf("%.4g", v)
}

// Summarize writes a human-readable summary of any analysis result. It is
// plain presentation over the exported fields; nothing here feeds back into
// the computation.
func Summarize(w io.Writer, r Result) {
	switch r := r.(type) {
	case *Model:
		summarizeModel(w, r)
	case *GroupedModel:
		fmt.Fprintf(w, "Ordinal pattern analysis, %d groups\n", len(r.Groups))
		fmt.Fprintf(w, "Hypothesis: %v (%s, threshold %g)\n\n", r.Hypothesis.values, r.Hypothesis.pairing, r.Config.Threshold)
		for _, gm := range r.Groups {
			summarizeModel(w, gm)
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Pooled across groups:")
		summarizeModel(w, r.Pooled)
	case *HypothesisComparison:
		summarizeDiff(w, "hypotheses", r.PCCDiff, r.ChanceValue, r.TwoTailed, r.Total)
	case *GroupComparison:
		fmt.Fprintf(w, "Groups %q vs %q\n", r.GroupA, r.GroupB)
		summarizeDiff(w, "groups", r.PCCDiff, r.ChanceValue, r.TwoTailed, r.Total)
	case *ConditionComparison:
		summarizeConditions(w, r)
	default:
		fmt.Fprintf(w, "unknown result kind %v\n", r.Kind())
	}
}

func summarizeModel(w io.Writer, m *Model) {
	if m.Group != "" {
		fmt.Fprintf(w, "Group %q: ", m.Group)
	}
	fmt.Fprintf(w, "%d individuals, %d conditions, %s pairing, threshold %g\n",
		m.N, m.K, m.Hypothesis.pairing, m.Config.Threshold)
	fmt.Fprintf(w, "Group PCC: %.2f (%d of %d pairs correct, pooled)\n",
		m.GroupPCC, m.CorrectPairs, m.TotalPairs)
	fmt.Fprintf(w, "Mean individual PCC: %.2f\n", stat.Mean(m.RowPCCs, nil))

	if m.Chance == nil {
		return
	}

	fmt.Fprintf(w, "Group chance-value: %s (%s, %d total replicates)\n",
		FormatChanceValue(m.Chance.GroupValue, m.Chance.GroupTotal),
		m.Chance.Method, m.Chance.GroupTotal)

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "row\tPCC\tchance\treplicates")
	for i := range m.RowPCCs {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%d\n",
			m.RowIndex[i], m.RowPCCs[i],
			FormatChanceValue(m.Chance.RowValues[i], m.Chance.RowTotals[i]),
			m.Chance.RowTotals[i])
	}
	tw.Flush()

	for _, warn := range m.Chance.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warn)
	}
}

func summarizeDiff(w io.Writer, what string, pccDiff, cval float64, twoTailed bool, total int) {
	tail := "one-tailed"
	if twoTailed {
		tail = "two-tailed"
	}
	fmt.Fprintf(w, "PCC difference between %s: %.2f\n", what, pccDiff)
	fmt.Fprintf(w, "Chance-value (%s): %s over %d replicate differences\n",
		tail, FormatChanceValue(cval, total), total)
}

func summarizeConditions(w io.Writer, c *ConditionComparison) {
	fmt.Fprintf(w, "Pairwise condition comparison, %d conditions\n", c.K)
	fmt.Fprintln(w, "PCCs (lower triangle):")
	writeTriangle(w, c.PCCs, c.K)
	fmt.Fprintln(w, "Chance-values (lower triangle):")
	writeTriangle(w, c.ChanceValues, c.K)
}

func writeTriangle(w io.Writer, d interface{ At(i, j int) float64 }, k int) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for i := 1; i < k; i++ {
		cells := make([]string, 0, i+1)
		cells = append(cells, fmt.Sprintf("cond %d", i+1))
		for j := 0; j < i; j++ {
			v := d.At(i, j)
			if math.IsNaN(v) {
				cells = append(cells, "-")
			} else {
				cells = append(cells, fmt.Sprintf("%.3g", v))
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
