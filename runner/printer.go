package runner

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/floats"

	"github.com/Florian-Lackner/score-based-explanations/stats"
)

const histogramBins = 10

// ColumnStats summarizes each score column across the table's entities.
func (t *ScoreTable) ColumnStats() []*stats.Statistic {
	out := make([]*stats.Statistic, len(t.Columns))
	for i := range out {
		out[i] = &stats.Statistic{}
	}
	for _, r := range t.Rows {
		for i, v := range r.Scores {
			out[i].Push(v)
		}
	}
	return out
}

// Summary prints per-column statistics and a histogram of all scores.
func (t *ScoreTable) Summary(w io.Writer) error {
	fmt.Fprintf(w, "%s over %d entities\n", t.Kind, len(t.Rows))
	fmt.Fprintf(w, "%-20s %10s %10s %10s %10s %23s\n", "feature", "mean", "stdev", "min", "max", "95% interval")
	var all []float64
	for i, st := range t.ColumnStats() {
		lo, hi := st.Interval(95)
		fmt.Fprintf(w, "%-20s %10.4f %10.4f %10.4f %10.4f   [%9.4f, %9.4f]\n",
			t.Columns[i], st.Mean(), st.Stdev(), st.Min(), st.Max(), lo, hi)
	}
	for _, r := range t.Rows {
		all = append(all, r.Scores...)
	}
	if len(all) < 2 || floats.Min(all) == floats.Max(all) {
		return nil
	}
	fmt.Fprintln(w)
	h := histogram.Hist(histogramBins, all)
	return histogram.Fprint(w, h, histogram.Linear(40))
}
