package montecarlo

import (
	"github.com/meenmo/pathgreeks/statistics"
)

// Results holds Monte Carlo estimates per product. Deltas[p][k] is the
// sensitivity of product p to today's forward rate k.
type Results struct {
	RunID       string
	Paths       int
	Values      []float64
	ValueErrors []float64
	Deltas      [][]float64
	DeltaErrors [][]float64
}

func newResults(runID string, seq *statistics.Sequence, products, rates int) *Results {
	mean := seq.Mean()
	errs := seq.ErrorEstimate()
	r := &Results{
		RunID:       runID,
		Paths:       seq.Samples(),
		Values:      mean[:products],
		ValueErrors: errs[:products],
		Deltas:      make([][]float64, products),
		DeltaErrors: make([][]float64, products),
	}
	for p := 0; p < products; p++ {
		lo := products + p*rates
		r.Deltas[p] = mean[lo : lo+rates]
		r.DeltaErrors[p] = errs[lo : lo+rates]
	}
	return r
}
