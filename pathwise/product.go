// Package pathwise holds products that emit, at every evolution step, their cash
// flows together with the exact derivative of each amount with respect to every
// forward rate of the current curve state.
//
// A product is a small state machine. Reset puts it at the start of a path and
// each NextTimeStep consumes the curve state of one rate fixing, so the cursor
// runs from 0 to NumberOfRates. Products hold only value data, which makes
// Clone a plain copy.
package pathwise

import (
	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
)

// CashFlow is one payment emitted during a step. TimeIndex points into
// PossibleCashFlowTimes; Derivatives has one entry per forward rate.
type CashFlow struct {
	TimeIndex   int
	Amount      float64
	Derivatives []float64
}

func (c *CashFlow) copyFrom(src CashFlow) {
	c.TimeIndex = src.TimeIndex
	c.Amount = src.Amount
	copy(c.Derivatives, src.Derivatives)
}

// Product is priced along simulated paths by a driver that discounts or sums
// the emitted flows.
type Product interface {
	// SuggestedNumeraires holds one numeraire bond index per evolution step.
	SuggestedNumeraires() []int
	Evolution() *evolution.Description
	PossibleCashFlowTimes() []float64
	NumberOfProducts() int
	MaxNumberOfCashFlowsPerProductPerStep() int
	// AlreadyDeflated reports whether amounts are already divided by the numeraire.
	AlreadyDeflated() bool
	Reset()
	// NextTimeStep writes the flows of the current step, one count per product,
	// and reports whether the path is finished.
	NextTimeStep(state curvestate.CurveState, numberCashFlowsThisStep []int, cashFlowsGenerated [][]CashFlow) bool
	Clone() Product
}

// NewCashFlowBuffers allocates output buffers sized for p.
func NewCashFlowBuffers(p Product) ([]int, [][]CashFlow) {
	rates := p.Evolution().NumberOfRates()
	counts := make([]int, p.NumberOfProducts())
	flows := make([][]CashFlow, p.NumberOfProducts())
	for i := range flows {
		flows[i] = make([]CashFlow, p.MaxNumberOfCashFlowsPerProductPerStep())
		for j := range flows[i] {
			flows[i][j].Derivatives = make([]float64, rates)
		}
	}
	return counts, flows
}

// Range selects the caplets Start <= i < End of a cap.
type Range struct {
	Start, End int
}

// Contains reports whether caplet i belongs to the cap.
func (r Range) Contains(i int) bool {
	return r.Start <= i && i < r.End
}

// capletLegs is the data shared by every caplet flavour.
type capletLegs struct {
	evolution    *evolution.Description
	accruals     []float64
	paymentTimes []float64
	strikes      []float64
	numberRates  int
	currentIndex int
}

func newCapletLegs(rateTimes, accruals, paymentTimes, strikes []float64) (capletLegs, error) {
	if len(rateTimes) < 2 {
		return capletLegs{}, errors.Errorf("at least two rate times required, got %d", len(rateTimes))
	}
	n := len(rateTimes) - 1
	if len(accruals) != n {
		return capletLegs{}, errors.Errorf("%d accruals given for %d rates", len(accruals), n)
	}
	if len(paymentTimes) != n {
		return capletLegs{}, errors.Errorf("%d payment times given for %d rates", len(paymentTimes), n)
	}
	if len(strikes) != n {
		return capletLegs{}, errors.Errorf("%d strikes given for %d rates", len(strikes), n)
	}
	desc, err := evolution.FromRateTimes(rateTimes)
	if err != nil {
		return capletLegs{}, err
	}
	return capletLegs{
		evolution:    desc,
		accruals:     append([]float64(nil), accruals...),
		paymentTimes: append([]float64(nil), paymentTimes...),
		strikes:      append([]float64(nil), strikes...),
		numberRates:  n,
	}, nil
}

func (l *capletLegs) clone() capletLegs {
	c := *l
	c.accruals = append([]float64(nil), l.accruals...)
	c.paymentTimes = append([]float64(nil), l.paymentTimes...)
	c.strikes = append([]float64(nil), l.strikes...)
	return c
}

// payoff returns the undeflated amount of caplet i and its slope in F_i.
func (l *capletLegs) payoff(state curvestate.CurveState, i int) (float64, float64) {
	f := state.ForwardRate(i)
	if f > l.strikes[i] {
		return l.accruals[i] * (f - l.strikes[i]), l.accruals[i]
	}
	return 0, 0
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
