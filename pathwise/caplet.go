package pathwise

import (
	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
)

// Caplet prices one caplet per rate in a single pass. Caplet i reports in
// product slot i and pays accrual[i]*max(F_i-K_i, 0) at paymentTimes[i].
// Its pathwise value depends on F_i alone.
type Caplet struct {
	capletLegs
}

// NewCaplet builds one caplet per rate, caplet i fixing at rateTimes[i] and paying at paymentTimes[i].
func NewCaplet(rateTimes, accruals, paymentTimes, strikes []float64) (*Caplet, error) {
	legs, err := newCapletLegs(rateTimes, accruals, paymentTimes, strikes)
	if err != nil {
		return nil, err
	}
	return &Caplet{capletLegs: legs}, nil
}

// SuggestedNumeraires picks the payment bond of the caplet fixing at each step.
func (c *Caplet) SuggestedNumeraires() []int {
	numeraires := make([]int, c.numberRates)
	for i := range numeraires {
		numeraires[i] = i + 1
	}
	return numeraires
}

func (c *Caplet) Evolution() *evolution.Description          { return c.evolution }
func (c *Caplet) PossibleCashFlowTimes() []float64           { return c.paymentTimes }
func (c *Caplet) NumberOfProducts() int                      { return c.numberRates }
func (c *Caplet) MaxNumberOfCashFlowsPerProductPerStep() int { return 1 }
func (c *Caplet) AlreadyDeflated() bool                      { return false }
func (c *Caplet) Reset()                                     { c.currentIndex = 0 }

func (c *Caplet) NextTimeStep(state curvestate.CurveState, numberCashFlowsThisStep []int, cashFlowsGenerated [][]CashFlow) bool {
	i := c.currentIndex
	clear(numberCashFlowsThisStep)

	amount, slope := c.payoff(state, i)
	flow := &cashFlowsGenerated[i][0]
	flow.TimeIndex = i
	flow.Amount = amount
	clear(flow.Derivatives)
	flow.Derivatives[i] = slope
	numberCashFlowsThisStep[i] = 1

	c.currentIndex++
	return c.currentIndex == c.numberRates
}

func (c *Caplet) Clone() Product {
	return &Caplet{capletLegs: c.clone()}
}
