package pathwise

import (
	"math"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
)

// DeflatedCaplet emits caplet payoffs already expressed in units of the
// terminal bond P(t_N). Caplet i is divided by the realised ratio
// P(t_N)/P(t_{i+1}), so its amount also depends on the forwards i+1..N-1.
// Only strictly positive payoffs are emitted.
type DeflatedCaplet struct {
	capletLegs
}

const paymentTimeTolerance = 1e-12

// NewDeflatedCaplet builds one caplet per rate. Caplet i must pay at rateTimes[i+1],
// the bond it is deflated by.
func NewDeflatedCaplet(rateTimes, accruals, paymentTimes, strikes []float64) (*DeflatedCaplet, error) {
	legs, err := newCapletLegs(rateTimes, accruals, paymentTimes, strikes)
	if err != nil {
		return nil, err
	}
	for i, t := range paymentTimes {
		if math.Abs(t-rateTimes[i+1]) > paymentTimeTolerance {
			return nil, errors.Errorf("caplet %d pays at %v, deflated caplets must pay at the rate end %v", i, t, rateTimes[i+1])
		}
	}
	return &DeflatedCaplet{capletLegs: legs}, nil
}

// NewDeflatedCapletWithStrike uses one strike for every caplet.
func NewDeflatedCapletWithStrike(rateTimes, accruals, paymentTimes []float64, strike float64) (*DeflatedCaplet, error) {
	n := len(rateTimes) - 1
	if n < 0 {
		n = 0
	}
	return NewDeflatedCaplet(rateTimes, accruals, paymentTimes, repeat(strike, n))
}

func (c *DeflatedCaplet) SuggestedNumeraires() []int {
	return evolution.TerminalMeasure(c.evolution)
}

func (c *DeflatedCaplet) Evolution() *evolution.Description          { return c.evolution }
func (c *DeflatedCaplet) PossibleCashFlowTimes() []float64           { return c.paymentTimes }
func (c *DeflatedCaplet) NumberOfProducts() int                      { return c.numberRates }
func (c *DeflatedCaplet) MaxNumberOfCashFlowsPerProductPerStep() int { return 1 }
func (c *DeflatedCaplet) AlreadyDeflated() bool                      { return true }
func (c *DeflatedCaplet) Reset()                                     { c.currentIndex = 0 }

func (c *DeflatedCaplet) NextTimeStep(state curvestate.CurveState, numberCashFlowsThisStep []int, cashFlowsGenerated [][]CashFlow) bool {
	i := c.currentIndex
	clear(numberCashFlowsThisStep)

	amount, slope := c.payoff(state, i)
	if amount > 0 {
		n := c.numberRates
		numeraire := state.DiscountRatio(n, i+1)

		flow := &cashFlowsGenerated[i][0]
		flow.TimeIndex = i
		flow.Amount = amount / numeraire
		clear(flow.Derivatives)
		flow.Derivatives[i] = slope / numeraire
		// d(a/N)/dF_k = a'/N - a N'/N^2; N' vanishes outside i+1 <= k < n.
		for k := i + 1; k < n; k++ {
			dN := state.DiscountRatioDerivative(n, i+1, k)
			flow.Derivatives[k] = -amount * dN / (numeraire * numeraire)
		}
		numberCashFlowsThisStep[i] = 1
	}

	c.currentIndex++
	return c.currentIndex == c.numberRates
}

func (c *DeflatedCaplet) Clone() Product {
	return c.cloneCaplet()
}

func (c *DeflatedCaplet) cloneCaplet() *DeflatedCaplet {
	return &DeflatedCaplet{capletLegs: c.clone()}
}
