package pathwise

import (
	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
)

// DeflatedCap prices several caps over one rate axis. Each range is a cap made
// of the deflated caplets Start..End-1; all ranges share one set of caplets, so
// a caplet flow is computed once per step and copied to every cap that holds it.
type DeflatedCap struct {
	caplets      *DeflatedCaplet
	ranges       []Range
	numberRates  int
	currentIndex int

	innerCounts []int
	innerFlows  [][]CashFlow
}

// NewDeflatedCap builds the caps in startsAndEnds over deflated caplets sharing one strike.
func NewDeflatedCap(rateTimes, accruals, paymentTimes []float64, strike float64, startsAndEnds []Range) (*DeflatedCap, error) {
	caplets, err := NewDeflatedCapletWithStrike(rateTimes, accruals, paymentTimes, strike)
	if err != nil {
		return nil, err
	}
	n := caplets.numberRates
	if len(startsAndEnds) == 0 {
		return nil, errors.New("no cap ranges given")
	}
	for j, r := range startsAndEnds {
		if r.Start >= r.End {
			return nil, errors.Errorf("cap %d: start %d not before end %d", j, r.Start, r.End)
		}
		if r.Start < 0 || r.End > n {
			return nil, errors.Errorf("cap %d: range [%d, %d) outside [0, %d)", j, r.Start, r.End, n)
		}
	}
	c := &DeflatedCap{
		caplets:     caplets,
		ranges:      append([]Range(nil), startsAndEnds...),
		numberRates: n,
	}
	c.innerCounts, c.innerFlows = NewCashFlowBuffers(caplets)
	return c, nil
}

func (c *DeflatedCap) SuggestedNumeraires() []int                 { return c.caplets.SuggestedNumeraires() }
func (c *DeflatedCap) Evolution() *evolution.Description          { return c.caplets.Evolution() }
func (c *DeflatedCap) PossibleCashFlowTimes() []float64           { return c.caplets.PossibleCashFlowTimes() }
func (c *DeflatedCap) NumberOfProducts() int                      { return len(c.ranges) }
func (c *DeflatedCap) MaxNumberOfCashFlowsPerProductPerStep() int { return 1 }
func (c *DeflatedCap) AlreadyDeflated() bool                      { return c.caplets.AlreadyDeflated() }

// Ranges returns the caps in product order.
func (c *DeflatedCap) Ranges() []Range { return c.ranges }

func (c *DeflatedCap) Reset() {
	c.caplets.Reset()
	c.currentIndex = 0
}

func (c *DeflatedCap) NextTimeStep(state curvestate.CurveState, numberCashFlowsThisStep []int, cashFlowsGenerated [][]CashFlow) bool {
	i := c.currentIndex
	c.caplets.NextTimeStep(state, c.innerCounts, c.innerFlows)

	emitted := c.innerCounts[i]
	for j, r := range c.ranges {
		if emitted == 0 || !r.Contains(i) {
			numberCashFlowsThisStep[j] = 0
			continue
		}
		numberCashFlowsThisStep[j] = 1
		cashFlowsGenerated[j][0].copyFrom(c.innerFlows[i][0])
	}

	c.currentIndex++
	return c.currentIndex == c.numberRates
}

func (c *DeflatedCap) Clone() Product {
	clone := &DeflatedCap{
		caplets:      c.caplets.cloneCaplet(),
		ranges:       append([]Range(nil), c.ranges...),
		numberRates:  c.numberRates,
		currentIndex: c.currentIndex,
	}
	clone.innerCounts, clone.innerFlows = NewCashFlowBuffers(clone.caplets)
	return clone
}
