package termstructure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/calendar"
	"github.com/meenmo/pathgreeks/utils"
)

// RateGrid is the forward-rate axis seen by a market model: count consecutive
// periods starting one lag after the curve reference date.
type RateGrid struct {
	Dates []time.Time
	// Times are on the curve's time axis; Taus are their differences.
	Times []float64
	Taus  []float64
	// Accruals are the coupon year fractions under the index day count.
	Accruals []float64
	// Forwards compound consistently with Taus, so P(t_i)/P(t_{i+1}) = 1 + Taus[i]*Forwards[i].
	Forwards        []float64
	InitialDiscount float64
}

// BuildRateGrid rolls tenor periods from reference+start (Modified Following) and reads
// the initial forwards off the curve.
func BuildRateGrid(curve *DiscountCurve, cal calendar.CalendarID, start, tenor utils.Period, count int, dc utils.DayCount) (*RateGrid, error) {
	if count < 1 {
		return nil, errors.Errorf("rate grid needs at least one period, got %d", count)
	}
	if tenor.Length <= 0 {
		return nil, errors.Errorf("non-positive tenor %s", tenor)
	}
	anchor := utils.AddPeriod(curve.ReferenceDate(), start)

	g := &RateGrid{
		Dates:    make([]time.Time, count+1),
		Times:    make([]float64, count+1),
		Taus:     make([]float64, count),
		Accruals: make([]float64, count),
		Forwards: make([]float64, count),
	}
	dfs := make([]float64, count+1)
	for i := 0; i <= count; i++ {
		p := utils.Period{Length: i * tenor.Length, Unit: tenor.Unit}
		g.Dates[i] = calendar.Adjust(cal, utils.AddPeriod(anchor, p))
		g.Times[i] = curve.TimeFromReference(g.Dates[i])
		if i > 0 && g.Times[i] <= g.Times[i-1] {
			return nil, errors.Errorf("rate dates not increasing at %s", g.Dates[i].Format(utils.DateLayout))
		}
		df, err := curve.Discount(g.Dates[i])
		if err != nil {
			return nil, errors.Wrapf(err, "rate date %d", i)
		}
		dfs[i] = df
	}
	for i := 0; i < count; i++ {
		g.Taus[i] = g.Times[i+1] - g.Times[i]
		g.Accruals[i] = utils.YearFraction(g.Dates[i], g.Dates[i+1], dc)
		g.Forwards[i] = (dfs[i]/dfs[i+1] - 1) / g.Taus[i]
	}
	g.InitialDiscount = dfs[0]
	return g, nil
}
