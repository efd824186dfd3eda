package termstructure

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/utils"
)

// DiscountCurve holds discount factors on node dates and interpolates log-linearly
// in time, i.e. with piecewise flat continuously compounded forwards.
type DiscountCurve struct {
	reference time.Time
	dates     []time.Time
	times     []float64
	logDFs    []float64
	dayCount  utils.DayCount
}

// NewDiscountCurve builds a curve from explicitly provided discount factors.
// The reference date gets DF = 1 unless it is already a node.
func NewDiscountCurve(reference time.Time, dfs map[time.Time]float64, dc utils.DayCount) (*DiscountCurve, error) {
	nodes := make(map[time.Time]float64, len(dfs)+1)
	for d, df := range dfs {
		if df <= 0 {
			return nil, errors.Errorf("non-positive discount factor %v on %s", df, d.Format(utils.DateLayout))
		}
		if d.Before(reference) {
			return nil, errors.Errorf("node %s before reference date %s", d.Format(utils.DateLayout), reference.Format(utils.DateLayout))
		}
		nodes[d] = df
	}
	if _, ok := nodes[reference]; !ok {
		nodes[reference] = 1.0
	}
	if len(nodes) < 2 {
		return nil, errors.New("discount curve needs at least one node after the reference date")
	}

	c := &DiscountCurve{reference: reference, dayCount: dc}
	for d := range nodes {
		c.dates = append(c.dates, d)
	}
	utils.SortDates(c.dates)
	c.times = make([]float64, len(c.dates))
	c.logDFs = make([]float64, len(c.dates))
	for i, d := range c.dates {
		c.times[i] = utils.YearFraction(reference, d, dc)
		c.logDFs[i] = math.Log(nodes[d])
	}
	return c, nil
}

// NewFlatCurve returns a curve with a constant continuously compounded zero rate up to maxDate.
func NewFlatCurve(reference, maxDate time.Time, rate float64, dc utils.DayCount) (*DiscountCurve, error) {
	t := utils.YearFraction(reference, maxDate, dc)
	return NewDiscountCurve(reference, map[time.Time]float64{maxDate: math.Exp(-rate * t)}, dc)
}

func (c *DiscountCurve) ReferenceDate() time.Time { return c.reference }

func (c *DiscountCurve) MaxDate() time.Time { return c.dates[len(c.dates)-1] }

func (c *DiscountCurve) DayCount() utils.DayCount { return c.dayCount }

// TimeFromReference converts a date to the curve's time axis.
func (c *DiscountCurve) TimeFromReference(d time.Time) float64 {
	return utils.YearFraction(c.reference, d, c.dayCount)
}

// DiscountAt returns the discount factor at curve time t.
func (c *DiscountCurve) DiscountAt(t float64) (float64, error) {
	last := c.times[len(c.times)-1]
	if t < 0 || t > last+1e-12 {
		return 0, errors.Errorf("time %.6f outside curve range [0, %.6f]", t, last)
	}
	// First index with times[i] >= t.
	i := sort.SearchFloat64s(c.times, t)
	if i < len(c.times) && c.times[i] == t {
		return math.Exp(c.logDFs[i]), nil
	}
	if i == 0 {
		return math.Exp(c.logDFs[0]), nil
	}
	if i >= len(c.times) {
		i = len(c.times) - 1
	}
	t1, t2 := c.times[i-1], c.times[i]
	w := (t - t1) / (t2 - t1)
	return math.Exp(c.logDFs[i-1] + w*(c.logDFs[i]-c.logDFs[i-1])), nil
}

// Discount returns the discount factor for a date.
func (c *DiscountCurve) Discount(d time.Time) (float64, error) {
	return c.DiscountAt(c.TimeFromReference(d))
}

// ForwardRate is the simply compounded forward between two dates accruing under dc.
func (c *DiscountCurve) ForwardRate(start, end time.Time, dc utils.DayCount) (float64, error) {
	if !end.After(start) {
		return 0, errors.Errorf("forward period %s-%s is empty", start.Format(utils.DateLayout), end.Format(utils.DateLayout))
	}
	df1, err := c.Discount(start)
	if err != nil {
		return 0, err
	}
	df2, err := c.Discount(end)
	if err != nil {
		return 0, err
	}
	return (df1/df2 - 1) / utils.YearFraction(start, end, dc), nil
}

// ZeroRate is the continuously compounded zero rate to d.
func (c *DiscountCurve) ZeroRate(d time.Time) (float64, error) {
	t := c.TimeFromReference(d)
	if t <= 0 {
		return 0, errors.Errorf("zero rate undefined at %s", d.Format(utils.DateLayout))
	}
	df, err := c.DiscountAt(t)
	if err != nil {
		return 0, err
	}
	return -math.Log(df) / t, nil
}
