package montecarlo

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/curvestate"
)

// Discounter values a unit payment at a fixed time in numeraire bonds,
// interpolating log-linearly between the bonds of the bracketing rate times.
type Discounter struct {
	before       int
	beforeWeight float64
}

func NewDiscounter(paymentTime float64, rateTimes []float64) (Discounter, error) {
	n := len(rateTimes) - 1
	if n < 1 {
		return Discounter{}, errors.Errorf("at least two rate times required, got %d", len(rateTimes))
	}
	if paymentTime < rateTimes[0] || paymentTime > rateTimes[n] {
		return Discounter{}, errors.Errorf("payment time %v outside rate times [%v, %v]", paymentTime, rateTimes[0], rateTimes[n])
	}
	// Largest index with rateTimes[before] <= paymentTime, capped so before+1 exists.
	before := sort.Search(len(rateTimes), func(i int) bool { return rateTimes[i] > paymentTime }) - 1
	if before == n {
		return Discounter{before: n - 1, beforeWeight: 0}, nil
	}
	weight := 1 - (paymentTime-rateTimes[before])/(rateTimes[before+1]-rateTimes[before])
	return Discounter{before: before, beforeWeight: weight}, nil
}

// NumeraireBonds is P(t_pay)/P(t_numeraire) on the given state.
func (d Discounter) NumeraireBonds(state curvestate.CurveState, numeraire int) float64 {
	pre := state.DiscountRatio(d.before, numeraire)
	if d.beforeWeight == 1 {
		return pre
	}
	post := state.DiscountRatio(d.before+1, numeraire)
	if d.beforeWeight == 0 {
		return post
	}
	return math.Pow(pre, d.beforeWeight) * math.Pow(post, 1-d.beforeWeight)
}

// Derivatives writes d NumeraireBonds / dF_k into out, one entry per rate.
func (d Discounter) Derivatives(state curvestate.CurveState, numeraire int, out []float64) {
	value := d.NumeraireBonds(state, numeraire)
	w := d.beforeWeight
	var pre, post float64
	if w > 0 {
		pre = state.DiscountRatio(d.before, numeraire)
	}
	if w < 1 {
		post = state.DiscountRatio(d.before+1, numeraire)
	}
	for k := range out {
		g := 0.0
		if w > 0 {
			g += w * state.DiscountRatioDerivative(d.before, numeraire, k) / pre
		}
		if w < 1 {
			g += (1 - w) * state.DiscountRatioDerivative(d.before+1, numeraire, k) / post
		}
		out[k] = value * g
	}
}
