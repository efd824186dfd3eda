// Package shortrate prices caplets in the one-factor Hull-White model and
// calibrates its mean reversion and volatility to Black caplet quotes.
package shortrate

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/pathgreeks/termstructure"
)

// HullWhite is dr = (theta(t) - a r) dt + sigma dW fitted to Curve.
type HullWhite struct {
	A     float64
	Sigma float64
	Curve *termstructure.DiscountCurve
}

// NewHullWhite rejects negative parameters and a nil curve.
func NewHullWhite(a, sigma float64, curve *termstructure.DiscountCurve) (*HullWhite, error) {
	if a < 0 {
		return nil, errors.Errorf("negative mean reversion %v", a)
	}
	if sigma < 0 {
		return nil, errors.Errorf("negative volatility %v", sigma)
	}
	if curve == nil {
		return nil, errors.New("nil curve")
	}
	return &HullWhite{A: a, Sigma: sigma, Curve: curve}, nil
}

// OptionType distinguishes calls from puts.
type OptionType int

const (
	Call OptionType = iota
	Put
)

// bondVolatility is the standard deviation of ln P(T,S) seen from today.
func (m *HullWhite) bondVolatility(expiry, maturity float64) float64 {
	tau := maturity - expiry
	if m.A < 1e-8 {
		return m.Sigma * tau * math.Sqrt(expiry)
	}
	b := (1 - math.Exp(-m.A*tau)) / m.A
	return m.Sigma * b * math.Sqrt((1-math.Exp(-2*m.A*expiry))/(2*m.A))
}

// DiscountBondOption prices an option expiring at expiry on the zero bond maturing at maturity.
func (m *HullWhite) DiscountBondOption(kind OptionType, strike, expiry, maturity float64) (float64, error) {
	if maturity <= expiry {
		return 0, errors.Errorf("bond maturity %v not after option expiry %v", maturity, expiry)
	}
	pt, err := m.Curve.DiscountAt(expiry)
	if err != nil {
		return 0, err
	}
	ps, err := m.Curve.DiscountAt(maturity)
	if err != nil {
		return 0, err
	}
	sign := 1.0
	if kind == Put {
		sign = -1
	}
	v := m.bondVolatility(expiry, maturity)
	if v == 0 {
		return math.Max(sign*(ps-strike*pt), 0), nil
	}
	h := math.Log(ps/(strike*pt))/v + 0.5*v
	return sign * (ps*distuv.UnitNormal.CDF(sign*h) - strike*pt*distuv.UnitNormal.CDF(sign*(h-v))), nil
}

// Caplet pays accrual*max(L-strike, 0) at payment on the rate fixing at fixing,
// i.e. (1+accrual*strike) puts on the payment bond.
func (m *HullWhite) Caplet(fixing, payment, accrual, strike float64) (float64, error) {
	k := 1 + accrual*strike
	put, err := m.DiscountBondOption(Put, 1/k, fixing, payment)
	if err != nil {
		return 0, err
	}
	return k * put, nil
}

// BlackCaplet prices a caplet with a log-normal forward of volatility vol.
func BlackCaplet(curve *termstructure.DiscountCurve, fixing, payment, accrual, strike, vol float64) (float64, error) {
	pt, err := curve.DiscountAt(fixing)
	if err != nil {
		return 0, err
	}
	ps, err := curve.DiscountAt(payment)
	if err != nil {
		return 0, err
	}
	forward := (pt/ps - 1) / accrual
	stdDev := vol * math.Sqrt(fixing)
	if stdDev == 0 || strike <= 0 {
		return accrual * ps * math.Max(forward-strike, 0), nil
	}
	d1 := (math.Log(forward/strike) + 0.5*stdDev*stdDev) / stdDev
	d2 := d1 - stdDev
	return accrual * ps * (forward*distuv.UnitNormal.CDF(d1) - strike*distuv.UnitNormal.CDF(d2)), nil
}
