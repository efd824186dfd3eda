package shortrate

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"

	"github.com/meenmo/pathgreeks/termstructure"
)

// CapletHelper is one calibration instrument with its market price.
type CapletHelper struct {
	Fixing, Payment float64
	Accrual, Strike float64
	MarketPrice     float64
}

// NewBlackCapletHelper quotes the helper from a Black volatility.
func NewBlackCapletHelper(curve *termstructure.DiscountCurve, fixing, payment, accrual, strike, vol float64) (CapletHelper, error) {
	price, err := BlackCaplet(curve, fixing, payment, accrual, strike, vol)
	if err != nil {
		return CapletHelper{}, err
	}
	return CapletHelper{Fixing: fixing, Payment: payment, Accrual: accrual, Strike: strike, MarketPrice: price}, nil
}

// ModelPrice prices the helper under m.
func (h CapletHelper) ModelPrice(m *HullWhite) (float64, error) {
	return m.Caplet(h.Fixing, h.Payment, h.Accrual, h.Strike)
}

// DefaultSettings stops once the error has not improved for a while.
func DefaultSettings() *optimize.Settings {
	return &optimize.Settings{
		MajorIterations: 20000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-18,
			Iterations: 400,
		},
	}
}

// Calibrate fits a and sigma by minimising squared relative pricing errors,
// searching over log-parameters so both stay positive.
func Calibrate(curve *termstructure.DiscountCurve, helpers []CapletHelper, start HullWhite, settings *optimize.Settings) (*HullWhite, error) {
	if len(helpers) < 2 {
		return nil, errors.Errorf("at least two helpers required to fit two parameters, got %d", len(helpers))
	}
	if start.A <= 0 || start.Sigma <= 0 {
		return nil, errors.Errorf("starting point must be positive, got a=%v sigma=%v", start.A, start.Sigma)
	}
	for i, h := range helpers {
		if !(h.MarketPrice > 0) {
			return nil, errors.Errorf("helper %d has non-positive market price %v", i, h.MarketPrice)
		}
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	var pricingErr error
	objective := func(x []float64) float64 {
		m := &HullWhite{A: math.Exp(x[0]), Sigma: math.Exp(x[1]), Curve: curve}
		sum := 0.0
		for _, h := range helpers {
			price, err := h.ModelPrice(m)
			if err != nil {
				pricingErr = err
				return math.Inf(1)
			}
			rel := (price - h.MarketPrice) / h.MarketPrice
			sum += rel * rel
		}
		return sum
	}

	problem := optimize.Problem{Func: objective}
	x0 := []float64{math.Log(start.A), math.Log(start.Sigma)}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if pricingErr != nil {
		return nil, errors.Wrap(pricingErr, "pricing helper")
	}
	if err != nil {
		return nil, errors.Wrap(err, "hull-white calibration")
	}
	return NewHullWhite(math.Exp(result.X[0]), math.Exp(result.X[1]), curve)
}
