// Package curvestate exposes the realised forward-rate curve at one simulation step.
//
// Discount ratios are P(t_i)/P(t_j) for rate times t_i, t_j. Sensitivities are
// derivatives of the ratio itself with respect to a forward rate F_k, under
// single-curve compounding P(t_{m+1})/P(t_m) = 1/(1+tau_m F_m). The own-period
// log-sensitivity of a discount factor is therefore -tau_m/(1+tau_m F_m), and
// rates outside the compounding chain between i and j give exactly zero.
package curvestate

// CurveState is the read-only view products consume at each step.
type CurveState interface {
	NumberOfRates() int
	RateTimes() []float64
	RateTaus() []float64
	ForwardRate(i int) float64
	ForwardRates() []float64
	// DiscountRatio returns P(t_i)/P(t_j).
	DiscountRatio(i, j int) float64
	// DiscountRatioDerivative returns d(P(t_i)/P(t_j))/dF_k.
	DiscountRatioDerivative(i, j, k int) float64
}
