// Package evolver simulates forward rates of a LIBOR market model step by step
// and keeps the Jacobian of the simulated rates with respect to the initial
// curve, so pathwise sensitivities can be mapped back to today's forwards.
package evolver

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/pathgreeks/evolution"
)

// FlatVol is a time-homogeneous model: each forward keeps its own flat
// volatility and rates are correlated by
// rho_ij = L + (1-L) exp(-beta |t_i - t_j|) over fixing times.
type FlatVol struct {
	evolution       *evolution.Description
	initialRates    []float64
	volatilities    []float64
	factors         int
	initialDiscount float64
	pseudoRoots     []*mat.Dense
	covariances     []*mat.SymDense
}

// NewFlatVol reduces the correlation to the leading factors principal
// components. initialDiscount is P(0, t_0), the bond maturing at the first rate time.
func NewFlatVol(desc *evolution.Description, initialRates, volatilities []float64, longTermCorrelation, beta float64, factors int, initialDiscount float64) (*FlatVol, error) {
	n := desc.NumberOfRates()
	if len(initialRates) != n {
		return nil, errors.Errorf("%d initial rates given for %d rates", len(initialRates), n)
	}
	if len(volatilities) != n {
		return nil, errors.Errorf("%d volatilities given for %d rates", len(volatilities), n)
	}
	for i, f := range initialRates {
		if f <= 0 {
			return nil, errors.Errorf("log-normal rate %d must be positive, got %v", i, f)
		}
	}
	for i, v := range volatilities {
		if v < 0 {
			return nil, errors.Errorf("negative volatility %v for rate %d", v, i)
		}
	}
	if longTermCorrelation < 0 || longTermCorrelation > 1 {
		return nil, errors.Errorf("long-term correlation %v outside [0, 1]", longTermCorrelation)
	}
	if beta < 0 {
		return nil, errors.Errorf("negative correlation decay %v", beta)
	}
	if factors < 1 || factors > n {
		return nil, errors.Errorf("factors %d outside [1, %d]", factors, n)
	}
	if initialDiscount <= 0 || initialDiscount > 1 {
		return nil, errors.Errorf("initial discount %v outside (0, 1]", initialDiscount)
	}

	times := desc.RateTimes()
	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			corr.SetSym(i, j, longTermCorrelation+(1-longTermCorrelation)*math.Exp(-beta*math.Abs(times[i]-times[j])))
		}
	}
	loadings, err := reducedLoadings(corr, factors)
	if err != nil {
		return nil, err
	}

	m := &FlatVol{
		evolution:       desc,
		initialRates:    append([]float64(nil), initialRates...),
		volatilities:    append([]float64(nil), volatilities...),
		factors:         factors,
		initialDiscount: initialDiscount,
		pseudoRoots:     make([]*mat.Dense, desc.NumberOfSteps()),
		covariances:     make([]*mat.SymDense, desc.NumberOfSteps()),
	}
	previous := 0.0
	for s, t := range desc.EvolutionTimes() {
		dt := t - previous
		previous = t
		alive := desc.FirstAliveRate()[s]

		root := mat.NewDense(n, factors, nil)
		for i := alive; i < n; i++ {
			scale := math.Sqrt(dt) * volatilities[i]
			for f := 0; f < factors; f++ {
				root.Set(i, f, scale*loadings.At(i, f))
			}
		}
		cov := mat.NewSymDense(n, nil)
		cov.SymOuterK(1, root)
		m.pseudoRoots[s] = root
		m.covariances[s] = cov
	}
	return m, nil
}

// reducedLoadings keeps the largest eigenpairs and rescales each row to unit
// length so every rate keeps its full variance.
func reducedLoadings(corr *mat.SymDense, factors int) (*mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(corr, true); !ok {
		return nil, errors.New("correlation eigen-decomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	loadings := mat.NewDense(n, factors, nil)
	for f := 0; f < factors; f++ {
		col := order[f]
		scale := math.Sqrt(math.Max(values[col], 0))
		for i := 0; i < n; i++ {
			loadings.Set(i, f, vectors.At(i, col)*scale)
		}
	}
	for i := 0; i < n; i++ {
		row := loadings.RawRowView(i)
		norm := math.Sqrt(mat.Dot(mat.NewVecDense(factors, row), mat.NewVecDense(factors, row)))
		if norm == 0 {
			return nil, errors.Errorf("rate %d has no loading on the retained factors", i)
		}
		for f := range row {
			row[f] /= norm
		}
	}
	return loadings, nil
}

func (m *FlatVol) Evolution() *evolution.Description { return m.evolution }
func (m *FlatVol) InitialRates() []float64           { return m.initialRates }
func (m *FlatVol) Volatilities() []float64           { return m.volatilities }
func (m *FlatVol) NumberOfFactors() int              { return m.factors }
func (m *FlatVol) NumberOfRates() int                { return len(m.initialRates) }
func (m *FlatVol) NumberOfSteps() int                { return len(m.pseudoRoots) }
func (m *FlatVol) InitialDiscount() float64          { return m.initialDiscount }

// PseudoRoot is the rates x factors matrix A_s with A_s A_s^T the step covariance.
func (m *FlatVol) PseudoRoot(step int) mat.Matrix { return m.pseudoRoots[step] }

func (m *FlatVol) Covariance(step int) mat.Symmetric { return m.covariances[step] }
