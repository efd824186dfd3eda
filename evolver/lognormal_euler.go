package evolver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/pathgreeks/brownian"
	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
)

// LogNormalEuler advances the forwards with a log-Euler scheme under the
// given numeraires and carries J = dF(t_s)/dF(0) along the path.
type LogNormalEuler struct {
	model      *FlatVol
	numeraires []int
	generator  brownian.Generator

	currentStep int
	forwards    []float64
	next        []float64
	brownians   []float64
	g, dg       []float64
	drifts      []float64
	state       *curvestate.LMM

	jacobian *mat.Dense
	stepJac  *mat.Dense
	scratch  *mat.Dense
}

func NewLogNormalEuler(model *FlatVol, numeraires []int, generator brownian.Generator) (*LogNormalEuler, error) {
	if generator.NumberOfFactors() != model.NumberOfFactors() {
		return nil, errors.Errorf("generator has %d factors, model has %d", generator.NumberOfFactors(), model.NumberOfFactors())
	}
	if generator.NumberOfSteps() != model.NumberOfSteps() {
		return nil, errors.Errorf("generator has %d steps, model has %d", generator.NumberOfSteps(), model.NumberOfSteps())
	}
	if err := evolution.CheckCompatibility(model.Evolution(), numeraires); err != nil {
		return nil, errors.Wrap(err, "numeraires")
	}
	state, err := curvestate.NewLMM(model.Evolution().RateTimes())
	if err != nil {
		return nil, err
	}
	n := model.NumberOfRates()
	return &LogNormalEuler{
		model:      model,
		numeraires: append([]int(nil), numeraires...),
		generator:  generator,
		forwards:   make([]float64, n),
		next:       make([]float64, n),
		brownians:  make([]float64, model.NumberOfFactors()),
		g:          make([]float64, n),
		dg:         make([]float64, n),
		drifts:     make([]float64, n),
		state:      state,
		jacobian:   mat.NewDense(n, n, nil),
		stepJac:    mat.NewDense(n, n, nil),
		scratch:    mat.NewDense(n, n, nil),
	}, nil
}

func (e *LogNormalEuler) Numeraires() []int                   { return e.numeraires }
func (e *LogNormalEuler) CurrentStep() int                    { return e.currentStep }
func (e *LogNormalEuler) CurrentState() curvestate.CurveState { return e.state }
func (e *LogNormalEuler) Evolution() *evolution.Description   { return e.model.Evolution() }
func (e *LogNormalEuler) Jacobian() mat.Matrix                { return e.jacobian }
func (e *LogNormalEuler) Generator() brownian.Generator       { return e.generator }
func (e *LogNormalEuler) Model() *FlatVol                     { return e.model }

// StartNewPath rewinds to today's curve and returns the path weight.
func (e *LogNormalEuler) StartNewPath() float64 {
	e.currentStep = 0
	copy(e.forwards, e.model.InitialRates())
	if err := e.state.SetOnForwardRates(e.forwards, 0); err != nil {
		panic(err)
	}
	e.jacobian.Zero()
	for i := range e.forwards {
		e.jacobian.Set(i, i, 1)
	}
	return e.generator.NextPath()
}

// AdvanceStep evolves the alive rates to the next evolution time and returns the step weight.
func (e *LogNormalEuler) AdvanceStep() float64 {
	s := e.currentStep
	weight := e.generator.NextStep(e.brownians)

	desc := e.model.Evolution()
	alive := desc.FirstAliveRate()[s]
	numeraire := e.numeraires[s]
	taus := desc.RateTaus()
	root := e.model.PseudoRoot(s)
	cov := e.model.Covariance(s)
	n := len(e.forwards)

	for k := alive; k < n; k++ {
		x := 1 + taus[k]*e.forwards[k]
		e.g[k] = taus[k] * e.forwards[k] / x
		e.dg[k] = taus[k] / (x * x)
	}
	for j := alive; j < n; j++ {
		lo, hi, sign := driftRange(j, numeraire)
		mu := 0.0
		for k := lo; k < hi; k++ {
			mu += e.g[k] * cov.At(j, k)
		}
		e.drifts[j] = sign * mu

		shock := 0.0
		for f := range e.brownians {
			shock += root.At(j, f) * e.brownians[f]
		}
		e.next[j] = e.forwards[j] * math.Exp(e.drifts[j]-0.5*cov.At(j, j)+shock)
	}

	// D_jk = delta_jk F'_j/F_j + F'_j dmu_j/dF_k; frozen rates map to themselves.
	e.stepJac.Zero()
	for j := 0; j < n; j++ {
		if j < alive {
			e.stepJac.Set(j, j, 1)
			continue
		}
		e.stepJac.Set(j, j, e.next[j]/e.forwards[j])
		lo, hi, sign := driftRange(j, numeraire)
		for k := lo; k < hi; k++ {
			e.stepJac.Set(j, k, e.stepJac.At(j, k)+e.next[j]*sign*e.dg[k]*cov.At(j, k))
		}
	}
	e.scratch.Mul(e.stepJac, e.jacobian)
	e.jacobian, e.scratch = e.scratch, e.jacobian

	for j := alive; j < n; j++ {
		e.forwards[j] = e.next[j]
	}
	if err := e.state.SetOnForwardRates(e.forwards, alive); err != nil {
		panic(err)
	}
	e.currentStep++
	return weight
}

// driftRange gives the rates k in [lo, hi) entering the drift of rate j under
// the bond maturing at rate time n, and the drift's sign.
func driftRange(j, n int) (int, int, float64) {
	if j >= n {
		return n, j + 1, 1
	}
	return j + 1, n, -1
}
