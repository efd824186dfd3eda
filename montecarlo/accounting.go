package montecarlo

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/pathgreeks/evolver"
	"github.com/meenmo/pathgreeks/pathwise"
)

// accountant converts the flows of one path into numeraire bonds held and the
// gradient of that holding with respect to today's forwards.
type accountant struct {
	engine  *Engine
	product pathwise.Product
	counts  []int
	flows   [][]pathwise.CashFlow

	held             []float64
	heldGrad         [][]float64
	logPrincipalGrad []float64

	current  *mat.VecDense // gradient in the current forwards
	chained  *mat.VecDense // same gradient chained to today's forwards
	discGrad []float64

	// sample is [values..., deltas of product 0..., deltas of product 1..., ...].
	sample []float64
}

func newAccountant(e *Engine, product pathwise.Product) *accountant {
	rates := e.model.NumberOfRates()
	products := product.NumberOfProducts()
	a := &accountant{
		engine:           e,
		product:          product,
		held:             make([]float64, products),
		heldGrad:         make([][]float64, products),
		logPrincipalGrad: make([]float64, rates),
		current:          mat.NewVecDense(rates, nil),
		chained:          mat.NewVecDense(rates, nil),
		discGrad:         make([]float64, rates),
		sample:           make([]float64, products*(1+rates)),
	}
	for p := range a.heldGrad {
		a.heldGrad[p] = make([]float64, rates)
	}
	a.counts, a.flows = pathwise.NewCashFlowBuffers(product)
	return a
}

func (a *accountant) runPath(ev *evolver.LogNormalEuler) {
	numeraires := a.engine.numeraires
	deflated := a.product.AlreadyDeflated()

	weight := ev.StartNewPath()
	a.product.Reset()
	principal := 1.0
	clear(a.held)
	clear(a.logPrincipalGrad)
	for _, g := range a.heldGrad {
		clear(g)
	}

	for done := false; !done; {
		step := ev.CurrentStep()
		weight *= ev.AdvanceStep()
		state := ev.CurrentState()
		jac := ev.Jacobian()
		done = a.product.NextTimeStep(state, a.counts, a.flows)
		numeraire := numeraires[step]

		for p, count := range a.counts {
			for c := 0; c < count; c++ {
				flow := a.flows[p][c]
				bonds := flow.Amount
				grad := a.current.RawVector().Data
				if deflated {
					copy(grad, flow.Derivatives)
				} else {
					d := a.engine.discounters[flow.TimeIndex]
					df := d.NumeraireBonds(state, numeraire)
					d.Derivatives(state, numeraire, a.discGrad)
					for k := range grad {
						grad[k] = flow.Derivatives[k]*df + flow.Amount*a.discGrad[k]
					}
					bonds *= df
				}
				a.chained.MulVec(jac.T(), a.current)

				scale := weight / principal
				a.held[p] += scale * bonds
				floats.AddScaled(a.heldGrad[p], scale, a.chained.RawVector().Data)
				floats.AddScaled(a.heldGrad[p], -scale*bonds, a.logPrincipalGrad)
			}
		}

		// Roll the numeraire portfolio into the next step's bond.
		if !done && step+1 < len(numeraires) && numeraires[step+1] != numeraire {
			next := numeraires[step+1]
			ratio := state.DiscountRatio(numeraire, next)
			principal *= ratio
			grad := a.current.RawVector().Data
			for k := range grad {
				grad[k] = state.DiscountRatioDerivative(numeraire, next, k) / ratio
			}
			a.chained.MulVec(jac.T(), a.current)
			floats.Add(a.logPrincipalGrad, a.chained.RawVector().Data)
		}
	}

	n0, n0Grad := a.engine.initialNumeraire, a.engine.initialNumeraireGrad
	products := len(a.held)
	rates := len(n0Grad)
	for p := range a.held {
		a.sample[p] = a.held[p] * n0
		deltas := a.sample[products+p*rates : products+(p+1)*rates]
		floats.ScaleTo(deltas, n0, a.heldGrad[p])
		floats.AddScaled(deltas, a.held[p], n0Grad)
	}
}
