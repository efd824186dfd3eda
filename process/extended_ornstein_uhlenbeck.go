package process

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Discretization selects how the time-dependent level enters the expectation.
type Discretization int

const (
	// MidPoint freezes b at the middle of the step.
	MidPoint Discretization = iota
	// Trapezoidal interpolates b linearly over the step.
	Trapezoidal
	// GaussLegendre integrates b(s) exp(a s) by quadrature.
	GaussLegendre
)

func (d Discretization) String() string {
	switch d {
	case MidPoint:
		return "MidPoint"
	case Trapezoidal:
		return "Trapezoidal"
	case GaussLegendre:
		return "GaussLegendre"
	default:
		return fmt.Sprintf("Discretization(%d)", int(d))
	}
}

const defaultQuadraturePoints = 64

// ExtendedOrnsteinUhlenbeck follows dx = a (b(t) - x) dt + sigma dW.
type ExtendedOrnsteinUhlenbeck struct {
	ou             *OrnsteinUhlenbeck
	b              func(float64) float64
	discretization Discretization
	points         int
}

type ExtendedOption func(*ExtendedOrnsteinUhlenbeck)

// WithQuadraturePoints sets the number of Gauss-Legendre nodes.
func WithQuadraturePoints(n int) ExtendedOption {
	return func(p *ExtendedOrnsteinUhlenbeck) { p.points = n }
}

func NewExtendedOrnsteinUhlenbeck(speed, volatility, x0 float64, b func(float64) float64, discretization Discretization, opts ...ExtendedOption) (*ExtendedOrnsteinUhlenbeck, error) {
	ou, err := NewOrnsteinUhlenbeck(speed, volatility, x0, 0)
	if err != nil {
		return nil, err
	}
	p := &ExtendedOrnsteinUhlenbeck{
		ou:             ou,
		b:              b,
		discretization: discretization,
		points:         defaultQuadraturePoints,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *ExtendedOrnsteinUhlenbeck) X0() float64                    { return p.ou.X0() }
func (p *ExtendedOrnsteinUhlenbeck) Speed() float64                 { return p.ou.Speed() }
func (p *ExtendedOrnsteinUhlenbeck) Volatility() float64            { return p.ou.Volatility() }
func (p *ExtendedOrnsteinUhlenbeck) Discretization() Discretization { return p.discretization }

func (p *ExtendedOrnsteinUhlenbeck) Drift(t, x float64) float64 {
	return p.ou.Drift(t, x) + p.ou.Speed()*p.b(t)
}

func (p *ExtendedOrnsteinUhlenbeck) Diffusion(t, x float64) float64 {
	return p.ou.Diffusion(t, x)
}

func (p *ExtendedOrnsteinUhlenbeck) Variance(t0, x0, dt float64) float64 {
	return p.ou.Variance(t0, x0, dt)
}

func (p *ExtendedOrnsteinUhlenbeck) StdDeviation(t0, x0, dt float64) float64 {
	return p.ou.StdDeviation(t0, x0, dt)
}

// Expectation adds the contribution of the level function over [t0, t0+dt]
// to the zero-level expectation. It panics on an unknown discretization.
func (p *ExtendedOrnsteinUhlenbeck) Expectation(t0, x0, dt float64) float64 {
	base := p.ou.Expectation(t0, x0, dt)
	a := p.ou.Speed()
	switch p.discretization {
	case MidPoint:
		return base + p.b(t0+0.5*dt)*(1-math.Exp(-a*dt))
	case Trapezoidal:
		if a == 0 {
			return base
		}
		bt, bu := p.b(t0+dt), p.b(t0)
		ex := math.Exp(-a * dt)
		return base + bt - ex*bu - (bt-bu)/(a*dt)*(1-ex)
	case GaussLegendre:
		integrand := func(s float64) float64 { return p.b(s) * math.Exp(a*s) }
		return base + a*math.Exp(-a*(t0+dt))*quad.Fixed(integrand, t0, t0+dt, p.points, quad.Legendre{}, 0)
	default:
		panic(fmt.Sprintf("process: unknown discretization %v", p.discretization))
	}
}

func (p *ExtendedOrnsteinUhlenbeck) Evolve(t0, x0, dt, dw float64) float64 {
	return p.Expectation(t0, x0, dt) + p.StdDeviation(t0, x0, dt)*dw
}
