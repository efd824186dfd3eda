// Package process holds one-dimensional mean-reverting diffusions.
package process

import (
	"math"

	"github.com/pkg/errors"
)

// smallSpeed is the mean-reversion speed below which the variance uses its
// zero-speed limit.
const smallSpeed = 1.4901161193847656e-08 // sqrt(machine epsilon)

// OrnsteinUhlenbeck follows dx = a (level - x) dt + sigma dW.
type OrnsteinUhlenbeck struct {
	speed      float64
	volatility float64
	x0         float64
	level      float64
}

func NewOrnsteinUhlenbeck(speed, volatility, x0, level float64) (*OrnsteinUhlenbeck, error) {
	if speed < 0 {
		return nil, errors.Errorf("negative mean-reversion speed %v", speed)
	}
	if volatility < 0 {
		return nil, errors.Errorf("negative volatility %v", volatility)
	}
	return &OrnsteinUhlenbeck{speed: speed, volatility: volatility, x0: x0, level: level}, nil
}

func (p *OrnsteinUhlenbeck) X0() float64         { return p.x0 }
func (p *OrnsteinUhlenbeck) Speed() float64      { return p.speed }
func (p *OrnsteinUhlenbeck) Volatility() float64 { return p.volatility }
func (p *OrnsteinUhlenbeck) Level() float64      { return p.level }

func (p *OrnsteinUhlenbeck) Drift(t, x float64) float64 {
	return p.speed * (p.level - x)
}

func (p *OrnsteinUhlenbeck) Diffusion(t, x float64) float64 {
	return p.volatility
}

// Expectation is E[x(t0+dt) | x(t0) = x0].
func (p *OrnsteinUhlenbeck) Expectation(t0, x0, dt float64) float64 {
	return p.level + (x0-p.level)*math.Exp(-p.speed*dt)
}

func (p *OrnsteinUhlenbeck) Variance(t0, x0, dt float64) float64 {
	if p.speed < smallSpeed {
		return p.volatility * p.volatility * dt
	}
	return 0.5 * p.volatility * p.volatility / p.speed * (1 - math.Exp(-2*p.speed*dt))
}

func (p *OrnsteinUhlenbeck) StdDeviation(t0, x0, dt float64) float64 {
	return math.Sqrt(p.Variance(t0, x0, dt))
}

// Evolve draws x(t0+dt) from the exact transition given a standard normal dw.
func (p *OrnsteinUhlenbeck) Evolve(t0, x0, dt, dw float64) float64 {
	return p.Expectation(t0, x0, dt) + p.StdDeviation(t0, x0, dt)*dw
}
