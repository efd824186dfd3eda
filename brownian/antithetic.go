package brownian

// Antithetic pairs paths: even paths come from the inner generator and are
// recorded, odd paths replay the recorded increments with the sign flipped.
type Antithetic struct {
	inner       Generator
	recorded    [][]float64
	weights     []float64
	pathWeight  float64
	mirror      bool
	started     bool
	currentStep int
}

func NewAntithetic(inner Generator) *Antithetic {
	recorded := make([][]float64, inner.NumberOfSteps())
	for i := range recorded {
		recorded[i] = make([]float64, inner.NumberOfFactors())
	}
	return &Antithetic{
		inner:    inner,
		recorded: recorded,
		weights:  make([]float64, inner.NumberOfSteps()),
	}
}

func (g *Antithetic) NextPath() float64 {
	g.currentStep = 0
	if g.started && !g.mirror {
		g.mirror = true
		return g.pathWeight
	}
	g.started = true
	g.mirror = false
	g.pathWeight = g.inner.NextPath()
	return g.pathWeight
}

func (g *Antithetic) NextStep(output []float64) float64 {
	checkStep(g.currentStep, g.NumberOfSteps(), len(output), g.NumberOfFactors())
	step := g.currentStep
	g.currentStep++
	if g.mirror {
		for i, z := range g.recorded[step] {
			output[i] = -z
		}
		return g.weights[step]
	}
	w := g.inner.NextStep(g.recorded[step])
	g.weights[step] = w
	copy(output, g.recorded[step])
	return w
}

func (g *Antithetic) NumberOfFactors() int { return g.inner.NumberOfFactors() }
func (g *Antithetic) NumberOfSteps() int   { return g.inner.NumberOfSteps() }

// AntitheticFactory wraps every generator created by Inner.
type AntitheticFactory struct {
	Inner Factory
}

func (f AntitheticFactory) Create(factors, steps int) (Generator, error) {
	inner, err := f.Inner.Create(factors, steps)
	if err != nil {
		return nil, err
	}
	return NewAntithetic(inner), nil
}
