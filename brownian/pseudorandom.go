package brownian

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// PseudoRandom draws independent standard normals from a seeded source.
type PseudoRandom struct {
	factors, steps int
	currentStep    int
	normal         distuv.Normal
}

// NewPseudoRandom returns a generator seeded deterministically.
func NewPseudoRandom(factors, steps int, seed uint64) (*PseudoRandom, error) {
	if err := checkDimensions(factors, steps); err != nil {
		return nil, err
	}
	return &PseudoRandom{
		factors: factors,
		steps:   steps,
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)},
	}, nil
}

func (g *PseudoRandom) NextStep(output []float64) float64 {
	checkStep(g.currentStep, g.steps, len(output), g.factors)
	for i := range output {
		output[i] = g.normal.Rand()
	}
	g.currentStep++
	return 1.0
}

func (g *PseudoRandom) NextPath() float64 {
	g.currentStep = 0
	return 1.0
}

func (g *PseudoRandom) NumberOfFactors() int { return g.factors }
func (g *PseudoRandom) NumberOfSteps() int   { return g.steps }

// PseudoRandomFactory hands out generators seeded Seed, Seed+1, ... in creation order.
type PseudoRandomFactory struct {
	Seed    uint64
	created atomic.Uint64
}

func NewPseudoRandomFactory(seed uint64) *PseudoRandomFactory {
	return &PseudoRandomFactory{Seed: seed}
}

func (f *PseudoRandomFactory) Create(factors, steps int) (Generator, error) {
	n := f.created.Inc() - 1
	return NewPseudoRandom(factors, steps, f.Seed+n)
}

func checkDimensions(factors, steps int) error {
	if factors < 1 {
		return errors.Errorf("at least one factor required, got %d", factors)
	}
	if steps < 1 {
		return errors.Errorf("at least one step required, got %d", steps)
	}
	return nil
}

// checkStep guards against misuse of the stepping contract.
func checkStep(current, steps, got, factors int) {
	if current >= steps {
		panic(fmt.Sprintf("brownian: step %d requested on a %d-step path", current+1, steps))
	}
	if got != factors {
		panic(fmt.Sprintf("brownian: output buffer has %d slots for %d factors", got, factors))
	}
}
