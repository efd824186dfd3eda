// Package brownian defines the source of stochastic increments that drives a
// path simulation. Concrete sequence algorithms live behind Generator; the
// simulation only relies on the contract.
package brownian

// Generator produces NumberOfFactors() increments for each of NumberOfSteps() steps per path.
type Generator interface {
	// NextStep fills output with the next step's increments and returns the step's weight.
	NextStep(output []float64) float64
	// NextPath rewinds to the start of a new path and returns the path weight.
	NextPath() float64
	NumberOfFactors() int
	NumberOfSteps() int
}

// Factory creates independent generators, one per simulation worker.
type Factory interface {
	Create(factors, steps int) (Generator, error)
}
