// Package evolution describes the time grid of a market-model simulation: the
// rate times that delimit the forward rates and the evolution times at which
// the simulated curve is observed.
package evolution

import (
	"github.com/pkg/errors"
)

// Description is immutable once built and may be shared between simulation workers.
type Description struct {
	rateTimes      []float64
	rateTaus       []float64
	evolutionTimes []float64
	firstAliveRate []int
}

// New validates the grids. rateTimes holds numberOfRates+1 entries; rate i
// accrues over [rateTimes[i], rateTimes[i+1]] and fixes at rateTimes[i].
func New(rateTimes, evolutionTimes []float64) (*Description, error) {
	if err := CheckIncreasingTimes(rateTimes); err != nil {
		return nil, errors.Wrap(err, "rate times")
	}
	if len(rateTimes) < 2 {
		return nil, errors.Errorf("at least two rate times required, got %d", len(rateTimes))
	}
	if rateTimes[0] < 0 {
		return nil, errors.Errorf("negative first rate time %v", rateTimes[0])
	}
	if len(evolutionTimes) == 0 {
		return nil, errors.New("no evolution times given")
	}
	if err := CheckIncreasingTimes(evolutionTimes); err != nil {
		return nil, errors.Wrap(err, "evolution times")
	}
	n := len(rateTimes) - 1
	if len(evolutionTimes) > n {
		return nil, errors.Errorf("%d evolution steps exceed %d rates", len(evolutionTimes), n)
	}
	if last := evolutionTimes[len(evolutionTimes)-1]; last > rateTimes[n-1] {
		return nil, errors.Errorf("last evolution time %v after last fixing time %v", last, rateTimes[n-1])
	}

	d := &Description{
		rateTimes:      append([]float64(nil), rateTimes...),
		rateTaus:       make([]float64, n),
		evolutionTimes: append([]float64(nil), evolutionTimes...),
		firstAliveRate: make([]int, len(evolutionTimes)),
	}
	for i := 0; i < n; i++ {
		d.rateTaus[i] = rateTimes[i+1] - rateTimes[i]
	}
	alive := 0
	for s, t := range evolutionTimes {
		for rateTimes[alive] < t {
			alive++
		}
		d.firstAliveRate[s] = alive
	}
	return d, nil
}

// FromRateTimes evolves the curve to every fixing time, i.e. evolution times rateTimes[0:N].
func FromRateTimes(rateTimes []float64) (*Description, error) {
	if len(rateTimes) < 2 {
		return nil, errors.Errorf("at least two rate times required, got %d", len(rateTimes))
	}
	return New(rateTimes, rateTimes[:len(rateTimes)-1])
}

// CheckIncreasingTimes requires a strictly increasing sequence.
func CheckIncreasingTimes(times []float64) error {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return errors.Errorf("times not strictly increasing at index %d (%v <= %v)", i, times[i], times[i-1])
		}
	}
	return nil
}

func (d *Description) RateTimes() []float64      { return d.rateTimes }
func (d *Description) RateTaus() []float64       { return d.rateTaus }
func (d *Description) EvolutionTimes() []float64 { return d.evolutionTimes }
func (d *Description) FirstAliveRate() []int     { return d.firstAliveRate }
func (d *Description) NumberOfRates() int        { return len(d.rateTaus) }
func (d *Description) NumberOfSteps() int        { return len(d.evolutionTimes) }
