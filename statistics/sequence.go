// Package statistics accumulates weighted vector samples. Partial accumulators
// built on separate workers combine with Merge; the sums are additive, so the
// outcome does not depend on how samples were split.
package statistics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Sequence keeps running weighted moments of samples of a fixed dimension.
type Sequence struct {
	dimension int
	samples   int
	weightSum float64
	sum       []float64 // sum of w*x
	sumSq     []float64 // sum of w*x^2
	scratch   []float64
}

func NewSequence(dimension int) (*Sequence, error) {
	if dimension < 1 {
		return nil, errors.Errorf("sequence dimension must be positive, got %d", dimension)
	}
	return &Sequence{
		dimension: dimension,
		sum:       make([]float64, dimension),
		sumSq:     make([]float64, dimension),
		scratch:   make([]float64, dimension),
	}, nil
}

func (s *Sequence) Dimension() int     { return s.dimension }
func (s *Sequence) Samples() int       { return s.samples }
func (s *Sequence) WeightSum() float64 { return s.weightSum }

// Add records one sample with the given non-negative weight.
func (s *Sequence) Add(sample []float64, weight float64) error {
	if len(sample) != s.dimension {
		return errors.Errorf("sample of size %d added to sequence of dimension %d", len(sample), s.dimension)
	}
	if weight < 0 {
		return errors.Errorf("negative weight %v", weight)
	}
	s.samples++
	s.weightSum += weight
	floats.AddScaled(s.sum, weight, sample)
	floats.MulTo(s.scratch, sample, sample)
	floats.AddScaled(s.sumSq, weight, s.scratch)
	return nil
}

// Merge folds other into s.
func (s *Sequence) Merge(other *Sequence) error {
	if other.dimension != s.dimension {
		return errors.Errorf("cannot merge sequence of dimension %d into %d", other.dimension, s.dimension)
	}
	s.samples += other.samples
	s.weightSum += other.weightSum
	floats.Add(s.sum, other.sum)
	floats.Add(s.sumSq, other.sumSq)
	return nil
}

func (s *Sequence) Reset() {
	s.samples = 0
	s.weightSum = 0
	for i := range s.sum {
		s.sum[i] = 0
		s.sumSq[i] = 0
	}
}

// Mean is NaN per component until a sample with positive weight is added.
func (s *Sequence) Mean() []float64 {
	mean := make([]float64, s.dimension)
	if s.weightSum == 0 {
		for i := range mean {
			mean[i] = math.NaN()
		}
		return mean
	}
	floats.ScaleTo(mean, 1/s.weightSum, s.sum)
	return mean
}

// Variance is the bias-corrected sample variance; it needs at least two samples.
func (s *Sequence) Variance() []float64 {
	variance := make([]float64, s.dimension)
	if s.samples < 2 || s.weightSum == 0 {
		for i := range variance {
			variance[i] = math.NaN()
		}
		return variance
	}
	correction := float64(s.samples) / float64(s.samples-1)
	for i := range variance {
		m := s.sum[i] / s.weightSum
		v := (s.sumSq[i]/s.weightSum - m*m) * correction
		// Cancellation can leave a tiny negative residue for constant samples.
		variance[i] = math.Max(v, 0)
	}
	return variance
}

func (s *Sequence) StandardDeviation() []float64 {
	sd := s.Variance()
	for i := range sd {
		sd[i] = math.Sqrt(sd[i])
	}
	return sd
}

// ErrorEstimate is the standard error of the mean.
func (s *Sequence) ErrorEstimate() []float64 {
	e := s.Variance()
	for i := range e {
		e[i] = math.Sqrt(e[i] / float64(s.samples))
	}
	return e
}
