package termstructure

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

// BoundedGrid returns steps+1 equally spaced points covering [min, max].
func BoundedGrid(min, max float64, steps int) []float64 {
	grid := make([]float64, steps+1)
	dx := (max - min) / float64(steps)
	for i := range grid {
		grid[i] = min + float64(i)*dx
	}
	return grid
}

// SampledCurve is a function sampled on a grid.
type SampledCurve struct {
	grid   []float64
	values []float64
}

func NewSampledCurve(grid []float64) *SampledCurve {
	g := make([]float64, len(grid))
	copy(g, grid)
	return &SampledCurve{grid: g, values: make([]float64, len(grid))}
}

func (c *SampledCurve) Size() int { return len(c.grid) }

func (c *SampledCurve) GridValue(i int) float64 { return c.grid[i] }

func (c *SampledCurve) Value(i int) float64 { return c.values[i] }

func (c *SampledCurve) SetValue(i int, v float64) { c.values[i] = v }

// Values exposes the underlying slice; writes are visible to the curve.
func (c *SampledCurve) Values() []float64 { return c.values }

// Sample evaluates f on every grid point.
func (c *SampledCurve) Sample(f func(float64) float64) {
	for i, x := range c.grid {
		c.values[i] = f(x)
	}
}

// ShiftGrid translates the grid, leaving the values untouched.
func (c *SampledCurve) ShiftGrid(s float64) {
	for i := range c.grid {
		c.grid[i] += s
	}
}

// Regrid moves the curve onto a new grid using an Akima spline through the current samples.
func (c *SampledCurve) Regrid(grid []float64) error {
	var spline interp.AkimaSpline
	if err := spline.Fit(c.grid, c.values); err != nil {
		return errors.Wrap(err, "regrid")
	}
	values := make([]float64, len(grid))
	for i, x := range grid {
		values[i] = spline.Predict(x)
	}
	c.grid = append(c.grid[:0:0], grid...)
	c.values = values
	return nil
}
