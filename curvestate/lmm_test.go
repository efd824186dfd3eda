package curvestate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/curvestate"
)

func newState(t *testing.T, rateTimes, forwards []float64, first int) *curvestate.LMM {
	t.Helper()
	s, err := curvestate.NewLMM(rateTimes)
	require.NoError(t, err)
	require.NoError(t, s.SetOnForwardRates(forwards, first))
	return s
}

func TestDiscountRatios(t *testing.T) {
	t.Parallel()

	s := newState(t, []float64{1, 2, 3.5, 4}, []float64{0.04, 0.05, 0.06}, 0)

	assert.InDelta(t, 1.0/(1+0.04), s.DiscountRatio(1, 0), 1e-15)
	assert.InDelta(t, (1+1.5*0.05)*(1+0.5*0.06), s.DiscountRatio(1, 3), 1e-15)
	assert.Equal(t, 1.0, s.DiscountRatio(2, 2))

	// Monotone non-increasing bond prices for non-negative forwards.
	for i := 1; i <= 3; i++ {
		assert.LessOrEqual(t, s.DiscountRatio(i, 0), s.DiscountRatio(i-1, 0))
	}
}

func TestDiscountRatioDerivativeMatchesBump(t *testing.T) {
	t.Parallel()

	rateTimes := []float64{0.5, 1, 1.75, 2.5, 3}
	forwards := []float64{0.03, 0.045, 0.05, 0.02}
	const h = 1e-6

	s := newState(t, rateTimes, forwards, 0)
	for i := 0; i <= 4; i++ {
		for j := 0; j <= 4; j++ {
			for k := 0; k < 4; k++ {
				up := append([]float64(nil), forwards...)
				down := append([]float64(nil), forwards...)
				up[k] += h
				down[k] -= h
				su := newState(t, rateTimes, up, 0)
				sd := newState(t, rateTimes, down, 0)
				fd := (su.DiscountRatio(i, j) - sd.DiscountRatio(i, j)) / (2 * h)

				got := s.DiscountRatioDerivative(i, j, k)
				assert.InDelta(t, fd, got, 1e-8, "i=%d j=%d k=%d", i, j, k)
				inChain := (i < j && i <= k && k < j) || (j < i && j <= k && k < i)
				if !inChain {
					assert.Equal(t, 0.0, got, "i=%d j=%d k=%d must be exactly zero", i, j, k)
				}
			}
		}
	}
}

func TestOwnPeriodLogSensitivity(t *testing.T) {
	t.Parallel()

	s := newState(t, []float64{1, 2, 3}, []float64{0.05, 0.07}, 0)
	// d ln P(t_2)/P(t_1) / dF_1 = -tau_1/(1+tau_1 F_1)
	got := s.DiscountRatioDerivative(2, 1, 1) / s.DiscountRatio(2, 1)
	assert.InDelta(t, -1.0/(1+0.07), got, 1e-15)
}

func TestFirstValidIndex(t *testing.T) {
	t.Parallel()

	s := newState(t, []float64{1, 2, 3, 4}, []float64{0.01, 0.02, 0.03}, 0)
	require.NoError(t, s.SetOnForwardRates([]float64{0.5, 0.04, 0.05}, 1))

	assert.Equal(t, 1, s.FirstValidIndex())
	assert.Equal(t, 0.01, s.ForwardRate(0), "rates before the first valid index are not overwritten")
	assert.Equal(t, 0.04, s.ForwardRate(1))
	assert.InDelta(t, 1+0.04, s.DiscountRatio(1, 2), 1e-15)
	assert.Panics(t, func() { s.DiscountRatio(0, 3) })

	assert.Error(t, s.SetOnForwardRates([]float64{0.1}, 0))
	assert.Error(t, s.SetOnForwardRates([]float64{0.1, 0.1, 0.1}, 3))
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := newState(t, []float64{1, 2, 3}, []float64{0.05, 0.07}, 0)
	c := s.Clone()
	require.NoError(t, c.SetOnForwardRates([]float64{0.01, 0.01}, 0))

	assert.Equal(t, 0.05, s.ForwardRate(0))
	assert.Equal(t, 0.01, c.ForwardRate(0))
}
