package statistics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/statistics"
)

func TestSequenceMoments(t *testing.T) {
	t.Parallel()

	s, err := statistics.NewSequence(2)
	require.NoError(t, err)
	for _, x := range []float64{1, 2, 3, 4} {
		require.NoError(t, s.Add([]float64{x, 10 * x}, 1))
	}

	assert.Equal(t, 4, s.Samples())
	assert.Equal(t, 4.0, s.WeightSum())
	assert.InDeltaSlice(t, []float64{2.5, 25}, s.Mean(), 1e-12)
	// Unbiased variance of 1..4 is 5/3.
	assert.InDeltaSlice(t, []float64{5.0 / 3, 500.0 / 3}, s.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3), s.StandardDeviation()[0], 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3/4), s.ErrorEstimate()[0], 1e-12)
}

func TestSequenceWeights(t *testing.T) {
	t.Parallel()

	s, err := statistics.NewSequence(1)
	require.NoError(t, err)
	require.NoError(t, s.Add([]float64{1}, 3))
	require.NoError(t, s.Add([]float64{5}, 1))

	assert.Equal(t, 4.0, s.WeightSum())
	assert.InDelta(t, 2.0, s.Mean()[0], 1e-12)
	assert.Error(t, s.Add([]float64{1}, -1))
	assert.Error(t, s.Add([]float64{1, 2}, 1))
}

func TestSequenceMergeIsOrderIndependent(t *testing.T) {
	t.Parallel()

	samples := [][]float64{{0.5, -1}, {1.5, 2}, {-0.25, 0.75}, {3, 1}, {2, 2}}

	whole, err := statistics.NewSequence(2)
	require.NoError(t, err)
	for _, x := range samples {
		require.NoError(t, whole.Add(x, 1))
	}

	left, _ := statistics.NewSequence(2)
	right, _ := statistics.NewSequence(2)
	for i, x := range samples {
		if i < 2 {
			require.NoError(t, left.Add(x, 1))
		} else {
			require.NoError(t, right.Add(x, 1))
		}
	}

	ab, _ := statistics.NewSequence(2)
	require.NoError(t, ab.Merge(left))
	require.NoError(t, ab.Merge(right))
	ba, _ := statistics.NewSequence(2)
	require.NoError(t, ba.Merge(right))
	require.NoError(t, ba.Merge(left))

	assert.Equal(t, whole.Samples(), ab.Samples())
	assert.InDeltaSlice(t, whole.Mean(), ab.Mean(), 1e-14)
	assert.InDeltaSlice(t, ab.Mean(), ba.Mean(), 1e-14)
	assert.InDeltaSlice(t, whole.Variance(), ba.Variance(), 1e-14)

	other, _ := statistics.NewSequence(3)
	assert.Error(t, ab.Merge(other))
}

func TestSequenceEmptyAndReset(t *testing.T) {
	t.Parallel()

	s, err := statistics.NewSequence(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Mean()[0]))

	require.NoError(t, s.Add([]float64{2}, 1))
	assert.True(t, math.IsNaN(s.Variance()[0]), "one sample has no variance")

	s.Reset()
	assert.Equal(t, 0, s.Samples())
	assert.True(t, math.IsNaN(s.Mean()[0]))

	_, err = statistics.NewSequence(0)
	assert.Error(t, err)
}
