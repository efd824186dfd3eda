package pathwise_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/pathwise"
)

var (
	halfYearTimes    = []float64{0.5, 1, 1.5, 2, 2.5}
	halfYearAccruals = []float64{0.5, 0.5, 0.5, 0.5}
	halfYearPayments = []float64{1, 1.5, 2, 2.5}
)

type stepOutput struct {
	counts []int
	flows  [][]pathwise.CashFlow
	done   bool
}

func lmmState(t *testing.T, rateTimes, forwards []float64) *curvestate.LMM {
	t.Helper()
	s, err := curvestate.NewLMM(rateTimes)
	require.NoError(t, err)
	require.NoError(t, s.SetOnForwardRates(forwards, 0))
	return s
}

// runPath resets p and steps it to completion on a frozen curve, copying every step's output.
func runPath(p pathwise.Product, state curvestate.CurveState) []stepOutput {
	counts, flows := pathwise.NewCashFlowBuffers(p)
	p.Reset()
	var out []stepOutput
	for {
		done := p.NextTimeStep(state, counts, flows)
		out = append(out, snapshot(counts, flows, done))
		if done {
			return out
		}
	}
}

func snapshot(counts []int, flows [][]pathwise.CashFlow, done bool) stepOutput {
	s := stepOutput{counts: append([]int(nil), counts...), done: done}
	s.flows = make([][]pathwise.CashFlow, len(flows))
	for j := range flows {
		for k := 0; k < counts[j]; k++ {
			f := flows[j][k]
			f.Derivatives = append([]float64(nil), f.Derivatives...)
			s.flows[j] = append(s.flows[j], f)
		}
	}
	return s
}

func TestCapletEndToEnd(t *testing.T) {
	t.Parallel()

	rateTimes := []float64{1, 2, 3, 4, 5}
	ones := []float64{1, 1, 1, 1}
	caplet, err := pathwise.NewCaplet(rateTimes, ones, []float64{2, 3, 4, 5}, []float64{0.05, 0.05, 0.05, 0.05})
	require.NoError(t, err)

	state := lmmState(t, rateTimes, []float64{0.04, 0.06, 0.05, 0.07})
	steps := runPath(caplet, state)
	require.Len(t, steps, 4)

	expected := []float64{0, 0.01, 0, 0.02}
	for i, step := range steps {
		for j, c := range step.counts {
			if j == i {
				assert.Equal(t, 1, c)
			} else {
				assert.Equal(t, 0, c, "step %d slot %d", i, j)
			}
		}
		flow := step.flows[i][0]
		assert.Equal(t, i, flow.TimeIndex)
		assert.InDelta(t, expected[i], flow.Amount, 1e-15)

		want := make([]float64, 4)
		if expected[i] > 0 {
			want[i] = 1
		}
		assert.Equal(t, want, flow.Derivatives, "step %d", i)
		assert.Equal(t, i == 3, step.done)
	}
}

func TestCapletMetadata(t *testing.T) {
	t.Parallel()

	caplet, err := pathwise.NewCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, []float64{0.01, 0.02, 0.03, 0.04})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, caplet.SuggestedNumeraires())
	assert.Equal(t, halfYearPayments, caplet.PossibleCashFlowTimes())
	assert.Equal(t, 4, caplet.NumberOfProducts())
	assert.Equal(t, 1, caplet.MaxNumberOfCashFlowsPerProductPerStep())
	assert.False(t, caplet.AlreadyDeflated())
	assert.Equal(t, 4, caplet.Evolution().NumberOfSteps())
	assert.Equal(t, halfYearTimes, caplet.Evolution().RateTimes())
}

func TestTerminatesExactlyOnce(t *testing.T) {
	t.Parallel()

	state := lmmState(t, halfYearTimes, []float64{0.02, 0.03, 0.04, 0.05})
	caplet, err := pathwise.NewCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, []float64{0, 0, 0, 0})
	require.NoError(t, err)
	deflated, err := pathwise.NewDeflatedCapletWithStrike(halfYearTimes, halfYearAccruals, halfYearPayments, 0.035)
	require.NoError(t, err)
	capProduct, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.01, []pathwise.Range{{Start: 0, End: 4}})
	require.NoError(t, err)

	for _, p := range []pathwise.Product{caplet, deflated, capProduct} {
		for run := 0; run < 2; run++ {
			steps := runPath(p, state)
			finished, flows := 0, 0
			for _, s := range steps {
				if s.done {
					finished++
				}
				for _, c := range s.counts {
					flows += c
				}
			}
			assert.Equal(t, 1, finished)
			assert.Len(t, steps, 4)
			assert.LessOrEqual(t, flows, 4)
		}
	}
}

func TestDeflatedCapletIsCapletOverNumeraire(t *testing.T) {
	t.Parallel()

	forwards := []float64{0.04, 0.05, 0.045, 0.06}
	strikes := []float64{0.03, 0.055, 0.03, 0.03}
	state := lmmState(t, halfYearTimes, forwards)

	plain, err := pathwise.NewCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, strikes)
	require.NoError(t, err)
	deflated, err := pathwise.NewDeflatedCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, strikes)
	require.NoError(t, err)

	assert.True(t, deflated.AlreadyDeflated())
	assert.Equal(t, []int{4, 4, 4, 4}, deflated.SuggestedNumeraires())

	plainSteps := runPath(plain, state)
	deflatedSteps := runPath(deflated, state)
	for i := range plainSteps {
		undeflated := plainSteps[i].flows[i][0].Amount
		if undeflated == 0 {
			assert.Equal(t, 0, deflatedSteps[i].counts[i], "out-of-the-money caplet %d emits nothing", i)
			continue
		}
		require.Equal(t, 1, deflatedSteps[i].counts[i])
		ratio := state.DiscountRatio(4, i+1)
		assert.InDelta(t, undeflated/ratio, deflatedSteps[i].flows[i][0].Amount, 1e-15)
	}
}

func TestDeflatedCapletDerivativesMatchBump(t *testing.T) {
	t.Parallel()

	forwards := []float64{0.04, 0.05, 0.045, 0.06}
	const strike = 0.03
	const h = 1e-7

	deflated, err := pathwise.NewDeflatedCapletWithStrike(halfYearTimes, halfYearAccruals, halfYearPayments, strike)
	require.NoError(t, err)
	base := runPath(deflated, lmmState(t, halfYearTimes, forwards))

	for k := range forwards {
		up := append([]float64(nil), forwards...)
		down := append([]float64(nil), forwards...)
		up[k] += h
		down[k] -= h
		upSteps := runPath(deflated.Clone(), lmmState(t, halfYearTimes, up))
		downSteps := runPath(deflated.Clone(), lmmState(t, halfYearTimes, down))

		for i := range base {
			require.Equal(t, 1, base[i].counts[i])
			fd := (upSteps[i].flows[i][0].Amount - downSteps[i].flows[i][0].Amount) / (2 * h)
			got := base[i].flows[i][0].Derivatives[k]
			assert.InDelta(t, fd, got, 1e-8, "caplet %d rate %d", i, k)
			if k < i {
				assert.Equal(t, 0.0, got, "caplet %d cannot depend on fixed rate %d", i, k)
			}
		}
	}
}

func TestDeflatedCapletQuotientRule(t *testing.T) {
	t.Parallel()

	forwards := []float64{0.04, 0.05, 0.045, 0.06}
	state := lmmState(t, halfYearTimes, forwards)
	deflated, err := pathwise.NewDeflatedCapletWithStrike(halfYearTimes, halfYearAccruals, halfYearPayments, 0.02)
	require.NoError(t, err)

	steps := runPath(deflated, state)
	flow := steps[1].flows[1][0]

	a := 0.5 * (0.05 - 0.02)
	n := state.DiscountRatio(4, 2)
	assert.InDelta(t, 0.5/n, flow.Derivatives[1], 1e-14)
	for k := 2; k < 4; k++ {
		want := a / n * 0.5 / (1 + 0.5*forwards[k])
		assert.InDelta(t, want, flow.Derivatives[k], 1e-14)
	}
	assert.Equal(t, 0.0, flow.Derivatives[0])

	last := steps[3].flows[3][0]
	assert.Equal(t, []float64{0, 0, 0, 0.5}, last.Derivatives, "the last caplet pays in the numeraire bond")
}

func TestDeflatedCapCopiesSharedCapletFlows(t *testing.T) {
	t.Parallel()

	forwards := []float64{0.04, 0.01, 0.045, 0.06}
	state := lmmState(t, halfYearTimes, forwards)
	ranges := []pathwise.Range{{Start: 0, End: 2}, {Start: 1, End: 4}, {Start: 3, End: 4}}

	capProduct, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.03, ranges)
	require.NoError(t, err)
	caplets, err := pathwise.NewDeflatedCapletWithStrike(halfYearTimes, halfYearAccruals, halfYearPayments, 0.03)
	require.NoError(t, err)

	assert.Equal(t, 3, capProduct.NumberOfProducts())
	assert.True(t, capProduct.AlreadyDeflated())
	assert.Equal(t, caplets.SuggestedNumeraires(), capProduct.SuggestedNumeraires())
	assert.Equal(t, ranges, capProduct.Ranges())

	capSteps := runPath(capProduct, state)
	capletSteps := runPath(caplets, state)
	for i := range capSteps {
		for j, r := range ranges {
			if !r.Contains(i) || capletSteps[i].counts[i] == 0 {
				assert.Equal(t, 0, capSteps[i].counts[j], "step %d cap %d", i, j)
				continue
			}
			require.Equal(t, 1, capSteps[i].counts[j])
			assert.Equal(t, capletSteps[i].flows[i][0], capSteps[i].flows[j][0], "step %d cap %d", i, j)
		}
	}
	// Rate 1 is out of the money: no cap receives a flow at that step.
	assert.Equal(t, []int{0, 0, 0}, capSteps[1].counts)
}

func TestDeflatedCapOutputsDoNotAlias(t *testing.T) {
	t.Parallel()

	state := lmmState(t, halfYearTimes, []float64{0.04, 0.05, 0.045, 0.06})
	capProduct, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.01,
		[]pathwise.Range{{Start: 0, End: 4}, {Start: 0, End: 1}})
	require.NoError(t, err)

	counts, flows := pathwise.NewCashFlowBuffers(capProduct)
	capProduct.Reset()
	capProduct.NextTimeStep(state, counts, flows)
	require.Equal(t, []int{1, 1}, counts)

	flows[0][0].Derivatives[0] = 42
	assert.NotEqual(t, 42.0, flows[1][0].Derivatives[0])
}

func TestCloneReplaysIdentically(t *testing.T) {
	t.Parallel()

	states := []*curvestate.LMM{
		lmmState(t, halfYearTimes, []float64{0.04, 0.05, 0.045, 0.06}),
		lmmState(t, halfYearTimes, []float64{0.04, 0.052, 0.041, 0.07}),
		lmmState(t, halfYearTimes, []float64{0.04, 0.052, 0.038, 0.065}),
		lmmState(t, halfYearTimes, []float64{0.04, 0.052, 0.038, 0.061}),
	}
	capProduct, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.04,
		[]pathwise.Range{{Start: 0, End: 3}, {Start: 2, End: 4}})
	require.NoError(t, err)
	caplet, err := pathwise.NewCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, []float64{0.03, 0.04, 0.05, 0.06})
	require.NoError(t, err)

	for _, original := range []pathwise.Product{capProduct, caplet} {
		origCounts, origFlows := pathwise.NewCashFlowBuffers(original)
		original.Reset()
		original.NextTimeStep(states[0], origCounts, origFlows)

		clone := original.Clone()
		cloneCounts, cloneFlows := pathwise.NewCashFlowBuffers(clone)
		for s := 1; s < len(states); s++ {
			origDone := original.NextTimeStep(states[s], origCounts, origFlows)
			cloneDone := clone.NextTimeStep(states[s], cloneCounts, cloneFlows)
			assert.Equal(t, origDone, cloneDone)
			assert.Equal(t, snapshot(origCounts, origFlows, origDone), snapshot(cloneCounts, cloneFlows, cloneDone))
		}

		// Rewinding the clone leaves the finished original untouched.
		clone.Reset()
		assert.False(t, clone.NextTimeStep(states[0], cloneCounts, cloneFlows))
		assert.Panics(t, func() { original.NextTimeStep(states[0], origCounts, origFlows) })
	}
}

func TestConstructionErrors(t *testing.T) {
	t.Parallel()

	strikes := []float64{0.01, 0.01, 0.01, 0.01}
	tests := []struct {
		name         string
		rateTimes    []float64
		accruals     []float64
		paymentTimes []float64
		strikes      []float64
	}{
		{"single rate time", []float64{1}, nil, nil, nil},
		{"short accruals", halfYearTimes, halfYearAccruals[:3], halfYearPayments, strikes},
		{"short payments", halfYearTimes, halfYearAccruals, halfYearPayments[:2], strikes},
		{"long strikes", halfYearTimes, halfYearAccruals, halfYearPayments, append(strikes, 0.01)},
		{"decreasing times", []float64{0.5, 1, 0.9, 2, 2.5}, halfYearAccruals, halfYearPayments, strikes},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := pathwise.NewCaplet(tt.rateTimes, tt.accruals, tt.paymentTimes, tt.strikes)
			assert.Error(t, err)
			_, err = pathwise.NewDeflatedCaplet(tt.rateTimes, tt.accruals, tt.paymentTimes, tt.strikes)
			assert.Error(t, err)
		})
	}
}

func TestCapRangeErrors(t *testing.T) {
	t.Parallel()

	for _, r := range []pathwise.Range{{Start: 2, End: 2}, {Start: 3, End: 1}, {Start: -1, End: 2}, {Start: 0, End: 5}} {
		_, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.02, []pathwise.Range{r})
		assert.Error(t, err, "range %+v", r)
	}
	_, err := pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, halfYearPayments, 0.02, []pathwise.Range{{Start: 0, End: 4}})
	assert.NoError(t, err, "end equal to the number of rates is the last valid value")
}

func TestDeflatedProductsRequireRateEndPayments(t *testing.T) {
	t.Parallel()

	early := []float64{0.6, 1.5, 2, 2.5}

	// An undeflated caplet is discounted to its payment time by the caller.
	_, err := pathwise.NewCaplet(halfYearTimes, halfYearAccruals, early, []float64{0.01, 0.01, 0.01, 0.01})
	assert.NoError(t, err)

	_, err = pathwise.NewDeflatedCaplet(halfYearTimes, halfYearAccruals, early, []float64{0.01, 0.01, 0.01, 0.01})
	assert.ErrorContains(t, err, "caplet 0 pays at 0.6")
	_, err = pathwise.NewDeflatedCapletWithStrike(halfYearTimes, halfYearAccruals, early, 0.01)
	assert.Error(t, err)
	_, err = pathwise.NewDeflatedCap(halfYearTimes, halfYearAccruals, early, 0.01, []pathwise.Range{{Start: 1, End: 4}})
	assert.Error(t, err)

	_, err = pathwise.NewDeflatedCaplet(halfYearTimes, halfYearAccruals, halfYearPayments, []float64{0.01, 0.01, 0.01, 0.01})
	assert.NoError(t, err)
}
