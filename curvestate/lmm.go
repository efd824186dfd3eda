package curvestate

import (
	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/evolution"
)

// LMM is the curve state of a forward-rate (LIBOR) market model. Only rates from
// FirstValidIndex onwards are meaningful; earlier rates have fixed and their
// bonds have matured.
type LMM struct {
	rateTimes  []float64
	rateTaus   []float64
	first      int
	forwards   []float64
	discRatios []float64 // P(t_i)/P(t_N)
}

// NewLMM allocates a state for the given rate times; call SetOnForwardRates before use.
func NewLMM(rateTimes []float64) (*LMM, error) {
	if len(rateTimes) < 2 {
		return nil, errors.Errorf("at least two rate times required, got %d", len(rateTimes))
	}
	if err := evolution.CheckIncreasingTimes(rateTimes); err != nil {
		return nil, errors.Wrap(err, "rate times")
	}
	n := len(rateTimes) - 1
	s := &LMM{
		rateTimes:  append([]float64(nil), rateTimes...),
		rateTaus:   make([]float64, n),
		forwards:   make([]float64, n),
		discRatios: make([]float64, n+1),
	}
	for i := 0; i < n; i++ {
		s.rateTaus[i] = rateTimes[i+1] - rateTimes[i]
	}
	for i := range s.discRatios {
		s.discRatios[i] = 1
	}
	return s, nil
}

// SetOnForwardRates copies rates[firstValidIndex:] into the state and rebuilds the discount ratios.
func (s *LMM) SetOnForwardRates(rates []float64, firstValidIndex int) error {
	n := len(s.forwards)
	if len(rates) != n {
		return errors.Errorf("%d rates given for %d forwards", len(rates), n)
	}
	if firstValidIndex < 0 || firstValidIndex >= n {
		return errors.Errorf("first valid index %d outside [0, %d)", firstValidIndex, n)
	}
	s.first = firstValidIndex
	copy(s.forwards[firstValidIndex:], rates[firstValidIndex:])
	s.discRatios[n] = 1
	for i := n - 1; i >= firstValidIndex; i-- {
		s.discRatios[i] = s.discRatios[i+1] * (1 + s.rateTaus[i]*s.forwards[i])
	}
	return nil
}

func (s *LMM) NumberOfRates() int        { return len(s.forwards) }
func (s *LMM) RateTimes() []float64      { return s.rateTimes }
func (s *LMM) RateTaus() []float64       { return s.rateTaus }
func (s *LMM) FirstValidIndex() int      { return s.first }
func (s *LMM) ForwardRate(i int) float64 { return s.forwards[i] }
func (s *LMM) ForwardRates() []float64   { return s.forwards }

func (s *LMM) DiscountRatio(i, j int) float64 {
	if i < s.first || j < s.first {
		panic(errors.Errorf("discount ratio (%d, %d) before first valid index %d", i, j, s.first))
	}
	return s.discRatios[i] / s.discRatios[j]
}

func (s *LMM) DiscountRatioDerivative(i, j, k int) float64 {
	switch {
	case i < j && i <= k && k < j:
		return s.DiscountRatio(i, j) * s.rateTaus[k] / (1 + s.rateTaus[k]*s.forwards[k])
	case i > j && j <= k && k < i:
		return -s.DiscountRatio(i, j) * s.rateTaus[k] / (1 + s.rateTaus[k]*s.forwards[k])
	default:
		return 0
	}
}

// Clone returns an independent copy.
func (s *LMM) Clone() *LMM {
	return &LMM{
		rateTimes:  s.rateTimes,
		rateTaus:   s.rateTaus,
		first:      s.first,
		forwards:   append([]float64(nil), s.forwards...),
		discRatios: append([]float64(nil), s.discRatios...),
	}
}
