// Package montecarlo prices pathwise products along simulated market-model
// paths and turns their per-step cash flows into present values and
// sensitivities to today's forward rates.
package montecarlo

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/pathgreeks/brownian"
	"github.com/meenmo/pathgreeks/curvestate"
	"github.com/meenmo/pathgreeks/evolution"
	"github.com/meenmo/pathgreeks/evolver"
	"github.com/meenmo/pathgreeks/pathwise"
	"github.com/meenmo/pathgreeks/statistics"
)

const defaultBatchSize = 1000

// Engine runs the simulation. It is safe to call Simulate repeatedly; each
// call draws generators from the factory in batch order.
type Engine struct {
	model       *evolver.FlatVol
	product     pathwise.Product
	factory     brownian.Factory
	numeraires  []int
	discounters []Discounter

	initialNumeraire     float64
	initialNumeraireGrad []float64

	logger    logrus.FieldLogger
	metrics   *Metrics
	workers   int
	batchSize int
}

type Option func(*Engine)

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithWorkers bounds the number of batches simulated concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithBatchSize sets the number of paths sharing one generator. Results depend
// on the batch size but not on the number of workers.
func WithBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

func NewEngine(model *evolver.FlatVol, product pathwise.Product, factory brownian.Factory, opts ...Option) (*Engine, error) {
	if !floats.Equal(model.Evolution().RateTimes(), product.Evolution().RateTimes()) {
		return nil, errors.New("model and product rate times differ")
	}
	if !floats.Equal(model.Evolution().EvolutionTimes(), product.Evolution().EvolutionTimes()) {
		return nil, errors.New("model and product evolution times differ")
	}
	numeraires := product.SuggestedNumeraires()
	if err := evolution.CheckCompatibility(model.Evolution(), numeraires); err != nil {
		return nil, errors.Wrap(err, "suggested numeraires")
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := &Engine{
		model:      model,
		product:    product,
		factory:    factory,
		numeraires: numeraires,
		logger:     logger,
		workers:    runtime.GOMAXPROCS(0),
		batchSize:  defaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		return nil, errors.Errorf("workers must be positive, got %d", e.workers)
	}
	if e.batchSize < 1 {
		return nil, errors.Errorf("batch size must be positive, got %d", e.batchSize)
	}

	if !product.AlreadyDeflated() {
		for i, t := range product.PossibleCashFlowTimes() {
			d, err := NewDiscounter(t, model.Evolution().RateTimes())
			if err != nil {
				return nil, errors.Wrapf(err, "cash flow time %d", i)
			}
			e.discounters = append(e.discounters, d)
		}
	}

	// N0 = P(0, t_{n_0}) = P(0, t_0) * P(t_{n_0})/P(t_0) on today's curve.
	initial, err := curvestate.NewLMM(model.Evolution().RateTimes())
	if err != nil {
		return nil, err
	}
	if err := initial.SetOnForwardRates(model.InitialRates(), 0); err != nil {
		return nil, err
	}
	n0 := numeraires[0]
	e.initialNumeraire = model.InitialDiscount() * initial.DiscountRatio(n0, 0)
	e.initialNumeraireGrad = make([]float64, model.NumberOfRates())
	for k := range e.initialNumeraireGrad {
		e.initialNumeraireGrad[k] = model.InitialDiscount() * initial.DiscountRatioDerivative(n0, 0, k)
	}
	return e, nil
}

// Simulate prices paths paths and returns mean values and deltas per product.
func (e *Engine) Simulate(ctx context.Context, paths int) (*Results, error) {
	if paths < 1 {
		return nil, errors.Errorf("at least one path required, got %d", paths)
	}
	runID := uuid.New().String()
	log := e.logger.WithFields(logrus.Fields{"run_id": runID, "paths": paths})
	log.Info("simulation started")
	start := time.Now()

	batches := (paths + e.batchSize - 1) / e.batchSize
	generators := make([]brownian.Generator, batches)
	for b := range generators {
		gen, err := e.factory.Create(e.model.NumberOfFactors(), e.model.NumberOfSteps())
		if err != nil {
			return nil, errors.Wrapf(err, "generator for batch %d", b)
		}
		generators[b] = gen
	}

	partial := make([]*statistics.Sequence, batches)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for b := 0; b < batches; b++ {
		b := b // per-iteration copy (go directive lowered to 1.21)
		size := min(e.batchSize, paths-b*e.batchSize)
		g.Go(func() error {
			seq, err := e.runBatch(gctx, log.WithField("batch", b), generators[b], size)
			if err != nil {
				return err
			}
			partial[b] = seq
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("simulation aborted")
		return nil, err
	}

	total, err := statistics.NewSequence(e.sampleSize())
	if err != nil {
		return nil, err
	}
	for _, seq := range partial {
		if err := total.Merge(seq); err != nil {
			return nil, err
		}
	}
	res := newResults(runID, total, e.product.NumberOfProducts(), e.model.NumberOfRates())
	log.WithField("elapsed", time.Since(start).String()).Info("simulation finished")
	return res, nil
}

func (e *Engine) sampleSize() int {
	return e.product.NumberOfProducts() * (1 + e.model.NumberOfRates())
}

func (e *Engine) runBatch(ctx context.Context, log logrus.FieldLogger, gen brownian.Generator, size int) (*statistics.Sequence, error) {
	started := time.Now()
	ev, err := evolver.NewLogNormalEuler(e.model, e.numeraires, gen)
	if err != nil {
		return nil, err
	}
	seq, err := statistics.NewSequence(e.sampleSize())
	if err != nil {
		return nil, err
	}
	acc := newAccountant(e, e.product.Clone())
	for p := 0; p < size; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		acc.runPath(ev)
		if err := seq.Add(acc.sample, 1); err != nil {
			return nil, err
		}
	}
	elapsed := time.Since(started)
	e.metrics.observeBatch(size, elapsed.Seconds())
	log.WithField("elapsed", elapsed.String()).Debug("batch done")
	return seq, nil
}
