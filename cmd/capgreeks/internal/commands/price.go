package commands

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meenmo/pathgreeks/brownian"
	"github.com/meenmo/pathgreeks/evolver"
	"github.com/meenmo/pathgreeks/montecarlo"
	"github.com/meenmo/pathgreeks/utils"
)

type priceOutput struct {
	RunID          string          `json:"run_id"`
	Product        string          `json:"product"`
	Paths          int             `json:"paths"`
	RateDates      []string        `json:"rate_dates"`
	Results        []productResult `json:"results"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
}

type productResult struct {
	Label       string    `json:"label"`
	Value       float64   `json:"value"`
	ValueError  float64   `json:"value_error"`
	Deltas      []float64 `json:"deltas"`
	DeltaErrors []float64 `json:"delta_errors"`
}

func newPriceCmd(st *state) *cobra.Command {
	var (
		paths       int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Simulate the configured product and print values and forward-rate deltas as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			if paths > 0 {
				cfg.Simulation.Paths = paths
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			var metrics *montecarlo.Metrics
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				m, err := montecarlo.NewMetrics(reg)
				if err != nil {
					return err
				}
				shutdown, err := serveMetrics(metricsAddr, reg, st.logger)
				if err != nil {
					return err
				}
				defer shutdown()
				metrics = m
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			out, err := price(ctx, st, metrics)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&paths, "paths", 0, "number of paths (overrides simulation.paths)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while simulating")
	return cmd
}

func price(ctx context.Context, st *state, metrics *montecarlo.Metrics) (*priceOutput, error) {
	cfg := st.cfg
	_, grid, err := buildMarket(cfg)
	if err != nil {
		return nil, err
	}
	product, labels, err := buildProduct(cfg, grid)
	if err != nil {
		return nil, err
	}

	vols := make([]float64, len(grid.Forwards))
	for i := range vols {
		vols[i] = cfg.Model.Volatility
	}
	model, err := evolver.NewFlatVol(product.Evolution(), grid.Forwards, vols,
		cfg.Model.LongTermCorrelation, cfg.Model.Beta, cfg.Model.Factors, grid.InitialDiscount)
	if err != nil {
		return nil, errors.Wrap(err, "market model")
	}

	var factory brownian.Factory = brownian.NewPseudoRandomFactory(cfg.Simulation.Seed)
	if cfg.Simulation.Antithetic {
		factory = brownian.AntitheticFactory{Inner: factory}
	}

	opts := []montecarlo.Option{
		montecarlo.WithLogger(st.logger),
		montecarlo.WithMetrics(metrics),
		montecarlo.WithBatchSize(cfg.Simulation.BatchSize),
	}
	if cfg.Simulation.Workers > 0 {
		opts = append(opts, montecarlo.WithWorkers(cfg.Simulation.Workers))
	}
	engine, err := montecarlo.NewEngine(model, product, factory, opts...)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	res, err := engine.Simulate(ctx, cfg.Simulation.Paths)
	if err != nil {
		return nil, err
	}

	out := &priceOutput{
		RunID:          res.RunID,
		Product:        cfg.Product.Type,
		Paths:          res.Paths,
		RateDates:      make([]string, len(grid.Dates)),
		Results:        make([]productResult, len(res.Values)),
		ElapsedSeconds: time.Since(began).Seconds(),
	}
	for i, d := range grid.Dates {
		out.RateDates[i] = d.Format(utils.DateLayout)
	}
	for p := range res.Values {
		out.Results[p] = productResult{
			Label:       labels[p],
			Value:       res.Values[p],
			ValueError:  res.ValueErrors[p],
			Deltas:      res.Deltas[p],
			DeltaErrors: res.DeltaErrors[p],
		}
	}
	return out, nil
}

// serveMetrics exposes reg on addr until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger logrus.FieldLogger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()
	logger.WithField("addr", ln.Addr().String()).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("metrics server shutdown")
		}
	}, nil
}
