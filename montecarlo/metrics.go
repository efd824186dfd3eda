package montecarlo

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts simulated work. A nil *Metrics records nothing.
type Metrics struct {
	PathsTotal    prometheus.Counter
	BatchesTotal  prometheus.Counter
	BatchDuration prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PathsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pathgreeks",
			Subsystem: "montecarlo",
			Name:      "paths_total",
			Help:      "Total simulated paths",
		}),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pathgreeks",
			Subsystem: "montecarlo",
			Name:      "batches_total",
			Help:      "Total completed path batches",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pathgreeks",
			Subsystem: "montecarlo",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one path batch in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.PathsTotal, m.BatchesTotal, m.BatchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeBatch(paths int, seconds float64) {
	if m == nil {
		return
	}
	m.PathsTotal.Add(float64(paths))
	m.BatchesTotal.Inc()
	m.BatchDuration.Observe(seconds)
}
