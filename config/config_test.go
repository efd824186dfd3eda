package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
	require.NoError(t, config.Default().Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.yaml")
	yaml := `
curve:
  rate: 0.03
grid:
  count: 8
  tenor: 6M
product:
  type: deflated_cap
  strike: 0.035
  ranges:
    - start: 0
      end: 4
    - start: 2
      end: 8
simulation:
  paths: 1000
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.03, cfg.Curve.Rate)
	assert.Equal(t, "TARGET", cfg.Curve.Calendar)
	assert.Equal(t, 8, cfg.Grid.Count)
	assert.Equal(t, "6M", cfg.Grid.Tenor)
	assert.Equal(t, []config.RangeConfig{{Start: 0, End: 4}, {Start: 2, End: 8}}, cfg.Product.Ranges)
	assert.Equal(t, 0.035, cfg.Product.Strike)
	assert.Equal(t, 1000, cfg.Simulation.Paths)
	assert.Equal(t, 2, cfg.Simulation.Workers)
	assert.Equal(t, 0.2, cfg.Model.Volatility)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PATHGREEKS_MODEL_VOLATILITY", "0.35")
	t.Setenv("PATHGREEKS_SIMULATION_PATHS", "2048")
	t.Setenv("PATHGREEKS_LOG_FORMAT", "json")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.35, cfg.Model.Volatility)
	assert.Equal(t, 2048, cfg.Simulation.Paths)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  factors: 9\n"), 0o600))
	_, err = config.Load(path)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"reference", func(c *config.Config) { c.Curve.Reference = "02/01/2024" }},
		{"horizon", func(c *config.Config) { c.Curve.HorizonYears = 0 }},
		{"curve day count", func(c *config.Config) { c.Curve.DayCount = "ACT/999" }},
		{"calendar", func(c *config.Config) { c.Curve.Calendar = "MARS" }},
		{"start", func(c *config.Config) { c.Grid.Start = "1Q" }},
		{"tenor", func(c *config.Config) { c.Grid.Tenor = "0M" }},
		{"count", func(c *config.Config) { c.Grid.Count = 0 }},
		{"volatility", func(c *config.Config) { c.Model.Volatility = -0.1 }},
		{"correlation", func(c *config.Config) { c.Model.LongTermCorrelation = 1.5 }},
		{"beta", func(c *config.Config) { c.Model.Beta = -1 }},
		{"factors", func(c *config.Config) { c.Model.Factors = 0 }},
		{"product", func(c *config.Config) { c.Product.Type = "swaption" }},
		{"no ranges", func(c *config.Config) { c.Product.Ranges = nil }},
		{"empty range", func(c *config.Config) { c.Product.Ranges = []config.RangeConfig{{Start: 2, End: 2}} }},
		{"range past grid", func(c *config.Config) { c.Product.Ranges = []config.RangeConfig{{Start: 0, End: 6}} }},
		{"paths", func(c *config.Config) { c.Simulation.Paths = 1 }},
		{"odd antithetic batch", func(c *config.Config) { c.Simulation.BatchSize = 3 }},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := config.Default()
		tt.mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid, tt.name)
	}

	caplet := config.Default()
	caplet.Product.Type = config.ProductCaplet
	caplet.Product.Ranges = nil
	assert.NoError(t, caplet.Validate())
}

func TestCurveDates(t *testing.T) {
	t.Parallel()

	c := config.Default().Curve
	ref, err := c.ReferenceDate()
	require.NoError(t, err)
	last, err := c.MaxDate()
	require.NoError(t, err)
	assert.Equal(t, ref.AddDate(30, 0, 0), last)
}
