// Package config loads run settings from YAML and PATHGREEKS_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/meenmo/pathgreeks/calendar"
	"github.com/meenmo/pathgreeks/utils"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "PATHGREEKS"

// Product types understood by the pricer.
const (
	ProductCaplet         = "caplet"
	ProductDeflatedCaplet = "deflated_caplet"
	ProductDeflatedCap    = "deflated_cap"
)

type Config struct {
	Curve      CurveConfig      `mapstructure:"curve"`
	Grid       GridConfig       `mapstructure:"grid"`
	Model      ModelConfig      `mapstructure:"model"`
	Product    ProductConfig    `mapstructure:"product"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Log        LogConfig        `mapstructure:"log"`
}

// CurveConfig describes a flat continuously compounded discount curve.
type CurveConfig struct {
	Reference    string  `mapstructure:"reference"`
	Rate         float64 `mapstructure:"rate"`
	HorizonYears int     `mapstructure:"horizon_years"`
	DayCount     string  `mapstructure:"day_count"`
	Calendar     string  `mapstructure:"calendar"`
}

// GridConfig places Count forward rates of length Tenor, the first fixing Start after the reference date.
type GridConfig struct {
	Start    string `mapstructure:"start"`
	Tenor    string `mapstructure:"tenor"`
	Count    int    `mapstructure:"count"`
	DayCount string `mapstructure:"day_count"`
}

type ModelConfig struct {
	Volatility          float64 `mapstructure:"volatility"`
	LongTermCorrelation float64 `mapstructure:"long_term_correlation"`
	Beta                float64 `mapstructure:"beta"`
	Factors             int     `mapstructure:"factors"`
}

type ProductConfig struct {
	Type   string        `mapstructure:"type"`
	Strike float64       `mapstructure:"strike"`
	Ranges []RangeConfig `mapstructure:"ranges"`
}

// RangeConfig is a cap over rates Start <= i < End.
type RangeConfig struct {
	Start int `mapstructure:"start"`
	End   int `mapstructure:"end"`
}

type SimulationConfig struct {
	Paths      int    `mapstructure:"paths"`
	Seed       uint64 `mapstructure:"seed"`
	Antithetic bool   `mapstructure:"antithetic"`
	// Workers <= 0 means GOMAXPROCS.
	Workers   int `mapstructure:"workers"`
	BatchSize int `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default is a five-year annual cap grid on a flat 4% curve.
func Default() Config {
	return Config{
		Curve: CurveConfig{
			Reference:    "2024-01-02",
			Rate:         0.04,
			HorizonYears: 30,
			DayCount:     string(utils.Act365F),
			Calendar:     string(calendar.TARGET),
		},
		Grid: GridConfig{
			Start:    "1Y",
			Tenor:    "1Y",
			Count:    5,
			DayCount: string(utils.Act360),
		},
		Model: ModelConfig{
			Volatility:          0.2,
			LongTermCorrelation: 0.5,
			Beta:                0.2,
			Factors:             3,
		},
		Product: ProductConfig{
			Type:   ProductDeflatedCap,
			Strike: 0.04,
			Ranges: []RangeConfig{{Start: 0, End: 5}},
		},
		Simulation: SimulationConfig{
			Paths:      65536,
			Seed:       42,
			Antithetic: true,
			BatchSize:  1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("curve.reference", d.Curve.Reference)
	v.SetDefault("curve.rate", d.Curve.Rate)
	v.SetDefault("curve.horizon_years", d.Curve.HorizonYears)
	v.SetDefault("curve.day_count", d.Curve.DayCount)
	v.SetDefault("curve.calendar", d.Curve.Calendar)

	v.SetDefault("grid.start", d.Grid.Start)
	v.SetDefault("grid.tenor", d.Grid.Tenor)
	v.SetDefault("grid.count", d.Grid.Count)
	v.SetDefault("grid.day_count", d.Grid.DayCount)

	v.SetDefault("model.volatility", d.Model.Volatility)
	v.SetDefault("model.long_term_correlation", d.Model.LongTermCorrelation)
	v.SetDefault("model.beta", d.Model.Beta)
	v.SetDefault("model.factors", d.Model.Factors)

	v.SetDefault("product.type", d.Product.Type)
	v.SetDefault("product.strike", d.Product.Strike)
	ranges := make([]map[string]any, len(d.Product.Ranges))
	for i, r := range d.Product.Ranges {
		ranges[i] = map[string]any{"start": r.Start, "end": r.End}
	}
	v.SetDefault("product.ranges", ranges)

	v.SetDefault("simulation.paths", d.Simulation.Paths)
	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.antithetic", d.Simulation.Antithetic)
	v.SetDefault("simulation.workers", d.Simulation.Workers)
	v.SetDefault("simulation.batch_size", d.Simulation.BatchSize)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads path (optional) over the defaults, then applies environment
// overrides such as PATHGREEKS_MODEL_VOLATILITY, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// Validate checks ranges and parses every enumerated field.
func (c Config) Validate() error {
	if _, err := c.Curve.ReferenceDate(); err != nil {
		return invalid("curve.reference: %v", err)
	}
	if c.Curve.HorizonYears < 1 {
		return invalid("curve.horizon_years must be positive, got %d", c.Curve.HorizonYears)
	}
	if _, err := utils.ParseDayCount(c.Curve.DayCount); err != nil {
		return invalid("curve.day_count: %v", err)
	}
	if _, err := calendar.ParseCalendar(c.Curve.Calendar); err != nil {
		return invalid("curve.calendar: %v", err)
	}

	if _, err := utils.ParsePeriod(c.Grid.Start); err != nil {
		return invalid("grid.start: %v", err)
	}
	tenor, err := utils.ParsePeriod(c.Grid.Tenor)
	if err != nil {
		return invalid("grid.tenor: %v", err)
	}
	if tenor.Length <= 0 {
		return invalid("grid.tenor must be positive, got %s", c.Grid.Tenor)
	}
	if c.Grid.Count < 1 {
		return invalid("grid.count must be positive, got %d", c.Grid.Count)
	}
	if _, err := utils.ParseDayCount(c.Grid.DayCount); err != nil {
		return invalid("grid.day_count: %v", err)
	}

	if c.Model.Volatility < 0 {
		return invalid("model.volatility must be non-negative, got %v", c.Model.Volatility)
	}
	if c.Model.LongTermCorrelation < 0 || c.Model.LongTermCorrelation > 1 {
		return invalid("model.long_term_correlation must lie in [0,1], got %v", c.Model.LongTermCorrelation)
	}
	if c.Model.Beta < 0 {
		return invalid("model.beta must be non-negative, got %v", c.Model.Beta)
	}
	if c.Model.Factors < 1 || c.Model.Factors > c.Grid.Count {
		return invalid("model.factors must lie in [1,%d], got %d", c.Grid.Count, c.Model.Factors)
	}

	switch c.Product.Type {
	case ProductCaplet, ProductDeflatedCaplet:
	case ProductDeflatedCap:
		if len(c.Product.Ranges) == 0 {
			return invalid("product.ranges must not be empty for %s", ProductDeflatedCap)
		}
		for i, r := range c.Product.Ranges {
			if r.Start < 0 || r.End > c.Grid.Count || r.Start >= r.End {
				return invalid("product.ranges[%d] = [%d,%d) outside [0,%d)", i, r.Start, r.End, c.Grid.Count)
			}
		}
	default:
		return invalid("unknown product.type %q", c.Product.Type)
	}

	if c.Simulation.Paths < 2 {
		return invalid("simulation.paths must be at least 2 for error estimates, got %d", c.Simulation.Paths)
	}
	if c.Simulation.BatchSize < 1 {
		return invalid("simulation.batch_size must be positive, got %d", c.Simulation.BatchSize)
	}
	if c.Simulation.Antithetic && c.Simulation.BatchSize%2 != 0 {
		return invalid("simulation.batch_size must be even with antithetic paths, got %d", c.Simulation.BatchSize)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (c CurveConfig) ReferenceDate() (time.Time, error) {
	return utils.ParseDate(c.Reference)
}

// MaxDate is the curve's last node.
func (c CurveConfig) MaxDate() (time.Time, error) {
	ref, err := c.ReferenceDate()
	if err != nil {
		return time.Time{}, err
	}
	return ref.AddDate(c.HorizonYears, 0, 0), nil
}
