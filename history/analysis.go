// Package history measures how forward rates moved over a historical window:
// one curve per observation date, forwards at fixed time-to-go periods and
// their relative changes between consecutive valid dates.
package history

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/pathgreeks/calendar"
	"github.com/meenmo/pathgreeks/statistics"
	"github.com/meenmo/pathgreeks/termstructure"
	"github.com/meenmo/pathgreeks/utils"
)

// Context carries the evaluation date explicitly through the analysis.
type Context struct {
	EvaluationDate time.Time
	Calendar       calendar.CalendarID
}

// CurveProvider supplies the curve observed on ctx.EvaluationDate.
type CurveProvider interface {
	CurveAt(ctx Context) (*termstructure.DiscountCurve, error)
}

// MapProvider serves curves keyed by observation date.
type MapProvider map[time.Time]*termstructure.DiscountCurve

func (m MapProvider) CurveAt(ctx Context) (*termstructure.DiscountCurve, error) {
	c, ok := m[ctx.EvaluationDate]
	if !ok {
		return nil, errors.Errorf("no curve for %s", ctx.EvaluationDate.Format(utils.DateLayout))
	}
	return c, nil
}

// Params describes the window and the forwards to track. Periods other than
// Step must be expressed in months or years.
type Params struct {
	Start, End time.Time
	Step       utils.Period
	Calendar   calendar.CalendarID

	// Tenor and DayCount describe the forward-rate index.
	Tenor      utils.Period
	DayCount   utils.DayCount
	InitialGap utils.Period
	Horizon    utils.Period
}

type Result struct {
	FixingPeriods   []utils.Period
	SkippedDates    []time.Time
	SkippedMessages []string
	FailedDates     []time.Time
	FailedMessages  []string
	// Observations[d][j] is the relative change of forward j on the d-th valid date after the first.
	Observations [][]float64
	Statistics   *statistics.Sequence
	// Correlation is nil with fewer than two observations.
	Correlation *mat.SymDense
}

type Analyzer struct {
	provider CurveProvider
	logger   logrus.FieldLogger
}

func NewAnalyzer(provider CurveProvider, logger logrus.FieldLogger) *Analyzer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Analyzer{provider: provider, logger: logger}
}

// FixingPeriods lists InitialGap, InitialGap+Tenor, ... up to Horizon.
func FixingPeriods(initialGap, tenor, horizon utils.Period) ([]utils.Period, error) {
	gap, ok1 := initialGap.Months()
	step, ok2 := tenor.Months()
	last, ok3 := horizon.Months()
	if !ok1 || !ok2 || !ok3 {
		return nil, errors.Errorf("fixing periods need month or year units (gap %s, tenor %s, horizon %s)", initialGap, tenor, horizon)
	}
	if step <= 0 {
		return nil, errors.Errorf("non-positive index tenor %s", tenor)
	}
	var periods []utils.Period
	for m := gap; m <= last; m += step {
		periods = append(periods, utils.Period{Length: m, Unit: utils.Months})
	}
	if len(periods) == 0 {
		return nil, errors.Errorf("initial gap %s beyond horizon %s", initialGap, horizon)
	}
	return periods, nil
}

func (a *Analyzer) Run(ctx context.Context, p Params) (*Result, error) {
	if p.End.Before(p.Start) {
		return nil, errors.Errorf("end %s before start %s", p.End.Format(utils.DateLayout), p.Start.Format(utils.DateLayout))
	}
	if p.Step.Length <= 0 {
		return nil, errors.Errorf("non-positive step %s", p.Step)
	}
	periods, err := FixingPeriods(p.InitialGap, p.Tenor, p.Horizon)
	if err != nil {
		return nil, err
	}
	seq, err := statistics.NewSequence(len(periods))
	if err != nil {
		return nil, err
	}
	res := &Result{FixingPeriods: periods, Statistics: seq}

	fwd := make([]float64, len(periods))
	prev := make([]float64, len(periods))
	first := true
	day := utils.Period{Length: 1, Unit: utils.Days}
	for current := calendar.Advance(p.Calendar, p.Start, day, calendar.Following); !current.After(p.End); current = calendar.Advance(p.Calendar, current, p.Step, calendar.Following) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := a.logger.WithField("date", current.Format(utils.DateLayout))

		curve, err := a.provider.CurveAt(Context{EvaluationDate: current, Calendar: p.Calendar})
		if err != nil {
			log.WithError(err).Debug("date skipped")
			res.SkippedDates = append(res.SkippedDates, current)
			res.SkippedMessages = append(res.SkippedMessages, err.Error())
			continue
		}
		if err := forwards(curve, current, periods, p.Tenor, p.DayCount, fwd); err != nil {
			log.WithError(err).Debug("date failed")
			res.FailedDates = append(res.FailedDates, current)
			res.FailedMessages = append(res.FailedMessages, err.Error())
			continue
		}

		if !first {
			diff := make([]float64, len(fwd))
			for j := range fwd {
				diff[j] = fwd[j]/prev[j] - 1
			}
			if err := seq.Add(diff, 1); err != nil {
				return nil, err
			}
			res.Observations = append(res.Observations, diff)
		}
		first = false
		fwd, prev = prev, fwd
	}

	if len(res.Observations) >= 2 {
		data := mat.NewDense(len(res.Observations), len(periods), nil)
		for i, row := range res.Observations {
			data.SetRow(i, row)
		}
		res.Correlation = mat.NewSymDense(len(periods), nil)
		stat.CorrelationMatrix(res.Correlation, data, nil)
	}
	a.logger.WithFields(logrus.Fields{
		"observations": len(res.Observations),
		"skipped":      len(res.SkippedDates),
		"failed":       len(res.FailedDates),
	}).Info("historical forward analysis done")
	return res, nil
}

// forwards fills out with the simply compounded forwards starting date+period over one tenor.
func forwards(curve *termstructure.DiscountCurve, date time.Time, periods []utils.Period, tenor utils.Period, dc utils.DayCount, out []float64) error {
	for j, period := range periods {
		start := utils.AddPeriod(date, period)
		f, err := curve.ForwardRate(start, utils.AddPeriod(start, tenor), dc)
		if err != nil {
			return errors.Wrapf(err, "forward at %s", period)
		}
		out[j] = f
	}
	return nil
}
