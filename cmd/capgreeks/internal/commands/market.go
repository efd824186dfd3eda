package commands

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/calendar"
	"github.com/meenmo/pathgreeks/config"
	"github.com/meenmo/pathgreeks/pathwise"
	"github.com/meenmo/pathgreeks/termstructure"
	"github.com/meenmo/pathgreeks/utils"
)

// buildMarket returns the flat curve and the forward-rate grid on it.
func buildMarket(cfg *config.Config) (*termstructure.DiscountCurve, *termstructure.RateGrid, error) {
	ref, err := cfg.Curve.ReferenceDate()
	if err != nil {
		return nil, nil, err
	}
	last, err := cfg.Curve.MaxDate()
	if err != nil {
		return nil, nil, err
	}
	curveDC, err := utils.ParseDayCount(cfg.Curve.DayCount)
	if err != nil {
		return nil, nil, err
	}
	curve, err := termstructure.NewFlatCurve(ref, last, cfg.Curve.Rate, curveDC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "discount curve")
	}

	cal, err := calendar.ParseCalendar(cfg.Curve.Calendar)
	if err != nil {
		return nil, nil, err
	}
	start, err := utils.ParsePeriod(cfg.Grid.Start)
	if err != nil {
		return nil, nil, err
	}
	tenor, err := utils.ParsePeriod(cfg.Grid.Tenor)
	if err != nil {
		return nil, nil, err
	}
	indexDC, err := utils.ParseDayCount(cfg.Grid.DayCount)
	if err != nil {
		return nil, nil, err
	}
	grid, err := termstructure.BuildRateGrid(curve, cal, start, tenor, cfg.Grid.Count, indexDC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "rate grid")
	}
	return curve, grid, nil
}

// buildProduct returns the configured product and one label per sub-product.
func buildProduct(cfg *config.Config, grid *termstructure.RateGrid) (pathwise.Product, []string, error) {
	n := len(grid.Forwards)
	payments := grid.Times[1:]
	strikes := make([]float64, n)
	for i := range strikes {
		strikes[i] = cfg.Product.Strike
	}
	capletLabels := func() []string {
		labels := make([]string, n)
		for i := range labels {
			labels[i] = fmt.Sprintf("caplet %s-%s", grid.Dates[i].Format(utils.DateLayout), grid.Dates[i+1].Format(utils.DateLayout))
		}
		return labels
	}

	switch cfg.Product.Type {
	case config.ProductCaplet:
		p, err := pathwise.NewCaplet(grid.Times, grid.Accruals, payments, strikes)
		return p, capletLabels(), err
	case config.ProductDeflatedCaplet:
		p, err := pathwise.NewDeflatedCaplet(grid.Times, grid.Accruals, payments, strikes)
		return p, capletLabels(), err
	case config.ProductDeflatedCap:
		ranges := make([]pathwise.Range, len(cfg.Product.Ranges))
		labels := make([]string, len(ranges))
		for j, r := range cfg.Product.Ranges {
			ranges[j] = pathwise.Range{Start: r.Start, End: r.End}
			labels[j] = fmt.Sprintf("cap %s-%s", grid.Dates[r.Start].Format(utils.DateLayout), grid.Dates[r.End].Format(utils.DateLayout))
		}
		p, err := pathwise.NewDeflatedCap(grid.Times, grid.Accruals, payments, cfg.Product.Strike, ranges)
		return p, labels, err
	default:
		return nil, nil, errors.Errorf("unknown product type %q", cfg.Product.Type)
	}
}
