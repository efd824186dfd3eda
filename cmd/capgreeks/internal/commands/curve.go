package commands

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/pathgreeks/shortrate"
	"github.com/meenmo/pathgreeks/utils"
)

type curveOutput struct {
	Reference string        `json:"reference"`
	Rate      float64       `json:"rate"`
	Periods   []ratePeriod  `json:"periods"`
	HullWhite *hullWhiteFit `json:"hull_white,omitempty"`
}

type ratePeriod struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Time     float64 `json:"time"`
	Tau      float64 `json:"tau"`
	Accrual  float64 `json:"accrual"`
	Forward  float64 `json:"forward"`
	Discount float64 `json:"discount"`
}

type hullWhiteFit struct {
	MeanReversion float64 `json:"mean_reversion"`
	Volatility    float64 `json:"volatility"`
}

func newCurveCmd(st *state) *cobra.Command {
	var calibrate bool
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the forward-rate grid read off the configured curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			curve, grid, err := buildMarket(cfg)
			if err != nil {
				return err
			}
			out := curveOutput{
				Reference: curve.ReferenceDate().Format(utils.DateLayout),
				Rate:      cfg.Curve.Rate,
				Periods:   make([]ratePeriod, len(grid.Forwards)),
			}
			for i := range grid.Forwards {
				df, err := curve.DiscountAt(grid.Times[i])
				if err != nil {
					return err
				}
				out.Periods[i] = ratePeriod{
					Start:    grid.Dates[i].Format(utils.DateLayout),
					End:      grid.Dates[i+1].Format(utils.DateLayout),
					Time:     grid.Times[i],
					Tau:      grid.Taus[i],
					Accrual:  grid.Accruals[i],
					Forward:  grid.Forwards[i],
					Discount: df,
				}
			}

			if calibrate {
				// Caplets on the grid quoted at the model's flat Black volatility.
				helpers := make([]shortrate.CapletHelper, len(grid.Forwards))
				for i := range helpers {
					helpers[i], err = shortrate.NewBlackCapletHelper(curve, grid.Times[i], grid.Times[i+1],
						grid.Accruals[i], cfg.Product.Strike, cfg.Model.Volatility)
					if err != nil {
						return err
					}
				}
				hw, err := shortrate.Calibrate(curve, helpers, shortrate.HullWhite{A: 0.1, Sigma: 0.01}, nil)
				if err != nil {
					return err
				}
				st.logger.WithField("a", hw.A).WithField("sigma", hw.Sigma).Info("hull-white calibrated")
				out.HullWhite = &hullWhiteFit{MeanReversion: hw.A, Volatility: hw.Sigma}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&calibrate, "calibrate", false, "fit Hull-White to caplets quoted at model.volatility")
	return cmd
}
