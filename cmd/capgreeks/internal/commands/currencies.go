package commands

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/pathgreeks/currency"
)

type currencyOutput struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	NumericCode      int    `json:"numeric_code"`
	Symbol           string `json:"symbol,omitempty"`
	FractionSymbol   string `json:"fraction_symbol,omitempty"`
	FractionsPerUnit int    `json:"fractions_per_unit"`
	Formatted        string `json:"formatted,omitempty"`
}

func newCurrenciesCmd() *cobra.Command {
	var (
		code   string
		amount float64
	)
	cmd := &cobra.Command{
		Use:   "currencies",
		Short: "List Americas currencies, or format an amount in one of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := currency.Americas()
			if code != "" {
				c, err := currency.ByCode(code)
				if err != nil {
					return err
				}
				list = []currency.Currency{c}
			}
			out := make([]currencyOutput, len(list))
			for i, c := range list {
				out[i] = currencyOutput{
					Code:             c.Code,
					Name:             c.Name,
					NumericCode:      c.NumericCode,
					Symbol:           c.Symbol,
					FractionSymbol:   c.FractionSymbol,
					FractionsPerUnit: c.FractionsPerUnit,
				}
				if cmd.Flags().Changed("amount") {
					out[i].Formatted = c.Format(amount)
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "ISO code to show")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to format")
	return cmd
}
