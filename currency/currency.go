// Package currency holds static currency metadata and money formatting.
package currency

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Currency struct {
	Name             string
	Code             string
	NumericCode      int
	Symbol           string
	FractionSymbol   string
	FractionsPerUnit int
	Rounding         Rounding
	// Decimals is the number of places shown by Format.
	Decimals int32
}

// Format renders amount as "<symbol> <amount>", falling back to the ISO code
// when the currency has no symbol.
func (c Currency) Format(amount float64) string {
	prefix := c.Symbol
	if prefix == "" {
		prefix = c.Code
	}
	d := c.Rounding.Apply(decimal.NewFromFloat(amount))
	return prefix + " " + d.StringFixed(c.Decimals)
}

func (c Currency) String() string { return c.Code }

var americas = []Currency{
	{Name: "Argentinian peso", Code: "ARS", NumericCode: 32, FractionsPerUnit: 100, Decimals: 2},
	{Name: "Brazilian real", Code: "BRL", NumericCode: 986, Symbol: "R$", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Canadian dollar", Code: "CAD", NumericCode: 124, Symbol: "Can$", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Chilean peso", Code: "CLP", NumericCode: 152, Symbol: "Ch$", FractionsPerUnit: 100, Decimals: 0},
	{Name: "Colombian peso", Code: "COP", NumericCode: 170, Symbol: "Col$", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Mexican peso", Code: "MXN", NumericCode: 484, Symbol: "Mex$", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Peruvian nuevo sol", Code: "PEN", NumericCode: 604, Symbol: "S/.", FractionsPerUnit: 100, Decimals: 2},
	// PEI and PEH predate ISO numeric codes; 998 and 999 are user-assigned.
	{Name: "Peruvian inti", Code: "PEI", NumericCode: 998, Symbol: "I/.", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Peruvian sol", Code: "PEH", NumericCode: 999, Symbol: "S./", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Trinidad & Tobago dollar", Code: "TTD", NumericCode: 780, Symbol: "TT$", FractionsPerUnit: 100, Decimals: 2},
	{Name: "U.S. dollar", Code: "USD", NumericCode: 840, Symbol: "$", FractionSymbol: "¢", FractionsPerUnit: 100, Decimals: 2},
	{Name: "Venezuelan bolivar", Code: "VEB", NumericCode: 862, Symbol: "Bs", FractionsPerUnit: 100, Decimals: 2},
}

// Americas returns a copy of the Americas table sorted by ISO code.
func Americas() []Currency {
	out := make([]Currency, len(americas))
	copy(out, americas)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ByCode looks a currency up by its ISO code, case-insensitively.
func ByCode(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range americas {
		if c.Code == code {
			return c, nil
		}
	}
	return Currency{}, errors.Errorf("unknown currency %q", code)
}
