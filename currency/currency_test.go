package currency_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/currency"
)

func TestAmericasTable(t *testing.T) {
	t.Parallel()

	all := currency.Americas()
	require.Len(t, all, 12)
	codes := make([]string, len(all))
	for i, c := range all {
		codes[i] = c.Code
		assert.Equal(t, 100, c.FractionsPerUnit, c.Code)
		assert.NotEmpty(t, c.Name, c.Code)
	}
	assert.Equal(t, []string{"ARS", "BRL", "CAD", "CLP", "COP", "MXN", "PEH", "PEI", "PEN", "TTD", "USD", "VEB"}, codes)

	// Callers get a copy.
	all[0].Code = "XXX"
	_, err := currency.ByCode("ARS")
	require.NoError(t, err)
}

func TestByCode(t *testing.T) {
	t.Parallel()

	usd, err := currency.ByCode(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "U.S. dollar", usd.Name)
	assert.Equal(t, 840, usd.NumericCode)
	assert.Equal(t, "¢", usd.FractionSymbol)
	assert.Equal(t, "USD", usd.String())

	pei, err := currency.ByCode("PEI")
	require.NoError(t, err)
	assert.Equal(t, 998, pei.NumericCode)

	_, err = currency.ByCode("EUR")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   string
		amount float64
		want   string
	}{
		{"USD", 1234.5, "$ 1234.50"},
		{"BRL", 10.005, "R$ 10.01"},
		{"ARS", 3, "ARS 3.00"},
		{"CLP", 1499.6, "Ch$ 1500"},
		{"CAD", -2.25, "Can$ -2.25"},
	}
	for _, tt := range tests {
		c, err := currency.ByCode(tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Format(tt.amount), tt.code)
	}
}

func TestRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ      currency.RoundingType
		pos, neg string
	}{
		{currency.None, "1.2345", "-1.2345"},
		{currency.Up, "1.24", "-1.24"},
		{currency.Down, "1.23", "-1.23"},
		{currency.Closest, "1.23", "-1.23"},
		{currency.Floor, "1.23", "-1.24"},
		{currency.Ceiling, "1.24", "-1.23"},
	}
	for _, tt := range tests {
		r := currency.Rounding{Type: tt.typ, Precision: 2}
		assert.Equal(t, tt.pos, r.Apply(decimal.RequireFromString("1.2345")).String(), tt.typ.String())
		assert.Equal(t, tt.neg, r.Apply(decimal.RequireFromString("-1.2345")).String(), tt.typ.String())
	}

	closest := currency.Rounding{Type: currency.Closest, Precision: 1}
	assert.Equal(t, 0.2, closest.Round(0.15))
	assert.Equal(t, -0.2, closest.Round(-0.15))

	assert.Equal(t, "RoundingType(9)", currency.RoundingType(9).String())
	assert.Panics(t, func() { currency.Rounding{Type: 9}.Apply(decimal.Zero) })
}
