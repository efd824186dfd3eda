package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/pathgreeks/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := date(2025, 1, 31)
	end := date(2025, 7, 31)

	assert.InDelta(t, 181.0/360.0, utils.YearFraction(start, end, utils.Act360), 1e-15)
	assert.InDelta(t, 181.0/365.0, utils.YearFraction(start, end, utils.Act365F), 1e-15)
	assert.InDelta(t, 0.5, utils.YearFraction(start, end, utils.Thirty360), 1e-15)
	assert.InDelta(t, 0.5, utils.YearFraction(start, end, utils.Thirty360E), 1e-15)

	// 30/360 only caps D2 when D1 was capped; 30E/360 always caps.
	feb := date(2025, 2, 28)
	assert.InDelta(t, 33.0/360.0, utils.YearFraction(feb, date(2025, 3, 31), utils.Thirty360), 1e-15)
	assert.InDelta(t, 32.0/360.0, utils.YearFraction(feb, date(2025, 3, 31), utils.Thirty360E), 1e-15)
}

func TestParseDayCount(t *testing.T) {
	t.Parallel()

	dc, err := utils.ParseDayCount(" act/365 ")
	require.NoError(t, err)
	assert.Equal(t, utils.Act365F, dc)

	_, err = utils.ParseDayCount("BUS/252")
	assert.Error(t, err)
}

func TestAddMonthClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(2025, 2, 28), utils.AddMonth(date(2025, 1, 31), 1))
	assert.Equal(t, date(2024, 2, 29), utils.AddMonth(date(2023, 11, 30), 3))
	assert.Equal(t, date(2024, 12, 15), utils.AddMonth(date(2025, 3, 15), -3))
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		want   utils.Period
		months int
		ok     bool
	}{
		{"3M", utils.Period{Length: 3, Unit: utils.Months}, 3, true},
		{"10y", utils.Period{Length: 10, Unit: utils.Years}, 120, true},
		{"1W", utils.Period{Length: 1, Unit: utils.Weeks}, 0, false},
		{"2D", utils.Period{Length: 2, Unit: utils.Days}, 0, false},
	}
	for _, tc := range cases {
		p, err := utils.ParsePeriod(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, p)
		m, ok := p.Months()
		assert.Equal(t, tc.ok, ok)
		assert.Equal(t, tc.months, m)
	}

	for _, bad := range []string{"", "M", "3Q", "xM"} {
		_, err := utils.ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestAddPeriod(t *testing.T) {
	t.Parallel()

	start := date(2025, 1, 31)
	assert.Equal(t, date(2025, 2, 10), utils.AddPeriod(start, utils.MustParsePeriod("10D")))
	assert.Equal(t, date(2025, 2, 14), utils.AddPeriod(start, utils.MustParsePeriod("2W")))
	assert.Equal(t, date(2025, 4, 30), utils.AddPeriod(start, utils.MustParsePeriod("3M")))
	assert.Equal(t, date(2027, 1, 31), utils.AddPeriod(start, utils.MustParsePeriod("2Y")))
}

func TestDaysBetweenAndDayUnit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 59.0, utils.DaysBetween(date(2024, 1, 1), date(2024, 2, 29)))
	assert.Equal(t, -1.0, utils.DaysBetween(date(2024, 3, 2), date(2024, 3, 1)))
	assert.InDelta(t, 59.0/360, utils.YearFraction(date(2024, 1, 1), date(2024, 2, 29), utils.Act360), 1e-15)

	p, err := utils.ParsePeriod("10D")
	require.NoError(t, err)
	assert.Equal(t, utils.Days, p.Unit)
}
