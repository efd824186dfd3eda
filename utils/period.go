package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeUnit is the unit of a Period.
type TimeUnit byte

const (
	Days   TimeUnit = 'D'
	Weeks  TimeUnit = 'W'
	Months TimeUnit = 'M'
	Years  TimeUnit = 'Y'
)

// Period is a tenor such as 1W, 3M or 10Y.
type Period struct {
	Length int
	Unit   TimeUnit
}

// ParsePeriod converts tenor strings like "1W", "3M", "10Y" to a Period.
func ParsePeriod(tenor string) (Period, error) {
	s := strings.TrimSpace(strings.ToUpper(tenor))
	if len(s) < 2 {
		return Period{}, errors.Errorf("invalid tenor %q", tenor)
	}
	unit := TimeUnit(s[len(s)-1])
	switch unit {
	case Days, Weeks, Months, Years:
	default:
		return Period{}, errors.Errorf("invalid tenor unit in %q", tenor)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Period{}, errors.Wrapf(err, "invalid tenor %q", tenor)
	}
	return Period{Length: n, Unit: unit}, nil
}

// MustParsePeriod is ParsePeriod for literals; it panics on malformed input.
func MustParsePeriod(tenor string) Period {
	p, err := ParsePeriod(tenor)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) String() string {
	return strconv.Itoa(p.Length) + string(p.Unit)
}

// Months returns the period length in months for M and Y units.
func (p Period) Months() (int, bool) {
	switch p.Unit {
	case Months:
		return p.Length, true
	case Years:
		return 12 * p.Length, true
	default:
		return 0, false
	}
}

// Years approximates the period as a year fraction.
func (p Period) Years() float64 {
	switch p.Unit {
	case Days:
		return float64(p.Length) / 365.0
	case Weeks:
		return float64(p.Length) * 7.0 / 365.0
	case Months:
		return float64(p.Length) / 12.0
	default:
		return float64(p.Length)
	}
}

// AddPeriod advances t by p without any business-day adjustment.
func AddPeriod(t time.Time, p Period) time.Time {
	switch p.Unit {
	case Days:
		return t.AddDate(0, 0, p.Length)
	case Weeks:
		return t.AddDate(0, 0, 7*p.Length)
	case Months:
		return AddMonth(t, p.Length)
	default:
		return AddMonth(t, 12*p.Length)
	}
}
