package utils

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DayCount identifies a day count convention.
type DayCount string

const (
	Act360     DayCount = "ACT/360"
	Act365F    DayCount = "ACT/365F"
	Thirty360  DayCount = "30/360"
	Thirty360E DayCount = "30E/360"
)

// ParseDayCount normalises a convention name such as "act/365f".
func ParseDayCount(s string) (DayCount, error) {
	switch dc := DayCount(strings.ToUpper(strings.TrimSpace(s))); dc {
	case Act360, Act365F, Thirty360, Thirty360E:
		return dc, nil
	case "ACT/365", "ACT/365 FIXED":
		return Act365F, nil
	default:
		return "", errors.Errorf("unknown day count %q", s)
	}
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, dc DayCount) float64 {
	switch dc {
	case Act360:
		return DaysBetween(start, end) / 360.0
	case Act365F:
		return DaysBetween(start, end) / 365.0
	case Thirty360:
		// Bond basis: D2 is capped only when D1 was.
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	case Thirty360E:
		// Eurobond basis: D1 and D2 are capped at 30
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return DaysBetween(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}
