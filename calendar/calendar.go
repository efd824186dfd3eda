package calendar

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/pathgreeks/utils"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	TARGET       CalendarID = "TARGET"
	USD          CalendarID = "USD"
	WeekendsOnly CalendarID = "WEEKENDS"
	Null         CalendarID = "NULL"
)

// ParseCalendar maps a configuration name to a CalendarID.
func ParseCalendar(s string) (CalendarID, error) {
	switch id := CalendarID(strings.ToUpper(strings.TrimSpace(s))); id {
	case TARGET, USD, WeekendsOnly, Null:
		return id, nil
	case "":
		return WeekendsOnly, nil
	default:
		return "", errors.Errorf("unknown calendar %q", s)
	}
}

// BusinessDayConvention controls how non-business days are rolled.
type BusinessDayConvention int

const (
	Unadjusted BusinessDayConvention = iota
	Following
	ModifiedFollowing
	Preceding
)

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		return isTargetHoliday(t)
	case USD:
		return isUSHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday rules. The Null calendar treats every day as a business day.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == Null {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding rolls back to the previous business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AdjustWith applies the given convention.
func AdjustWith(cal CalendarID, t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Following:
		return AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return Adjust(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	default:
		return t
	}
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by p. Day periods count business days; longer periods roll
// the calendar date and then apply conv.
func Advance(cal CalendarID, t time.Time, p utils.Period, conv BusinessDayConvention) time.Time {
	if p.Unit == utils.Days {
		if p.Length == 0 {
			return AdjustWith(cal, t, conv)
		}
		return AddBusinessDays(cal, t, p.Length)
	}
	return AdjustWith(cal, utils.AddPeriod(t, p), conv)
}
