package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundingType selects how the digit past Precision is treated.
type RoundingType int

const (
	// None leaves the value untouched.
	None RoundingType = iota
	// Up rounds away from zero.
	Up
	// Down truncates toward zero.
	Down
	// Closest rounds half away from zero.
	Closest
	// Floor rounds toward negative infinity.
	Floor
	// Ceiling rounds toward positive infinity.
	Ceiling
)

func (t RoundingType) String() string {
	switch t {
	case None:
		return "None"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Closest:
		return "Closest"
	case Floor:
		return "Floor"
	case Ceiling:
		return "Ceiling"
	default:
		return fmt.Sprintf("RoundingType(%d)", int(t))
	}
}

// Rounding rounds to Precision decimal places.
type Rounding struct {
	Type      RoundingType
	Precision int32
}

// Apply rounds d. It panics on an unknown rounding type.
func (r Rounding) Apply(d decimal.Decimal) decimal.Decimal {
	switch r.Type {
	case None:
		return d
	case Up:
		return d.RoundUp(r.Precision)
	case Down:
		return d.RoundDown(r.Precision)
	case Closest:
		return d.Round(r.Precision)
	case Floor:
		return d.RoundFloor(r.Precision)
	case Ceiling:
		return d.RoundCeil(r.Precision)
	default:
		panic(fmt.Sprintf("unknown rounding type %d", int(r.Type)))
	}
}

// Round is Apply on a float64.
func (r Rounding) Round(v float64) float64 {
	return r.Apply(decimal.NewFromFloat(v)).InexactFloat64()
}
