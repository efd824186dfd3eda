package evolution

import "github.com/pkg/errors"

// A numeraire index n refers to the zero bond maturing at rateTimes[n]; one index per step.

// TerminalMeasure uses the bond maturing at the last rate time throughout.
func TerminalMeasure(d *Description) []int {
	numeraires := make([]int, d.NumberOfSteps())
	for i := range numeraires {
		numeraires[i] = d.NumberOfRates()
	}
	return numeraires
}

// MoneyMarketMeasure rolls into the shortest live bond at every step.
func MoneyMarketMeasure(d *Description) []int {
	return append([]int(nil), d.firstAliveRate...)
}

// CheckCompatibility requires one numeraire per step that has not matured before the step ends.
func CheckCompatibility(d *Description, numeraires []int) error {
	if len(numeraires) != d.NumberOfSteps() {
		return errors.Errorf("%d numeraires given for %d steps", len(numeraires), d.NumberOfSteps())
	}
	for s, n := range numeraires {
		if n < d.firstAliveRate[s] || n > d.NumberOfRates() {
			return errors.Errorf("numeraire %d at step %d outside [%d, %d]", n, s, d.firstAliveRate[s], d.NumberOfRates())
		}
	}
	return nil
}

func IsInTerminalMeasure(d *Description, numeraires []int) bool {
	for _, n := range numeraires {
		if n != d.NumberOfRates() {
			return false
		}
	}
	return true
}

func IsInMoneyMarketMeasure(d *Description, numeraires []int) bool {
	if len(numeraires) != d.NumberOfSteps() {
		return false
	}
	for s, n := range numeraires {
		if n != d.firstAliveRate[s] {
			return false
		}
	}
	return true
}
