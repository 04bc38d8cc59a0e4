package defi

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a fraction expressed in percent (50 for one half).
type Percent float64

// PercentOf converts a fraction (0.5) into a Percent (50).
func PercentOf(fraction decimal.Decimal) Percent {
	return Percent(fraction.Shift(2).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}
