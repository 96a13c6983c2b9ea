package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount in minor currency units
type Cents int64

// Order line limits. MaxPrice x MaxQuantity stays far inside int64.
const (
	MaxQuantity       = 999
	MaxPrice    Cents = 100_000_00
)

// Times returns the line total for qty units
func (c Cents) Times(qty int) Cents {
	return c * Cents(qty)
}

// Dollars returns the amount as a float, for display only
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// String formats the amount like "$69.98"
func (c Cents) String() string {
	return FormatUSD(c)
}

// FormatUSD formats an amount in cents as "$12.34"
func FormatUSD(amount Cents) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("$%d.%02d", amount/100, amount%100)
	if neg {
		return "-" + s
	}
	return s
}

// ParseQuantity coerces user input to a quantity in [1, MaxQuantity].
// Unparsable or non-positive input becomes 1.
func ParseQuantity(input string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(input))
	if errors.Is(err, strconv.ErrRange) && qty > 0 {
		return MaxQuantity
	}
	if err != nil || qty <= 0 {
		return 1
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}
