package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money prints v with exactly two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Qty prints a quantity without trailing zeros: 3 -> "3", 3.25 -> "3.25".
func Qty(q float64) string {
	return decimal.NewFromFloat(q).String()
}

// QtyUnit is the combined quantity cell, e.g. "10 Bag".
func QtyUnit(q float64, unit string) string {
	return strings.TrimSpace(Qty(q) + " " + unit)
}
