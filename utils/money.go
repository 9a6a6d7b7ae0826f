package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmountCents parses a decimal currency string ("123.45") into integer
// cents. Sub-cent input is rounded half up. Ledger totals are kept in cents
// so atomic increments stay exact.
func ParseAmountCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must be positive")
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders integer cents back to a two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
