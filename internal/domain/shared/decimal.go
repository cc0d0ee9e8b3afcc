package shared

import "github.com/shopspring/decimal"

// DecimalScale is the number of fractional digits persisted for meter
// values, tariff parameters and invoice totals.
const DecimalScale = 4

// FitsScale reports whether d has no significant digits beyond DecimalScale
func FitsScale(d decimal.Decimal) bool {
	return d.Truncate(DecimalScale).Equal(d)
}

// RoundAmount rounds a computed amount to DecimalScale, half away from zero.
// Amounts are rounded here and nowhere else, so a stored total equals the
// value that was summed before storing it.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalScale)
}
