// Package valueobject holds the shared monetary primitives. Amounts are
// carried as decimal.Decimal at full precision throughout the domain;
// this package pins the currency code and the single rounding step
// applied when a figure becomes a stored or displayed amount.
package valueobject

import "github.com/shopspring/decimal"

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	INR Currency = "INR" // Indian Rupee (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = INR

// String returns the string representation of the currency code
func (c Currency) String() string {
	return string(c)
}

// DisplayPrecision is the number of decimal places used for monetary
// output. Intermediate arithmetic keeps full precision; rounding happens
// once, at the point a figure becomes a stored or displayed amount.
const DisplayPrecision int32 = 2

// RoundDisplay rounds an amount half-up to display precision
func RoundDisplay(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(DisplayPrecision)
}
