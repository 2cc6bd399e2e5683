// Package commission computes the fee charged to the sender of a transfer.
package commission

import "github.com/shopspring/decimal"

// FeePlaces is the number of decimal places a fee is rounded to.
const FeePlaces = 4

// DefaultRate is the 1.5% commission applied to every transfer.
var DefaultRate = decimal.RequireFromString("0.015")

// Calculator is a pure fee function over a fixed rate.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator creates a calculator for the given rate. A zero rate falls
// back to DefaultRate.
func NewCalculator(rate decimal.Decimal) *Calculator {
	if rate.IsZero() {
		rate = DefaultRate
	}
	return &Calculator{rate: rate}
}

// Rate returns the configured commission rate.
func (c *Calculator) Rate() decimal.Decimal {
	return c.rate
}

// Commission returns round(amount * rate, 4), rounding half away from zero.
func (c *Calculator) Commission(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.rate).Round(FeePlaces)
}

// TotalDebit is the amount plus its commission: what the sender pays.
func (c *Calculator) TotalDebit(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(c.Commission(amount))
}
