// Package pricing computes order totals. Display and submission use the
// same functions so the shown total is the submitted one.
package pricing

import (
	"github.com/shopspring/decimal"

	"pcshop-storefront/internal/models"
)

// DefaultShippingFee is the flat fee added to every order.
var DefaultShippingFee = decimal.NewFromInt(40)

// Subtotal returns the sum of price * quantity over lines.
func Subtotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Total returns Subtotal(lines) + fee.
func Total(lines []models.CartLine, fee decimal.Decimal) decimal.Decimal {
	return Subtotal(lines).Add(fee)
}

// Display formats an amount with two decimals.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
