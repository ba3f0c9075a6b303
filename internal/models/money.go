package models

import "github.com/shopspring/decimal"

// All money amounts in the system are two-decimal currency units.
// Percentage charges (GST, discounts) are rounded once at the order
// level, never per line, so repeated recomputation cannot drift.

// RoundMoney rounds an amount to two decimal places, half up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percentage computes round(base * rate / 100, 2).
func Percentage(base, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(base.Mul(rate).Div(decimal.NewFromInt(100)))
}

// LineSubtotal computes quantity * unitPrice. Unit prices are already
// two-decimal, so the product needs no further rounding.
func LineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
