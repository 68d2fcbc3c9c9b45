package model

import "github.com/shopspring/decimal"

// Money amounts are summed as decimals and rounded to cents before being
// exposed as float64, so totals do not drift with the number of lines.

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// LineTotal is unitPrice × quantity rounded to cents.
func LineTotal(unitPrice, quantity float64) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromFloat(quantity)).Round(2)
}

// Amount converts a decimal total back to the float64 used on the wire.
func Amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
