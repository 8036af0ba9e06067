package domain

import "github.com/shopspring/decimal"

// money.go — ledger arithmetic.
//
// Profit/loss values are persisted, summed across many bets and compared
// against the stored bankroll, so they are computed with fixed-point
// decimals and rounded to cents at the point of write. Rounding only at
// display time lets float error drift between the computed and stored
// ledgers.

// RoundLedger rounds a monetary amount to 2 decimal places.
func RoundLedger(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// WinProfit is the profit on a winning bet: stake * (odds - 1), in cents.
func WinProfit(stake, odds float64) float64 {
	s := decimal.NewFromFloat(stake)
	o := decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))
	f, _ := s.Mul(o).Round(2).Float64()
	return f
}

// SumLedger adds monetary amounts without accumulating float error.
func SumLedger(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}
