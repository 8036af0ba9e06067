package domain

import "time"

// BankrollSnapshot is one row of the bankroll history, written after each
// settlement pass.
type BankrollSnapshot struct {
	At               time.Time
	Bankroll         float64
	CumulativeProfit float64
	TotalStaked      float64
	ROI              float64
	WinRate          float64
	TotalBets        int
}
