package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinProfit_RoundsToCents(t *testing.T) {
	// 50 * 1.10 would be 55.000000000000004 in raw float math.
	assert.Equal(t, 55.00, WinProfit(50, 2.10))
	assert.Equal(t, 9.55, WinProfit(10, 1.955))
}

func TestRoundLedger(t *testing.T) {
	assert.Equal(t, -25.00, RoundLedger(-25))
	assert.Equal(t, 1.24, RoundLedger(1.2449))
	assert.Equal(t, 1.25, RoundLedger(1.245))
}

func TestSumLedger_NoDrift(t *testing.T) {
	// 0.1 added a thousand times drifts in float64; the ledger sum must not.
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 0.1
	}
	assert.Equal(t, 100.00, SumLedger(values...))
}
