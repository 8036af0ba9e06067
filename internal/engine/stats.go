package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// Stats are cumulative performance metrics over settled bets.
type Stats struct {
	TotalBets   int
	Wins        int
	Losses      int
	Pushes      int
	WinRate     float64 // percent, pushes excluded from the denominator
	TotalStaked float64
	TotalProfit float64
	ROI         float64 // percent
	AvgOdds     float64
	AvgEV       float64 // over bets that had EV recorded at placement
	AvgCLV      float64 // over bets that got a CLV at settlement
	Bankroll    float64
}

// CumulativeStats computes the running ledger from all settled bets.
// Monetary totals go through the decimal ledger sum so the stored
// bankroll never drifts from the per-bet rows.
func (e *Engine) CumulativeStats(ctx context.Context) (Stats, error) {
	bets, err := e.store.SettledBets(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("engine.CumulativeStats: settled bets: %w", err)
	}

	stats := Stats{TotalBets: len(bets), Bankroll: e.cfg.StartingBankroll}
	if len(bets) == 0 {
		return stats, nil
	}

	var stakes, profits []float64
	var oddsSum, evSum, clvSum float64
	evCount, clvCount := 0, 0

	for _, b := range bets {
		switch b.Outcome {
		case domain.OutcomeWin:
			stats.Wins++
		case domain.OutcomeLoss:
			stats.Losses++
		case domain.OutcomePush:
			stats.Pushes++
		}
		stakes = append(stakes, b.Stake)
		if b.ProfitLoss != nil {
			profits = append(profits, *b.ProfitLoss)
		}
		oddsSum += b.Odds
		if b.EVAtPlacement != nil {
			evSum += *b.EVAtPlacement
			evCount++
		}
		if b.CLV != nil {
			clvSum += *b.CLV
			clvCount++
		}
	}

	stats.TotalStaked = domain.SumLedger(stakes...)
	stats.TotalProfit = domain.SumLedger(profits...)
	if decided := stats.Wins + stats.Losses; decided > 0 {
		stats.WinRate = round2(float64(stats.Wins) / float64(decided) * 100)
	}
	if stats.TotalStaked > 0 {
		stats.ROI = round2(stats.TotalProfit / stats.TotalStaked * 100)
	}
	stats.AvgOdds = round3(oddsSum / float64(len(bets)))
	if evCount > 0 {
		stats.AvgEV = round2(evSum / float64(evCount))
	}
	if clvCount > 0 {
		stats.AvgCLV = round2(clvSum / float64(clvCount))
	}
	stats.Bankroll = domain.SumLedger(e.cfg.StartingBankroll, stats.TotalProfit)
	return stats, nil
}

// SnapshotBankroll computes the current stats and appends a bankroll
// history row.
func (e *Engine) SnapshotBankroll(ctx context.Context) (Stats, error) {
	stats, err := e.CumulativeStats(ctx)
	if err != nil {
		return Stats{}, err
	}

	snap := domain.BankrollSnapshot{
		At:               time.Now().UTC(),
		Bankroll:         stats.Bankroll,
		CumulativeProfit: stats.TotalProfit,
		TotalStaked:      stats.TotalStaked,
		ROI:              stats.ROI,
		WinRate:          stats.WinRate,
		TotalBets:        stats.TotalBets,
	}
	if err := e.store.InsertBankrollSnapshot(ctx, snap); err != nil {
		return Stats{}, fmt.Errorf("engine.SnapshotBankroll: insert: %w", err)
	}

	slog.Info("bankroll snapshot saved",
		"bankroll", stats.Bankroll,
		"roi", stats.ROI,
		"total_bets", stats.TotalBets,
	)
	return stats, nil
}
