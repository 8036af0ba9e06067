package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// Settlement describes one bet resolved by a settlement pass. ClosingOdds
// and CLV are nil when no closing reference quote matched the bet's key —
// an unknown CLV is reported as unknown, not as zero.
type Settlement struct {
	BetID       string
	Outcome     domain.Outcome
	ProfitLoss  float64
	ClosingOdds *float64
	CLV         *float64
}

// SettlePendingBets resolves every settleable bet against its final score
// and writes outcome, profit/loss, closing odds and CLV in one conditional
// update. Bets whose game is not completed, whose score is missing, or
// whose market is a player prop stay pending and are retried next pass.
// The pass only ever sees bets with outcome unset, so re-running it is
// idempotent; a conditional write reporting no change means another
// settler got there first and the bet is skipped.
func (e *Engine) SettlePendingBets(ctx context.Context) ([]Settlement, error) {
	pending, err := e.store.PendingBets(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.SettlePendingBets: list pending: %w", err)
	}

	closingByGame := make(map[string][]domain.Quote)
	var results []Settlement
	skipped := 0

	for _, pb := range pending {
		if pb.Game.Status != domain.StatusCompleted {
			skipped++
			continue
		}

		outcome, pnl := domain.SettleAgainst(pb.Bet, pb.Game)
		if outcome == domain.OutcomePending {
			skipped++
			slog.Warn("bet not settleable yet",
				"bet", pb.Bet.ID,
				"game", pb.Game.ID,
				"market", pb.Bet.Key.Market,
			)
			continue
		}

		closing, ok := closingByGame[pb.Game.ID]
		if !ok {
			closing, err = e.store.ClosingQuotes(ctx, pb.Game.ID)
			if err != nil {
				skipped++
				slog.Error("closing quotes lookup failed", "game", pb.Game.ID, "err", err)
				continue
			}
			closingByGame[pb.Game.ID] = closing
		}
		closingOdds, clv := matchClosing(pb.Bet, closing)

		updated, err := e.store.SettleBet(ctx, pb.Bet.ID, outcome, pnl, closingOdds, clv)
		if err != nil {
			skipped++
			slog.Error("settle write failed", "bet", pb.Bet.ID, "err", err)
			continue
		}
		if !updated {
			// Already settled by a concurrent pass.
			continue
		}

		results = append(results, Settlement{
			BetID:       pb.Bet.ID,
			Outcome:     outcome,
			ProfitLoss:  pnl,
			ClosingOdds: closingOdds,
			CLV:         clv,
		})
	}

	if len(results) > 0 || skipped > 0 {
		slog.Info("settlement pass complete", "settled", len(results), "skipped", skipped)
	}
	return results, nil
}

// matchClosing finds the closing quote with the bet's exact market key and
// returns its odds plus the CLV of the placed price against it. No match
// returns (nil, nil).
func matchClosing(bet domain.Bet, closing []domain.Quote) (closingOdds, clv *float64) {
	for _, q := range closing {
		if q.Key != bet.Key {
			continue
		}
		odds := q.Odds
		value := round2(domain.ClosingLineValue(bet.Odds, odds))
		return &odds, &value
	}
	return nil, nil
}
