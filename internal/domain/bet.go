package domain

import "time"

// Outcome is the settlement state of a bet. Transitions are one-shot:
// pending → {win, loss, push}, never reverting.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePush    Outcome = "push"
)

// Bet is a user-placed wager. Created on user action, mutated exactly once
// by settlement. ProfitLoss, ClosingOdds and CLV stay nil until settled;
// ClosingOdds/CLV stay nil even then when no closing line matched — an
// unknown CLV is not a CLV of zero.
type Bet struct {
	ID              string
	GameID          string
	Book            string
	Key             MarketKey
	Odds            float64
	Stake           float64
	EVAtPlacement   *float64
	EdgeAtPlacement *float64
	PlacedAt        time.Time
	Outcome         Outcome
	ProfitLoss      *float64
	ClosingOdds     *float64
	CLV             *float64
}

// Settled reports whether the bet has reached a terminal outcome.
func (b Bet) Settled() bool {
	return b.Outcome == OutcomeWin || b.Outcome == OutcomeLoss || b.Outcome == OutcomePush
}

// SettleAgainst determines the bet's outcome and profit/loss from a final
// score. It returns OutcomePending when the result cannot be decided:
// missing scores, a player-prop market (manual resolution by design), a
// totals bet without a point, or an unrecognized market. Profit is rounded
// to cents; a push always returns 0.
func SettleAgainst(b Bet, g Game) (Outcome, float64) {
	if !g.HasFinalScore() {
		return OutcomePending, 0
	}
	if !IsGameMarket(b.Key.Market) {
		return OutcomePending, 0
	}

	home, away := *g.HomeScore, *g.AwayScore

	switch b.Key.Market {
	case MarketH2H:
		if home == away {
			return OutcomePush, 0
		}
		winner := g.HomeTeam
		if away > home {
			winner = g.AwayTeam
		}
		return gradeSide(b, b.Key.Selection == winner)

	case MarketSpreads:
		if !b.Key.Point.Valid {
			return OutcomePending, 0
		}
		// The point is signed and stored relative to the selected team.
		own, opponent := float64(home), float64(away)
		if b.Key.Selection == g.AwayTeam {
			own, opponent = float64(away), float64(home)
		}
		adjusted := own + b.Key.Point.Value
		if adjusted == opponent {
			return OutcomePush, 0
		}
		return gradeSide(b, adjusted > opponent)

	case MarketTotals:
		if !b.Key.Point.Valid {
			return OutcomePending, 0
		}
		total := float64(home + away)
		point := b.Key.Point.Value
		if total == point {
			return OutcomePush, 0
		}
		over := total > point
		return gradeSide(b, (b.Key.Selection == SelectionOver) == over)
	}

	return OutcomePending, 0
}

// gradeSide turns a won/lost decision into (outcome, profit).
func gradeSide(b Bet, won bool) (Outcome, float64) {
	if won {
		return OutcomeWin, WinProfit(b.Stake, b.Odds)
	}
	return OutcomeLoss, RoundLedger(-b.Stake)
}
