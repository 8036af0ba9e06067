package ports

import (
	"context"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// PendingBet is an unsettled bet joined with its game's score and status.
type PendingBet struct {
	Bet  domain.Bet
	Game domain.Game
}

// Storage persists games, quote snapshots, opportunities and bets.
// All writes are synchronous; the engine holds no state across calls.
type Storage interface {
	// UpsertGame inserts a game or refreshes its scores and status.
	UpsertGame(ctx context.Context, game domain.Game) error

	// UpcomingGames returns every game not yet completed, ordered by
	// commence time.
	UpcomingGames(ctx context.Context) ([]domain.Game, error)

	// InsertQuotes appends quote snapshots. Quotes are never updated.
	InsertQuotes(ctx context.Context, quotes []domain.Quote) error

	// QuotesForGame returns every stored snapshot for a game, all books,
	// ordered by observed-at then id. Callers reduce to "latest per key"
	// with the domain comparator.
	QuotesForGame(ctx context.Context, gameID string) ([]domain.Quote, error)

	// BookQuotes returns a single book's snapshots for a game, optionally
	// filtered by market (empty market means all markets).
	BookQuotes(ctx context.Context, gameID, book, market string) ([]domain.Quote, error)

	// ClosingQuotes returns the quotes flagged as the closing line.
	ClosingQuotes(ctx context.Context, gameID string) ([]domain.Quote, error)

	// MarkClosing flags the given book's latest pre-game quote per market
	// key as the closing line. Called when a game completes.
	MarkClosing(ctx context.Context, gameID, book string) error

	// InsertOpportunity appends one row to the opportunity log.
	InsertOpportunity(ctx context.Context, opp domain.Opportunity) error

	// RecentOpportunities returns opportunities found at or after the given
	// time, best EV first.
	RecentOpportunities(ctx context.Context, since time.Time) ([]domain.Opportunity, error)

	// InsertBet records a user bet.
	InsertBet(ctx context.Context, bet domain.Bet) error

	// PendingBets returns bets with no outcome yet, joined with their games.
	PendingBets(ctx context.Context) ([]PendingBet, error)

	// SettleBet writes outcome, profit/loss, closing odds and CLV in one
	// conditional update guarded by "outcome is still unset". It reports
	// false when the guard failed, i.e. the bet was already settled.
	SettleBet(ctx context.Context, betID string, outcome domain.Outcome, profitLoss float64, closingOdds, clv *float64) (bool, error)

	// SettledBets returns every settled bet, oldest first.
	SettledBets(ctx context.Context) ([]domain.Bet, error)

	// InsertBankrollSnapshot appends a bankroll history row.
	InsertBankrollSnapshot(ctx context.Context, snap domain.BankrollSnapshot) error

	// LatestBankroll returns the most recent snapshot, or nil if none.
	LatestBankroll(ctx context.Context) (*domain.BankrollSnapshot, error)

	// Close releases the underlying connection.
	Close() error
}
