package ports

import (
	"context"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// OddsProvider fetches odds and results from the remote odds service.
// It owns request timeouts and rate limiting; the engine just consumes
// normalized games and quotes.
type OddsProvider interface {
	// FetchOdds returns the current slate of games and one quote snapshot
	// per (book, market key), already normalized to decimal odds.
	FetchOdds(ctx context.Context) ([]domain.Game, []domain.Quote, error)

	// FetchScores returns recently completed games with final scores,
	// looking back the given number of days.
	FetchScores(ctx context.Context, daysFrom int) ([]domain.Game, error)
}
