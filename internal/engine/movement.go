package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// Movement is a significant odds change on one book's line since its
// opening snapshot.
type Movement struct {
	GameID      string
	Book        string
	Key         domain.MarketKey
	OpeningOdds float64
	CurrentOdds float64
	ChangePct   float64
}

// DetectMovements compares every (book, key) line's opening and latest
// odds for a game and returns the ones whose absolute change meets the
// configured threshold, biggest movers first.
func (e *Engine) DetectMovements(ctx context.Context, gameID string) ([]Movement, error) {
	quotes, err := e.store.QuotesForGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("engine.DetectMovements: quotes for %s: %w", gameID, err)
	}

	opening := make(map[bookKey]domain.Quote, len(quotes))
	latest := make(map[bookKey]domain.Quote, len(quotes))
	for _, q := range quotes {
		k := bookKey{book: q.Book, key: q.Key}
		if prev, ok := opening[k]; !ok || prev.Newer(q) {
			opening[k] = q
		}
		if prev, ok := latest[k]; !ok || q.Newer(prev) {
			latest[k] = q
		}
	}

	var moves []Movement
	for k, open := range opening {
		if open.Odds <= 0 {
			continue
		}
		cur := latest[k]
		change := (cur.Odds - open.Odds) / open.Odds * 100
		if math.Abs(change) < e.cfg.MovementThreshold {
			continue
		}
		moves = append(moves, Movement{
			GameID:      gameID,
			Book:        k.book,
			Key:         k.key,
			OpeningOdds: round3(open.Odds),
			CurrentOdds: round3(cur.Odds),
			ChangePct:   round2(change),
		})
	}

	sort.Slice(moves, func(i, j int) bool {
		return math.Abs(moves[i].ChangePct) > math.Abs(moves[j].ChangePct)
	})
	return moves, nil
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
