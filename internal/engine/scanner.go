package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// ScanGame compares every ordinary book's latest quote for one game
// against the benchmark table and persists each quote whose EV clears the
// configured threshold. Quotes without a benchmark match are skipped
// silently — absence is not an error. Results come back best EV first.
func (e *Engine) ScanGame(ctx context.Context, gameID string) ([]domain.Opportunity, error) {
	quotes, err := e.store.QuotesForGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("engine.ScanGame: quotes for %s: %w", gameID, err)
	}
	if len(quotes) == 0 {
		return nil, nil
	}

	latest := latestPerKey(quotes)
	bench := e.buildBenchmarks(latest)
	now := time.Now().UTC()

	var opps []domain.Opportunity
	for bk, q := range latest {
		// Reference-book and unknown-book quotes are not tradable signals.
		if !e.books[bk.book] {
			continue
		}
		line, ok := bench[q.Key]
		if !ok {
			continue
		}

		ev := domain.ExpectedValuePercent(q.Odds, line.FairProb)
		if ev < e.cfg.MinEVThreshold {
			continue
		}

		opp := domain.Opportunity{
			ID:            uuid.New().String(),
			GameID:        gameID,
			Book:          q.Book,
			Key:           q.Key,
			BookOdds:      q.Odds,
			BenchmarkOdds: line.Odds,
			EVPercent:     round2(ev),
			EdgePercent:   round2(domain.EdgePercent(q.Odds, line.Odds)),
			FairProb:      round4(line.FairProb),
			Source:        line.Source,
			FoundAt:       now,
		}
		if err := e.store.InsertOpportunity(ctx, opp); err != nil {
			return nil, fmt.Errorf("engine.ScanGame: insert opportunity: %w", err)
		}
		opps = append(opps, opp)
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].EVPercent > opps[j].EVPercent })
	return opps, nil
}

// ScanAllUpcoming runs ScanGame over every non-completed game. One game's
// failure is logged and does not abort the rest of the batch.
func (e *Engine) ScanAllUpcoming(ctx context.Context) ([]domain.Opportunity, error) {
	games, err := e.store.UpcomingGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.ScanAllUpcoming: list games: %w", err)
	}

	var all []domain.Opportunity
	failed := 0
	for _, g := range games {
		opps, err := e.ScanGame(ctx, g.ID)
		if err != nil {
			failed++
			slog.Error("game scan failed", "game", g.ID, "err", err)
			continue
		}
		all = append(all, opps...)
	}

	slog.Info("scan complete",
		"games", len(games),
		"failed", failed,
		"opportunities", len(all),
	)
	return all, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
