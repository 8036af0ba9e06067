package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// BetRequest is a manually entered bet.
type BetRequest struct {
	GameID string
	Book   string
	Key    domain.MarketKey
	Odds   float64
	Stake  float64
}

// PlaceBet records a bet and prices its EV and edge against the latest
// reference-book line for the same key, de-vigged when the market is
// two-sided. When no reference line exists (props, missing coverage) the
// bet is stored with EV/edge unset rather than zero.
func (e *Engine) PlaceBet(ctx context.Context, req BetRequest) (domain.Bet, error) {
	if req.Odds <= 1.0 {
		return domain.Bet{}, fmt.Errorf("engine.PlaceBet: decimal odds must exceed 1.0, got %.3f", req.Odds)
	}
	if req.Stake <= 0 {
		return domain.Bet{}, fmt.Errorf("engine.PlaceBet: stake must be positive, got %.2f", req.Stake)
	}

	bet := domain.Bet{
		ID:       uuid.New().String(),
		GameID:   req.GameID,
		Book:     req.Book,
		Key:      req.Key,
		Odds:     req.Odds,
		Stake:    domain.RoundLedger(req.Stake),
		PlacedAt: time.Now().UTC(),
		Outcome:  domain.OutcomePending,
	}

	refQuotes, err := e.store.BookQuotes(ctx, req.GameID, e.cfg.ReferenceBook, req.Key.Market)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("engine.PlaceBet: reference quotes: %w", err)
	}
	if line, ok := e.buildBenchmarks(latestPerKey(refQuotes))[req.Key]; ok {
		ev := round2(domain.ExpectedValuePercent(req.Odds, line.FairProb))
		edge := round2(domain.EdgePercent(req.Odds, line.Odds))
		bet.EVAtPlacement = &ev
		bet.EdgeAtPlacement = &edge
	}

	if err := e.store.InsertBet(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("engine.PlaceBet: insert: %w", err)
	}
	return bet, nil
}
