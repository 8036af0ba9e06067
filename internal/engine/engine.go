// Package engine is the pricing/settlement core: it builds fair-value
// benchmarks, scans quotes for positive EV, settles bets against final
// scores and tracks the bankroll. Storage, notifications and odds
// fetching are injected through ports.
package engine

import (
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

// Config controls the engine's thresholds and book universe.
type Config struct {
	// ReferenceBook is the sharp book used as the fair-value benchmark
	// for game markets and as the CLV closing-line source.
	ReferenceBook string
	// Books are the ordinary sportsbooks whose quotes are scanned and
	// which contribute to consensus benchmarks. Quotes from unknown books
	// are ignored.
	Books []string
	// MinEVThreshold is the minimum EV% for an opportunity to be emitted.
	MinEVThreshold float64
	// ConsensusMinBooks is the quorum of distinct books required to form
	// a consensus benchmark.
	ConsensusMinBooks int
	// MovementThreshold is the minimum absolute odds change percent that
	// counts as a significant line movement.
	MovementThreshold float64
	// StartingBankroll seeds the bankroll before any settled profit.
	StartingBankroll float64
	// ScoresDaysFrom is how many days back Pull looks for final scores.
	ScoresDaysFrom int
}

// Engine wires the pricing core to its collaborators.
type Engine struct {
	cfg      Config
	store    ports.Storage
	notifier ports.Notifier
	provider ports.OddsProvider
	books    map[string]bool // ordinary-book whitelist
}

// New builds an Engine. The notifier and provider may be nil for callers
// that only scan and settle against existing data (tests, one-shot CLI).
func New(cfg Config, store ports.Storage, notifier ports.Notifier, provider ports.OddsProvider) *Engine {
	if cfg.ConsensusMinBooks <= 0 {
		cfg.ConsensusMinBooks = 3
	}
	if cfg.ScoresDaysFrom <= 0 {
		cfg.ScoresDaysFrom = 3
	}
	books := make(map[string]bool, len(cfg.Books))
	for _, b := range cfg.Books {
		books[b] = true
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		provider: provider,
		books:    books,
	}
}
