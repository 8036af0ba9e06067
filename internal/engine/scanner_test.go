package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/engine"
)

const refBook = "pinnacle"

func testConfig() engine.Config {
	return engine.Config{
		ReferenceBook:     refBook,
		Books:             []string{"bet365", "fanduel", "draftkings", "betmgm"},
		MinEVThreshold:    1.0,
		MovementThreshold: 3.0,
		StartingBankroll:  1000,
	}
}

var quoteSeq int

// snap builds a quote snapshot with a sequential ID so the tie-break
// comparator behaves predictably.
func snap(gameID, book string, key domain.MarketKey, odds float64, at time.Time) domain.Quote {
	quoteSeq++
	return domain.Quote{
		ID:          fmt.Sprintf("q%04d", quoteSeq),
		GameID:      gameID,
		Book:        book,
		Key:         key,
		Odds:        odds,
		ImpliedProb: domain.ImpliedProbability(odds),
		ObservedAt:  at,
	}
}

func h2hKey(team string) domain.MarketKey {
	return domain.MarketKey{Market: domain.MarketH2H, Selection: team}
}

func propKey(player string, point float64) domain.MarketKey {
	return domain.MarketKey{
		Market:    "player_points",
		Selection: domain.SelectionOver,
		Point:     domain.PointOf(point),
		Player:    domain.PlayerOf(player),
	}
}

func upcomingGame(id string) domain.Game {
	return domain.Game{
		ID:           id,
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Now().Add(6 * time.Hour),
		Status:       domain.StatusUpcoming,
	}
}

func TestScanGame_ReferenceBenchmarkWithDevig(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()

	// Reference prices both sides: de-vigged home probability is
	// 0.5 / (0.5 + 1/1.90) = 0.48718.
	store.quotes = append(store.quotes,
		snap("g1", refBook, h2hKey("Boston Celtics"), 2.00, now),
		snap("g1", refBook, h2hKey("Miami Heat"), 1.90, now),
		snap("g1", "bet365", h2hKey("Boston Celtics"), 2.20, now),
	)

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, "bet365", opp.Book)
	assert.Equal(t, domain.SourceReference, opp.Source)
	assert.Equal(t, 2.20, opp.BookOdds)
	assert.Equal(t, 2.00, opp.BenchmarkOdds)
	assert.InDelta(t, 0.4872, opp.FairProb, 0.0001)
	assert.InDelta(t, 7.18, opp.EVPercent, 0.001)
	assert.InDelta(t, 10.00, opp.EdgePercent, 0.001)

	// The opportunity was appended to the log.
	require.Len(t, store.opps, 1)
	assert.Equal(t, opp.ID, store.opps[0].ID)
}

func TestScanGame_UsesLatestQuotes(t *testing.T) {
	store := newMemStore()
	t0 := time.Now().UTC().Add(-time.Hour)
	t1 := time.Now().UTC()

	store.quotes = append(store.quotes,
		// Stale reference price that would make the EV wildly negative.
		snap("g1", refBook, h2hKey("Boston Celtics"), 3.00, t0),
		snap("g1", refBook, h2hKey("Boston Celtics"), 2.00, t1),
		// Stale book price that would make the EV huge.
		snap("g1", "bet365", h2hKey("Boston Celtics"), 5.00, t0),
		snap("g1", "bet365", h2hKey("Boston Celtics"), 2.20, t1),
	)

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, opps, 1)

	// One-sided reference group: raw implied prob 0.5, so EV is
	// (0.5*1.20 - 0.5) * 100 = 10.00 against the latest prices.
	assert.Equal(t, 2.20, opps[0].BookOdds)
	assert.Equal(t, 2.00, opps[0].BenchmarkOdds)
	assert.InDelta(t, 10.00, opps[0].EVPercent, 0.001)
}

func TestScanGame_NoBenchmarkMatchSkipsSilently(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()

	// A totals quote with no reference line and no consensus quorum.
	key := domain.MarketKey{
		Market:    domain.MarketTotals,
		Selection: domain.SelectionOver,
		Point:     domain.PointOf(220.5),
	}
	store.quotes = append(store.quotes, snap("g1", "bet365", key, 1.91, now))

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, opps)
	assert.Empty(t, store.opps)
}

func TestScanGame_PropConsensusRequiresQuorum(t *testing.T) {
	key := propKey("Jayson Tatum", 25.5)
	now := time.Now().UTC()

	// Two contributing books: below the quorum of three, no benchmark.
	store := newMemStore()
	store.quotes = append(store.quotes,
		snap("g1", "bet365", key, 2.80, now),
		snap("g1", "fanduel", key, 2.40, now),
	)
	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, opps, "two books must not form a consensus")
}

func TestScanGame_PropConsensusMedian(t *testing.T) {
	key := propKey("Jayson Tatum", 25.5)
	now := time.Now().UTC()

	store := newMemStore()
	store.quotes = append(store.quotes,
		snap("g1", "bet365", key, 2.80, now),
		snap("g1", "fanduel", key, 2.40, now),
		snap("g1", "draftkings", key, 2.50, now),
		snap("g1", "betmgm", key, 2.60, now),
	)

	cfg := testConfig()
	cfg.MinEVThreshold = 5.0
	e := engine.New(cfg, store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, opps, 1)

	// Median of {2.40, 2.50, 2.60, 2.80} is 2.55; only bet365 at 2.80
	// clears 5% EV against it.
	opp := opps[0]
	assert.Equal(t, "bet365", opp.Book)
	assert.Equal(t, domain.SourceConsensus, opp.Source)
	assert.InDelta(t, 2.55, opp.BenchmarkOdds, 0.0001)
	assert.InDelta(t, 9.80, opp.EVPercent, 0.01)
}

func TestScanGame_BelowThresholdNotPersisted(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()
	store.quotes = append(store.quotes,
		snap("g1", refBook, h2hKey("Boston Celtics"), 2.00, now),
		snap("g1", "bet365", h2hKey("Boston Celtics"), 2.005, now),
	)

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, opps)
	assert.Empty(t, store.opps)
}

func TestScanGame_ReferenceBookNeverScanned(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()
	// Reference prices one side generously; it must not flag itself.
	store.quotes = append(store.quotes,
		snap("g1", refBook, h2hKey("Boston Celtics"), 2.50, now),
	)

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanGame_EmptyGame(t *testing.T) {
	e := engine.New(testConfig(), newMemStore(), nil, nil)
	opps, err := e.ScanGame(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanAllUpcoming_OneFailureDoesNotAbortBatch(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()

	g1, g2 := upcomingGame("g1"), upcomingGame("g2")
	store.games["g1"] = g1
	store.games["g2"] = g2
	completed := upcomingGame("g3")
	completed.Status = domain.StatusCompleted
	store.games["g3"] = completed

	store.quoteErr["g1"] = errors.New("connection reset")
	store.quotes = append(store.quotes,
		snap("g2", refBook, h2hKey("Boston Celtics"), 2.00, now),
		snap("g2", "bet365", h2hKey("Boston Celtics"), 2.20, now),
	)

	e := engine.New(testConfig(), store, nil, nil)
	opps, err := e.ScanAllUpcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "g2", opps[0].GameID)
}
