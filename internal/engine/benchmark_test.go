package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

func benchEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Config{
		ReferenceBook:  "pinnacle",
		Books:          []string{"bet365", "fanduel", "draftkings"},
		MinEVThreshold: 1.0,
	}, nil, nil, nil)
}

func q(id, book string, key domain.MarketKey, odds float64, at time.Time) domain.Quote {
	return domain.Quote{
		ID:          id,
		GameID:      "g1",
		Book:        book,
		Key:         key,
		Odds:        odds,
		ImpliedProb: domain.ImpliedProbability(odds),
		ObservedAt:  at,
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 2.5, median([]float64{2.5}))
	assert.Equal(t, 2.5, median([]float64{2.6, 2.4, 2.5}))
	assert.Equal(t, 2.55, median([]float64{2.8, 2.4, 2.6, 2.5}))
}

func TestLatestPerKey_TieBreak(t *testing.T) {
	key := domain.MarketKey{Market: domain.MarketH2H, Selection: "Boston Celtics"}
	at := time.Now().UTC()

	// Same instant: the lexicographically greater ID wins.
	latest := latestPerKey([]domain.Quote{
		q("q2", "bet365", key, 2.10, at),
		q("q1", "bet365", key, 2.00, at),
	})
	require.Len(t, latest, 1)
	assert.Equal(t, "q2", latest[bookKey{book: "bet365", key: key}].ID)

	// A later observation beats any ID.
	latest = latestPerKey([]domain.Quote{
		q("q9", "bet365", key, 2.00, at),
		q("q1", "bet365", key, 2.20, at.Add(time.Minute)),
	})
	assert.Equal(t, "q1", latest[bookKey{book: "bet365", key: key}].ID)
}

func TestBuildBenchmarks_TwoSidedReferenceDevig(t *testing.T) {
	e := benchEngine(t)
	at := time.Now().UTC()
	over := domain.MarketKey{Market: domain.MarketTotals, Selection: domain.SelectionOver, Point: domain.PointOf(220.5)}
	under := domain.MarketKey{Market: domain.MarketTotals, Selection: domain.SelectionUnder, Point: domain.PointOf(220.5)}

	table := e.buildBenchmarks(latestPerKey([]domain.Quote{
		q("q1", "pinnacle", over, 1.95, at),
		q("q2", "pinnacle", under, 1.87, at),
	}))
	require.Len(t, table, 2)

	o, u := table[over], table[under]
	assert.Equal(t, domain.SourceReference, o.Source)
	assert.Equal(t, 1.95, o.Odds, "display odds stay raw")
	assert.InDelta(t, 1.0, o.FairProb+u.FairProb, 1e-12, "de-vigged pair sums to one")
	assert.Greater(t, u.FairProb, o.FairProb, "shorter price carries more probability")
}

func TestBuildBenchmarks_OneSidedGroupKeepsRawProbability(t *testing.T) {
	e := benchEngine(t)
	key := domain.MarketKey{Market: domain.MarketH2H, Selection: "Boston Celtics"}

	table := e.buildBenchmarks(latestPerKey([]domain.Quote{
		q("q1", "pinnacle", key, 2.00, time.Now().UTC()),
	}))
	require.Len(t, table, 1)
	assert.Equal(t, 0.5, table[key].FairProb)
}

func TestBuildBenchmarks_PropAlwaysConsensus(t *testing.T) {
	e := benchEngine(t)
	at := time.Now().UTC()
	key := domain.MarketKey{
		Market:    "player_points",
		Selection: domain.SelectionOver,
		Point:     domain.PointOf(25.5),
		Player:    domain.PlayerOf("Jayson Tatum"),
	}

	// The reference book prices the prop, but its quote must not become the
	// benchmark nor count toward the quorum.
	quotes := []domain.Quote{
		q("q1", "pinnacle", key, 2.00, at),
		q("q2", "bet365", key, 2.40, at),
		q("q3", "fanduel", key, 2.50, at),
	}
	table := e.buildBenchmarks(latestPerKey(quotes))
	assert.NotContains(t, table, key, "two ordinary books are below quorum")

	quotes = append(quotes, q("q4", "draftkings", key, 2.60, at))
	table = e.buildBenchmarks(latestPerKey(quotes))
	require.Contains(t, table, key)
	line := table[key]
	assert.Equal(t, domain.SourceConsensus, line.Source)
	assert.Equal(t, 2.50, line.Odds)
	assert.Equal(t, 3, line.NumBooks)
}

func TestBuildBenchmarks_ConsensusPairDevigged(t *testing.T) {
	e := benchEngine(t)
	at := time.Now().UTC()
	over := domain.MarketKey{
		Market: "player_points", Selection: domain.SelectionOver,
		Point: domain.PointOf(25.5), Player: domain.PlayerOf("Jayson Tatum"),
	}
	under := over
	under.Selection = domain.SelectionUnder

	var quotes []domain.Quote
	for i, book := range []string{"bet365", "fanduel", "draftkings"} {
		quotes = append(quotes,
			q(fmt.Sprintf("o%d", i), book, over, 1.91, at),
			q(fmt.Sprintf("u%d", i), book, under, 1.91, at),
		)
	}

	table := e.buildBenchmarks(latestPerKey(quotes))
	require.Len(t, table, 2)
	assert.InDelta(t, 0.5, table[over].FairProb, 1e-12)
	assert.InDelta(t, 0.5, table[under].FairProb, 1e-12)
	assert.Equal(t, 1.91, table[over].Odds)
}

func TestBuildBenchmarks_UnknownBookIgnored(t *testing.T) {
	e := benchEngine(t)
	key := domain.MarketKey{Market: domain.MarketH2H, Selection: "Boston Celtics"}
	at := time.Now().UTC()

	// Three books off the whitelist never form a consensus.
	table := e.buildBenchmarks(latestPerKey([]domain.Quote{
		q("q1", "shadybook", key, 2.00, at),
		q("q2", "othershady", key, 2.10, at),
		q("q3", "thirdshady", key, 2.20, at),
	}))
	assert.Empty(t, table)
}
