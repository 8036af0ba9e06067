package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/engine"
)

func completedGame(id string, home, away int) domain.Game {
	return domain.Game{
		ID:           id,
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Now().Add(-4 * time.Hour),
		HomeScore:    &home,
		AwayScore:    &away,
		Status:       domain.StatusCompleted,
	}
}

func pendingBet(id, gameID string, key domain.MarketKey, odds, stake float64) domain.Bet {
	return domain.Bet{
		ID:       id,
		GameID:   gameID,
		Book:     "bet365",
		Key:      key,
		Odds:     odds,
		Stake:    stake,
		PlacedAt: time.Now().Add(-5 * time.Hour),
		Outcome:  domain.OutcomePending,
	}
}

func TestSettlePendingBets_WinWithCLV(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = completedGame("g1", 110, 100)

	bet := pendingBet("b1", "g1", h2hKey("Boston Celtics"), 2.10, 50)
	require.NoError(t, store.InsertBet(context.Background(), bet))

	closing := snap("g1", refBook, h2hKey("Boston Celtics"), 2.00, time.Now().Add(-4*time.Hour))
	closing.Closing = true
	store.quotes = append(store.quotes, closing)

	e := engine.New(testConfig(), store, nil, nil)
	settlements, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	require.Len(t, settlements, 1)

	s := settlements[0]
	assert.Equal(t, "b1", s.BetID)
	assert.Equal(t, domain.OutcomeWin, s.Outcome)
	assert.Equal(t, 55.00, s.ProfitLoss)
	require.NotNil(t, s.ClosingOdds)
	assert.Equal(t, 2.00, *s.ClosingOdds)
	require.NotNil(t, s.CLV)
	assert.Equal(t, 5.00, *s.CLV)

	// The write went through the store.
	stored := store.bets["b1"]
	assert.Equal(t, domain.OutcomeWin, stored.Outcome)
	require.NotNil(t, stored.ProfitLoss)
	assert.Equal(t, 55.00, *stored.ProfitLoss)
}

func TestSettlePendingBets_NoClosingMatchLeavesCLVUnset(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = completedGame("g1", 100, 104)
	require.NoError(t, store.InsertBet(context.Background(),
		pendingBet("b1", "g1", h2hKey("Boston Celtics"), 2.10, 50)))

	e := engine.New(testConfig(), store, nil, nil)
	settlements, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	require.Len(t, settlements, 1)

	s := settlements[0]
	assert.Equal(t, domain.OutcomeLoss, s.Outcome)
	assert.Equal(t, -50.00, s.ProfitLoss)
	assert.Nil(t, s.ClosingOdds, "no closing line means unknown, not zero")
	assert.Nil(t, s.CLV)
	assert.Nil(t, store.bets["b1"].CLV)
}

func TestSettlePendingBets_Idempotent(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = completedGame("g1", 110, 100)
	require.NoError(t, store.InsertBet(context.Background(),
		pendingBet("b1", "g1", h2hKey("Boston Celtics"), 2.10, 50)))

	e := engine.New(testConfig(), store, nil, nil)
	first, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second, "a second pass must find nothing to settle")
	assert.Equal(t, 55.00, *store.bets["b1"].ProfitLoss)
}

func TestSettlePendingBets_SkipsUnfinishedGames(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = upcomingGame("g1")
	require.NoError(t, store.InsertBet(context.Background(),
		pendingBet("b1", "g1", h2hKey("Boston Celtics"), 2.10, 50)))

	e := engine.New(testConfig(), store, nil, nil)
	settlements, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, settlements)
	assert.Equal(t, domain.OutcomePending, store.bets["b1"].Outcome)
}

func TestSettlePendingBets_PropStaysPending(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = completedGame("g1", 110, 100)
	require.NoError(t, store.InsertBet(context.Background(),
		pendingBet("b1", "g1", propKey("Jayson Tatum", 25.5), 1.91, 25)))

	e := engine.New(testConfig(), store, nil, nil)
	settlements, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, settlements, "props have no score feed and settle manually")
	assert.Equal(t, domain.OutcomePending, store.bets["b1"].Outcome)
}

func TestSettlePendingBets_TotalsPush(t *testing.T) {
	store := newMemStore()
	store.games["g1"] = completedGame("g1", 110, 105)

	key := domain.MarketKey{
		Market:    domain.MarketTotals,
		Selection: domain.SelectionOver,
		Point:     domain.PointOf(215),
	}
	require.NoError(t, store.InsertBet(context.Background(),
		pendingBet("b1", "g1", key, 1.91, 100)))

	e := engine.New(testConfig(), store, nil, nil)
	settlements, err := e.SettlePendingBets(context.Background())
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, domain.OutcomePush, settlements[0].Outcome)
	assert.Equal(t, 0.00, settlements[0].ProfitLoss)
}
