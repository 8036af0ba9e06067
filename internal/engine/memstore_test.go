package engine_test

import (
	"context"
	"sort"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

// memStore is an in-memory ports.Storage for engine tests. quoteErr lets
// tests inject a per-game failure to exercise batch-boundary error
// handling.
type memStore struct {
	games     map[string]domain.Game
	quotes    []domain.Quote
	opps      []domain.Opportunity
	bets      map[string]*domain.Bet
	snapshots []domain.BankrollSnapshot
	quoteErr  map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		games:    make(map[string]domain.Game),
		bets:     make(map[string]*domain.Bet),
		quoteErr: make(map[string]error),
	}
}

func (m *memStore) UpsertGame(_ context.Context, game domain.Game) error {
	m.games[game.ID] = game
	return nil
}

func (m *memStore) UpcomingGames(context.Context) ([]domain.Game, error) {
	var games []domain.Game
	for _, g := range m.games {
		if g.Status != domain.StatusCompleted {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].CommenceTime.Equal(games[j].CommenceTime) {
			return games[i].ID < games[j].ID
		}
		return games[i].CommenceTime.Before(games[j].CommenceTime)
	})
	return games, nil
}

func (m *memStore) InsertQuotes(_ context.Context, quotes []domain.Quote) error {
	m.quotes = append(m.quotes, quotes...)
	return nil
}

func (m *memStore) QuotesForGame(_ context.Context, gameID string) ([]domain.Quote, error) {
	if err := m.quoteErr[gameID]; err != nil {
		return nil, err
	}
	var out []domain.Quote
	for _, q := range m.quotes {
		if q.GameID == gameID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) BookQuotes(_ context.Context, gameID, book, market string) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, q := range m.quotes {
		if q.GameID == gameID && q.Book == book && (market == "" || q.Key.Market == market) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) ClosingQuotes(_ context.Context, gameID string) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, q := range m.quotes {
		if q.GameID == gameID && q.Closing {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) MarkClosing(_ context.Context, gameID, book string) error {
	latest := make(map[domain.MarketKey]int)
	for i, q := range m.quotes {
		if q.GameID != gameID || q.Book != book {
			continue
		}
		if prev, ok := latest[q.Key]; !ok || q.Newer(m.quotes[prev]) {
			latest[q.Key] = i
		}
	}
	for _, i := range latest {
		m.quotes[i].Closing = true
	}
	return nil
}

func (m *memStore) InsertOpportunity(_ context.Context, opp domain.Opportunity) error {
	m.opps = append(m.opps, opp)
	return nil
}

func (m *memStore) RecentOpportunities(_ context.Context, since time.Time) ([]domain.Opportunity, error) {
	var out []domain.Opportunity
	for _, o := range m.opps {
		if !o.FoundAt.Before(since) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EVPercent > out[j].EVPercent })
	return out, nil
}

func (m *memStore) InsertBet(_ context.Context, bet domain.Bet) error {
	b := bet
	m.bets[bet.ID] = &b
	return nil
}

func (m *memStore) PendingBets(context.Context) ([]ports.PendingBet, error) {
	var out []ports.PendingBet
	for _, b := range m.bets {
		if b.Settled() {
			continue
		}
		out = append(out, ports.PendingBet{Bet: *b, Game: m.games[b.GameID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bet.ID < out[j].Bet.ID })
	return out, nil
}

func (m *memStore) SettleBet(_ context.Context, betID string, outcome domain.Outcome, profitLoss float64, closingOdds, clv *float64) (bool, error) {
	b, ok := m.bets[betID]
	if !ok || b.Settled() {
		return false, nil
	}
	b.Outcome = outcome
	b.ProfitLoss = &profitLoss
	b.ClosingOdds = closingOdds
	b.CLV = clv
	return true, nil
}

func (m *memStore) SettledBets(context.Context) ([]domain.Bet, error) {
	var out []domain.Bet
	for _, b := range m.bets {
		if b.Settled() {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}

func (m *memStore) InsertBankrollSnapshot(_ context.Context, snap domain.BankrollSnapshot) error {
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *memStore) LatestBankroll(context.Context) (*domain.BankrollSnapshot, error) {
	if len(m.snapshots) == 0 {
		return nil, nil
	}
	snap := m.snapshots[len(m.snapshots)-1]
	return &snap, nil
}

func (m *memStore) Close() error { return nil }
