package oddsapi

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// mapEvents converts raw API events into games and quote snapshots. The
// same game appears once per bulk market call, so games dedupe on ID; every
// priced outcome becomes one quote stamped with observedAt.
func mapEvents(events []eventDTO, observedAt time.Time) ([]domain.Game, []domain.Quote) {
	seen := make(map[string]bool, len(events))
	var games []domain.Game
	var quotes []domain.Quote

	for _, ev := range events {
		if !seen[ev.ID] {
			seen[ev.ID] = true
			games = append(games, domain.Game{
				ID:           ev.ID,
				HomeTeam:     ev.HomeTeam,
				AwayTeam:     ev.AwayTeam,
				CommenceTime: ev.CommenceTime.UTC(),
				Status:       gameStatus(ev.CommenceTime, observedAt),
			})
		}

		for _, bm := range ev.Bookmakers {
			for _, market := range bm.Markets {
				for _, outcome := range market.Outcomes {
					if outcome.Price <= 1.0 {
						continue // malformed price, never a valid decimal quote
					}
					quotes = append(quotes, domain.Quote{
						ID:          uuid.New().String(),
						GameID:      ev.ID,
						Book:        bm.Key,
						Key:         outcomeKey(market.Key, outcome),
						Odds:        outcome.Price,
						ImpliedProb: domain.ImpliedProbability(outcome.Price),
						ObservedAt:  observedAt,
					})
				}
			}
		}
	}
	return games, quotes
}

// outcomeKey builds the market key for one outcome. On prop markets the
// outcome name is Over/Under and the description carries the player.
func outcomeKey(marketKey string, o outcomeDTO) domain.MarketKey {
	key := domain.MarketKey{Market: marketKey, Selection: o.Name}
	if o.Point != nil {
		key.Point = domain.PointOf(*o.Point)
	}
	if o.Description != "" {
		key.Player = domain.PlayerOf(o.Description)
	}
	return key
}

func gameStatus(commence, now time.Time) domain.GameStatus {
	if commence.After(now) {
		return domain.StatusUpcoming
	}
	return domain.StatusLive
}

// mapScores converts the scores feed to completed games with final scores.
// Events still in progress are dropped; a completed event missing either
// team's score keeps nil scores and is left alone by settlement.
func mapScores(events []scoreEventDTO) []domain.Game {
	var games []domain.Game
	for _, ev := range events {
		if !ev.Completed {
			continue
		}
		g := domain.Game{
			ID:           ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime.UTC(),
			Status:       domain.StatusCompleted,
		}
		for _, entry := range ev.Scores {
			score, err := strconv.Atoi(entry.Score)
			if err != nil {
				continue
			}
			v := score
			switch entry.Name {
			case ev.HomeTeam:
				g.HomeScore = &v
			case ev.AwayTeam:
				g.AwayScore = &v
			}
		}
		games = append(games, g)
	}
	return games
}
