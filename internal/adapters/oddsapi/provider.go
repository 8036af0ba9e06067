package oddsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

var _ ports.OddsProvider = (*Client)(nil)

// FetchOdds pulls the current slate: game markets through the bulk odds
// endpoint (one call per market), player props through the per-event
// endpoint. A failed market or event is logged and skipped; the pull only
// errors when nothing at all could be fetched.
func (c *Client) FetchOdds(ctx context.Context) ([]domain.Game, []domain.Quote, error) {
	var (
		events   []eventDTO
		failures int
		lastErr  error
	)

	for _, market := range c.cfg.GameMarkets {
		batch, err := c.fetchMarketOdds(ctx, market)
		if err != nil {
			failures++
			lastErr = err
			slog.Error("odds fetch failed", "market", market, "err", err)
			continue
		}
		events = append(events, batch...)
	}

	if len(c.cfg.PropMarkets) > 0 {
		propEvents, err := c.fetchProps(ctx)
		if err != nil {
			failures++
			lastErr = err
			slog.Error("prop fetch failed", "err", err)
		}
		events = append(events, propEvents...)
	}

	if len(events) == 0 && failures > 0 {
		return nil, nil, fmt.Errorf("oddsapi.FetchOdds: every fetch failed: %w", lastErr)
	}

	games, quotes := mapEvents(events, time.Now().UTC())
	slog.Info("odds pull mapped", "events", len(events), "games", len(games), "quotes", len(quotes))
	return games, quotes, nil
}

// FetchScores pulls recently completed games with final scores.
func (c *Client) FetchScores(ctx context.Context, daysFrom int) ([]domain.Game, error) {
	params := url.Values{}
	params.Set("daysFrom", strconv.Itoa(daysFrom))

	var scores []scoreEventDTO
	path := fmt.Sprintf("/sports/%s/scores", c.cfg.SportKey)
	if err := c.get(ctx, path, params, &scores); err != nil {
		return nil, fmt.Errorf("oddsapi.FetchScores: %w", err)
	}
	return mapScores(scores), nil
}

// fetchMarketOdds pulls one game-level market for every upcoming event.
func (c *Client) fetchMarketOdds(ctx context.Context, market string) ([]eventDTO, error) {
	params := url.Values{}
	params.Set("regions", c.cfg.Regions)
	params.Set("markets", market)
	params.Set("oddsFormat", "decimal")
	params.Set("bookmakers", strings.Join(c.cfg.Bookmakers, ","))

	var events []eventDTO
	path := fmt.Sprintf("/sports/%s/odds", c.cfg.SportKey)
	if err := c.get(ctx, path, params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// fetchProps lists upcoming events, then pulls all prop markets for each
// one through the per-event endpoint. Per-event failures are skipped; the
// limiter paces the calls.
func (c *Client) fetchProps(ctx context.Context) ([]eventDTO, error) {
	var stubs []eventStub
	listPath := fmt.Sprintf("/sports/%s/events", c.cfg.SportKey)
	if err := c.get(ctx, listPath, url.Values{}, &stubs); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	markets := strings.Join(c.cfg.PropMarkets, ",")
	var events []eventDTO
	for _, stub := range stubs {
		params := url.Values{}
		params.Set("regions", c.cfg.Regions)
		params.Set("markets", markets)
		params.Set("oddsFormat", "decimal")
		params.Set("bookmakers", strings.Join(c.cfg.Bookmakers, ","))

		var event eventDTO
		path := fmt.Sprintf("/sports/%s/events/%s/odds", c.cfg.SportKey, stub.ID)
		if err := c.get(ctx, path, params, &event); err != nil {
			slog.Error("prop fetch failed", "event", stub.ID, "err", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
