package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// PullSummary reports what one odds pull stored.
type PullSummary struct {
	Games     int
	Quotes    int
	Completed int
}

// Pull fetches the current odds slate and recent scores from the provider
// and persists them: games upserted, quotes appended, newly completed
// games scored, and the reference book's last pre-game quotes flagged as
// the closing line.
func (e *Engine) Pull(ctx context.Context) (PullSummary, error) {
	games, quotes, err := e.provider.FetchOdds(ctx)
	if err != nil {
		return PullSummary{}, fmt.Errorf("engine.Pull: fetch odds: %w", err)
	}
	for _, g := range games {
		if err := e.store.UpsertGame(ctx, g); err != nil {
			return PullSummary{}, fmt.Errorf("engine.Pull: upsert game %s: %w", g.ID, err)
		}
	}
	if err := e.store.InsertQuotes(ctx, quotes); err != nil {
		return PullSummary{}, fmt.Errorf("engine.Pull: insert quotes: %w", err)
	}

	summary := PullSummary{Games: len(games), Quotes: len(quotes)}

	scores, err := e.provider.FetchScores(ctx, e.cfg.ScoresDaysFrom)
	if err != nil {
		return summary, fmt.Errorf("engine.Pull: fetch scores: %w", err)
	}
	for _, g := range scores {
		if g.Status != domain.StatusCompleted {
			continue
		}
		if err := e.store.UpsertGame(ctx, g); err != nil {
			slog.Error("score upsert failed", "game", g.ID, "err", err)
			continue
		}
		if err := e.store.MarkClosing(ctx, g.ID, e.cfg.ReferenceBook); err != nil {
			slog.Error("closing mark failed", "game", g.ID, "err", err)
			continue
		}
		summary.Completed++
	}
	return summary, nil
}

// Run drives the periodic cycle — pull, scan, settle, movement check —
// until the context is cancelled. Each step's failure is logged at the
// batch boundary and never stops the loop.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	slog.Info("engine starting", "interval", interval)

	e.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

// RunOnce executes a single cycle, for the -once CLI mode.
func (e *Engine) RunOnce(ctx context.Context) {
	e.runCycle(ctx)
}

func (e *Engine) runCycle(ctx context.Context) {
	start := time.Now()

	if e.provider != nil {
		if summary, err := e.Pull(ctx); err != nil {
			slog.Error("pull failed", "err", err)
		} else {
			slog.Info("pull complete",
				"games", summary.Games,
				"quotes", summary.Quotes,
				"newly_completed", summary.Completed,
			)
		}
	}

	opps, err := e.ScanAllUpcoming(ctx)
	if err != nil {
		slog.Error("scan failed", "err", err)
	} else {
		e.notifyOpportunities(ctx, opps)
	}

	settlements, err := e.SettlePendingBets(ctx)
	if err != nil {
		slog.Error("settlement failed", "err", err)
	} else if len(settlements) > 0 {
		e.notifySettlements(ctx, settlements)
		if _, err := e.SnapshotBankroll(ctx); err != nil {
			slog.Error("bankroll snapshot failed", "err", err)
		}
	}

	e.checkMovements(ctx)

	slog.Info("cycle complete", "duration", time.Since(start).Round(time.Millisecond))
}

// checkMovements scans every upcoming game for significant line moves and
// alerts on them. Failures are per-game, logged, non-fatal.
func (e *Engine) checkMovements(ctx context.Context) {
	if e.cfg.MovementThreshold <= 0 {
		return
	}
	games, err := e.store.UpcomingGames(ctx)
	if err != nil {
		slog.Error("movement check failed", "err", err)
		return
	}
	for _, g := range games {
		moves, err := e.DetectMovements(ctx, g.ID)
		if err != nil {
			slog.Error("movement detection failed", "game", g.ID, "err", err)
			continue
		}
		e.notifyMovements(ctx, g, moves)
	}
}
