package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

// alerts.go — structured events out through the Notifier port.
// The engine formats a one-line body per event; destination-specific
// presentation belongs to the Notifier implementation.

func (e *Engine) notifyOpportunities(ctx context.Context, opps []domain.Opportunity) {
	for _, opp := range opps {
		body := fmt.Sprintf("%s | %s @ %.3f — EV %+.2f%%  Edge %+.2f%% (%s)",
			strings.ToUpper(opp.Book), describeKey(opp.Key), opp.BookOdds,
			opp.EVPercent, opp.EdgePercent, opp.Source)
		e.send(ctx, "New +EV Opportunity", body, ports.SeveritySuccess)
	}
}

func (e *Engine) notifySettlements(ctx context.Context, settlements []Settlement) {
	for _, s := range settlements {
		body := fmt.Sprintf("Bet %s → %s  %+.2f", shortID(s.BetID), strings.ToUpper(string(s.Outcome)), s.ProfitLoss)
		if s.CLV != nil {
			body += fmt.Sprintf("  CLV %+.2f%%", *s.CLV)
		}
		level := ports.SeverityInfo
		if s.ProfitLoss >= 0 {
			level = ports.SeveritySuccess
		}
		e.send(ctx, "Bet Settled", body, level)
	}
}

func (e *Engine) notifyMovements(ctx context.Context, game domain.Game, moves []Movement) {
	for _, m := range moves {
		direction := "up"
		if m.ChangePct < 0 {
			direction = "down"
		}
		body := fmt.Sprintf("%s | %s | %s moved %s %.1f%% (%.3f → %.3f)",
			game.Label(), strings.ToUpper(m.Book), describeKey(m.Key),
			direction, abs(m.ChangePct), m.OpeningOdds, m.CurrentOdds)
		e.send(ctx, "Line Movement", body, ports.SeverityWarning)
	}
}

func (e *Engine) send(ctx context.Context, title, body string, level ports.Severity) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, title, body, level); err != nil {
		slog.Warn("notifier error", "title", title, "err", err)
	}
}

// describeKey renders a market key for alert bodies, e.g.
// "Jayson Tatum Over 25.5 (player_points)" or "Boston Celtics (h2h)".
func describeKey(k domain.MarketKey) string {
	var sb strings.Builder
	if k.Player.Valid {
		sb.WriteString(k.Player.Name)
		sb.WriteString(" ")
	}
	sb.WriteString(k.Selection)
	if k.Point.Valid {
		fmt.Fprintf(&sb, " %g", k.Point.Value)
	}
	fmt.Fprintf(&sb, " (%s)", k.Market)
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
