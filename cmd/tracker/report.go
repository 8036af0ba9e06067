package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/carterchan9/nba-ev-tracker/internal/adapters/storage"
	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/engine"
)

// runStats prints the cumulative performance report.
func runStats(ctx context.Context, e *engine.Engine) {
	stats, err := e.CumulativeStats(ctx)
	if err != nil {
		slog.Error("stats failed", "err", err)
		os.Exit(1)
	}

	if stats.TotalBets == 0 {
		fmt.Println("No settled bets yet.")
		fmt.Printf("Bankroll: $%.2f\n", stats.Bankroll)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Bets", "W-L-P", "Win%", "Staked", "Profit", "ROI%", "AvgOdds", "AvgEV%", "AvgCLV%", "Bankroll")
	table.Append(
		fmt.Sprintf("%d", stats.TotalBets),
		fmt.Sprintf("%d-%d-%d", stats.Wins, stats.Losses, stats.Pushes),
		fmt.Sprintf("%.2f", stats.WinRate),
		fmt.Sprintf("$%.2f", stats.TotalStaked),
		fmt.Sprintf("$%+.2f", stats.TotalProfit),
		fmt.Sprintf("%+.2f", stats.ROI),
		fmt.Sprintf("%.3f", stats.AvgOdds),
		fmt.Sprintf("%+.2f", stats.AvgEV),
		fmt.Sprintf("%+.2f", stats.AvgCLV),
		fmt.Sprintf("$%.2f", stats.Bankroll),
	)
	table.Render()
}

// runOpportunities prints the +EV findings from the given window, best
// EV first.
func runOpportunities(ctx context.Context, store *storage.SQLiteStorage, window time.Duration) {
	opps, err := store.RecentOpportunities(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		slog.Error("opportunity report failed", "err", err)
		os.Exit(1)
	}
	if len(opps) == 0 {
		fmt.Printf("No opportunities in the last %s.\n", window)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Book", "Market", "Line", "Odds", "Bench", "EV%", "Edge%", "Src", "Found")
	for _, opp := range opps {
		table.Append(
			strings.ToUpper(opp.Book),
			opp.Key.Market,
			lineLabel(opp.Key),
			fmt.Sprintf("%.3f", opp.BookOdds),
			fmt.Sprintf("%.3f", opp.BenchmarkOdds),
			fmt.Sprintf("%+.2f", opp.EVPercent),
			fmt.Sprintf("%+.2f", opp.EdgePercent),
			string(opp.Source),
			opp.FoundAt.Local().Format("01-02 15:04"),
		)
	}
	table.Render()
	fmt.Printf("%d opportunities in the last %s.\n", len(opps), window)
}

// runPlaceBet records one manually entered bet and echoes it back with its
// EV against the reference line.
func runPlaceBet(ctx context.Context, e *engine.Engine, req engine.BetRequest) {
	bet, err := e.PlaceBet(ctx, req)
	if err != nil {
		slog.Error("bet not recorded", "err", err)
		os.Exit(1)
	}

	fmt.Printf("Bet recorded: %s\n", bet.ID)
	fmt.Printf("  %s | %s %s @ %.3f, stake $%.2f\n",
		strings.ToUpper(bet.Book), bet.Key.Market, lineLabel(bet.Key), bet.Odds, bet.Stake)
	if bet.EVAtPlacement != nil {
		fmt.Printf("  EV %+.2f%%  Edge %+.2f%% vs reference\n", *bet.EVAtPlacement, *bet.EdgeAtPlacement)
	} else {
		fmt.Println("  no reference line for this market, EV unknown")
	}
}

// lineLabel renders the selection with its qualifiers, e.g.
// "Jayson Tatum Over 25.5" or "Boston Celtics -5.5".
func lineLabel(k domain.MarketKey) string {
	var sb strings.Builder
	if k.Player.Valid {
		sb.WriteString(k.Player.Name)
		sb.WriteString(" ")
	}
	sb.WriteString(k.Selection)
	if k.Point.Valid {
		if k.Market == domain.MarketSpreads {
			fmt.Fprintf(&sb, " %+g", k.Point.Value)
		} else {
			fmt.Fprintf(&sb, " %g", k.Point.Value)
		}
	}
	return sb.String()
}
