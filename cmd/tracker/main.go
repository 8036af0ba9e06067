package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterchan9/nba-ev-tracker/config"
	"github.com/carterchan9/nba-ev-tracker/internal/adapters/notify"
	"github.com/carterchan9/nba-ev-tracker/internal/adapters/oddsapi"
	"github.com/carterchan9/nba-ev-tracker/internal/adapters/storage"
	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/engine"
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	stats := flag.Bool("stats", false, "print cumulative performance and exit")
	oppsHours := flag.Int("opps", 0, "print opportunities from the last N hours and exit")

	placeBet := flag.Bool("bet", false, "record a bet and exit (requires the -game/-book/... flags)")
	betGame := flag.String("game", "", "game id for -bet")
	betBook := flag.String("book", "", "sportsbook key for -bet")
	betMarket := flag.String("market", "h2h", "market key for -bet")
	betSelection := flag.String("selection", "", "selection (team name or Over/Under) for -bet")
	betPoint := flag.Float64("point", 0, "line value for -bet (spreads/totals/props)")
	betHasPoint := flag.Bool("haspoint", false, "set when -point is meaningful (0.0 is a valid spread)")
	betPlayer := flag.String("player", "", "player name for prop bets")
	betOdds := flag.Float64("odds", 0, "decimal odds for -bet")
	betStake := flag.Float64("stake", 0, "stake for -bet")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	e := engine.New(engine.Config{
		ReferenceBook:     cfg.Tracker.ReferenceBook,
		Books:             cfg.Tracker.Sportsbooks,
		MinEVThreshold:    cfg.Tracker.MinEVThreshold,
		ConsensusMinBooks: cfg.Tracker.ConsensusMinBooks,
		MovementThreshold: cfg.Tracker.MovementThreshold,
		StartingBankroll:  cfg.Tracker.StartingBankroll,
		ScoresDaysFrom:    cfg.Tracker.ScoresDaysFrom,
	}, store, notify.NewConsole(), buildProvider(cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *stats:
		runStats(ctx, e)
	case *oppsHours > 0:
		runOpportunities(ctx, store, time.Duration(*oppsHours)*time.Hour)
	case *placeBet:
		key := domain.MarketKey{Market: *betMarket, Selection: *betSelection}
		if *betHasPoint {
			key.Point = domain.PointOf(*betPoint)
		}
		if *betPlayer != "" {
			key.Player = domain.PlayerOf(*betPlayer)
		}
		runPlaceBet(ctx, e, engine.BetRequest{
			GameID: *betGame,
			Book:   *betBook,
			Key:    key,
			Odds:   *betOdds,
			Stake:  *betStake,
		})
	case *once:
		e.RunOnce(ctx)
	default:
		slog.Info("tracker starting",
			"config", *configPath,
			"interval", cfg.PollInterval(),
			"reference_book", cfg.Tracker.ReferenceBook,
			"books", len(cfg.Tracker.Sportsbooks),
		)
		if err := e.Run(ctx, cfg.PollInterval()); err != nil {
			slog.Error("tracker exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("tracker stopped cleanly")
	}
}

// buildProvider creates The Odds API client, or returns nil when no key is
// configured. Without a provider the engine still scans, settles and
// reports on whatever is already stored. The return type is the port, so
// the nil case stays a nil interface.
func buildProvider(cfg *config.Config) ports.OddsProvider {
	if cfg.API.Key == "" {
		slog.Warn("no ODDS_API_KEY set, running without live odds pulls")
		return nil
	}
	client, err := oddsapi.NewClient(oddsapi.Config{
		APIKey:      cfg.API.Key,
		BaseURL:     cfg.API.BaseURL,
		SportKey:    cfg.API.SportKey,
		Regions:     cfg.API.Regions,
		Bookmakers:  cfg.AllBookmakers(),
		GameMarkets: cfg.Tracker.GameMarkets,
		PropMarkets: cfg.Tracker.PropMarkets,
	})
	if err != nil {
		slog.Error("failed to build odds client", "err", err)
		os.Exit(1)
	}
	return client
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
