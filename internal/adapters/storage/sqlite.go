package storage

// sqlite.go — persistence for games, quote snapshots, opportunities and bets.
//
// Strategy:
//   - `quotes` is append-only: one row per observed price, never updated,
//     except for the closing flag set once when a game completes. "Latest
//     per key" is a read-side reduction, not a storage concern.
//   - `bets` are written once on placement and mutated exactly once by
//     settlement, through a conditional UPDATE guarded by `outcome IS NULL`.
//     Re-running settlement is therefore safe under concurrent passes.
//   - Timestamps are stored as RFC3339Nano text in UTC, so the SQL-level
//     comparisons (ORDER BY observed_at, the closing-line subquery) agree
//     with the in-memory comparator.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
	"github.com/carterchan9/nba-ev-tracker/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
    id            TEXT PRIMARY KEY,
    home_team     TEXT NOT NULL,
    away_team     TEXT NOT NULL,
    commence_time TEXT NOT NULL,
    home_score    INTEGER,
    away_score    INTEGER,
    status        TEXT NOT NULL DEFAULT 'upcoming'
);

-- One row per observed price. point/player are NULL for keys without them;
-- a spread of exactly 0.0 is a real value, distinct from NULL.
CREATE TABLE IF NOT EXISTS quotes (
    id           TEXT PRIMARY KEY,
    game_id      TEXT NOT NULL REFERENCES games(id),
    book         TEXT NOT NULL,
    market       TEXT NOT NULL,
    selection    TEXT NOT NULL,
    point        REAL,
    player       TEXT,
    odds         REAL NOT NULL,
    implied_prob REAL NOT NULL,
    observed_at  TEXT NOT NULL,
    closing      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS opportunities (
    id             TEXT PRIMARY KEY,
    game_id        TEXT NOT NULL,
    book           TEXT NOT NULL,
    market         TEXT NOT NULL,
    selection      TEXT NOT NULL,
    point          REAL,
    player         TEXT,
    book_odds      REAL NOT NULL,
    benchmark_odds REAL NOT NULL,
    ev_percent     REAL NOT NULL,
    edge_percent   REAL NOT NULL,
    fair_prob      REAL NOT NULL,
    source         TEXT NOT NULL,
    found_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bets (
    id                TEXT PRIMARY KEY,
    game_id           TEXT NOT NULL REFERENCES games(id),
    book              TEXT NOT NULL,
    market            TEXT NOT NULL,
    selection         TEXT NOT NULL,
    point             REAL,
    player            TEXT,
    odds              REAL NOT NULL,
    stake             REAL NOT NULL,
    ev_at_placement   REAL,
    edge_at_placement REAL,
    placed_at         TEXT NOT NULL,
    outcome           TEXT,
    profit_loss       REAL,
    closing_odds      REAL,
    clv               REAL
);

CREATE TABLE IF NOT EXISTS bankroll_history (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    at                TEXT NOT NULL,
    bankroll          REAL NOT NULL,
    cumulative_profit REAL NOT NULL,
    total_staked      REAL NOT NULL,
    roi               REAL NOT NULL,
    win_rate          REAL NOT NULL,
    total_bets        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quotes_game    ON quotes(game_id, observed_at);
CREATE INDEX IF NOT EXISTS idx_quotes_closing ON quotes(game_id, closing);
CREATE INDEX IF NOT EXISTS idx_opp_found      ON opportunities(found_at DESC);
CREATE INDEX IF NOT EXISTS idx_bets_outcome   ON bets(outcome);
CREATE INDEX IF NOT EXISTS idx_games_status   ON games(status, commence_time);
`

// timeLayout keeps stored timestamps lexicographically ordered, so SQL
// comparisons match time comparisons.
const timeLayout = time.RFC3339Nano

// SQLiteStorage implements ports.Storage on SQLite (pure Go, no CGo).
type SQLiteStorage struct {
	db *sql.DB
}

var _ ports.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at the given path and
// applies the schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// UpsertGame inserts a game or refreshes its mutable fields: scores and
// status. Teams and commence time never change after first sight.
func (s *SQLiteStorage) UpsertGame(ctx context.Context, g domain.Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, home_team, away_team, commence_time, home_score, away_score, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			status     = excluded.status
	`, g.ID, g.HomeTeam, g.AwayTeam, g.CommenceTime.UTC().Format(timeLayout),
		g.HomeScore, g.AwayScore, string(g.Status))
	if err != nil {
		return fmt.Errorf("storage.UpsertGame: %s: %w", g.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) UpcomingGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, home_team, away_team, commence_time, home_score, away_score, status
		FROM games
		WHERE status != 'completed'
		ORDER BY commence_time, id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.UpcomingGames: query: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.UpcomingGames: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// InsertQuotes appends snapshots in one transaction. Quote IDs are unique
// per observation, so replays of the same pull fail loudly instead of
// silently duplicating rows.
func (s *SQLiteStorage) InsertQuotes(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.InsertQuotes: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quotes
			(id, game_id, book, market, selection, point, player, odds, implied_prob, observed_at, closing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.InsertQuotes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		closing := 0
		if q.Closing {
			closing = 1
		}
		if _, err := stmt.ExecContext(ctx,
			q.ID, q.GameID, q.Book,
			q.Key.Market, q.Key.Selection, pointArg(q.Key.Point), playerArg(q.Key.Player),
			q.Odds, q.ImpliedProb, q.ObservedAt.UTC().Format(timeLayout), closing,
		); err != nil {
			return fmt.Errorf("storage.InsertQuotes: insert %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) QuotesForGame(ctx context.Context, gameID string) ([]domain.Quote, error) {
	return s.queryQuotes(ctx, `
		SELECT id, game_id, book, market, selection, point, player, odds, implied_prob, observed_at, closing
		FROM quotes
		WHERE game_id = ?
		ORDER BY observed_at, id
	`, gameID)
}

func (s *SQLiteStorage) BookQuotes(ctx context.Context, gameID, book, market string) ([]domain.Quote, error) {
	if market == "" {
		return s.queryQuotes(ctx, `
			SELECT id, game_id, book, market, selection, point, player, odds, implied_prob, observed_at, closing
			FROM quotes
			WHERE game_id = ? AND book = ?
			ORDER BY observed_at, id
		`, gameID, book)
	}
	return s.queryQuotes(ctx, `
		SELECT id, game_id, book, market, selection, point, player, odds, implied_prob, observed_at, closing
		FROM quotes
		WHERE game_id = ? AND book = ? AND market = ?
		ORDER BY observed_at, id
	`, gameID, book, market)
}

func (s *SQLiteStorage) ClosingQuotes(ctx context.Context, gameID string) ([]domain.Quote, error) {
	return s.queryQuotes(ctx, `
		SELECT id, game_id, book, market, selection, point, player, odds, implied_prob, observed_at, closing
		FROM quotes
		WHERE game_id = ? AND closing = 1
		ORDER BY observed_at, id
	`, gameID)
}

// MarkClosing flags the book's latest quote per market key. The NOT EXISTS
// subquery is the SQL rendering of the latest-quote comparator: a row is
// latest when no sibling on the same key was observed later, nor at the
// same instant with a greater id. IS (not =) compares the nullable
// point/player columns.
func (s *SQLiteStorage) MarkClosing(ctx context.Context, gameID, book string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE quotes SET closing = 1
		WHERE id IN (
			SELECT q.id FROM quotes q
			WHERE q.game_id = ? AND q.book = ?
			  AND NOT EXISTS (
				SELECT 1 FROM quotes q2
				WHERE q2.game_id = q.game_id AND q2.book = q.book
				  AND q2.market = q.market AND q2.selection = q.selection
				  AND q2.point IS q.point AND q2.player IS q.player
				  AND (q2.observed_at > q.observed_at
				       OR (q2.observed_at = q.observed_at AND q2.id > q.id))
			  )
		)
	`, gameID, book)
	if err != nil {
		return fmt.Errorf("storage.MarkClosing: %s/%s: %w", gameID, book, err)
	}
	return nil
}

func (s *SQLiteStorage) InsertOpportunity(ctx context.Context, opp domain.Opportunity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities
			(id, game_id, book, market, selection, point, player,
			 book_odds, benchmark_odds, ev_percent, edge_percent, fair_prob, source, found_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, opp.ID, opp.GameID, opp.Book,
		opp.Key.Market, opp.Key.Selection, pointArg(opp.Key.Point), playerArg(opp.Key.Player),
		opp.BookOdds, opp.BenchmarkOdds, opp.EVPercent, opp.EdgePercent, opp.FairProb,
		string(opp.Source), opp.FoundAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("storage.InsertOpportunity: %s: %w", opp.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) RecentOpportunities(ctx context.Context, since time.Time) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, book, market, selection, point, player,
		       book_odds, benchmark_odds, ev_percent, edge_percent, fair_prob, source, found_at
		FROM opportunities
		WHERE found_at >= ?
		ORDER BY ev_percent DESC
	`, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("storage.RecentOpportunities: query: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var (
			opp            domain.Opportunity
			point          sql.NullFloat64
			player, source string
			foundAt        string
		)
		if err := rows.Scan(
			&opp.ID, &opp.GameID, &opp.Book,
			&opp.Key.Market, &opp.Key.Selection, &point, sqlNullString{&player},
			&opp.BookOdds, &opp.BenchmarkOdds, &opp.EVPercent, &opp.EdgePercent,
			&opp.FairProb, &source, &foundAt,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentOpportunities: scan row: %w", err)
		}
		opp.Key.Point = pointFrom(point)
		opp.Key.Player = playerFrom(player)
		opp.Source = domain.BenchmarkSource(source)
		opp.FoundAt, err = time.Parse(timeLayout, foundAt)
		if err != nil {
			return nil, fmt.Errorf("storage.RecentOpportunities: parse found_at: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

func (s *SQLiteStorage) InsertBet(ctx context.Context, b domain.Bet) error {
	var outcome any
	if b.Outcome != domain.OutcomePending && b.Outcome != "" {
		outcome = string(b.Outcome)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bets
			(id, game_id, book, market, selection, point, player, odds, stake,
			 ev_at_placement, edge_at_placement, placed_at, outcome, profit_loss, closing_odds, clv)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.GameID, b.Book,
		b.Key.Market, b.Key.Selection, pointArg(b.Key.Point), playerArg(b.Key.Player),
		b.Odds, b.Stake, b.EVAtPlacement, b.EdgeAtPlacement,
		b.PlacedAt.UTC().Format(timeLayout), outcome, b.ProfitLoss, b.ClosingOdds, b.CLV)
	if err != nil {
		return fmt.Errorf("storage.InsertBet: %s: %w", b.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) PendingBets(ctx context.Context) ([]ports.PendingBet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.game_id, b.book, b.market, b.selection, b.point, b.player,
		       b.odds, b.stake, b.ev_at_placement, b.edge_at_placement, b.placed_at,
		       b.outcome, b.profit_loss, b.closing_odds, b.clv,
		       g.id, g.home_team, g.away_team, g.commence_time, g.home_score, g.away_score, g.status
		FROM bets b
		JOIN games g ON g.id = b.game_id
		WHERE b.outcome IS NULL
		ORDER BY b.placed_at, b.id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.PendingBets: query: %w", err)
	}
	defer rows.Close()

	var pending []ports.PendingBet
	for rows.Next() {
		var (
			b       domain.Bet
			point   sql.NullFloat64
			player  string
			placed  string
			outcome sql.NullString
			g       domain.Game
			gStatus string
			gTime   string
		)
		if err := rows.Scan(
			&b.ID, &b.GameID, &b.Book, &b.Key.Market, &b.Key.Selection, &point, sqlNullString{&player},
			&b.Odds, &b.Stake, &b.EVAtPlacement, &b.EdgeAtPlacement, &placed,
			&outcome, &b.ProfitLoss, &b.ClosingOdds, &b.CLV,
			&g.ID, &g.HomeTeam, &g.AwayTeam, &gTime, &g.HomeScore, &g.AwayScore, &gStatus,
		); err != nil {
			return nil, fmt.Errorf("storage.PendingBets: scan row: %w", err)
		}
		b.Key.Point = pointFrom(point)
		b.Key.Player = playerFrom(player)
		b.Outcome = outcomeFrom(outcome)
		if b.PlacedAt, err = time.Parse(timeLayout, placed); err != nil {
			return nil, fmt.Errorf("storage.PendingBets: parse placed_at: %w", err)
		}
		if g.CommenceTime, err = time.Parse(timeLayout, gTime); err != nil {
			return nil, fmt.Errorf("storage.PendingBets: parse commence_time: %w", err)
		}
		g.Status = domain.GameStatus(gStatus)
		pending = append(pending, ports.PendingBet{Bet: b, Game: g})
	}
	return pending, rows.Err()
}

// SettleBet is the single mutation a bet ever receives. The guard makes
// the write first-settler-wins under concurrent passes.
func (s *SQLiteStorage) SettleBet(ctx context.Context, betID string, outcome domain.Outcome, profitLoss float64, closingOdds, clv *float64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bets
		SET outcome = ?, profit_loss = ?, closing_odds = ?, clv = ?
		WHERE id = ? AND outcome IS NULL
	`, string(outcome), profitLoss, closingOdds, clv, betID)
	if err != nil {
		return false, fmt.Errorf("storage.SettleBet: %s: %w", betID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage.SettleBet: rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStorage) SettledBets(ctx context.Context) ([]domain.Bet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, book, market, selection, point, player, odds, stake,
		       ev_at_placement, edge_at_placement, placed_at, outcome, profit_loss, closing_odds, clv
		FROM bets
		WHERE outcome IS NOT NULL
		ORDER BY placed_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.SettledBets: query: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		var (
			b       domain.Bet
			point   sql.NullFloat64
			player  string
			placed  string
			outcome sql.NullString
		)
		if err := rows.Scan(
			&b.ID, &b.GameID, &b.Book, &b.Key.Market, &b.Key.Selection, &point, sqlNullString{&player},
			&b.Odds, &b.Stake, &b.EVAtPlacement, &b.EdgeAtPlacement, &placed,
			&outcome, &b.ProfitLoss, &b.ClosingOdds, &b.CLV,
		); err != nil {
			return nil, fmt.Errorf("storage.SettledBets: scan row: %w", err)
		}
		b.Key.Point = pointFrom(point)
		b.Key.Player = playerFrom(player)
		b.Outcome = outcomeFrom(outcome)
		if b.PlacedAt, err = time.Parse(timeLayout, placed); err != nil {
			return nil, fmt.Errorf("storage.SettledBets: parse placed_at: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func (s *SQLiteStorage) InsertBankrollSnapshot(ctx context.Context, snap domain.BankrollSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bankroll_history (at, bankroll, cumulative_profit, total_staked, roi, win_rate, total_bets)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.At.UTC().Format(timeLayout), snap.Bankroll, snap.CumulativeProfit,
		snap.TotalStaked, snap.ROI, snap.WinRate, snap.TotalBets)
	if err != nil {
		return fmt.Errorf("storage.InsertBankrollSnapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LatestBankroll(ctx context.Context) (*domain.BankrollSnapshot, error) {
	var (
		snap domain.BankrollSnapshot
		at   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT at, bankroll, cumulative_profit, total_staked, roi, win_rate, total_bets
		FROM bankroll_history
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&at, &snap.Bankroll, &snap.CumulativeProfit, &snap.TotalStaked,
		&snap.ROI, &snap.WinRate, &snap.TotalBets)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.LatestBankroll: %w", err)
	}
	if snap.At, err = time.Parse(timeLayout, at); err != nil {
		return nil, fmt.Errorf("storage.LatestBankroll: parse at: %w", err)
	}
	return &snap, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- internal helpers ---

func (s *SQLiteStorage) queryQuotes(ctx context.Context, query string, args ...any) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.queryQuotes: query: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var (
			q        domain.Quote
			point    sql.NullFloat64
			player   string
			observed string
			closing  int
		)
		if err := rows.Scan(
			&q.ID, &q.GameID, &q.Book, &q.Key.Market, &q.Key.Selection,
			&point, sqlNullString{&player}, &q.Odds, &q.ImpliedProb, &observed, &closing,
		); err != nil {
			return nil, fmt.Errorf("storage.queryQuotes: scan row: %w", err)
		}
		q.Key.Point = pointFrom(point)
		q.Key.Player = playerFrom(player)
		q.Closing = closing == 1
		if q.ObservedAt, err = time.Parse(timeLayout, observed); err != nil {
			return nil, fmt.Errorf("storage.queryQuotes: parse observed_at: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func scanGame(rows *sql.Rows) (domain.Game, error) {
	var (
		g      domain.Game
		gTime  string
		status string
	)
	if err := rows.Scan(&g.ID, &g.HomeTeam, &g.AwayTeam, &gTime,
		&g.HomeScore, &g.AwayScore, &status); err != nil {
		return domain.Game{}, fmt.Errorf("scan game row: %w", err)
	}
	var err error
	if g.CommenceTime, err = time.Parse(timeLayout, gTime); err != nil {
		return domain.Game{}, fmt.Errorf("parse commence_time: %w", err)
	}
	g.Status = domain.GameStatus(status)
	return g, nil
}

// pointArg maps an optional point to its nullable column value.
func pointArg(p domain.Point) any {
	if !p.Valid {
		return nil
	}
	return p.Value
}

func playerArg(p domain.Player) any {
	if !p.Valid {
		return nil
	}
	return p.Name
}

func pointFrom(v sql.NullFloat64) domain.Point {
	if !v.Valid {
		return domain.Point{}
	}
	return domain.PointOf(v.Float64)
}

func playerFrom(name string) domain.Player {
	if name == "" {
		return domain.Player{}
	}
	return domain.PlayerOf(name)
}

func outcomeFrom(v sql.NullString) domain.Outcome {
	if !v.Valid {
		return domain.OutcomePending
	}
	return domain.Outcome(v.String)
}

// sqlNullString scans a nullable TEXT column into a plain string, mapping
// NULL to "". Player names are never legitimately empty, so no information
// is lost.
type sqlNullString struct{ s *string }

func (n sqlNullString) Scan(v any) error {
	if v == nil {
		*n.s = ""
		return nil
	}
	switch t := v.(type) {
	case string:
		*n.s = t
	case []byte:
		*n.s = string(t)
	default:
		return fmt.Errorf("sqlNullString: unsupported type %T", v)
	}
	return nil
}
