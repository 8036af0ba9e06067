package domain

import "time"

// Game-level markets. Anything outside this set is a player-prop market
// (player_points, player_rebounds, ...) and is never auto-settled.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// Totals selections.
const (
	SelectionOver  = "Over"
	SelectionUnder = "Under"
)

// IsGameMarket reports whether the market settles from the final score.
func IsGameMarket(market string) bool {
	switch market {
	case MarketH2H, MarketSpreads, MarketTotals:
		return true
	}
	return false
}

// Point is an optional line value (spread or total). The zero value means
// "no point", which is distinct from a point of 0.0 — spreads of exactly
// zero exist and must not collide with pointless h2h keys.
type Point struct {
	Value float64
	Valid bool
}

// PointOf wraps a concrete point value.
func PointOf(v float64) Point {
	return Point{Value: v, Valid: true}
}

// Player is an optional player name for prop markets. The zero value means
// "no player", distinct from an empty name.
type Player struct {
	Name  string
	Valid bool
}

// PlayerOf wraps a concrete player name.
func PlayerOf(name string) Player {
	return Player{Name: name, Valid: true}
}

// MarketKey identifies one priced outcome: market, selection and the
// optional point/player qualifiers. It is comparable and is used directly
// as a map key when matching quotes against benchmarks.
type MarketKey struct {
	Market    string
	Selection string
	Point     Point
	Player    Player
}

// GroupKey is a MarketKey minus the selection. Quotes sharing a GroupKey
// are the opposing sides of the same market, which is what the two-sided
// de-vig operates on.
type GroupKey struct {
	Market string
	Point  Point
	Player Player
}

// Group returns the de-vig grouping key for this market key.
func (k MarketKey) Group() GroupKey {
	return GroupKey{Market: k.Market, Point: k.Point, Player: k.Player}
}

// Quote is one observed price at one book. Quotes are immutable and
// append-only; identity is the full tuple including ObservedAt.
type Quote struct {
	ID          string
	GameID      string
	Book        string
	Key         MarketKey
	Odds        float64
	ImpliedProb float64
	ObservedAt  time.Time
	Closing     bool
}

// Newer reports whether q is a strictly later observation than other under
// the latest-quote comparator: later ObservedAt wins; on identical
// timestamps the lexicographically greater ID wins. The rule is arbitrary
// but fixed, so repeated reductions always pick the same row.
func (q Quote) Newer(other Quote) bool {
	if !q.ObservedAt.Equal(other.ObservedAt) {
		return q.ObservedAt.After(other.ObservedAt)
	}
	return q.ID > other.ID
}
