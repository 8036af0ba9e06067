package domain

import "time"

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	StatusUpcoming  GameStatus = "upcoming"
	StatusLive      GameStatus = "live"
	StatusCompleted GameStatus = "completed"
)

// Game is a single NBA game. Scores are nil until a final result is known.
type Game struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	HomeScore    *int
	AwayScore    *int
	Status       GameStatus
}

// HasFinalScore reports whether both final scores are present.
func (g Game) HasFinalScore() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Label is a human-readable "Away @ Home" description.
func (g Game) Label() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}
