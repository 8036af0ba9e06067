package oddsapi

import "time"

// DTOs for The Odds API v4. Field names follow the wire format; mapping to
// domain types lives in mapping.go.

type eventDTO struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []bookmakerDTO `json:"bookmakers"`
}

type bookmakerDTO struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []marketDTO `json:"markets"`
}

type marketDTO struct {
	Key      string       `json:"key"`
	Outcomes []outcomeDTO `json:"outcomes"`
}

// outcomeDTO is one priced side. Description carries the player name on
// prop markets and is empty on game markets; Point is absent on h2h.
type outcomeDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point"`
}

// eventStub is the /events listing used to drive per-event prop fetches.
type eventStub struct {
	ID string `json:"id"`
}

type scoreEventDTO struct {
	ID           string          `json:"id"`
	CommenceTime time.Time       `json:"commence_time"`
	Completed    bool            `json:"completed"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Scores       []scoreEntryDTO `json:"scores"`
}

// scoreEntryDTO holds one team's score. The API serializes the score as a
// string.
type scoreEntryDTO struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}
