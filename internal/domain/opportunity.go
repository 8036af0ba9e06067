package domain

import "time"

// Opportunity is a positive-EV finding: one book's quote beating the fair
// benchmark. Opportunities form an append-only log — the scanner never
// dedupes, "most recent only" is a read-side concern for consumers.
type Opportunity struct {
	ID            string
	GameID        string
	Book          string
	Key           MarketKey
	BookOdds      float64
	BenchmarkOdds float64
	EVPercent     float64
	EdgePercent   float64
	FairProb      float64
	Source        BenchmarkSource
	FoundAt       time.Time
}
