package domain

// BenchmarkSource says where a fair-value line came from.
type BenchmarkSource string

const (
	// SourceReference — the reference book's own price.
	SourceReference BenchmarkSource = "reference"
	// SourceConsensus — median across ordinary books.
	SourceConsensus BenchmarkSource = "consensus"
)

// BenchmarkLine is the fair-value estimate for one market key.
// Odds is the display price (raw reference or consensus median);
// FairProb is the probability that feeds EV and may be the de-vigged
// value when the market had exactly two sides.
type BenchmarkLine struct {
	Key      MarketKey
	Odds     float64
	FairProb float64
	Source   BenchmarkSource
	NumBooks int // contributing books, consensus only
}
