package domain

// pricing.go — pure odds math.
//
// Every function here is total: malformed input (odds <= 0) produces a
// defined sentinel instead of an error, so batch computations over dirty
// snapshot data never abort halfway through.

// ImpliedProbability converts decimal odds to the break-even probability
// embedded in the price. Odds <= 0 return 0.
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return 1 / odds
}

// Devig strips the bookmaker margin from a two-outcome market by
// normalizing the raw implied probabilities to sum to 1.
// If both sides are unpriceable the result is (0, 0).
func Devig(oddsA, oddsB float64) (probA, probB float64) {
	rawA := ImpliedProbability(oddsA)
	rawB := ImpliedProbability(oddsB)
	total := rawA + rawB
	if total == 0 {
		return 0, 0
	}
	return rawA / total, rawB / total
}

// ExpectedValuePercent is the statistically expected return of a bet, as a
// percentage of the stake, given the book's price and a fair win probability.
//
//	EV% = (fairProb*(bookOdds-1) - (1-fairProb)) * 100
func ExpectedValuePercent(bookOdds, fairProb float64) float64 {
	return (fairProb*(bookOdds-1) - (1 - fairProb)) * 100
}

// EdgePercent is the percentage by which the book's price exceeds (or
// trails) the benchmark price. BenchmarkOdds <= 0 returns 0.
func EdgePercent(bookOdds, benchmarkOdds float64) float64 {
	if benchmarkOdds <= 0 {
		return 0
	}
	return (bookOdds/benchmarkOdds - 1) * 100
}

// ClosingLineValue is the percentage by which the odds obtained at
// placement beat the closing price. ClosingOdds <= 0 returns 0.
func ClosingLineValue(placedOdds, closingOdds float64) float64 {
	if closingOdds <= 0 {
		return 0
	}
	return (placedOdds/closingOdds - 1) * 100
}
