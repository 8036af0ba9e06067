package engine

// benchmark.go — fair-odds lookup per game.
//
// Two paths, in order:
//   1. Reference: the reference book's own latest price for game markets.
//   2. Consensus: median across the ordinary books for every key the
//      reference path did not cover — which is always the case for player
//      props. Requires a quorum of distinct contributing books.
// Keys satisfying neither path are absent from the table, never defaulted.
//
// In both paths, when a (market, point, player) group has exactly two
// outcomes the fair probability feeding EV is the de-vigged value; the
// display odds stay the raw price.

import (
	"sort"

	"github.com/carterchan9/nba-ev-tracker/internal/domain"
)

// bookKey identifies one book's price on one market key.
type bookKey struct {
	book string
	key  domain.MarketKey
}

// latestPerKey reduces snapshots to the latest quote per (book, key)
// using the domain comparator (observed-at, then id).
func latestPerKey(quotes []domain.Quote) map[bookKey]domain.Quote {
	latest := make(map[bookKey]domain.Quote, len(quotes))
	for _, q := range quotes {
		k := bookKey{book: q.Book, key: q.Key}
		if prev, ok := latest[k]; !ok || q.Newer(prev) {
			latest[k] = q
		}
	}
	return latest
}

// buildBenchmarks produces the per-game fair-odds lookup from the latest
// quotes of every book, the reference book included.
func (e *Engine) buildBenchmarks(latest map[bookKey]domain.Quote) map[domain.MarketKey]domain.BenchmarkLine {
	table := make(map[domain.MarketKey]domain.BenchmarkLine)

	// Reference path. Props are excluded here even when the reference book
	// prices them: prop benchmarks always come from consensus.
	for bk, q := range latest {
		if bk.book != e.cfg.ReferenceBook || !domain.IsGameMarket(q.Key.Market) {
			continue
		}
		table[q.Key] = domain.BenchmarkLine{
			Key:      q.Key,
			Odds:     q.Odds,
			FairProb: domain.ImpliedProbability(q.Odds),
			Source:   domain.SourceReference,
		}
	}
	devigGroups(table)

	// Consensus path for the uncovered keys.
	grouped := make(map[domain.MarketKey][]float64)
	for bk, q := range latest {
		if !e.books[bk.book] {
			continue
		}
		if _, covered := table[q.Key]; covered {
			continue
		}
		grouped[q.Key] = append(grouped[q.Key], q.Odds)
	}

	consensus := make(map[domain.MarketKey]domain.BenchmarkLine)
	for key, odds := range grouped {
		// latestPerKey guarantees one price per book, so len(odds) counts
		// distinct contributing books.
		if len(odds) < e.cfg.ConsensusMinBooks {
			continue
		}
		med := median(odds)
		consensus[key] = domain.BenchmarkLine{
			Key:      key,
			Odds:     med,
			FairProb: domain.ImpliedProbability(med),
			Source:   domain.SourceConsensus,
			NumBooks: len(odds),
		}
	}
	devigGroups(consensus)

	for key, line := range consensus {
		table[key] = line
	}
	return table
}

// devigGroups applies the two-sided de-vig refinement in place. Groups
// with one or more than two outcomes keep their raw implied probability.
func devigGroups(table map[domain.MarketKey]domain.BenchmarkLine) {
	groups := make(map[domain.GroupKey][]domain.MarketKey)
	for key := range table {
		g := key.Group()
		groups[g] = append(groups[g], key)
	}

	for _, keys := range groups {
		if len(keys) != 2 {
			continue
		}
		// Fixed side order so the probabilities land deterministically.
		sort.Slice(keys, func(i, j int) bool { return keys[i].Selection < keys[j].Selection })
		a, b := table[keys[0]], table[keys[1]]
		a.FairProb, b.FairProb = domain.Devig(a.Odds, b.Odds)
		table[keys[0]], table[keys[1]] = a, b
	}
}

// median returns the median of the given odds; even counts average the two
// middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
