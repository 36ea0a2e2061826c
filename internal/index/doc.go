// Package index implements constituent selection, weighting, and the
// chain-linked Laspeyres value calculation for the tracked indexes.
//
// A run has two phases. On the first run of a calendar month the
// selector filters the candidate universe (rarity, price outliers,
// maturity, liquidity), ranks survivors by price times liquidity, and
// persists the basket with liquidity-adjusted price weights. Every
// run then chain-links a new value off the latest stored one using
// only items priced on both dates, carrying the prior value forward
// when no prices match at all.
package index
