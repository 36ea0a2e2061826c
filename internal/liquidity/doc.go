// Package liquidity scores how easily a collectible card trades.
//
// The score is a [0, 1] composite of three sub-scores computed over a
// trailing window of daily market observations:
//
//   - volume: average daily sales volume, weighted by condition grade
//     (Near Mint 1.0 down to Damaged 0.2) and saturating at a cap
//   - listings: weighted live listing depth, saturating at a cap
//   - consistency: the fraction of observed days with nonzero volume
//
// Composite = 0.50*volume + 0.30*listings + 0.20*consistency.
//
// Items with no volume signal anywhere in their window fall back to a
// listings-only score (the 0.30 listings term alone), tagged
// MethodListingsOnly so downstream selection can distinguish "never
// seen trading" from "confirmed not trading".
//
// All signals separate absence from zero: a day with confirmed zero
// sales is a real observation that drags consistency down, while a day
// the feed never reported contributes nothing.
package liquidity
