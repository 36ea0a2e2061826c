package liquidity

import "math"

// LegacyListingsScore is the first-generation scoring model: weighted
// live listings against the cap, no volume or consistency terms. It
// survives as a documented fallback for daily ingestion rows written
// before volume history was available; constituent selection never
// uses it directly.
//
// Returns the score, the weighted listing count and the number of
// grades that had any listings.
func LegacyListingsScore(counts ConditionCounts, totalFallback float64) (score, weighted float64, grades int) {
	weighted = counts.Weighted()

	if weighted == 0 && totalFallback > 0 {
		// Feeds without per-grade breakdowns report one global count;
		// treat it as Near Mint.
		weighted = totalFallback * NearMint.Weight()
		grades = 1
	} else {
		for _, count := range []float64{
			counts.NearMint, counts.LightlyPlayed, counts.ModeratelyPlayed,
			counts.HeavilyPlayed, counts.Damaged,
		} {
			if count > 0 {
				grades++
			}
		}
	}

	score = round4(math.Min(weighted/DefaultListingsCap, 1.0))
	return score, weighted, grades
}
