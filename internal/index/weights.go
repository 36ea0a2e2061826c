package index

import (
	"math"

	apperrors "tcgindex/internal/errors"
)

const (
	// liquidityFloor keeps an illiquid but selected item from being
	// weighted out of the basket entirely.
	liquidityFloor = 0.1

	// weightSumTolerance bounds the allowed drift of the weight sum
	// from 1.0 after normalization.
	weightSumTolerance = 1e-3
)

// ApplyWeights assigns liquidity-adjusted price weights in place.
// Each weight is price x max(liquidity, 0.1) normalized over the
// basket. A degenerate total falls back to equal weighting. Returns
// a WeightSumError when the normalized sum drifts beyond tolerance.
func ApplyWeights(constituents []Constituent) error {
	if len(constituents) == 0 {
		return nil
	}

	raw := make([]float64, len(constituents))
	var total float64
	for i, c := range constituents {
		raw[i] = c.CompositePrice * math.Max(c.LiquidityScore, liquidityFloor)
		total += raw[i]
	}

	if total <= 0 {
		equal := 1.0 / float64(len(constituents))
		for i := range constituents {
			constituents[i].Weight = equal
		}
		return nil
	}

	var sum float64
	for i := range constituents {
		constituents[i].Weight = raw[i] / total
		sum += constituents[i].Weight
	}

	if math.Abs(sum-1.0) > weightSumTolerance {
		return &apperrors.WeightSumError{IndexCode: constituents[0].IndexCode, Sum: sum}
	}
	return nil
}
