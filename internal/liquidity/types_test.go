package liquidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCondition_Weight(t *testing.T) {
	assert.Equal(t, 1.0, NearMint.Weight())
	assert.Equal(t, 0.8, LightlyPlayed.Weight())
	assert.Equal(t, 0.6, ModeratelyPlayed.Weight())
	assert.Equal(t, 0.4, HeavilyPlayed.Weight())
	assert.Equal(t, 0.2, Damaged.Weight())
	assert.Equal(t, 0.0, Condition(99).Weight())

	// Weights fall in fixed steps from best grade to worst.
	for i := 1; i < len(Conditions); i++ {
		assert.Greater(t, Conditions[i-1].Weight(), Conditions[i].Weight())
	}
}

func TestConditionCounts_Weighted(t *testing.T) {
	counts := ConditionCounts{
		NearMint:         10,
		LightlyPlayed:    10,
		ModeratelyPlayed: 10,
		HeavilyPlayed:    10,
		Damaged:          10,
	}
	// 10*1.0 + 10*0.8 + 10*0.6 + 10*0.4 + 10*0.2 = 30
	assert.InDelta(t, 30.0, counts.Weighted(), 1e-9)
	assert.InDelta(t, 50.0, counts.Total(), 1e-9)

	nmOnly := ConditionCounts{NearMint: 50}
	assert.InDelta(t, 50.0, nmOnly.Weighted(), 1e-9)
}

func TestConditionVolumes_Weighted(t *testing.T) {
	t.Run("nothing observed", func(t *testing.T) {
		sum, observed := ConditionVolumes{}.Weighted()
		assert.False(t, observed)
		assert.Zero(t, sum)
	})

	t.Run("confirmed zero is observed", func(t *testing.T) {
		sum, observed := ConditionVolumes{NearMint: fptr(0)}.Weighted()
		assert.True(t, observed)
		assert.Zero(t, sum)
	})

	t.Run("grade weighting applied", func(t *testing.T) {
		sum, observed := ConditionVolumes{
			NearMint: fptr(5),
			Damaged:  fptr(5),
		}.Weighted()
		assert.True(t, observed)
		assert.InDelta(t, 6.0, sum, 1e-9) // 5*1.0 + 5*0.2
	})
}

func TestMethod_RoundTrip(t *testing.T) {
	for _, m := range []Method{MethodCombined, MethodListingsOnly} {
		parsed, ok := ParseMethod(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
	}

	_, ok := ParseMethod("volume_decay")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Method(42).String())
}

func TestLegacyListingsScore(t *testing.T) {
	t.Run("per-grade counts", func(t *testing.T) {
		// 10 NM + 20 LP + 5 MP = 10 + 16 + 3 = 29, score 29/50.
		score, weighted, grades := LegacyListingsScore(ConditionCounts{
			NearMint:         10,
			LightlyPlayed:    20,
			ModeratelyPlayed: 5,
		}, 0)
		assert.InDelta(t, 29.0, weighted, 1e-9)
		assert.Equal(t, 3, grades)
		assert.Equal(t, 0.58, score)
	})

	t.Run("global fallback treated as near mint", func(t *testing.T) {
		score, weighted, grades := LegacyListingsScore(ConditionCounts{}, 20)
		assert.InDelta(t, 20.0, weighted, 1e-9)
		assert.Equal(t, 1, grades)
		assert.Equal(t, 0.4, score)
	})

	t.Run("saturates at cap", func(t *testing.T) {
		score, _, _ := LegacyListingsScore(ConditionCounts{NearMint: 500}, 0)
		assert.Equal(t, 1.0, score)
	})
}
