package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIndexes(t *testing.T) {
	indexes := DefaultIndexes()
	require.Len(t, indexes, 5)

	codes := make(map[string]IndexDefinition, len(indexes))
	for _, def := range indexes {
		codes[def.Code] = def
	}

	t.Run("card indexes use the rare allow-list", func(t *testing.T) {
		for _, code := range []string{"RARE_100", "RARE_500", "RARE_ALL"} {
			def, ok := codes[code]
			require.True(t, ok, code)
			assert.Equal(t, ItemTypeCard, def.Type)
			assert.Equal(t, RareRarities, def.Rarities)
			assert.Equal(t, 60, def.MaturityDays)
		}
	})

	t.Run("sealed indexes have no rarity filter and longer maturity", func(t *testing.T) {
		for _, code := range []string{"SEALED_100", "SEALED_500"} {
			def, ok := codes[code]
			require.True(t, ok, code)
			assert.Equal(t, ItemTypeSealed, def.Type)
			assert.Empty(t, def.Rarities)
			assert.Equal(t, 90, def.MaturityDays)
		}
	})

	t.Run("RARE_ALL is unbounded", func(t *testing.T) {
		assert.True(t, codes["RARE_ALL"].Unbounded())
		assert.False(t, codes["RARE_100"].Unbounded())
	})
}

func TestIndexDefinition_AllowsRarity(t *testing.T) {
	def, ok := IndexByCode("RARE_100")
	require.True(t, ok)

	assert.True(t, def.AllowsRarity("Ultra Rare"))
	assert.True(t, def.AllowsRarity("Promo"))
	assert.False(t, def.AllowsRarity("Common"))
	assert.False(t, def.AllowsRarity("Code Card"))
	assert.False(t, def.AllowsRarity(""))

	sealed, ok := IndexByCode("SEALED_100")
	require.True(t, ok)
	assert.True(t, sealed.AllowsRarity(""), "sealed indexes have no rarity filter")
}

func TestIndexByCode_Unknown(t *testing.T) {
	_, ok := IndexByCode("RARE_9000")
	assert.False(t, ok)
}

func TestDefaultOutlierRules(t *testing.T) {
	rules := DefaultOutlierRules()
	assert.Equal(t, 0.10, rules.MinPrice)
	assert.Equal(t, 100000.0, rules.MaxPrice)
}
