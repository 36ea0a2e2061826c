package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func sampleCard() Card {
	return Card{
		ID:          "sv8-123",
		Name:        "Pikachu ex",
		Number:      "123",
		Rarity:      "Ultra Rare",
		SetID:       "sv8",
		ReleaseDate: "2025-01-17",
		Prices: &CardPrices{
			Market: fp(42.5),
			Conditions: map[string]ConditionQuote{
				"Near Mint":      {Price: fp(45.0), Listings: 12},
				"Lightly Played": {Price: fp(38.0), Listings: 7},
			},
		},
		PriceHistory: &PriceHistory{
			Conditions: map[string]ConditionHistory{
				"Near Mint": {History: []HistoryPoint{
					{Date: "2026-08-26", Volume: fp(3)},
					{Date: "2026-08-27", Volume: fp(1)},
				}},
			},
		},
	}
}

func TestExtractPriceRow(t *testing.T) {
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	row, ok := extractPriceRow(sampleCard(), date)
	require.True(t, ok)

	assert.Equal(t, "sv8-123", row.CardID)
	require.NotNil(t, row.NMPrice)
	assert.Equal(t, 45.0, *row.NMPrice)
	assert.Equal(t, 12.0, row.NMListings)
	assert.Equal(t, 7.0, row.LPListings)
	assert.Equal(t, 19.0, row.TotalListings)

	// Volume comes from the day before last: the latest point is not
	// consolidated yet.
	require.NotNil(t, row.NMVolume)
	assert.Equal(t, 3.0, *row.NMVolume)
	require.NotNil(t, row.DailyVolume)
	assert.Equal(t, 3.0, *row.DailyVolume)
}

func TestExtractPriceRow_NoMarketPriceSkipped(t *testing.T) {
	card := sampleCard()
	card.Prices.Market = nil
	_, ok := extractPriceRow(card, time.Now())
	assert.False(t, ok)
}

func TestExtractPriceRow_ListingsFallbackToGlobal(t *testing.T) {
	card := sampleCard()
	card.Prices.Conditions = nil
	card.Prices.Listings = 31
	card.PriceHistory = nil

	row, ok := extractPriceRow(card, time.Now())
	require.True(t, ok)
	assert.Equal(t, 31.0, row.TotalListings)
	assert.Nil(t, row.NMPrice)
	assert.Nil(t, row.DailyVolume)
}

func TestExtractPriceRow_ShortHistoryHasNoVolume(t *testing.T) {
	card := sampleCard()
	card.PriceHistory.Conditions["Near Mint"] = ConditionHistory{
		History: []HistoryPoint{{Date: "2026-08-27", Volume: fp(5)}},
	}
	row, ok := extractPriceRow(card, time.Now())
	require.True(t, ok)
	assert.Nil(t, row.NMVolume)
}

func TestExtractSet_RarityFilterAndStats(t *testing.T) {
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	common := sampleCard()
	common.ID = "sv8-001"
	common.Rarity = "Common"
	unpriced := sampleCard()
	unpriced.ID = "sv8-002"
	unpriced.Prices = nil

	allow := func(r string) bool { return r != "Common" }
	out := ExtractSet([]Card{sampleCard(), common, unpriced}, date, allow)

	require.Len(t, out.Cards, 1)
	require.Len(t, out.Prices, 1)
	assert.Equal(t, 2, out.Skipped)
	assert.Equal(t, 1, out.WithVolume)
	assert.True(t, out.Cards[0].IsEligible)
	require.NotNil(t, out.Cards[0].ReleaseDate)
	assert.Equal(t, time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), *out.Cards[0].ReleaseDate)
}

func TestParseDateFormats(t *testing.T) {
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("not-a-date"))
	got := parseDate("2024/03/22")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), *got)
}
