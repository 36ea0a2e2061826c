package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// SaveCards upserts the card catalog in batches.
func (s *Store) SaveCards(ctx context.Context, cards []Card) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range cards {
		cards[i].UpdatedAt = now
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "set_id", "number", "rarity", "image_url",
			"release_date", "is_eligible", "updated_at",
		}),
	}).CreateInBatches(cards, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert cards: %w", err)
	}
	return len(cards), nil
}

// SaveSets upserts set metadata.
func (s *Store) SaveSets(ctx context.Context, sets []Set) (int, error) {
	if len(sets) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range sets {
		sets[i].UpdatedAt = now
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "set_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "series", "release_date", "card_count", "updated_at",
		}),
	}).CreateInBatches(sets, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert sets: %w", err)
	}
	return len(sets), nil
}

// SavePrices upserts one day's price snapshots. Re-running a fetch
// for the same date overwrites rather than duplicates.
func (s *Store) SavePrices(ctx context.Context, prices []CardPriceDaily) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	for i := range prices {
		prices[i].PriceDate = day(prices[i].PriceDate)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}, {Name: "price_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nm_price", "market_price",
			"nm_listings", "lp_listings", "mp_listings", "hp_listings", "dmg_listings",
			"total_listings",
			"nm_volume", "lp_volume", "mp_volume", "hp_volume", "dmg_volume",
			"daily_volume", "liquidity_score",
		}),
	}).CreateInBatches(prices, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert prices: %w", err)
	}
	return len(prices), nil
}

// SaveFXRates upserts daily EUR conversion rates.
func (s *Store) SaveFXRates(ctx context.Context, rates []FXRateDaily) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}
	for i := range rates {
		rates[i].RateDate = day(rates[i].RateDate)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rate_date"}, {Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "source"}),
	}).CreateInBatches(rates, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert fx rates: %w", err)
	}
	return len(rates), nil
}

// LatestFXRate returns the most recent rate for a currency, or ok
// false when none exists.
func (s *Store) LatestFXRate(ctx context.Context, currency string) (FXRateDaily, bool, error) {
	var row FXRateDaily
	err := s.db.WithContext(ctx).
		Where("currency = ?", currency).
		Order("rate_date DESC").
		First(&row).Error
	if isNotFound(err) {
		return FXRateDaily{}, false, nil
	}
	if err != nil {
		return FXRateDaily{}, false, fmt.Errorf("latest fx rate: %w", err)
	}
	return row, true, nil
}
