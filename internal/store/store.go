package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcgindex/internal/index"
	"tcgindex/internal/liquidity"
)

// Store adapts the Postgres schema to the calculation engine's
// persistence contracts.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps an open gorm connection.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying connection for health probes.
func (s *Store) DB() *gorm.DB { return s.db }

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Price returns an item's Near Mint reference price for one date.
func (s *Store) Price(ctx context.Context, itemID string, date time.Time) (float64, bool, error) {
	var row CardPriceDaily
	err := s.db.WithContext(ctx).
		Where("card_id = ? AND price_date = ?", itemID, day(date)).
		First(&row).Error
	if isNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("price lookup: %w", err)
	}
	if row.NMPrice == nil {
		return 0, false, nil
	}
	return *row.NMPrice, true, nil
}

// PricesBatch returns Near Mint prices for the given items on one
// date. Items without a priced row are absent from the map.
func (s *Store) PricesBatch(ctx context.Context, itemIDs []string, date time.Time) (map[string]float64, error) {
	if len(itemIDs) == 0 {
		return map[string]float64{}, nil
	}
	var rows []CardPriceDaily
	err := s.db.WithContext(ctx).
		Where("card_id IN ? AND price_date = ?", itemIDs, day(date)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("batch price lookup: %w", err)
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		if r.NMPrice != nil {
			out[r.CardID] = *r.NMPrice
		}
	}
	return out, nil
}

// LatestIndexValue returns the most recent value for an index, or
// nil when the series has never been calculated.
func (s *Store) LatestIndexValue(ctx context.Context, indexCode string) (*index.Value, error) {
	var row IndexValueDaily
	err := s.db.WithContext(ctx).
		Where("index_code = ?", indexCode).
		Order("value_date DESC").
		First(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest value: %w", err)
	}
	v := toIndexValue(row)
	return &v, nil
}

// IndexValueOnOrBefore returns the most recent value dated on or
// before the given date, or nil.
func (s *Store) IndexValueOnOrBefore(ctx context.Context, indexCode string, date time.Time) (*index.Value, error) {
	var row IndexValueDaily
	err := s.db.WithContext(ctx).
		Where("index_code = ? AND value_date <= ?", indexCode, day(date)).
		Order("value_date DESC").
		First(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("value on or before: %w", err)
	}
	v := toIndexValue(row)
	return &v, nil
}

// Constituents returns the basket snapshot for one index and period,
// rank ascending. Empty when no snapshot exists.
func (s *Store) Constituents(ctx context.Context, indexCode string, period time.Time) ([]index.Constituent, error) {
	var rows []ConstituentMonthly
	err := s.db.WithContext(ctx).
		Where("index_code = ? AND month = ?", indexCode, day(period)).
		Order("rank ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load constituents: %w", err)
	}
	out := make([]index.Constituent, len(rows))
	for i, r := range rows {
		method, _ := liquidity.ParseMethod(r.LiquidityMethod)
		out[i] = index.Constituent{
			IndexCode:       r.IndexCode,
			Period:          r.Month,
			ItemID:          r.ItemID,
			ItemType:        r.ItemType,
			CompositePrice:  r.CompositePrice,
			LiquidityScore:  r.LiquidityScore,
			LiquidityMethod: method,
			RankingScore:    r.RankingScore,
			Rank:            r.Rank,
			Weight:          r.Weight,
			IsNew:           r.IsNew,
		}
	}
	return out, nil
}

// SaveConstituents replaces the snapshot for one index and period.
// Rows are upserted first and stale members deleted after, so a
// failed write never loses the prior snapshot.
func (s *Store) SaveConstituents(ctx context.Context, indexCode string, period time.Time, constituents []index.Constituent) (int, error) {
	if len(constituents) == 0 {
		return 0, nil
	}
	month := day(period)
	rows := make([]ConstituentMonthly, len(constituents))
	keep := make([]string, len(constituents))
	for i, c := range constituents {
		rows[i] = ConstituentMonthly{
			IndexCode:       indexCode,
			Month:           month,
			ItemID:          c.ItemID,
			ItemType:        c.ItemType,
			CompositePrice:  roundTo(c.CompositePrice, 2),
			LiquidityScore:  roundTo(c.LiquidityScore, 4),
			LiquidityMethod: c.LiquidityMethod.String(),
			RankingScore:    roundTo(c.RankingScore, 4),
			Rank:            c.Rank,
			Weight:          roundTo(c.Weight, 8),
			IsNew:           c.IsNew,
		}
		keep[i] = c.ItemID
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "index_code"}, {Name: "month"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"item_type", "composite_price", "liquidity_score",
			"liquidity_method", "ranking_score", "rank", "weight", "is_new",
		}),
	}).CreateInBatches(rows, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert constituents: %w", err)
	}

	res := s.db.WithContext(ctx).
		Where("index_code = ? AND month = ? AND item_id NOT IN ?", indexCode, month, keep).
		Delete(&ConstituentMonthly{})
	if res.Error != nil {
		s.logger.WarnContext(ctx, "could not remove stale constituents",
			"index", indexCode, "error", res.Error)
	} else if res.RowsAffected > 0 {
		s.logger.InfoContext(ctx, "removed stale constituents",
			"index", indexCode, "removed", res.RowsAffected)
	}
	return len(rows), nil
}

// SaveIndexValue upserts one published value row.
func (s *Store) SaveIndexValue(ctx context.Context, v index.Value) error {
	row := IndexValueDaily{
		IndexCode:      v.IndexCode,
		ValueDate:      day(v.Date),
		IndexValue:     roundTo(v.Value, 4),
		NConstituents:  v.NConstituents,
		TotalMarketCap: roundTo(v.MarketCap, 2),
		Change1D:       v.Change1D,
		Change1W:       v.Change1W,
		Change1M:       v.Change1M,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "index_code"}, {Name: "value_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"index_value", "n_constituents", "total_market_cap",
			"change_1d", "change_1w", "change_1m",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert index value: %w", err)
	}
	return nil
}

// SignalWindow returns up to days of trailing observations for one
// item ending at end, oldest first. Days the feed never covered are
// absent from the result.
func (s *Store) SignalWindow(ctx context.Context, itemID string, end time.Time, days int) ([]liquidity.DayObservation, error) {
	endDay := day(end)
	start := endDay.AddDate(0, 0, -(days - 1))
	var rows []CardPriceDaily
	err := s.db.WithContext(ctx).
		Where("card_id = ? AND price_date >= ? AND price_date <= ?", itemID, start, endDay).
		Order("price_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("signal window: %w", err)
	}
	window := make([]liquidity.DayObservation, len(rows))
	for i, r := range rows {
		window[i] = liquidity.DayObservation{
			Date:     r.PriceDate,
			HasPrice: r.NMPrice != nil || r.MarketPrice != nil,
			Volumes: liquidity.ConditionVolumes{
				NearMint:         r.NMVolume,
				LightlyPlayed:    r.LPVolume,
				ModeratelyPlayed: r.MPVolume,
				HeavilyPlayed:    r.HPVolume,
				Damaged:          r.DMGVolume,
			},
		}
	}
	return window, nil
}

// Candidates loads the eligible card universe priced on one date.
func (s *Store) Candidates(ctx context.Context, date time.Time) ([]index.Candidate, error) {
	type joined struct {
		CardPriceDaily
		Name        string     `gorm:"column:name"`
		SetID       string     `gorm:"column:set_id"`
		Rarity      string     `gorm:"column:rarity"`
		ReleaseDate *time.Time `gorm:"column:release_date"`
	}
	var rows []joined
	err := s.db.WithContext(ctx).
		Table("card_prices_daily").
		Select("card_prices_daily.*, cards.name, cards.set_id, cards.rarity, cards.release_date").
		Joins("JOIN cards ON cards.card_id = card_prices_daily.card_id").
		Where("card_prices_daily.price_date = ? AND cards.is_eligible", day(date)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	out := make([]index.Candidate, 0, len(rows))
	for _, r := range rows {
		if r.NMPrice == nil {
			continue
		}
		c := index.Candidate{
			ItemID:      r.CardID,
			Name:        r.Name,
			SetID:       r.SetID,
			Rarity:      r.Rarity,
			ReleaseDate: r.ReleaseDate,
			RefPrice:    *r.NMPrice,
			Listings: liquidity.ConditionCounts{
				NearMint:         r.NMListings,
				LightlyPlayed:    r.LPListings,
				ModeratelyPlayed: r.MPListings,
				HeavilyPlayed:    r.HPListings,
				Damaged:          r.DMGListings,
			},
		}
		if r.MarketPrice != nil {
			c.MarketPrice = *r.MarketPrice
		}
		out = append(out, c)
	}
	return out, nil
}

// IndexValues returns an index's full published history, oldest
// first.
func (s *Store) IndexValues(ctx context.Context, indexCode string) ([]index.Value, error) {
	var rows []IndexValueDaily
	err := s.db.WithContext(ctx).
		Where("index_code = ?", indexCode).
		Order("value_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("value history: %w", err)
	}
	out := make([]index.Value, len(rows))
	for i, r := range rows {
		out[i] = toIndexValue(r)
	}
	return out, nil
}

// CountSets returns the number of catalog sets. Used by keepalive as
// a cheap liveness query.
func (s *Store) CountSets(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Set{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sets: %w", err)
	}
	return n, nil
}

// SetNames returns the catalog set names, used to drive per-set
// price fetches.
func (s *Store) SetNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&Set{}).
		Order("release_date ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return names, nil
}

// LatestPriceDate returns the most recent date any price row exists
// for, or the zero time when the table is empty.
func (s *Store) LatestPriceDate(ctx context.Context) (time.Time, error) {
	var row CardPriceDaily
	err := s.db.WithContext(ctx).Order("price_date DESC").First(&row).Error
	if isNotFound(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest price date: %w", err)
	}
	return row.PriceDate, nil
}

func toIndexValue(row IndexValueDaily) index.Value {
	return index.Value{
		IndexCode:     row.IndexCode,
		Date:          row.ValueDate,
		Value:         row.IndexValue,
		NConstituents: row.NConstituents,
		MarketCap:     row.TotalMarketCap,
		Change1D:      row.Change1D,
		Change1W:      row.Change1W,
		Change1M:      row.Change1M,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow10(places)
	return math.Round(v*pow) / pow
}
