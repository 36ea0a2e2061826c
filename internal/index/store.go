package index

import (
	"context"
	"time"

	"tcgindex/internal/liquidity"
)

// Store is the persistence contract the engine depends on. The engine
// never issues raw queries; swapping the backing store never touches
// calculation logic.
type Store interface {
	// Price returns the reference price for one item on one date.
	// ok is false when the store has no row; absence is never zero.
	Price(ctx context.Context, itemID string, date time.Time) (price float64, ok bool, err error)

	// PricesBatch returns reference prices for the given items on one
	// date. Items without a row are simply absent from the map.
	PricesBatch(ctx context.Context, itemIDs []string, date time.Time) (map[string]float64, error)

	// LatestIndexValue returns the most recent value for an index, or
	// nil when the index has never been calculated.
	LatestIndexValue(ctx context.Context, indexCode string) (*Value, error)

	// IndexValueOnOrBefore returns the most recent value dated on or
	// before the given date, or nil.
	IndexValueOnOrBefore(ctx context.Context, indexCode string, date time.Time) (*Value, error)

	// Constituents returns the snapshot for one index and period,
	// ordered by rank; empty when no snapshot exists.
	Constituents(ctx context.Context, indexCode string, period time.Time) ([]Constituent, error)

	// SaveConstituents replaces the snapshot for one index and period.
	// The write is upsert-then-delete-stale: a failed write never
	// loses the prior snapshot. Returns the number of rows saved.
	SaveConstituents(ctx context.Context, indexCode string, period time.Time, constituents []Constituent) (int, error)

	// SaveIndexValue upserts one published value row.
	SaveIndexValue(ctx context.Context, value Value) error
}

// SignalSource supplies the trailing signal window the liquidity
// scorer consumes. Implemented by the store; separated so selection
// can be tested without a database.
type SignalSource interface {
	// SignalWindow returns up to days of observations for the item,
	// ending at (and including) end, oldest first. Days the feed never
	// covered are simply absent.
	SignalWindow(ctx context.Context, itemID string, end time.Time, days int) ([]liquidity.DayObservation, error)
}
