// Package errors defines the calculation engine's error taxonomy.
//
// The engine distinguishes conditions that are handled locally (a
// missing price excludes one item from one day's ratio), conditions
// surfaced as degraded-confidence results (partial match), and
// conditions that abort a single index's run without touching the
// others (degenerate basket). Callers use errors.Is / errors.As to
// branch on them.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Re-export the stdlib helpers so callers can depend on one package.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Sentinel errors for the engine's failure taxonomy.
var (
	// ErrNoMatch indicates no constituent had a usable current price;
	// the index value is held flat. Systemic data failure: the caller
	// must log it as a notable event.
	ErrNoMatch = errors.New("no constituent prices matched for target date")

	// ErrDegenerateBasket indicates selection produced an empty
	// constituent list; the rebalance for that index is aborted and
	// the prior snapshot stays authoritative.
	ErrDegenerateBasket = errors.New("constituent selection produced an empty basket")

	// ErrNoPriceData indicates the store has no price rows at all for
	// the requested date.
	ErrNoPriceData = errors.New("no price data for date")
)

// DataGapError reports a missing price for a single constituent on the
// target date. Handled locally: the item is excluded from that day's
// ratio and counted toward the match statistics. Never fatal.
type DataGapError struct {
	ItemID string
	Date   time.Time
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("no price for item %s on %s", e.ItemID, e.Date.Format("2006-01-02"))
}

// WeightSumError reports constituent weights not summing to 1 within
// tolerance. Given the weighting formula this must never occur; it is
// treated as a defect, not a recoverable runtime condition.
type WeightSumError struct {
	IndexCode string
	Sum       float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("index %s: constituent weights sum to %.6f, expected 1.0", e.IndexCode, e.Sum)
}

// IndexRunError wraps a failure in a single index's daily run so a
// multi-index batch can report per-index outcomes independently.
type IndexRunError struct {
	IndexCode string
	Err       error
}

func (e *IndexRunError) Error() string {
	return fmt.Sprintf("index %s: %v", e.IndexCode, e.Err)
}

func (e *IndexRunError) Unwrap() error {
	return e.Err
}
