package index

import (
	"time"

	"tcgindex/internal/liquidity"
)

// Candidate is one priced item entering constituent selection: the
// day's reference price plus the metadata the filter pipeline needs.
type Candidate struct {
	ItemID string
	Name   string
	SetID  string
	Rarity string

	// ReleaseDate feeds the maturity filter; nil means the release
	// date is unknown upstream.
	ReleaseDate *time.Time

	// RefPrice is the Near Mint reference price; MarketPrice the
	// upstream market aggregate kept for reporting.
	RefPrice    float64
	MarketPrice float64

	// Listings holds the item's live per-grade listing counts.
	Listings liquidity.ConditionCounts
}

// Constituent is one basket member for one index and period.
// Immutable for the remainder of the period once persisted.
type Constituent struct {
	IndexCode string
	Period    time.Time // first day of the month, UTC
	ItemID    string
	ItemType  string

	CompositePrice  float64
	LiquidityScore  float64
	LiquidityMethod liquidity.Method
	RankingScore    float64

	// Rank is dense, starting at 1, no gaps or duplicates.
	Rank int

	// Weight is in (0, 1]; weights across a snapshot sum to 1.
	Weight float64

	// IsNew marks items absent from the previous period's basket.
	IsNew bool
}

// Value is one published index value: one row per (index_code, date),
// append-only once the next period's calculation depends on it.
type Value struct {
	IndexCode     string
	Date          time.Time
	Value         float64
	NConstituents int
	MarketCap     float64

	Change1D *float64
	Change1W *float64
	Change1M *float64
}

// CalcMethod tags how a day's value was produced.
type CalcMethod string

const (
	// MethodBase is the first calculation ever: the configured base.
	MethodBase CalcMethod = "base"
	// MethodSameDate means the prior value is for the same date; the
	// run is a no-op.
	MethodSameDate CalcMethod = "same_date"
	// MethodLaspeyres is the standard chain-linked ratio with at
	// least half the basket matched.
	MethodLaspeyres CalcMethod = "laspeyres"
	// MethodLaspeyresPartial is the same ratio computed from under
	// half the basket; lower confidence, preferable to freezing.
	MethodLaspeyresPartial CalcMethod = "laspeyres_partial"
	// MethodFallback holds the prior value flat: nothing matched.
	MethodFallback CalcMethod = "fallback"
)

// ValueResult carries a computed value plus its confidence detail.
type ValueResult struct {
	Value  float64
	Method CalcMethod

	// Matched and Total describe price coverage of the weight basket.
	Matched int
	Total   int

	// Ratio is the chain-link ratio; 1 for non-ratio methods.
	Ratio float64

	// ChangePct is the day-over-day percent move, nil when the method
	// produced no ratio.
	ChangePct *float64
}

// Outcome is the independently-reported result of one index's run.
type Outcome struct {
	IndexCode     string
	Date          time.Time
	Value         float64
	Method        CalcMethod
	NConstituents int
	MarketCap     float64
	Rebalanced    bool
	ChangePct     *float64
}

// RunReport pairs an index code with its outcome or failure, so one
// index's error never hides the others' results.
type RunReport struct {
	IndexCode string
	Outcome   *Outcome
	Err       error
}

// MonthStart returns the first day of d's month in UTC.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PrevMonthStart returns the first day of the month before d's.
func PrevMonthStart(d time.Time) time.Time {
	return MonthStart(MonthStart(d).AddDate(0, 0, -1))
}

// SameDate reports whether two timestamps fall on the same UTC day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
