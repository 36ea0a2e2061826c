package liquidity

import (
	"fmt"
	"log/slog"
	"math"
)

// Default scoring parameters. Caps saturate: an item averaging ten
// weighted sales a day scores the full volume component no matter how
// far above the cap it trades.
const (
	DefaultVolumeCap   = 10.0
	DefaultListingsCap = 50.0
	DefaultWindowDays  = 30

	defaultVolumeWeight      = 0.50
	defaultListingsWeight    = 0.30
	defaultConsistencyWeight = 0.20
)

// Params configures a Scorer.
type Params struct {
	// VolumeCap is the average daily weighted volume that earns a full
	// volume sub-score; ListingsCap the weighted live listing count
	// that earns a full listings sub-score.
	VolumeCap   float64
	ListingsCap float64

	// WindowDays is the expected trailing window length. Shorter
	// windows (newly listed items) are scored on whatever days exist.
	WindowDays int

	// Component weights. Must sum to 1.
	VolumeWeight      float64
	ListingsWeight    float64
	ConsistencyWeight float64
}

// DefaultParams returns the production 50/30/20 configuration.
func DefaultParams() Params {
	return Params{
		VolumeCap:         DefaultVolumeCap,
		ListingsCap:       DefaultListingsCap,
		WindowDays:        DefaultWindowDays,
		VolumeWeight:      defaultVolumeWeight,
		ListingsWeight:    defaultListingsWeight,
		ConsistencyWeight: defaultConsistencyWeight,
	}
}

// Validate checks the parameters for internal consistency.
func (p Params) Validate() error {
	if p.VolumeCap <= 0 || p.ListingsCap <= 0 {
		return fmt.Errorf("caps must be positive: volume=%.2f listings=%.2f", p.VolumeCap, p.ListingsCap)
	}
	if p.WindowDays <= 0 {
		return fmt.Errorf("window days must be positive: %d", p.WindowDays)
	}
	sum := p.VolumeWeight + p.ListingsWeight + p.ConsistencyWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("component weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// Composite combines the three sub-scores into the final score,
// rounded to 4 decimals. Sub-scores are expected in [0, 1].
func (p Params) Composite(volume, listings, consistency float64) float64 {
	return round4(p.VolumeWeight*volume + p.ListingsWeight*listings + p.ConsistencyWeight*consistency)
}

// Scorer converts an item's trailing signal window plus its live
// listing depth into a normalized liquidity score.
type Scorer struct {
	params Params
	logger *slog.Logger
}

// NewScorer creates a scorer with the given parameters.
func NewScorer(params Params, logger *slog.Logger) (*Scorer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validate params: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{params: params, logger: logger}, nil
}

// Score computes the liquidity score for one item as of the window's
// final day. The window holds the item's trailing daily observations;
// currentListings holds the item's live per-grade listing counts.
//
// Composite = 0.50*volume + 0.30*listings + 0.20*consistency, rounded
// to 4 decimals. If the window carries no volume signal at all the
// result is the listings term alone, tagged MethodListingsOnly.
func (s *Scorer) Score(window []DayObservation, currentListings ConditionCounts) Score {
	listingsScore := math.Min(currentListings.Weighted()/s.params.ListingsCap, 1.0)

	priceDays := 0
	volumeDays := 0
	totalVolume := 0.0
	observedAny := false

	for _, day := range window {
		if day.HasPrice {
			priceDays++
		}
		weighted, observed := day.Volumes.Weighted()
		if !observed {
			continue
		}
		observedAny = true
		totalVolume += weighted
		if weighted > 0 {
			volumeDays++
		}
	}

	if !observedAny {
		// No trading history at all: score on listing depth alone,
		// with the volume and consistency terms omitted rather than
		// counted as zero-contributing at full weight.
		return Score{
			Value:         round4(s.params.ListingsWeight * listingsScore),
			Method:        MethodListingsOnly,
			ListingsScore: listingsScore,
		}
	}

	// Average over observed days only; a short window is scored on the
	// days it has, never extrapolated.
	volumeScore := 0.0
	consistencyScore := 0.0
	if priceDays > 0 {
		avgDailyVolume := totalVolume / float64(priceDays)
		volumeScore = math.Min(avgDailyVolume/s.params.VolumeCap, 1.0)
		consistencyScore = float64(volumeDays) / float64(priceDays)
	}

	return Score{
		Value:            s.params.Composite(volumeScore, listingsScore, consistencyScore),
		Method:           MethodCombined,
		VolumeScore:      volumeScore,
		ListingsScore:    listingsScore,
		ConsistencyScore: consistencyScore,
	}
}

// WindowDays returns the configured trailing window length.
func (s *Scorer) WindowDays() int {
	return s.params.WindowDays
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
