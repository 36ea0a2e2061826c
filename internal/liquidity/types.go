package liquidity

import (
	"time"
)

// Condition represents a card condition grade, best to worst.
type Condition int

const (
	NearMint Condition = iota
	LightlyPlayed
	ModeratelyPlayed
	HeavilyPlayed
	Damaged
)

// conditionWeights descend in fixed steps from the best grade to the
// worst. A Damaged sale counts one fifth of a Near Mint sale.
var conditionWeights = [...]float64{1.0, 0.8, 0.6, 0.4, 0.2}

// Weight returns the grade weight applied to listings and volume.
func (c Condition) Weight() float64 {
	if c < NearMint || c > Damaged {
		return 0
	}
	return conditionWeights[c]
}

// String returns the upstream label for the condition grade.
func (c Condition) String() string {
	switch c {
	case NearMint:
		return "Near Mint"
	case LightlyPlayed:
		return "Lightly Played"
	case ModeratelyPlayed:
		return "Moderately Played"
	case HeavilyPlayed:
		return "Heavily Played"
	case Damaged:
		return "Damaged"
	default:
		return "unknown"
	}
}

// Conditions lists all grades, best first.
var Conditions = []Condition{NearMint, LightlyPlayed, ModeratelyPlayed, HeavilyPlayed, Damaged}

// ConditionCounts holds per-grade listing counts. A zero count and an
// absent count are equivalent for listings: the market simply has none.
type ConditionCounts struct {
	NearMint         float64
	LightlyPlayed    float64
	ModeratelyPlayed float64
	HeavilyPlayed    float64
	Damaged          float64
}

// Weighted returns the grade-weighted listing count.
func (c ConditionCounts) Weighted() float64 {
	return c.NearMint*NearMint.Weight() +
		c.LightlyPlayed*LightlyPlayed.Weight() +
		c.ModeratelyPlayed*ModeratelyPlayed.Weight() +
		c.HeavilyPlayed*HeavilyPlayed.Weight() +
		c.Damaged*Damaged.Weight()
}

// Total returns the raw, unweighted listing count.
func (c ConditionCounts) Total() float64 {
	return c.NearMint + c.LightlyPlayed + c.ModeratelyPlayed + c.HeavilyPlayed + c.Damaged
}

// ConditionVolumes holds per-grade sales volume for one day. A nil
// entry means the upstream feed reported nothing for that grade; a
// zero entry is a confirmed no-sale day. The distinction drives the
// listings-only fallback.
type ConditionVolumes struct {
	NearMint         *float64
	LightlyPlayed    *float64
	ModeratelyPlayed *float64
	HeavilyPlayed    *float64
	Damaged          *float64
}

// Weighted returns the grade-weighted volume and whether any grade was
// observed at all.
func (v ConditionVolumes) Weighted() (sum float64, observed bool) {
	add := func(vol *float64, weight float64) {
		if vol != nil {
			sum += *vol * weight
			observed = true
		}
	}
	add(v.NearMint, NearMint.Weight())
	add(v.LightlyPlayed, LightlyPlayed.Weight())
	add(v.ModeratelyPlayed, ModeratelyPlayed.Weight())
	add(v.HeavilyPlayed, HeavilyPlayed.Weight())
	add(v.Damaged, Damaged.Weight())
	return sum, observed
}

// DayObservation is one day of an item's trailing signal window.
type DayObservation struct {
	Date time.Time

	// HasPrice reports whether a price row exists for this day. Days
	// without any observation do not count toward consistency.
	HasPrice bool

	Volumes ConditionVolumes
}

// Method identifies which scoring formula produced a score.
type Method int

const (
	// MethodCombined is the canonical 50/30/20 volume, listings and
	// consistency composite.
	MethodCombined Method = iota

	// MethodListingsOnly is the fallback for items whose window carries
	// no volume signal at all. Items with no trading history are not
	// penalized as harshly as items with confirmed zero trading.
	MethodListingsOnly
)

// String returns the persisted tag for the method.
func (m Method) String() string {
	switch m {
	case MethodCombined:
		return "combined"
	case MethodListingsOnly:
		return "listings_only"
	default:
		return "unknown"
	}
}

// ParseMethod maps a persisted tag back to a Method.
func ParseMethod(tag string) (Method, bool) {
	switch tag {
	case "combined":
		return MethodCombined, true
	case "listings_only":
		return MethodListingsOnly, true
	default:
		return Method(-1), false
	}
}

// Score is the result of scoring one item as of one date. Value is
// always within [0, 1]. The sub-scores are retained so callers can
// explain a score without recomputing it.
type Score struct {
	Value  float64
	Method Method

	VolumeScore      float64
	ListingsScore    float64
	ConsistencyScore float64
}
