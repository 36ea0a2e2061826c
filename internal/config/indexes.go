package config

import "time"

// ItemType distinguishes single cards from sealed product.
type ItemType string

const (
	ItemTypeCard   ItemType = "card"
	ItemTypeSealed ItemType = "sealed"
)

// IndexDefinition is the static definition of one published index.
// Definitions are configuration, never mutated at runtime.
type IndexDefinition struct {
	Code string
	Type ItemType

	// BasketSize limits the number of constituents; 0 means unbounded.
	BasketSize int

	// Rarities is the allow-list of rarity labels eligible for this
	// index. Empty means no rarity filter (sealed product).
	Rarities []string

	// EntryThreshold is the minimum liquidity score for a new
	// constituent; MaintainThreshold is the lower bar an existing
	// constituent must keep to stay in at the next rebalance.
	EntryThreshold    float64
	MaintainThreshold float64

	// MaturityDays is how long an item must have been on the market
	// before it can enter a basket.
	MaturityDays int
}

// AllowsRarity reports whether the given rarity label is eligible.
func (d IndexDefinition) AllowsRarity(rarity string) bool {
	if len(d.Rarities) == 0 {
		return true
	}
	for _, r := range d.Rarities {
		if r == rarity {
			return true
		}
	}
	return false
}

// Unbounded reports whether the index keeps every surviving candidate.
func (d IndexDefinition) Unbounded() bool {
	return d.BasketSize == 0
}

// OutlierRules bounds reference prices considered plausible. Items
// outside the bounds are excluded from selection entirely.
type OutlierRules struct {
	MinPrice float64
	MaxPrice float64
}

// DefaultOutlierRules returns the production price bounds.
func DefaultOutlierRules() OutlierRules {
	return OutlierRules{MinPrice: 0.10, MaxPrice: 100000}
}

// Index inception parameters. The first value ever published for an
// index is BaseValue at the first run on or after InceptionDate.
const (
	BaseValue = 100.0
)

// InceptionDate is the first date with complete daily price coverage.
var InceptionDate = time.Date(2025, time.December, 8, 0, 0, 0, 0, time.UTC)

// RareRarities is the allow-list of rarity labels counted as "Rare or
// better". Membership is an exact label match against upstream data,
// not a numeric threshold.
var RareRarities = []string{
	"Rare",
	"Holo Rare",
	"Shiny Holo Rare",

	"Ultra Rare",
	"Secret Rare",
	"Hyper Rare",
	"Mega Hyper Rare",

	"Illustration Rare",
	"Special Illustration Rare",
	"Double Rare",

	"Shiny Rare",
	"Shiny Ultra Rare",

	"Amazing Rare",
	"Radiant Rare",
	"Prism Rare",
	"ACE SPEC Rare",
	"Rare BREAK",
	"Rare Ace",
	"Black White Rare",

	"Promo",

	"Classic Collection",
}

// IsRareOrBetter reports whether a rarity label is on the rare
// allow-list.
func IsRareOrBetter(rarity string) bool {
	for _, r := range RareRarities {
		if r == rarity {
			return true
		}
	}
	return false
}

// DefaultIndexes returns the full set of published index definitions.
func DefaultIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Code:              "RARE_100",
			Type:              ItemTypeCard,
			BasketSize:        100,
			Rarities:          RareRarities,
			EntryThreshold:    0.60,
			MaintainThreshold: 0.45,
			MaturityDays:      60,
		},
		{
			Code:              "RARE_500",
			Type:              ItemTypeCard,
			BasketSize:        500,
			Rarities:          RareRarities,
			EntryThreshold:    0.45,
			MaintainThreshold: 0.35,
			MaturityDays:      60,
		},
		{
			Code:              "RARE_ALL",
			Type:              ItemTypeCard,
			BasketSize:        0,
			Rarities:          RareRarities,
			EntryThreshold:    0.50,
			MaintainThreshold: 0.50,
			MaturityDays:      60,
		},
		{
			Code:              "SEALED_100",
			Type:              ItemTypeSealed,
			BasketSize:        100,
			EntryThreshold:    0.60,
			MaintainThreshold: 0.45,
			MaturityDays:      90,
		},
		{
			Code:              "SEALED_500",
			Type:              ItemTypeSealed,
			BasketSize:        500,
			EntryThreshold:    0.45,
			MaintainThreshold: 0.35,
			MaturityDays:      90,
		},
	}
}

// IndexByCode returns the definition for the given code.
func IndexByCode(code string) (IndexDefinition, bool) {
	for _, def := range DefaultIndexes() {
		if def.Code == code {
			return def, true
		}
	}
	return IndexDefinition{}, false
}
