package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"tcgindex/internal/config"
	apperrors "tcgindex/internal/errors"
	"tcgindex/internal/liquidity"
)

// Selector applies the eligibility pipeline and ranks the survivors
// into a constituent basket.
type Selector struct {
	scorer   *liquidity.Scorer
	signals  SignalSource
	outliers config.OutlierRules
	logger   *slog.Logger
}

// NewSelector creates a selector.
func NewSelector(scorer *liquidity.Scorer, signals SignalSource, outliers config.OutlierRules, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{scorer: scorer, signals: signals, outliers: outliers, logger: logger}
}

// Select runs the filter pipeline in strict order — rarity, price
// outliers, maturity, liquidity — then ranks by price x liquidity
// descending (item ID ascending on ties) and truncates to the basket
// size. Returns ErrDegenerateBasket when nothing survives.
func (s *Selector) Select(ctx context.Context, candidates []Candidate, def config.IndexDefinition, asOf time.Time) ([]Constituent, error) {
	total := len(candidates)

	// 1. Category/rarity allow-list.
	eligible := candidates[:0:0]
	for _, c := range candidates {
		if def.AllowsRarity(c.Rarity) {
			eligible = append(eligible, c)
		}
	}
	afterRarity := len(eligible)

	// 2. Price outlier bounds.
	kept := eligible[:0]
	for _, c := range eligible {
		if c.RefPrice >= s.outliers.MinPrice && c.RefPrice <= s.outliers.MaxPrice {
			kept = append(kept, c)
		}
	}
	eligible = kept
	afterOutliers := len(eligible)

	// 3. Maturity: an item released exactly maturity_days before asOf
	// is seasoned; one day later is not.
	cutoff := asOf.AddDate(0, 0, -def.MaturityDays)
	kept = eligible[:0]
	for _, c := range eligible {
		if c.ReleaseDate != nil && c.ReleaseDate.After(cutoff) {
			continue
		}
		kept = append(kept, c)
	}
	eligible = kept
	afterMaturity := len(eligible)

	// 4. Liquidity scoring and threshold.
	type scored struct {
		Candidate
		score   liquidity.Score
		ranking float64
	}
	survivors := make([]scored, 0, len(eligible))
	for _, c := range eligible {
		window, err := s.signals.SignalWindow(ctx, c.ItemID, asOf, s.scorer.WindowDays())
		if err != nil {
			return nil, fmt.Errorf("signal window for %s: %w", c.ItemID, err)
		}
		score := s.scorer.Score(window, c.Listings)

		if def.EntryThreshold > 0 {
			if score.Value < def.EntryThreshold {
				continue
			}
		} else if score.Method == liquidity.MethodListingsOnly && score.Value == 0 {
			// No threshold configured: drop only items with neither
			// trading history nor listing depth.
			continue
		}

		survivors = append(survivors, scored{
			Candidate: c,
			score:     score,
			ranking:   c.RefPrice * score.Value,
		})
	}

	s.logger.InfoContext(ctx, "selection pipeline",
		"index", def.Code,
		"candidates", total,
		"after_rarity", afterRarity,
		"after_outliers", afterOutliers,
		"after_maturity", afterMaturity,
		"after_liquidity", len(survivors),
	)

	if len(survivors) == 0 {
		return nil, apperrors.ErrDegenerateBasket
	}

	// 5. Rank by price x liquidity descending, deterministic ties.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].ranking != survivors[j].ranking {
			return survivors[i].ranking > survivors[j].ranking
		}
		return survivors[i].ItemID < survivors[j].ItemID
	})

	// 6. Truncate to basket size.
	if !def.Unbounded() && len(survivors) > def.BasketSize {
		survivors = survivors[:def.BasketSize]
	}

	period := MonthStart(asOf)
	constituents := make([]Constituent, len(survivors))
	for i, sc := range survivors {
		constituents[i] = Constituent{
			IndexCode:       def.Code,
			Period:          period,
			ItemID:          sc.ItemID,
			ItemType:        string(def.Type),
			CompositePrice:  round2(sc.RefPrice),
			LiquidityScore:  sc.score.Value,
			LiquidityMethod: sc.score.Method,
			RankingScore:    round4(sc.ranking),
			Rank:            i + 1,
			IsNew:           true,
		}
	}
	return constituents, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
