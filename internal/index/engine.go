package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tcgindex/internal/config"
	apperrors "tcgindex/internal/errors"
)

// Engine orchestrates one index run: monthly rebalance when due,
// then a chain-linked Laspeyres value for the as-of date.
type Engine struct {
	store    Store
	selector *Selector
	logger   *slog.Logger
	base     float64
}

// NewEngine creates an engine. The base value seeds the series at
// inception when no prior value exists.
func NewEngine(store Store, selector *Selector, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, selector: selector, logger: logger, base: config.BaseValue}
}

// RunInput carries everything one index run needs.
type RunInput struct {
	Def            config.IndexDefinition
	AsOf           time.Time
	Candidates     []Candidate
	ForceRebalance bool
}

// Run executes a single index for a single date. The rebalance step
// is idempotent: a second run for the same month reuses the stored
// snapshot unless ForceRebalance is set.
func (e *Engine) Run(ctx context.Context, in RunInput) (*Outcome, error) {
	period := MonthStart(in.AsOf)
	log := e.logger.With("index", in.Def.Code, "date", in.AsOf.Format("2006-01-02"))

	constituents, rebalanced, err := e.ensureConstituents(ctx, in, period, log)
	if err != nil {
		return nil, &apperrors.IndexRunError{IndexCode: in.Def.Code, Err: err}
	}

	result, err := e.computeValue(ctx, in.Def, in.AsOf, constituents)
	if err != nil {
		return nil, &apperrors.IndexRunError{IndexCode: in.Def.Code, Err: err}
	}

	outcome := &Outcome{
		IndexCode:     in.Def.Code,
		Date:          in.AsOf,
		Value:         result.Value,
		Method:        result.Method,
		NConstituents: len(constituents),
		Rebalanced:    rebalanced,
		ChangePct:     result.ChangePct,
	}

	if result.Method == MethodSameDate {
		log.InfoContext(ctx, "index value already recorded", "value", result.Value)
		return outcome, nil
	}

	var marketCap float64
	for _, c := range constituents {
		marketCap += c.CompositePrice
	}
	outcome.MarketCap = round2(marketCap)

	value := Value{
		IndexCode:     in.Def.Code,
		Date:          in.AsOf,
		Value:         result.Value,
		NConstituents: len(constituents),
		MarketCap:     outcome.MarketCap,
		Change1D:      result.ChangePct,
	}
	value.Change1W = e.changeOver(ctx, in.Def.Code, in.AsOf, 7, result.Value)
	value.Change1M = e.changeOver(ctx, in.Def.Code, in.AsOf, 30, result.Value)

	if err := e.store.SaveIndexValue(ctx, value); err != nil {
		return nil, &apperrors.IndexRunError{IndexCode: in.Def.Code, Err: fmt.Errorf("save value: %w", err)}
	}

	log.InfoContext(ctx, "index value recorded",
		"value", result.Value,
		"method", string(result.Method),
		"matched", result.Matched,
		"total", result.Total,
		"rebalanced", rebalanced,
	)
	return outcome, nil
}

// ensureConstituents returns the authoritative basket for the period,
// rebalancing when the month has no snapshot yet. A degenerate
// selection falls back to the previous month's basket so the series
// keeps publishing.
func (e *Engine) ensureConstituents(ctx context.Context, in RunInput, period time.Time, log *slog.Logger) ([]Constituent, bool, error) {
	existing, err := e.store.Constituents(ctx, in.Def.Code, period)
	if err != nil {
		return nil, false, fmt.Errorf("load constituents: %w", err)
	}
	if len(existing) > 0 && !in.ForceRebalance {
		return existing, false, nil
	}

	selected, err := e.selector.Select(ctx, in.Candidates, in.Def, in.AsOf)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDegenerateBasket) {
			prev, perr := e.store.Constituents(ctx, in.Def.Code, PrevMonthStart(period))
			if perr == nil && len(prev) > 0 {
				log.WarnContext(ctx, "selection produced no eligible items, reusing previous basket",
					"previous_period", PrevMonthStart(period).Format("2006-01"))
				return prev, false, nil
			}
		}
		return nil, false, fmt.Errorf("select constituents: %w", err)
	}

	prev, err := e.store.Constituents(ctx, in.Def.Code, PrevMonthStart(period))
	if err != nil {
		return nil, false, fmt.Errorf("load previous constituents: %w", err)
	}
	previous := make(map[string]bool, len(prev))
	for _, c := range prev {
		previous[c.ItemID] = true
	}
	for i := range selected {
		selected[i].IsNew = !previous[selected[i].ItemID]
	}

	if err := ApplyWeights(selected); err != nil {
		return nil, false, err
	}

	saved, err := e.store.SaveConstituents(ctx, in.Def.Code, period, selected)
	if err != nil {
		return nil, false, fmt.Errorf("save constituents: %w", err)
	}
	log.InfoContext(ctx, "basket rebalanced",
		"period", period.Format("2006-01"),
		"constituents", saved,
		"forced", in.ForceRebalance,
	)
	return selected, true, nil
}

// computeValue chain-links today's value off the latest stored one.
// The ratio uses only items priced on both dates; below a 50% match
// the method is flagged partial, and with no matches at all the prior
// value carries forward unchanged.
func (e *Engine) computeValue(ctx context.Context, def config.IndexDefinition, asOf time.Time, constituents []Constituent) (*ValueResult, error) {
	prev, err := e.store.LatestIndexValue(ctx, def.Code)
	if err != nil {
		return nil, fmt.Errorf("latest value: %w", err)
	}
	if prev == nil {
		return &ValueResult{Value: e.base, Method: MethodBase, Total: len(constituents)}, nil
	}
	if SameDate(prev.Date, asOf) {
		return &ValueResult{Value: prev.Value, Method: MethodSameDate, Total: len(constituents)}, nil
	}

	ids := make([]string, len(constituents))
	weights := make(map[string]float64, len(constituents))
	for i, c := range constituents {
		ids[i] = c.ItemID
		weights[c.ItemID] = c.Weight
	}

	prevPrices, err := e.store.PricesBatch(ctx, ids, prev.Date)
	if err != nil {
		return nil, fmt.Errorf("prices at %s: %w", prev.Date.Format("2006-01-02"), err)
	}
	curPrices, err := e.store.PricesBatch(ctx, ids, asOf)
	if err != nil {
		return nil, fmt.Errorf("prices at %s: %w", asOf.Format("2006-01-02"), err)
	}

	var numer, denom float64
	matched := 0
	for _, id := range ids {
		p0, ok0 := prevPrices[id]
		p1, ok1 := curPrices[id]
		if !ok0 || !ok1 || p0 <= 0 {
			continue
		}
		w := weights[id]
		numer += w * p1
		denom += w * p0
		matched++
	}

	total := len(ids)
	if matched == 0 || denom <= 0 {
		return &ValueResult{
			Value:  prev.Value,
			Method: MethodFallback,
			Total:  total,
		}, nil
	}

	ratio := numer / denom
	method := MethodLaspeyres
	if float64(matched) < 0.5*float64(total) {
		method = MethodLaspeyresPartial
	}

	change := round4((ratio - 1) * 100)
	return &ValueResult{
		Value:     round4(prev.Value * ratio),
		Method:    method,
		Matched:   matched,
		Total:     total,
		Ratio:     ratio,
		ChangePct: &change,
	}, nil
}

// changeOver computes the percent change against the value on or
// before asOf minus days. Lookup failures leave the change unset.
func (e *Engine) changeOver(ctx context.Context, code string, asOf time.Time, days int, current float64) *float64 {
	ref, err := e.store.IndexValueOnOrBefore(ctx, code, asOf.AddDate(0, 0, -days))
	if err != nil || ref == nil || ref.Value <= 0 {
		return nil
	}
	change := round4((current/ref.Value - 1) * 100)
	return &change
}

// RunAll executes every definition, isolating failures so one broken
// index never blocks the rest.
func (e *Engine) RunAll(ctx context.Context, defs []config.IndexDefinition, asOf time.Time, candidates map[config.ItemType][]Candidate, force bool) []RunReport {
	reports := make([]RunReport, 0, len(defs))
	for _, def := range defs {
		outcome, err := e.Run(ctx, RunInput{
			Def:            def,
			AsOf:           asOf,
			Candidates:     candidates[def.Type],
			ForceRebalance: force,
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "index run failed", "index", def.Code, "error", err)
		}
		reports = append(reports, RunReport{IndexCode: def.Code, Outcome: outcome, Err: err})
	}
	return reports
}
