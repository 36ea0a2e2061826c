package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgindex/internal/config"
	"tcgindex/internal/liquidity"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	prices    map[string]map[string]float64 // date key -> item ID -> price
	values    []Value
	snapshots map[string][]Constituent

	savedValues   []Value
	snapshotSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prices:    map[string]map[string]float64{},
		snapshots: map[string][]Constituent{},
	}
}

func dateKey(d time.Time) string { return d.UTC().Format("2006-01-02") }

func snapKey(code string, period time.Time) string {
	return code + "|" + period.UTC().Format("2006-01")
}

func (f *fakeStore) setPrice(itemID string, date time.Time, price float64) {
	day := f.prices[dateKey(date)]
	if day == nil {
		day = map[string]float64{}
		f.prices[dateKey(date)] = day
	}
	day[itemID] = price
}

func (f *fakeStore) Price(_ context.Context, itemID string, date time.Time) (float64, bool, error) {
	p, ok := f.prices[dateKey(date)][itemID]
	return p, ok, nil
}

func (f *fakeStore) PricesBatch(_ context.Context, itemIDs []string, date time.Time) (map[string]float64, error) {
	out := map[string]float64{}
	for _, id := range itemIDs {
		if p, ok := f.prices[dateKey(date)][id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeStore) LatestIndexValue(_ context.Context, code string) (*Value, error) {
	var latest *Value
	for i := range f.values {
		v := &f.values[i]
		if v.IndexCode != code {
			continue
		}
		if latest == nil || v.Date.After(latest.Date) {
			latest = v
		}
	}
	return latest, nil
}

func (f *fakeStore) IndexValueOnOrBefore(_ context.Context, code string, date time.Time) (*Value, error) {
	var best *Value
	for i := range f.values {
		v := &f.values[i]
		if v.IndexCode != code || v.Date.After(date) {
			continue
		}
		if best == nil || v.Date.After(best.Date) {
			best = v
		}
	}
	return best, nil
}

func (f *fakeStore) Constituents(_ context.Context, code string, period time.Time) ([]Constituent, error) {
	return f.snapshots[snapKey(code, period)], nil
}

func (f *fakeStore) SaveConstituents(_ context.Context, code string, period time.Time, cs []Constituent) (int, error) {
	f.snapshots[snapKey(code, period)] = cs
	f.snapshotSaves++
	return len(cs), nil
}

func (f *fakeStore) SaveIndexValue(_ context.Context, v Value) error {
	f.values = append(f.values, v)
	f.savedValues = append(f.savedValues, v)
	return nil
}

func newTestEngine(t *testing.T, store *fakeStore, windows map[string][]liquidity.DayObservation) *Engine {
	t.Helper()
	scorer, err := liquidity.NewScorer(liquidity.DefaultParams(), nil)
	require.NoError(t, err)
	selector := NewSelector(scorer, &fakeSignals{windows: windows}, config.DefaultOutlierRules(), nil)
	return NewEngine(store, selector, nil)
}

func storedBasket(code string, period time.Time, items map[string]float64) []Constituent {
	cs := make([]Constituent, 0, len(items))
	rank := 1
	var total float64
	for _, w := range items {
		total += w
	}
	for id, w := range items {
		cs = append(cs, Constituent{
			IndexCode:      code,
			Period:         period,
			ItemID:         id,
			CompositePrice: 10,
			LiquidityScore: 0.8,
			Rank:           rank,
			Weight:         w / total,
		})
		rank++
	}
	return cs
}

func TestRun_InceptionStartsAtBase(t *testing.T) {
	asOf := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	def := testDef()
	store := newFakeStore()
	windows := map[string][]liquidity.DayObservation{"card-a": liquidWindow(30, 10)}
	engine := newTestEngine(t, store, windows)

	outcome, err := engine.Run(context.Background(), RunInput{
		Def:  def,
		AsOf: asOf,
		Candidates: []Candidate{
			{ItemID: "card-a", Rarity: "Rare", RefPrice: 25, ReleaseDate: seasoned(asOf, def)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, config.BaseValue, outcome.Value)
	assert.Equal(t, MethodBase, outcome.Method)
	assert.True(t, outcome.Rebalanced)
	require.Len(t, store.savedValues, 1)
	assert.Equal(t, 100.0, store.savedValues[0].Value)
	assert.Equal(t, 1, store.savedValues[0].NConstituents)
}

func TestRun_SameDateIsNoOp(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	def := testDef()
	store := newFakeStore()
	store.values = append(store.values, Value{IndexCode: def.Code, Date: asOf, Value: 104.5})
	store.snapshots[snapKey(def.Code, MonthStart(asOf))] = storedBasket(def.Code, MonthStart(asOf), map[string]float64{"card-a": 1})
	engine := newTestEngine(t, store, nil)

	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf})
	require.NoError(t, err)

	assert.Equal(t, MethodSameDate, outcome.Method)
	assert.Equal(t, 104.5, outcome.Value)
	assert.Empty(t, store.savedValues)
}

func TestRun_LaspeyresChainLink(t *testing.T) {
	prevDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	asOf := prevDate.AddDate(0, 0, 1)
	def := testDef()

	store := newFakeStore()
	store.values = append(store.values, Value{IndexCode: def.Code, Date: prevDate, Value: 100})
	store.snapshots[snapKey(def.Code, MonthStart(asOf))] = storedBasket(def.Code, MonthStart(asOf), map[string]float64{"card-a": 1})
	store.setPrice("card-a", prevDate, 10)
	store.setPrice("card-a", asOf, 15)
	engine := newTestEngine(t, store, nil)

	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf})
	require.NoError(t, err)

	assert.Equal(t, MethodLaspeyres, outcome.Method)
	assert.InDelta(t, 150.0, outcome.Value, 1e-9)
	require.NotNil(t, outcome.ChangePct)
	assert.InDelta(t, 50.0, *outcome.ChangePct, 1e-9)
	assert.False(t, outcome.Rebalanced)
}

func TestRun_PartialMatchBelowHalf(t *testing.T) {
	prevDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	asOf := prevDate.AddDate(0, 0, 1)
	def := testDef()

	store := newFakeStore()
	store.values = append(store.values, Value{IndexCode: def.Code, Date: prevDate, Value: 100})
	store.snapshots[snapKey(def.Code, MonthStart(asOf))] = storedBasket(def.Code, MonthStart(asOf),
		map[string]float64{"card-a": 1, "card-b": 1, "card-c": 1})
	// Only one of three constituents is priced on both days.
	store.setPrice("card-a", prevDate, 10)
	store.setPrice("card-a", asOf, 15)
	store.setPrice("card-b", prevDate, 40)
	engine := newTestEngine(t, store, nil)

	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf})
	require.NoError(t, err)

	assert.Equal(t, MethodLaspeyresPartial, outcome.Method)
	assert.InDelta(t, 150.0, outcome.Value, 1e-9)
	require.Len(t, store.savedValues, 1)
}

func TestRun_FallbackCarriesValueForward(t *testing.T) {
	prevDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	asOf := prevDate.AddDate(0, 0, 1)
	def := testDef()

	store := newFakeStore()
	store.values = append(store.values, Value{IndexCode: def.Code, Date: prevDate, Value: 97.1234})
	store.snapshots[snapKey(def.Code, MonthStart(asOf))] = storedBasket(def.Code, MonthStart(asOf), map[string]float64{"card-a": 1})
	engine := newTestEngine(t, store, nil)

	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf})
	require.NoError(t, err)

	assert.Equal(t, MethodFallback, outcome.Method)
	assert.Equal(t, 97.1234, outcome.Value)
	assert.Nil(t, outcome.ChangePct)
}

func TestRun_RebalanceIsIdempotent(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	def := testDef()
	store := newFakeStore()
	windows := map[string][]liquidity.DayObservation{"card-a": liquidWindow(30, 10)}
	candidates := []Candidate{
		{ItemID: "card-a", Rarity: "Rare", RefPrice: 25, ReleaseDate: seasoned(asOf, def)},
	}
	engine := newTestEngine(t, store, windows)

	_, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf, Candidates: candidates})
	require.NoError(t, err)
	assert.Equal(t, 1, store.snapshotSaves)

	// Next day, same month: snapshot reused.
	store.setPrice("card-a", asOf, 25)
	store.setPrice("card-a", asOf.AddDate(0, 0, 1), 26)
	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf.AddDate(0, 0, 1), Candidates: candidates})
	require.NoError(t, err)
	assert.Equal(t, 1, store.snapshotSaves)
	assert.False(t, outcome.Rebalanced)

	// Forced rebalance writes again.
	outcome, err = engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf.AddDate(0, 0, 2), Candidates: candidates, ForceRebalance: true})
	require.NoError(t, err)
	assert.Equal(t, 2, store.snapshotSaves)
	assert.True(t, outcome.Rebalanced)
}

func TestRun_NewMonthMarksTurnover(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	def := testDef()
	store := newFakeStore()
	store.snapshots[snapKey(def.Code, PrevMonthStart(asOf))] = storedBasket(def.Code, PrevMonthStart(asOf), map[string]float64{"card-a": 1})
	windows := map[string][]liquidity.DayObservation{
		"card-a": liquidWindow(30, 10),
		"card-b": liquidWindow(30, 10),
	}
	candidates := []Candidate{
		{ItemID: "card-a", Rarity: "Rare", RefPrice: 25, ReleaseDate: seasoned(asOf, def)},
		{ItemID: "card-b", Rarity: "Rare", RefPrice: 30, ReleaseDate: seasoned(asOf, def)},
	}
	engine := newTestEngine(t, store, windows)

	_, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf, Candidates: candidates})
	require.NoError(t, err)

	saved := store.snapshots[snapKey(def.Code, MonthStart(asOf))]
	require.Len(t, saved, 2)
	byID := map[string]Constituent{}
	for _, c := range saved {
		byID[c.ItemID] = c
	}
	assert.False(t, byID["card-a"].IsNew)
	assert.True(t, byID["card-b"].IsNew)
	assert.InDelta(t, 1.0, byID["card-a"].Weight+byID["card-b"].Weight, 1e-3)
}

func TestRun_DegenerateSelectionReusesPreviousBasket(t *testing.T) {
	prevDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	def := testDef()

	store := newFakeStore()
	store.values = append(store.values, Value{IndexCode: def.Code, Date: prevDate, Value: 100})
	store.snapshots[snapKey(def.Code, PrevMonthStart(asOf))] = storedBasket(def.Code, PrevMonthStart(asOf), map[string]float64{"card-a": 1})
	store.setPrice("card-a", prevDate, 10)
	store.setPrice("card-a", asOf, 11)
	engine := newTestEngine(t, store, nil)

	// No eligible candidates this month; the July basket keeps the
	// series alive and nothing is written for August.
	outcome, err := engine.Run(context.Background(), RunInput{Def: def, AsOf: asOf})
	require.NoError(t, err)

	assert.False(t, outcome.Rebalanced)
	assert.Equal(t, MethodLaspeyres, outcome.Method)
	assert.InDelta(t, 110.0, outcome.Value, 1e-9)
	assert.Empty(t, store.snapshots[snapKey(def.Code, MonthStart(asOf))])
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	healthy := testDef()
	broken := testDef()
	broken.Code = "SEALED_100"
	broken.Type = config.ItemTypeSealed

	store := newFakeStore()
	windows := map[string][]liquidity.DayObservation{"card-a": liquidWindow(30, 10)}
	engine := newTestEngine(t, store, windows)

	candidates := map[config.ItemType][]Candidate{
		config.ItemTypeCard: {
			{ItemID: "card-a", Rarity: "Rare", RefPrice: 25, ReleaseDate: seasoned(asOf, healthy)},
		},
	}
	reports := engine.RunAll(context.Background(), []config.IndexDefinition{healthy, broken}, asOf, candidates, false)

	require.Len(t, reports, 2)
	assert.NoError(t, reports[0].Err)
	assert.NotNil(t, reports[0].Outcome)
	assert.Error(t, reports[1].Err)
	assert.Nil(t, reports[1].Outcome)
}
