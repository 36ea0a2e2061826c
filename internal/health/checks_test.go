package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgindex/internal/config"
	"tcgindex/internal/index"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeData struct {
	priceDate    time.Time
	latestValues map[string]*index.Value
	snapshots    map[string][]index.Constituent
}

func (f *fakeData) LatestPriceDate(context.Context) (time.Time, error) {
	return f.priceDate, nil
}

func (f *fakeData) LatestIndexValue(_ context.Context, code string) (*index.Value, error) {
	return f.latestValues[code], nil
}

func (f *fakeData) Constituents(_ context.Context, code string, _ time.Time) ([]index.Constituent, error) {
	return f.snapshots[code], nil
}

func smallDef() config.IndexDefinition {
	return config.IndexDefinition{Code: "RARE_100", BasketSize: 2}
}

func newTestChecker(ping Pinger, data DataSource, now time.Time) *Checker {
	c := NewChecker(ping, data, []config.IndexDefinition{smallDef()}, nil)
	c.now = func() time.Time { return now }
	return c
}

func TestCheckDatabase(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	ok := newTestChecker(fakePinger{}, &fakeData{}, now).CheckDatabase(context.Background())
	assert.True(t, ok.OK)

	bad := newTestChecker(fakePinger{err: errors.New("refused")}, &fakeData{}, now).CheckDatabase(context.Background())
	assert.False(t, bad.OK)
	assert.Contains(t, bad.Message, "refused")
}

func TestCheckPriceFreshness(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	t.Run("two day lag is not stale", func(t *testing.T) {
		data := &fakeData{priceDate: now.AddDate(0, 0, -4)}
		got := newTestChecker(fakePinger{}, data, now).CheckPriceFreshness(context.Background())
		assert.True(t, got.OK)
	})

	t.Run("beyond allowance is stale", func(t *testing.T) {
		data := &fakeData{priceDate: now.AddDate(0, 0, -7)}
		got := newTestChecker(fakePinger{}, data, now).CheckPriceFreshness(context.Background())
		assert.False(t, got.OK)
		assert.Contains(t, got.Message, "stale")
	})

	t.Run("empty table fails", func(t *testing.T) {
		got := newTestChecker(fakePinger{}, &fakeData{}, now).CheckPriceFreshness(context.Background())
		assert.False(t, got.OK)
	})
}

func TestCheckIndexFreshness(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	t.Run("recent value passes", func(t *testing.T) {
		data := &fakeData{latestValues: map[string]*index.Value{
			"RARE_100": {IndexCode: "RARE_100", Date: now.AddDate(0, 0, -1), Value: 104.57},
		}}
		got := newTestChecker(fakePinger{}, data, now).CheckIndexFreshness(context.Background())
		assert.True(t, got.OK)
		assert.Contains(t, got.Message, "104.57")
	})

	t.Run("never calculated fails", func(t *testing.T) {
		got := newTestChecker(fakePinger{}, &fakeData{}, now).CheckIndexFreshness(context.Background())
		assert.False(t, got.OK)
		assert.Contains(t, got.Message, "never calculated")
	})
}

func TestCheckConstituents(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	t.Run("full basket with unit weights passes", func(t *testing.T) {
		data := &fakeData{snapshots: map[string][]index.Constituent{
			"RARE_100": {{Weight: 0.6}, {Weight: 0.4}},
		}}
		got := newTestChecker(fakePinger{}, data, now).CheckConstituents(context.Background())
		assert.True(t, got.OK)
	})

	t.Run("wrong count flagged", func(t *testing.T) {
		data := &fakeData{snapshots: map[string][]index.Constituent{
			"RARE_100": {{Weight: 1.0}},
		}}
		got := newTestChecker(fakePinger{}, data, now).CheckConstituents(context.Background())
		assert.False(t, got.OK)
		assert.Contains(t, got.Message, "1/2")
	})

	t.Run("weight drift flagged", func(t *testing.T) {
		data := &fakeData{snapshots: map[string][]index.Constituent{
			"RARE_100": {{Weight: 0.6}, {Weight: 0.5}},
		}}
		got := newTestChecker(fakePinger{}, data, now).CheckConstituents(context.Background())
		assert.False(t, got.OK)
		assert.Contains(t, got.Message, "weights sum")
	})
}

func TestSummaryAndHealthy(t *testing.T) {
	results := []CheckResult{
		{Name: "database", OK: true, Message: "connection OK"},
		{Name: "prices", OK: false, Message: "stale"},
	}
	require.False(t, Healthy(results))
	s := Summary(results)
	assert.Contains(t, s, "database: connection OK")
	assert.Contains(t, s, "prices: stale")
}
