package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tcgindex/internal/index"
	"tcgindex/internal/liquidity"
)

func TestWorkbookExport(t *testing.T) {
	dir := t.TempDir()
	e := NewWorkbookExporter(dir, nil)

	sections := []IndexSection{{
		IndexCode: "RARE_100",
		Values: []index.Value{{
			Date:          time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			Value:         104.5671,
			NConstituents: 100,
			MarketCap:     54321.5,
		}},
		Constituents: []index.Constituent{{
			Rank:            1,
			ItemID:          "sv8-123",
			ItemType:        "card",
			CompositePrice:  42.5,
			LiquidityScore:  0.81,
			LiquidityMethod: liquidity.MethodCombined,
			Weight:          0.0123,
		}},
	}}

	path, err := e.Export("report.xlsx", sections)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	val, err := f.GetCellValue("RARE_100", "B2")
	require.NoError(t, err)
	assert.Equal(t, "104.5671", val)

	item, err := f.GetCellValue("RARE_100 Basket", "B2")
	require.NoError(t, err)
	assert.Equal(t, "sv8-123", item)

	method, err := f.GetCellValue("RARE_100 Basket", "F2")
	require.NoError(t, err)
	assert.Equal(t, "combined", method)
}
