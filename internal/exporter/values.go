package exporter

import (
	"fmt"

	"tcgindex/internal/index"
)

// ValuesExporter writes index value history as CSV, one file per
// index.
type ValuesExporter struct {
	csvWriter *CSVWriter
}

// NewValuesExporter creates a values exporter.
func NewValuesExporter(csvWriter *CSVWriter) *ValuesExporter {
	return &ValuesExporter{csvWriter: csvWriter}
}

var valueHeaders = []string{
	"date", "index_value", "n_constituents", "market_cap",
	"change_1d_pct", "change_1w_pct", "change_1m_pct",
}

// ExportValues writes one index's value history, oldest first.
func (e *ValuesExporter) ExportValues(indexCode string, values []index.Value) error {
	records := make([][]string, len(values))
	for i, v := range values {
		records[i] = []string{
			v.Date.Format("2006-01-02"),
			formatFloat(v.Value, 4),
			formatInt(v.NConstituents),
			formatFloat(v.MarketCap, 2),
			formatOptFloat(v.Change1D, 4),
			formatOptFloat(v.Change1W, 4),
			formatOptFloat(v.Change1M, 4),
		}
	}
	name := fmt.Sprintf("index_values_%s.csv", indexCode)
	return e.csvWriter.WriteCSV(name, WriteOptions{
		Headers:   valueHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

var constituentHeaders = []string{
	"rank", "item_id", "item_type", "composite_price",
	"liquidity_score", "liquidity_method", "ranking_score", "weight", "is_new",
}

// ExportConstituents writes one index's basket snapshot for a period.
func (e *ValuesExporter) ExportConstituents(indexCode string, period string, constituents []index.Constituent) error {
	records := make([][]string, len(constituents))
	for i, c := range constituents {
		isNew := ""
		if c.IsNew {
			isNew = "true"
		}
		records[i] = []string{
			formatInt(c.Rank),
			c.ItemID,
			c.ItemType,
			formatFloat(c.CompositePrice, 2),
			formatFloat(c.LiquidityScore, 4),
			c.LiquidityMethod.String(),
			formatFloat(c.RankingScore, 4),
			formatFloat(c.Weight, 8),
			isNew,
		}
	}
	name := fmt.Sprintf("constituents_%s_%s.csv", indexCode, period)
	return e.csvWriter.WriteCSV(name, WriteOptions{
		Headers:   constituentHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
