package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tcgindex/internal/index"
)

// WorkbookExporter writes the full index report as a single xlsx
// workbook: one Values sheet per index plus one Constituents sheet
// per index for the latest period.
type WorkbookExporter struct {
	baseDir string
	logger  *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter.
func NewWorkbookExporter(baseDir string, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{baseDir: baseDir, logger: logger}
}

// IndexSection is one index's contribution to the workbook.
type IndexSection struct {
	IndexCode    string
	Values       []index.Value
	Constituents []index.Constituent
}

// Export writes the workbook under the reports directory and returns
// the written path.
func (e *WorkbookExporter) Export(name string, sections []IndexSection) (string, error) {
	if err := os.MkdirAll(e.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, section := range sections {
		if err := e.writeValuesSheet(f, section); err != nil {
			return "", err
		}
		if len(section.Constituents) > 0 {
			if err := e.writeConstituentsSheet(f, section); err != nil {
				return "", err
			}
		}
	}

	// Drop the default sheet once real ones exist.
	if len(sections) > 0 {
		f.DeleteSheet("Sheet1")
	}

	fullPath := filepath.Join(e.baseDir, name)
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	e.logger.Info("report workbook written",
		slog.String("path", fullPath),
		slog.Int("indexes", len(sections)))
	return fullPath, nil
}

func (e *WorkbookExporter) writeValuesSheet(f *excelize.File, section IndexSection) error {
	sheet := section.IndexCode
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Date", "Value", "Constituents", "Market Cap", "1D %", "1W %", "1M %"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, v := range section.Values {
		values := []any{
			v.Date.Format("2006-01-02"),
			v.Value,
			v.NConstituents,
			v.MarketCap,
			optCell(v.Change1D),
			optCell(v.Change1W),
			optCell(v.Change1M),
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, val)
		}
	}
	return nil
}

func (e *WorkbookExporter) writeConstituentsSheet(f *excelize.File, section IndexSection) error {
	sheet := section.IndexCode + " Basket"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Rank", "Item", "Type", "Price", "Liquidity", "Method", "Weight", "New"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, c := range section.Constituents {
		values := []any{
			c.Rank,
			c.ItemID,
			c.ItemType,
			c.CompositePrice,
			c.LiquidityScore,
			c.LiquidityMethod.String(),
			c.Weight,
			c.IsNew,
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, val)
		}
	}
	return nil
}

func optCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
