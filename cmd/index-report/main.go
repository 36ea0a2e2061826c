// Command index-report exports the published index series: one CSV
// per index for values and the current basket, plus a combined xlsx
// workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tcgindex/internal/config"
	"tcgindex/internal/exporter"
	"tcgindex/internal/index"
	"tcgindex/internal/infrastructure"
	"tcgindex/internal/store"
)

func main() {
	outName := flag.String("out", "", "workbook file name (defaults to index_report_YYYY-MM-DD.xlsx)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	infrastructure.InitializeLogger(cfg.Logging)

	ctx := infrastructure.EnsureRunID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	db, err := store.Connect(cfg.Database)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db, logger)

	csvWriter := exporter.NewCSVWriter(cfg.Reports.Dir, logger)
	valuesExporter := exporter.NewValuesExporter(csvWriter)
	workbook := exporter.NewWorkbookExporter(cfg.Reports.Dir, logger)

	period := index.MonthStart(time.Now().UTC())
	var sections []exporter.IndexSection
	failed := 0

	for _, def := range config.DefaultIndexes() {
		values, err := st.IndexValues(ctx, def.Code)
		if err != nil {
			logger.Error("could not load value history", "index", def.Code, "error", err)
			failed++
			continue
		}
		if len(values) == 0 {
			logger.Info("index has no history yet", "index", def.Code)
			continue
		}
		constituents, err := st.Constituents(ctx, def.Code, period)
		if err != nil {
			logger.Error("could not load constituents", "index", def.Code, "error", err)
			failed++
			continue
		}

		if err := valuesExporter.ExportValues(def.Code, values); err != nil {
			logger.Error("value export failed", "index", def.Code, "error", err)
			failed++
		}
		if len(constituents) > 0 {
			if err := valuesExporter.ExportConstituents(def.Code, period.Format("2006-01"), constituents); err != nil {
				logger.Error("constituent export failed", "index", def.Code, "error", err)
				failed++
			}
		}
		sections = append(sections, exporter.IndexSection{
			IndexCode:    def.Code,
			Values:       values,
			Constituents: constituents,
		})
	}

	if len(sections) == 0 {
		logger.Error("nothing to export")
		os.Exit(1)
	}

	name := *outName
	if name == "" {
		name = fmt.Sprintf("index_report_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	}
	path, err := workbook.Export(name, sections)
	if err != nil {
		logger.Error("workbook export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("report finished", "workbook", path, "indexes", len(sections), "failures", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
