// Command fetch-fx pulls EUR/USD rates from the Frankfurter API,
// backfilling any gap since the last stored rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tcgindex/internal/config"
	"tcgindex/internal/fetch"
	"tcgindex/internal/infrastructure"
	"tcgindex/internal/notify"
	"tcgindex/internal/store"
)

func main() {
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
	notifier := notify.New(cfg.Discord, logger)
	client := fetch.NewFXClient(cfg.FX, logger)

	runID := st.StartRun(ctx, "fetch_fx_rates")

	latest, err := client.Latest(ctx)
	if err != nil {
		logger.Error("fx fetch failed", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "FX Fetch Failed", err.Error())
		os.Exit(1)
	}
	logger.Info("latest rate fetched",
		"rate", latest.Rate,
		"date", latest.RateDate.Format("2006-01-02"))

	rates := []store.FXRateDaily{latest}

	// Backfill the gap since the last stored rate. Weekends have no
	// rate, so a gap of a day or two is normal.
	last, ok, err := st.LatestFXRate(ctx, "USD")
	if err != nil {
		logger.Warn("could not read last stored rate", "error", err)
	} else if ok && latest.RateDate.Sub(last.RateDate) > 24*time.Hour {
		start := last.RateDate.AddDate(0, 0, 1)
		end := latest.RateDate.AddDate(0, 0, -1)
		if !start.After(end) {
			backfill, err := client.Range(ctx, start, end)
			if err != nil {
				logger.Warn("backfill fetch failed", "error", err)
			} else {
				rates = append(rates, backfill...)
				logger.Info("backfilling fx gap", "days", len(backfill))
			}
		}
	}

	saved, err := st.SaveFXRates(ctx, rates)
	if err != nil {
		logger.Error("fx save failed", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "FX Fetch Failed", err.Error())
		os.Exit(1)
	}

	st.FinishRun(ctx, runID, store.RunStatusSuccess, saved, 0, nil, map[string]any{
		"latest_rate": latest.Rate,
	})
	notifier.Success(ctx, "FX Fetch",
		fmt.Sprintf("EUR/USD = %.4f (%s), %d rates saved", latest.Rate, latest.RateDate.Format("2006-01-02"), saved))
	logger.Info("fx fetch finished", "saved", saved)
}
