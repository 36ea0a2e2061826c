// Command fetch-cards refreshes the set and card catalogs from the
// upstream tracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

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
	client := fetch.NewPriceTrackerClient(cfg.PriceTracker, logger)

	runID := st.StartRun(ctx, "fetch_cards")

	sets, err := client.Sets(ctx)
	if err != nil {
		logger.Error("set catalog fetch failed", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "Catalog Fetch Failed", err.Error())
		os.Exit(1)
	}
	savedSets, err := st.SaveSets(ctx, sets)
	if err != nil {
		logger.Error("set catalog save failed", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "Catalog Fetch Failed", err.Error())
		os.Exit(1)
	}
	logger.Info("set catalog refreshed", "sets", savedSets)

	savedCards, failedSets := 0, 0
	for _, set := range sets {
		cards, err := client.CardsInSet(ctx, set.Name)
		if err != nil {
			logger.Warn("card fetch failed", "set", set.Name, "error", err)
			failedSets++
			continue
		}
		rows := fetch.ExtractCatalog(cards, config.IsRareOrBetter)
		n, err := st.SaveCards(ctx, rows)
		if err != nil {
			logger.Warn("card save failed", "set", set.Name, "error", err)
			failedSets++
			continue
		}
		savedCards += n
	}

	status := store.RunStatusSuccess
	if failedSets > 0 {
		status = store.RunStatusPartial
	}
	st.FinishRun(ctx, runID, status, savedCards, failedSets, nil, map[string]any{
		"sets": savedSets,
	})

	summary := fmt.Sprintf("%d sets, %d cards refreshed, %d sets failed", savedSets, savedCards, failedSets)
	notifier.Success(ctx, "Catalog Fetch", summary)
	logger.Info("catalog fetch finished", "sets", savedSets, "cards", savedCards, "failed_sets", failedSets)
}
