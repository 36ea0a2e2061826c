// Command fetch-prices pulls the day's card prices, listings and
// consolidated sales volume from the upstream tracker, one set at a
// time, and upserts them into the daily price table.
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
	dateFlag := flag.String("date", "", "price date YYYY-MM-DD (defaults to today UTC)")
	allRarities := flag.Bool("all-rarities", false, "keep every rarity instead of rare-or-better only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	infrastructure.InitializeLogger(cfg.Logging)

	ctx := infrastructure.EnsureRunID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	priceDate := time.Now().UTC()
	if *dateFlag != "" {
		priceDate, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			logger.Error("bad --date", "value", *dateFlag, "error", err)
			os.Exit(1)
		}
	}

	db, err := store.Connect(cfg.Database)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db, logger)
	notifier := notify.New(cfg.Discord, logger)
	client := fetch.NewPriceTrackerClient(cfg.PriceTracker, logger)

	runID := st.StartRun(ctx, "fetch_prices")

	setNames, err := st.SetNames(ctx)
	if err != nil {
		logger.Error("could not list sets", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "Price Fetch Failed", err.Error())
		os.Exit(1)
	}
	logger.Info("fetching prices",
		"date", priceDate.Format("2006-01-02"),
		"sets", len(setNames))

	var allowRarity func(string) bool
	if !*allRarities {
		allowRarity = config.IsRareOrBetter
	}

	savedPrices, savedCards, failedSets, withVolume := 0, 0, 0, 0
	for _, setName := range setNames {
		cards, err := client.CardsInSet(ctx, setName)
		if err != nil {
			logger.Warn("set fetch failed", "set", setName, "error", err)
			failedSets++
			continue
		}
		result := fetch.ExtractSet(cards, priceDate, allowRarity)
		if n, err := st.SaveCards(ctx, result.Cards); err != nil {
			logger.Warn("card upsert failed", "set", setName, "error", err)
			failedSets++
		} else {
			savedCards += n
		}
		if n, err := st.SavePrices(ctx, result.Prices); err != nil {
			logger.Warn("price upsert failed", "set", setName, "error", err)
			failedSets++
		} else {
			savedPrices += n
		}
		withVolume += result.WithVolume
	}

	status := store.RunStatusSuccess
	switch {
	case savedPrices == 0:
		status = store.RunStatusFailed
	case failedSets > 0:
		status = store.RunStatusPartial
	}
	st.FinishRun(ctx, runID, status, savedPrices, failedSets, nil, map[string]any{
		"date":        priceDate.Format("2006-01-02"),
		"cards":       savedCards,
		"with_volume": withVolume,
	})

	summary := fmt.Sprintf("%d prices saved (%d with volume), %d sets failed", savedPrices, withVolume, failedSets)
	if status == store.RunStatusFailed {
		notifier.Failure(ctx, "Price Fetch", summary)
		logger.Error("price fetch failed", "summary", summary)
		os.Exit(1)
	}
	notifier.Success(ctx, "Price Fetch", summary)
	logger.Info("price fetch finished",
		"prices", savedPrices,
		"cards", savedCards,
		"with_volume", withVolume,
		"failed_sets", failedSets)
}
