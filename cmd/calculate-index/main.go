// Command calculate-index runs the daily index calculation: a
// monthly rebalance when due, then a chain-linked value for each
// published index.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tcgindex/internal/config"
	"tcgindex/internal/index"
	"tcgindex/internal/infrastructure"
	"tcgindex/internal/liquidity"
	"tcgindex/internal/notify"
	"tcgindex/internal/store"
)

func main() {
	rebalance := flag.Bool("rebalance", false, "force monthly rebalancing")
	dateFlag := flag.String("date", "", "calculation date YYYY-MM-DD (defaults to the latest price date)")
	yes := flag.Bool("yes", false, "skip the forced-rebalance confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	infrastructure.InitializeLogger(cfg.Logging)

	ctx := infrastructure.EnsureRunID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	if *rebalance && !*yes {
		if !confirm("Forced rebalance replaces the current month's baskets. Continue? [y/N] ") {
			logger.Info("forced rebalance aborted")
			return
		}
	}

	db, err := store.Connect(cfg.Database)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db, logger)
	notifier := notify.New(cfg.Discord, logger)

	runID := st.StartRun(ctx, "calculate_index")

	asOf, err := resolveDate(ctx, st, *dateFlag)
	if err != nil {
		logger.Error("could not resolve calculation date", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		os.Exit(1)
	}
	logger.Info("starting calculation",
		"date", asOf.Format("2006-01-02"),
		"force_rebalance", *rebalance)

	candidates, err := st.Candidates(ctx, asOf)
	if err != nil {
		logger.Error("could not load candidates", "error", err)
		st.FinishRun(ctx, runID, store.RunStatusFailed, 0, 0, err, nil)
		notifier.Failure(ctx, "Index Calculation Failed", err.Error())
		os.Exit(1)
	}
	logger.Info("candidate universe loaded", "candidates", len(candidates))

	scorer, err := liquidity.NewScorer(liquidity.DefaultParams(), logger)
	if err != nil {
		logger.Error("invalid scoring parameters", "error", err)
		os.Exit(1)
	}
	selector := index.NewSelector(scorer, st, config.DefaultOutlierRules(), logger)
	engine := index.NewEngine(st, selector, logger)

	byType := map[config.ItemType][]index.Candidate{
		config.ItemTypeCard: candidates,
	}
	var defs []config.IndexDefinition
	for _, def := range config.DefaultIndexes() {
		if len(byType[def.Type]) == 0 {
			logger.Warn("skipping index, no candidate universe", "index", def.Code, "type", def.Type)
			continue
		}
		defs = append(defs, def)
	}
	reports := engine.RunAll(ctx, defs, asOf, byType, *rebalance)

	succeeded, failed := 0, 0
	var lines []string
	for _, r := range reports {
		if r.Err != nil {
			failed++
			lines = append(lines, fmt.Sprintf("❌ %s: %v", r.IndexCode, r.Err))
			continue
		}
		succeeded++
		lines = append(lines, fmt.Sprintf("✅ %s: %.4f (%s)", r.IndexCode, r.Outcome.Value, r.Outcome.Method))
	}

	status := store.RunStatusSuccess
	switch {
	case succeeded == 0:
		status = store.RunStatusFailed
	case failed > 0:
		status = store.RunStatusPartial
	}
	st.FinishRun(ctx, runID, status, succeeded, failed, nil, map[string]any{
		"date": asOf.Format("2006-01-02"),
	})

	summary := strings.Join(lines, "\n")
	if failed == 0 {
		notifier.Success(ctx, "Index Calculation", summary)
	} else {
		notifier.Failure(ctx, "Index Calculation", summary)
	}
	logger.Info("calculation finished", "succeeded", succeeded, "failed", failed)

	if succeeded == 0 {
		os.Exit(1)
	}
}

// resolveDate returns the explicit date when given, otherwise the
// latest date the price table covers.
func resolveDate(ctx context.Context, st *store.Store, explicit string) (time.Time, error) {
	if explicit != "" {
		d, err := time.Parse("2006-01-02", explicit)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad --date %q: %w", explicit, err)
		}
		return d.UTC(), nil
	}
	latest, err := st.LatestPriceDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("no price data available")
	}
	return latest, nil
}

func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
