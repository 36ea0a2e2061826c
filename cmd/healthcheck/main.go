// Command healthcheck probes the pipeline: database connectivity,
// price and index freshness, and constituent snapshot integrity. A
// failing probe notifies the operations webhook and exits non-zero.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"tcgindex/internal/config"
	"tcgindex/internal/health"
	"tcgindex/internal/infrastructure"
	"tcgindex/internal/notify"
	"tcgindex/internal/store"
)

func main() {
	quiet := flag.Bool("quiet", false, "suppress the success notification")
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
		notify.New(cfg.Discord, logger).Failure(ctx, "Healthcheck", "database connection failed: "+err.Error())
		os.Exit(1)
	}
	st := store.New(db, logger)
	notifier := notify.New(cfg.Discord, logger)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("could not access connection pool", "error", err)
		os.Exit(1)
	}

	checker := health.NewChecker(sqlDB, st, config.DefaultIndexes(), logger)
	results := checker.RunAll(ctx)

	for _, r := range results {
		if r.OK {
			logger.Info("check passed", "check", r.Name, "detail", r.Message)
		} else {
			logger.Error("check failed", "check", r.Name, "detail", r.Message)
		}
	}

	summary := health.Summary(results)
	if !health.Healthy(results) {
		notifier.Failure(ctx, "Healthcheck", summary)
		os.Exit(1)
	}
	if !*quiet {
		notifier.Success(ctx, "Healthcheck", summary)
	}
}
