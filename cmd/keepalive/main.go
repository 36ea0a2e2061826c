// Command keepalive pings the database with a trivial query so the
// managed free tier never pauses the project for inactivity.
package main

import (
	"context"
	"log/slog"
	"os"

	"tcgindex/internal/config"
	"tcgindex/internal/infrastructure"
	"tcgindex/internal/store"
)

func main() {
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
		logger.Error("keepalive failed", "error", err)
		os.Exit(1)
	}

	n, err := store.New(db, logger).CountSets(ctx)
	if err != nil {
		logger.Error("keepalive query failed", "error", err)
		os.Exit(1)
	}
	logger.Info("keepalive OK", "sets", n)
}
