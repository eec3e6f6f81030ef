// Command sweeper marks pending offers past their expiry as expired. It is
// meant to run on a schedule; each run handles at most SWEEP_BATCH offers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"creator-marketplace/internal/adapter/events"
	"creator-marketplace/internal/adapter/repository/mysql"
	"creator-marketplace/internal/config"
	"creator-marketplace/internal/infrastructure/db"
	"creator-marketplace/internal/usecase/offer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("module", "sweeper")

	cfg := config.Load()
	if err := cfg.LoadPolicy(); err != nil {
		logger.Error("load policy", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// escrow is only used by Accept, which the sweeper never calls
	uc := offer.NewUsecase(mysql.NewGormUoW(gdb), mysql.NewOfferRepository(gdb), nil,
		offer.Policy{Pricing: cfg.Policy.Pricing, TTL: cfg.Policy.OfferTTL},
		events.NewLogSink(logger), logger)

	n, err := uc.ExpireStale(ctx, cfg.SweepBatch)
	if err != nil {
		logger.Error("expire stale offers", "expired", n, "error", err)
		os.Exit(1)
	}
	logger.Info("expire stale offers", "expired", n)
}
