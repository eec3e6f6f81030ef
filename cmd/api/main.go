package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"creator-marketplace/internal/adapter/events"
	"creator-marketplace/internal/adapter/gateway"
	httpadp "creator-marketplace/internal/adapter/http"
	"creator-marketplace/internal/adapter/middleware"
	"creator-marketplace/internal/adapter/repository/mysql"
	"creator-marketplace/internal/config"
	"creator-marketplace/internal/domain/event"
	gatewayDomain "creator-marketplace/internal/domain/gateway"
	"creator-marketplace/internal/infrastructure/cache"
	"creator-marketplace/internal/infrastructure/db"
	"creator-marketplace/internal/usecase/contract"
	"creator-marketplace/internal/usecase/offer"
	"creator-marketplace/internal/usecase/payment"
	"creator-marketplace/internal/usecase/review"
	"creator-marketplace/internal/usecase/withdrawal"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.LoadPolicy(); err != nil {
		fatal(logger, "load policy", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid config", err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		fatal(logger, "open database", err)
	}
	if cfg.AutoMigrate {
		if err := mysql.AutoMigrate(gdb); err != nil {
			fatal(logger, "migrate", err)
		}
	}
	rdb, err := cache.Open(context.Background(), cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		fatal(logger, "open redis", err)
	}

	sink, closeSink := newSink(cfg, logger)
	processor := payment.NewProcessor(newGateway(cfg), payment.Options{
		Timeout:     cfg.GatewayTimeout,
		MaxAttempts: cfg.GatewayMaxAttempts,
		Backoff:     cfg.GatewayRetryBackoff,
	}, logger)

	tx := mysql.NewGormUoW(gdb)
	users := mysql.NewUserRepository(gdb)
	contracts := mysql.NewContractRepository(gdb)
	escrow := payment.NewEscrow(tx, processor, logger)

	offerUC := offer.NewUsecase(tx, mysql.NewOfferRepository(gdb), escrow,
		offer.Policy{Pricing: cfg.Policy.Pricing, TTL: cfg.Policy.OfferTTL}, sink, logger)
	contractUC := contract.NewUsecase(tx, contracts, mysql.NewPaymentRepository(gdb), escrow, cfg.Policy.Pricing, sink, logger)
	reviewUC := review.NewUsecase(tx, mysql.NewReviewRepository(gdb), contracts, sink, logger)
	withdrawalUC := withdrawal.NewUsecase(tx, mysql.NewWithdrawalRepository(gdb), mysql.NewBalanceRepository(gdb),
		processor, cfg.Policy.Withdrawals, sink, logger)

	sqlDB, err := gdb.DB()
	if err != nil {
		fatal(logger, "database handle", err)
	}
	health := httpadp.NewHandler(map[string]httpadp.Pinger{
		"database": sqlDB.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	httpadp.Register(e, httpadp.Handlers{
		Health:      health,
		Offers:      httpadp.NewOfferHandler(offerUC, logger),
		Contracts:   httpadp.NewContractHandler(contractUC, logger),
		Reviews:     httpadp.NewReviewHandler(reviewUC, logger),
		Withdrawals: httpadp.NewWithdrawalHandler(withdrawalUC, logger),
	},
		middleware.Actor(users),
		middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if err := closeSink(shutdownCtx); err != nil {
		logger.Error("flush events", "error", err)
	}
	_ = rdb.Close()
	_ = sqlDB.Close()
}

func newGateway(cfg *config.Config) gatewayDomain.Gateway {
	if cfg.GatewayMode == "http" {
		return gateway.NewHTTPClient(cfg.GatewayURL, cfg.GatewayAPIKey, &http.Client{Timeout: cfg.GatewayTimeout})
	}
	return gateway.NewSimulated(cfg.GatewaySimDelay)
}

// newSink returns the configured event sink behind an async queue, and a
// function that drains it.
func newSink(cfg *config.Config, logger *slog.Logger) (event.Sink, func(context.Context) error) {
	var next event.Sink
	closeNext := func() error { return nil }
	switch cfg.EventSink {
	case "none":
		return event.Discard, func(context.Context) error { return nil }
	case "kafka":
		k, err := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			fatal(logger, "kafka sink", err)
		}
		next, closeNext = k, k.Close
	default:
		next = events.NewLogSink(logger)
	}
	async := events.NewAsync(next, cfg.EventQueueSize, logger)
	return async, func(ctx context.Context) error {
		return errors.Join(async.Close(ctx), closeNext())
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
