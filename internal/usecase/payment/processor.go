package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"creator-marketplace/internal/domain/apperr"
	"creator-marketplace/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrGatewayUnavailable is returned once every attempt ended without a verdict.
var ErrGatewayUnavailable = apperr.Gateway("payment gateway unavailable")

type Options struct {
	// Timeout bounds each attempt, not the whole call.
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultOptions() Options {
	return Options{Timeout: 10 * time.Second, MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// Processor wraps a Gateway with a per-attempt timeout and a retry budget.
// Declines are final; only unknown outcomes are retried.
type Processor struct {
	gw     gateway.Gateway
	opts   Options
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewProcessor(gw gateway.Gateway, opts Options, logger *slog.Logger) *Processor {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{gw: gw, opts: opts, logger: logger, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Processor) Charge(ctx context.Context, amount decimal.Decimal, methodRef string) (gateway.Result, error) {
	return p.do(ctx, "charge", func(ctx context.Context) (gateway.Result, error) {
		return p.gw.Charge(ctx, amount, methodRef)
	})
}

func (p *Processor) Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gateway.Result, error) {
	return p.do(ctx, "payout", func(ctx context.Context) (gateway.Result, error) {
		return p.gw.Payout(ctx, amount, method, details)
	})
}

func (p *Processor) do(ctx context.Context, op string, call func(context.Context) (gateway.Result, error)) (gateway.Result, error) {
	if _, ok := gateway.IdempotencyKey(ctx); !ok {
		ctx = gateway.WithIdempotencyKey(ctx, uuid.NewString())
	}
	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
		res, err := call(actx)
		cancel()
		if err == nil {
			return res, nil
		}
		lastErr = err
		p.logger.WarnContext(ctx, "gateway attempt failed",
			"module", "payment", "operation", op, "attempt", attempt, "error", err)

		if ctx.Err() != nil || attempt == p.opts.MaxAttempts {
			break
		}
		// linear backoff
		if err := p.sleep(ctx, p.opts.Backoff*time.Duration(attempt)); err != nil {
			break
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return gateway.Result{}, ctx.Err()
	}
	return gateway.Result{}, fmt.Errorf("%w: %s: %v", ErrGatewayUnavailable, op, lastErr)
}
