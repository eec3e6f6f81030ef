package gateway

import (
	"context"
	"strings"
	"time"

	gatewayDomain "creator-marketplace/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeclinePrefix makes the simulated processor decline a payment method ref.
const DeclinePrefix = "decline"

// Simulated stands in for a real processor in local runs and tests.
type Simulated struct {
	Delay time.Duration
	// MaxPayout declines payouts above it; zero means no limit.
	MaxPayout decimal.Decimal
}

func NewSimulated(delay time.Duration) *Simulated { return &Simulated{Delay: delay} }

func (s *Simulated) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulated) Charge(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (gatewayDomain.Result, error) {
	if err := s.wait(ctx); err != nil {
		return gatewayDomain.Result{}, err
	}
	switch {
	case !amount.IsPositive():
		return gatewayDomain.Result{Reason: "invalid_amount"}, nil
	case strings.HasPrefix(paymentMethodRef, DeclinePrefix):
		return gatewayDomain.Result{Reason: "card_declined"}, nil
	}
	return gatewayDomain.Result{Success: true, TransactionRef: "ch_" + uuid.NewString()}, nil
}

func (s *Simulated) Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gatewayDomain.Result, error) {
	if err := s.wait(ctx); err != nil {
		return gatewayDomain.Result{}, err
	}
	if !amount.IsPositive() {
		return gatewayDomain.Result{Reason: "invalid_amount"}, nil
	}
	if s.MaxPayout.IsPositive() && amount.GreaterThan(s.MaxPayout) {
		return gatewayDomain.Result{Reason: "payout_limit_exceeded"}, nil
	}
	for _, v := range details {
		if str, ok := v.(string); ok && strings.HasPrefix(str, DeclinePrefix) {
			return gatewayDomain.Result{Reason: "destination_rejected"}, nil
		}
	}
	return gatewayDomain.Result{Success: true, TransactionRef: "po_" + uuid.NewString()}, nil
}
