package gatewaymock

import (
	"context"
	"errors"

	"creator-marketplace/internal/domain/gateway"

	"github.com/shopspring/decimal"
)

var _ gateway.Gateway = (*Gateway)(nil)

var errUnimplemented = errors.New("gatewaymock: method not implemented")

// Gateway is a function-backed mock; unset functions return errUnimplemented.
type Gateway struct {
	ChargeFn func(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (gateway.Result, error)
	PayoutFn func(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gateway.Result, error)
}

func (m *Gateway) Charge(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (gateway.Result, error) {
	if m.ChargeFn != nil {
		return m.ChargeFn(ctx, amount, paymentMethodRef)
	}
	return gateway.Result{}, errUnimplemented
}

func (m *Gateway) Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gateway.Result, error) {
	if m.PayoutFn != nil {
		return m.PayoutFn(ctx, amount, method, details)
	}
	return gateway.Result{}, errUnimplemented
}

// Approving succeeds every call with fixed refs.
func Approving() *Gateway {
	return &Gateway{
		ChargeFn: func(context.Context, decimal.Decimal, string) (gateway.Result, error) {
			return gateway.Result{Success: true, TransactionRef: "ch_test"}, nil
		},
		PayoutFn: func(context.Context, decimal.Decimal, string, map[string]any) (gateway.Result, error) {
			return gateway.Result{Success: true, TransactionRef: "po_test"}, nil
		},
	}
}

// Declining declines every call with reason.
func Declining(reason string) *Gateway {
	return &Gateway{
		ChargeFn: func(context.Context, decimal.Decimal, string) (gateway.Result, error) {
			return gateway.Result{Success: false, Reason: reason}, nil
		},
		PayoutFn: func(context.Context, decimal.Decimal, string, map[string]any) (gateway.Result, error) {
			return gateway.Result{Success: false, Reason: reason}, nil
		},
	}
}
