package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Result is the processor's verdict. A declined call is Success=false with a
// nil error; a non-nil error means the outcome is unknown (transport failure,
// timeout) and the call may be retried.
type Result struct {
	Success        bool
	TransactionRef string
	Reason         string
}

type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (Result, error)
	Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (Result, error)
}

type idempotencyKey struct{}

// WithIdempotencyKey tags ctx so every retry of one logical call carries the
// same key to the processor.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func IdempotencyKey(ctx context.Context) (string, bool) {
	k, ok := ctx.Value(idempotencyKey{}).(string)
	return k, ok && k != ""
}
