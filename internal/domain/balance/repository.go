package balance

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository mutations are single conditional UPDATEs keyed by creator_id.
// A guard that matches no row returns the matching Err* sentinel and leaves
// the row untouched.
type Repository interface {
	Get(ctx context.Context, creatorID string) (*CreatorBalance, error)
	// LockOrCreate makes sure the row exists and locks it for the transaction.
	LockOrCreate(ctx context.Context, creatorID string) (*CreatorBalance, error)

	// AddPending escrows a completed contract's creator amount.
	AddPending(ctx context.Context, creatorID string, amount decimal.Decimal) error
	// ReleasePending moves amount from pending to available and counts it as earned.
	ReleasePending(ctx context.Context, creatorID string, amount decimal.Decimal) error
	// Hold reserves amount from available for a withdrawal.
	Hold(ctx context.Context, creatorID string, amount decimal.Decimal) error
	// SettleHold consumes a hold once the payout succeeded.
	SettleHold(ctx context.Context, creatorID string, amount decimal.Decimal) error
	// ReleaseHold returns a hold to available after a failed or cancelled withdrawal.
	ReleaseHold(ctx context.Context, creatorID string, amount decimal.Decimal) error
}
