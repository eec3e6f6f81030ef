package contract

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByContractID(ctx context.Context, contractID string) (*Contract, error)
	GetByContractIDForUpdate(ctx context.Context, contractID string) (*Contract, error)
	// ListPaymentAvailable returns the creator's released contracts, oldest completion first.
	ListPaymentAvailable(ctx context.Context, creatorID string) ([]Contract, error)
	// WithdrawnTotal sums creator_amount over the creator's payment_withdrawn contracts.
	WithdrawnTotal(ctx context.Context, creatorID string) (decimal.Decimal, error)
	// Update writes c when its version still matches, bumping it.
	Update(ctx context.Context, c *Contract) error
}
