package review

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create relies on the (contract_id, reviewer_id) unique index as the
	// last line against duplicates.
	Create(ctx context.Context, r *Review) error
	GetByContractAndReviewer(ctx context.Context, contractID, reviewerID string) (*Review, error)
	ListByContract(ctx context.Context, contractID string) ([]Review, error)
	// AggregateFor returns the average rating (2dp) and count received by userID.
	AggregateFor(ctx context.Context, reviewedID string) (decimal.Decimal, int, error)
}
