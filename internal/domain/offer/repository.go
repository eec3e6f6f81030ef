package offer

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByOfferID(ctx context.Context, offerID string) (*Offer, error)
	// GetByOfferIDForUpdate locks the row for the rest of the transaction.
	GetByOfferIDForUpdate(ctx context.Context, offerID string) (*Offer, error)
	// GetActivePending returns the pending offer for the pair that has not
	// expired at now, or gorm.ErrRecordNotFound.
	GetActivePending(ctx context.Context, brandID, creatorID string, now time.Time) (*Offer, error)
	ListStale(ctx context.Context, now time.Time, limit int) ([]Offer, error)
	// Update writes o when its version still matches, bumping it.
	Update(ctx context.Context, o *Offer) error
}
