package offermock

import (
	"context"
	"time"

	domain "creator-marketplace/internal/domain/offer"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to context.Canceled.
type Repo struct {
	CreateFn                func(ctx context.Context, o *domain.Offer) error
	GetByOfferIDFn          func(ctx context.Context, offerID string) (*domain.Offer, error)
	GetByOfferIDForUpdateFn func(ctx context.Context, offerID string) (*domain.Offer, error)
	GetActivePendingFn      func(ctx context.Context, brandID, creatorID string, now time.Time) (*domain.Offer, error)
	ListStaleFn             func(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error)
	UpdateFn                func(ctx context.Context, o *domain.Offer) error
}

func (m *Repo) Create(ctx context.Context, o *domain.Offer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return nil
}

func (m *Repo) GetByOfferID(ctx context.Context, offerID string) (*domain.Offer, error) {
	if m.GetByOfferIDFn != nil {
		return m.GetByOfferIDFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*domain.Offer, error) {
	if m.GetByOfferIDForUpdateFn != nil {
		return m.GetByOfferIDForUpdateFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetActivePending(ctx context.Context, brandID, creatorID string, now time.Time) (*domain.Offer, error) {
	if m.GetActivePendingFn != nil {
		return m.GetActivePendingFn(ctx, brandID, creatorID, now)
	}
	return nil, context.Canceled
}

func (m *Repo) ListStale(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error) {
	if m.ListStaleFn != nil {
		return m.ListStaleFn(ctx, now, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) Update(ctx context.Context, o *domain.Offer) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, o)
	}
	return nil
}
