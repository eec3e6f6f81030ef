package mysql

import (
	"context"
	"time"

	offerDomain "creator-marketplace/internal/domain/offer"

	"gorm.io/gorm"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, offerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *OfferRepository) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := forUpdate(r.db.WithContext(ctx)).Where("offer_id = ?", offerID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, offerDomain.ErrNotFound)
	}
	return &out, nil
}

// GetActivePending returns gorm.ErrRecordNotFound when the pair has no live offer.
func (r *OfferRepository) GetActivePending(ctx context.Context, brandID, creatorID string, now time.Time) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).
		Where("brand_id = ? AND creator_id = ? AND status = ? AND expires_at >= ?",
			brandID, creatorID, offerDomain.StatusPending, now).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *OfferRepository) ListStale(ctx context.Context, now time.Time, limit int) ([]offerDomain.Offer, error) {
	var out []offerDomain.Offer
	q := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", offerDomain.StatusPending, now).
		Order("expires_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *OfferRepository) Update(ctx context.Context, o *offerDomain.Offer) error {
	return updateVersioned(ctx, r.db, o, &o.Version)
}
