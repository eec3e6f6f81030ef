package mysql

import (
	"context"

	reviewDomain "creator-marketplace/internal/domain/review"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewRepository struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) *ReviewRepository { return &ReviewRepository{db: db} }

func (r *ReviewRepository) Create(ctx context.Context, rv *reviewDomain.Review) error {
	err := r.db.WithContext(ctx).Create(rv).Error
	if isDuplicateKey(err) {
		return reviewDomain.ErrDuplicateReview
	}
	return err
}

// GetByContractAndReviewer returns gorm.ErrRecordNotFound when the reviewer has not reviewed yet.
func (r *ReviewRepository) GetByContractAndReviewer(ctx context.Context, contractID, reviewerID string) (*reviewDomain.Review, error) {
	var out reviewDomain.Review
	res := r.db.WithContext(ctx).
		Where("contract_id = ? AND reviewer_id = ?", contractID, reviewerID).
		First(&out)
	return &out, res.Error
}

func (r *ReviewRepository) ListByContract(ctx context.Context, contractID string) ([]reviewDomain.Review, error) {
	var out []reviewDomain.Review
	res := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ReviewRepository) AggregateFor(ctx context.Context, reviewedID string) (decimal.Decimal, int, error) {
	var row struct {
		Avg float64
		Cnt int64
	}
	res := r.db.WithContext(ctx).Model(&reviewDomain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("reviewed_id = ?", reviewedID).
		Scan(&row)
	if res.Error != nil {
		return decimal.Zero, 0, res.Error
	}
	return decimal.NewFromFloat(row.Avg).Round(2), int(row.Cnt), nil
}
