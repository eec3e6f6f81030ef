package mysql

import (
	"context"

	withdrawalDomain "creator-marketplace/internal/domain/withdrawal"

	"gorm.io/gorm"
)

type WithdrawalRepository struct{ db *gorm.DB }

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *withdrawalDomain.Withdrawal) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WithdrawalRepository) GetByWithdrawalID(ctx context.Context, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	var out withdrawalDomain.Withdrawal
	res := r.db.WithContext(ctx).Where("withdrawal_id = ?", withdrawalID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, withdrawalDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *WithdrawalRepository) GetByWithdrawalIDForUpdate(ctx context.Context, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	var out withdrawalDomain.Withdrawal
	res := forUpdate(r.db.WithContext(ctx)).Where("withdrawal_id = ?", withdrawalID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, withdrawalDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *WithdrawalRepository) CountInFlight(ctx context.Context, creatorID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&withdrawalDomain.Withdrawal{}).
		Where("creator_id = ? AND status IN ?", creatorID, withdrawalDomain.InFlight).
		Count(&n)
	return n, res.Error
}

func (r *WithdrawalRepository) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]withdrawalDomain.Withdrawal, error) {
	var out []withdrawalDomain.Withdrawal
	q := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	return out, q.Find(&out).Error
}

func (r *WithdrawalRepository) Save(ctx context.Context, w *withdrawalDomain.Withdrawal) error {
	return r.db.WithContext(ctx).Save(w).Error
}
