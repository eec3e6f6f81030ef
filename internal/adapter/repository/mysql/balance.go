package mysql

import (
	"context"

	balanceDomain "creator-marketplace/internal/domain/balance"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct{ db *gorm.DB }

func NewBalanceRepository(db *gorm.DB) *BalanceRepository { return &BalanceRepository{db: db} }

func (r *BalanceRepository) Get(ctx context.Context, creatorID string) (*balanceDomain.CreatorBalance, error) {
	var out balanceDomain.CreatorBalance
	res := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, balanceDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *BalanceRepository) LockOrCreate(ctx context.Context, creatorID string) (*balanceDomain.CreatorBalance, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(balanceDomain.Empty(creatorID)).Error; err != nil {
		return nil, err
	}
	var out balanceDomain.CreatorBalance
	if err := forUpdate(db).Where("creator_id = ?", creatorID).First(&out).Error; err != nil {
		return nil, notFound(err, balanceDomain.ErrNotFound)
	}
	return &out, nil
}

// apply runs one guarded UPDATE. guardCol >= amount must hold or nothing changes.
func (r *BalanceRepository) apply(ctx context.Context, creatorID, guardCol string, amount decimal.Decimal, sets map[string]any, guardErr error) error {
	if !amount.IsPositive() {
		return balanceDomain.ErrInvalidAmount
	}
	q := r.db.WithContext(ctx).Model(&balanceDomain.CreatorBalance{}).Where("creator_id = ?", creatorID)
	if guardCol != "" {
		q = q.Where(guardCol+" >= ?", amount)
	}
	res := q.Updates(sets)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guardErr
	}
	return nil
}

func (r *BalanceRepository) AddPending(ctx context.Context, creatorID string, amount decimal.Decimal) error {
	return r.apply(ctx, creatorID, "", amount, map[string]any{
		"pending_balance": gorm.Expr("pending_balance + ?", amount),
	}, balanceDomain.ErrNotFound)
}

func (r *BalanceRepository) ReleasePending(ctx context.Context, creatorID string, amount decimal.Decimal) error {
	return r.apply(ctx, creatorID, "pending_balance", amount, map[string]any{
		"pending_balance":   gorm.Expr("pending_balance - ?", amount),
		"available_balance": gorm.Expr("available_balance + ?", amount),
		"total_earned":      gorm.Expr("total_earned + ?", amount),
	}, balanceDomain.ErrInsufficientPending)
}

func (r *BalanceRepository) Hold(ctx context.Context, creatorID string, amount decimal.Decimal) error {
	return r.apply(ctx, creatorID, "available_balance", amount, map[string]any{
		"available_balance": gorm.Expr("available_balance - ?", amount),
		"held_balance":      gorm.Expr("held_balance + ?", amount),
	}, balanceDomain.ErrInsufficientBalance)
}

func (r *BalanceRepository) SettleHold(ctx context.Context, creatorID string, amount decimal.Decimal) error {
	return r.apply(ctx, creatorID, "held_balance", amount, map[string]any{
		"held_balance":    gorm.Expr("held_balance - ?", amount),
		"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
	}, balanceDomain.ErrInsufficientHeld)
}

func (r *BalanceRepository) ReleaseHold(ctx context.Context, creatorID string, amount decimal.Decimal) error {
	return r.apply(ctx, creatorID, "held_balance", amount, map[string]any{
		"held_balance":      gorm.Expr("held_balance - ?", amount),
		"available_balance": gorm.Expr("available_balance + ?", amount),
	}, balanceDomain.ErrInsufficientHeld)
}
