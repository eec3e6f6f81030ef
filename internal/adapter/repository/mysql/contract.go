package mysql

import (
	"context"

	contractDomain "creator-marketplace/internal/domain/contract"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContractRepository struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) *ContractRepository { return &ContractRepository{db: db} }

func (r *ContractRepository) Create(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContractRepository) GetByContractID(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	res := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, contractDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ContractRepository) GetByContractIDForUpdate(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	res := forUpdate(r.db.WithContext(ctx)).Where("contract_id = ?", contractID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, contractDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ContractRepository) ListPaymentAvailable(ctx context.Context, creatorID string) ([]contractDomain.Contract, error) {
	var out []contractDomain.Contract
	res := r.db.WithContext(ctx).
		Where("creator_id = ? AND status = ? AND workflow_status = ?",
			creatorID, contractDomain.StatusCompleted, contractDomain.WorkflowPaymentAvailable).
		Order("completed_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

// WithdrawnTotal adds the amounts up in Go; SUM over decimal columns comes
// back as a float on sqlite.
func (r *ContractRepository) WithdrawnTotal(ctx context.Context, creatorID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&contractDomain.Contract{}).
		Where("creator_id = ? AND status = ? AND workflow_status = ?",
			creatorID, contractDomain.StatusCompleted, contractDomain.WorkflowPaymentWithdrawn).
		Pluck("creator_amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

func (r *ContractRepository) Update(ctx context.Context, c *contractDomain.Contract) error {
	return updateVersioned(ctx, r.db, c, &c.Version)
}
