package mysql

import (
	"context"

	paymentDomain "creator-marketplace/internal/domain/payment"

	"gorm.io/gorm"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByContractID(ctx context.Context, contractID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, paymentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PaymentRepository) GetByContractIDForUpdate(ctx context.Context, contractID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := forUpdate(r.db.WithContext(ctx)).Where("contract_id = ?", contractID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, paymentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}
