package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByContractID(ctx context.Context, contractID string) (*Payment, error)
	GetByContractIDForUpdate(ctx context.Context, contractID string) (*Payment, error)
	Save(ctx context.Context, p *Payment) error
}
