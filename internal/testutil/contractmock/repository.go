package contractmock

import (
	"context"

	domain "creator-marketplace/internal/domain/contract"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to context.Canceled.
type Repo struct {
	CreateFn                   func(ctx context.Context, c *domain.Contract) error
	GetByContractIDFn          func(ctx context.Context, contractID string) (*domain.Contract, error)
	GetByContractIDForUpdateFn func(ctx context.Context, contractID string) (*domain.Contract, error)
	ListPaymentAvailableFn     func(ctx context.Context, creatorID string) ([]domain.Contract, error)
	WithdrawnTotalFn           func(ctx context.Context, creatorID string) (decimal.Decimal, error)
	UpdateFn                   func(ctx context.Context, c *domain.Contract) error
}

func (m *Repo) Create(ctx context.Context, c *domain.Contract) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error) {
	if m.GetByContractIDFn != nil {
		return m.GetByContractIDFn(ctx, contractID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByContractIDForUpdate(ctx context.Context, contractID string) (*domain.Contract, error) {
	if m.GetByContractIDForUpdateFn != nil {
		return m.GetByContractIDForUpdateFn(ctx, contractID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPaymentAvailable(ctx context.Context, creatorID string) ([]domain.Contract, error) {
	if m.ListPaymentAvailableFn != nil {
		return m.ListPaymentAvailableFn(ctx, creatorID)
	}
	return nil, context.Canceled
}

func (m *Repo) WithdrawnTotal(ctx context.Context, creatorID string) (decimal.Decimal, error) {
	if m.WithdrawnTotalFn != nil {
		return m.WithdrawnTotalFn(ctx, creatorID)
	}
	return decimal.Zero, context.Canceled
}

func (m *Repo) Update(ctx context.Context, c *domain.Contract) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, c)
	}
	return nil
}
