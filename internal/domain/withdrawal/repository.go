package withdrawal

import "context"

type Repository interface {
	Create(ctx context.Context, w *Withdrawal) error
	GetByWithdrawalID(ctx context.Context, withdrawalID string) (*Withdrawal, error)
	GetByWithdrawalIDForUpdate(ctx context.Context, withdrawalID string) (*Withdrawal, error)
	CountInFlight(ctx context.Context, creatorID string) (int64, error)
	ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]Withdrawal, error)
	Save(ctx context.Context, w *Withdrawal) error
}
