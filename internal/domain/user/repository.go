package user

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*User, error)
	// GetByUserIDForUpdate locks the user row; offer creation serializes on the creator.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*User, error)
	// UpdateRating overwrites the aggregate computed from the reviews table.
	UpdateRating(ctx context.Context, userID string, avg decimal.Decimal, count int) error
}
