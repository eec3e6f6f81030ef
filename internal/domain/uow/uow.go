package uow

import (
	"context"

	"creator-marketplace/internal/domain/balance"
	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/review"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/domain/withdrawal"
)

// Repos are bound to one transaction.
type Repos struct {
	Users       user.Repository
	Offers      offer.Repository
	Contracts   contract.Repository
	Payments    payment.Repository
	Reviews     review.Repository
	Balances    balance.Repository
	Withdrawals withdrawal.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the offer row first, then pass it in
	WithinOfferTx(ctx context.Context, offerID string, fn func(r Repos, o *offer.Offer) error) error
	// convenience: lock the contract row first, then pass it in
	WithinContractTx(ctx context.Context, contractID string, fn func(r Repos, c *contract.Contract) error) error
}
