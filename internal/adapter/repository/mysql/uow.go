package mysql

import (
	"context"

	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:       &UserRepository{db: tx},
		Offers:      &OfferRepository{db: tx},
		Contracts:   &ContractRepository{db: tx},
		Payments:    &PaymentRepository{db: tx},
		Reviews:     &ReviewRepository{db: tx},
		Balances:    &BalanceRepository{db: tx},
		Withdrawals: &WithdrawalRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinOfferTx(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.Offer) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the offer row up-front so concurrent accepts serialize here
		o, err := r.Offers.GetByOfferIDForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		return fn(r, o)
	})
}

func (u *GormUoW) WithinContractTx(ctx context.Context, contractID string, fn func(r uow.Repos, c *contract.Contract) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		c, err := r.Contracts.GetByContractIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}
