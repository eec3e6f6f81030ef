package mysql

import (
	"creator-marketplace/internal/domain/balance"
	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/review"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/domain/withdrawal"

	"gorm.io/gorm"
)

// Models is every table this service owns, in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&offer.Offer{},
		&contract.Contract{},
		&payment.Payment{},
		&review.Review{},
		&balance.CreatorBalance{},
		&withdrawal.Withdrawal{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
