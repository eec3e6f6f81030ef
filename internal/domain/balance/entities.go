package balance

import (
	"time"

	"creator-marketplace/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = apperr.NotFound("creator balance not found")
	ErrInsufficientBalance = apperr.Precondition("insufficient available balance")
	ErrInsufficientPending = apperr.Precondition("insufficient pending balance")
	ErrInsufficientHeld    = apperr.Precondition("insufficient held balance")
	ErrInvalidAmount       = apperr.Validation("amount must be greater than zero")
)

// Table: creator_balances. pending_balance is escrow awaiting the creator's
// review, held_balance is reserved by in-flight withdrawals.
type CreatorBalance struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	CreatorID        string          `gorm:"column:creator_id;size:32;not null;uniqueIndex:ux_creator_balances_creator_id" json:"creator_id"`
	AvailableBalance decimal.Decimal `gorm:"column:available_balance;type:decimal(18,2);not null;default:0" json:"available_balance"`
	PendingBalance   decimal.Decimal `gorm:"column:pending_balance;type:decimal(18,2);not null;default:0" json:"pending_balance"`
	HeldBalance      decimal.Decimal `gorm:"column:held_balance;type:decimal(18,2);not null;default:0" json:"held_balance"`
	TotalEarned      decimal.Decimal `gorm:"column:total_earned;type:decimal(18,2);not null;default:0" json:"total_earned"`
	TotalWithdrawn   decimal.Decimal `gorm:"column:total_withdrawn;type:decimal(18,2);not null;default:0" json:"total_withdrawn"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CreatorBalance) TableName() string { return "creator_balances" }

func Empty(creatorID string) *CreatorBalance {
	return &CreatorBalance{
		CreatorID:        creatorID,
		AvailableBalance: decimal.Zero,
		PendingBalance:   decimal.Zero,
		HeldBalance:      decimal.Zero,
		TotalEarned:      decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
	}
}

func (b *CreatorBalance) CanWithdraw(amount decimal.Decimal) bool {
	return amount.IsPositive() && b.AvailableBalance.GreaterThanOrEqual(amount)
}

// NonNegative reports the ledger invariant.
func (b *CreatorBalance) NonNegative() bool {
	for _, v := range []decimal.Decimal{b.AvailableBalance, b.PendingBalance, b.HeldBalance, b.TotalEarned, b.TotalWithdrawn} {
		if v.IsNegative() {
			return false
		}
	}
	return true
}
