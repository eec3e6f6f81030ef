package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOfferInput struct {
	BrandID       string
	CreatorID     string
	Title         string
	Description   string
	Budget        decimal.Decimal
	EstimatedDays int
	PaymentMethod string
	// ExpiresAt defaults to now + the configured TTL.
	ExpiresAt *time.Time
}

type RejectOfferInput struct {
	OfferID string
	Reason  string
}
