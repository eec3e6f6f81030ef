package offer

import (
	"time"

	"creator-marketplace/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = apperr.NotFound("offer not found")
	ErrAlreadyPending   = apperr.Precondition("a pending offer already exists for this creator")
	ErrInvalidCreator   = apperr.Validation("creator does not exist or is not a creator")
	ErrExpired          = apperr.Precondition("offer has expired")
	ErrAlreadyProcessed = apperr.Precondition("offer has already been processed")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	// StatusExpired is written only by the explicit stale-offer sweep.
	StatusExpired Status = "expired"
)

// DefaultTTL is how long an offer stays acceptable when the caller gives no expiry.
const DefaultTTL = 24 * time.Hour

// Table: offers
type Offer struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	OfferID       string          `gorm:"column:offer_id;size:32;uniqueIndex:ux_offers_offer_id" json:"offer_id"`
	BrandID       string          `gorm:"column:brand_id;size:32;not null;index:idx_offers_pair_status,priority:1" json:"brand_id"`
	CreatorID     string          `gorm:"column:creator_id;size:32;not null;index:idx_offers_pair_status,priority:2" json:"creator_id"`
	Title         string          `gorm:"column:title;size:255" json:"title"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Budget        decimal.Decimal `gorm:"column:budget;type:decimal(18,2);not null" json:"budget"`
	EstimatedDays int             `gorm:"column:estimated_days;not null" json:"estimated_days"`
	// PaymentMethod is the brand's processor reference charged on acceptance.
	PaymentMethod   string     `gorm:"column:payment_method;size:64" json:"payment_method,omitempty"`
	Status          Status     `gorm:"column:status;size:16;not null;default:'pending';index:idx_offers_pair_status,priority:3" json:"status"`
	ExpiresAt       time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	AcceptedAt      *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Version         uint       `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// IsExpired is derived at read time; nothing sweeps offers implicitly.
func (o *Offer) IsExpired(now time.Time) bool {
	return o.Status == StatusPending && now.After(o.ExpiresAt)
}

func (o *Offer) CanBeAccepted(now time.Time) bool {
	return o.Status == StatusPending && !o.IsExpired(now)
}

// guard explains why CanBeAccepted is false.
func (o *Offer) guard(now time.Time) error {
	if o.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	if o.IsExpired(now) {
		return ErrExpired
	}
	return nil
}

func (o *Offer) Accept(now time.Time) error {
	if err := o.guard(now); err != nil {
		return err
	}
	o.Status = StatusAccepted
	o.AcceptedAt = &now
	return nil
}

func (o *Offer) Reject(now time.Time, reason string) error {
	if err := o.guard(now); err != nil {
		return err
	}
	o.Status = StatusRejected
	o.RejectedAt = &now
	o.RejectionReason = reason
	return nil
}

func (o *Offer) Cancel(now time.Time) error {
	if err := o.guard(now); err != nil {
		return err
	}
	o.Status = StatusCancelled
	o.CancelledAt = &now
	return nil
}

// Expire persists what IsExpired derives. Only the sweep calls it.
func (o *Offer) Expire(now time.Time) error {
	if !o.IsExpired(now) {
		return ErrAlreadyProcessed
	}
	o.Status = StatusExpired
	return nil
}

// ExpectedCompletion is the due date a contract inherits from this offer.
func (o *Offer) ExpectedCompletion(from time.Time) time.Time {
	return from.AddDate(0, 0, o.EstimatedDays)
}
