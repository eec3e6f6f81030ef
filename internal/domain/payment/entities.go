package payment

import (
	"fmt"
	"time"

	"creator-marketplace/internal/domain/apperr"
	"creator-marketplace/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = apperr.NotFound("payment not found")
	ErrInvalidStage    = apperr.Precondition("payment is not in a stage that allows this transition")
	ErrAlreadyReleased = apperr.Precondition("payment has already been released")
	ErrNotCaptured     = apperr.Precondition("payment has not been captured")
	ErrNotAuthorized   = apperr.Precondition("payment is not awaiting a charge")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage tracks where the money is: authorized (charge requested), captured
// (held in escrow by the platform), released (credited to the creator).
type Stage string

const (
	StageAuthorized Stage = "authorized"
	StageCaptured   Stage = "captured"
	StageReleased   Stage = "released"
)

// Table: payments. One row per contract.
type Payment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID     string          `gorm:"column:payment_id;size:32;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	ContractID    string          `gorm:"column:contract_id;size:32;not null;uniqueIndex:ux_payments_contract_id" json:"contract_id"`
	BrandID       string          `gorm:"column:brand_id;size:32;not null;index" json:"brand_id"`
	CreatorID     string          `gorm:"column:creator_id;size:32;not null;index" json:"creator_id"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2);not null" json:"total_amount"`
	PlatformFee   decimal.Decimal `gorm:"column:platform_fee;type:decimal(18,2);not null" json:"platform_fee"`
	CreatorAmount decimal.Decimal `gorm:"column:creator_amount;type:decimal(18,2);not null" json:"creator_amount"`
	PaymentMethod string          `gorm:"column:payment_method;size:64" json:"payment_method"`
	Status        Status          `gorm:"column:status;size:16;not null;index" json:"status"`
	Stage         Stage           `gorm:"column:stage;size:16;not null" json:"stage"`
	TransactionID string          `gorm:"column:transaction_id;size:64" json:"transaction_id,omitempty"`
	FailureReason string          `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	Attempts      int             `gorm:"column:attempts;not null;default:0" json:"attempts"`
	ProcessedAt   *time.Time      `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func New(paymentID, contractID, brandID, creatorID, method string, split pricing.Split) *Payment {
	p := &Payment{
		PaymentID:     paymentID,
		ContractID:    contractID,
		BrandID:       brandID,
		CreatorID:     creatorID,
		PaymentMethod: method,
		Status:        StatusPending,
		Stage:         StageAuthorized,
	}
	p.Reprice(split)
	return p
}

func (p *Payment) Reprice(s pricing.Split) {
	p.TotalAmount = s.Total
	p.PlatformFee = s.PlatformFee
	p.CreatorAmount = s.CreatorAmount
}

// Capture records a successful charge. Status stays pending: the funds sit in
// escrow until the creator's review releases them.
func (p *Payment) Capture(now time.Time, txRef string) error {
	if p.Stage != StageAuthorized {
		return ErrNotAuthorized
	}
	p.Stage = StageCaptured
	p.Status = StatusPending
	p.TransactionID = txRef
	p.FailureReason = ""
	p.Attempts++
	p.ProcessedAt = &now
	return nil
}

func (p *Payment) Fail(reason string) error {
	if p.Stage != StageAuthorized {
		return ErrNotAuthorized
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.Attempts++
	return nil
}

// Retry re-arms a charge that never reached capture. A payment still pending
// at this stage is one whose verdict was never stored, and may be retried too.
func (p *Payment) Retry() error {
	if p.Stage != StageAuthorized {
		return ErrInvalidStage
	}
	p.Status = StatusPending
	return nil
}

// ChargeKey names the current charge attempt at the gateway. Attempts only
// moves when a verdict is stored, so a retry after a lost verdict sends the
// same key and the processor replays the earlier charge.
func (p *Payment) ChargeKey() string {
	return fmt.Sprintf("charge_%s_%d", p.PaymentID, p.Attempts)
}

func (p *Payment) Release(now time.Time) error {
	switch p.Stage {
	case StageReleased:
		return ErrAlreadyReleased
	case StageCaptured:
	default:
		return ErrNotCaptured
	}
	p.Stage = StageReleased
	p.Status = StatusCompleted
	p.ProcessedAt = &now
	return nil
}
