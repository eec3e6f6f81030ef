package contract

import (
	"time"

	"creator-marketplace/internal/domain/apperr"
	"creator-marketplace/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = apperr.NotFound("contract not found")
	ErrNotActive           = apperr.Precondition("contract is not active")
	ErrNotPaymentFailed    = apperr.Precondition("contract payment has not failed")
	ErrNotAwaitingPayment  = apperr.Precondition("contract is not awaiting payment")
	ErrNotWaitingReview    = apperr.Precondition("contract is not waiting for review")
	ErrNotPaymentAvailable = apperr.Precondition("contract payment is not available")
	ErrNotDisputed         = apperr.Precondition("contract is not disputed")
	ErrInvalidResolution   = apperr.Validation("dispute outcome must be completed or cancelled")
	ErrReasonRequired      = apperr.Validation("reason is required")
	ErrChargeInFlight      = apperr.Precondition("contract charge may still be in flight")
)

// StalePendingAfter is how long a contract may wait on its first charge
// before it can be charged again.
const StalePendingAfter = 15 * time.Minute

type Status string

const (
	StatusPending       Status = "pending"
	StatusActive        Status = "active"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	StatusDisputed      Status = "disputed"
	StatusTerminated    Status = "terminated"
	StatusPaymentFailed Status = "payment_failed"
)

type WorkflowStatus string

const (
	WorkflowPaymentPending   WorkflowStatus = "payment_pending"
	WorkflowActive           WorkflowStatus = "active"
	WorkflowWaitingReview    WorkflowStatus = "waiting_review"
	WorkflowPaymentAvailable WorkflowStatus = "payment_available"
	WorkflowPaymentWithdrawn WorkflowStatus = "payment_withdrawn"
	WorkflowPaymentFailed    WorkflowStatus = "payment_failed"
	WorkflowTerminated       WorkflowStatus = "terminated"
)

// Table: contracts
type Contract struct {
	ID                   uint64          `gorm:"primaryKey;column:id" json:"-"`
	ContractID           string          `gorm:"column:contract_id;size:32;uniqueIndex:ux_contracts_contract_id" json:"contract_id"`
	OfferID              string          `gorm:"column:offer_id;size:32;not null;uniqueIndex:ux_contracts_offer_id" json:"offer_id"`
	BrandID              string          `gorm:"column:brand_id;size:32;not null;index" json:"brand_id"`
	CreatorID            string          `gorm:"column:creator_id;size:32;not null;index:idx_contracts_creator_workflow,priority:1" json:"creator_id"`
	Budget               decimal.Decimal `gorm:"column:budget;type:decimal(18,2);not null" json:"budget"`
	PlatformFee          decimal.Decimal `gorm:"column:platform_fee;type:decimal(18,2);not null" json:"platform_fee"`
	CreatorAmount        decimal.Decimal `gorm:"column:creator_amount;type:decimal(18,2);not null" json:"creator_amount"`
	Status               Status          `gorm:"column:status;size:16;not null;index" json:"status"`
	WorkflowStatus       WorkflowStatus  `gorm:"column:workflow_status;size:24;index:idx_contracts_creator_workflow,priority:2" json:"workflow_status,omitempty"`
	StartedAt            *time.Time      `gorm:"column:started_at" json:"started_at,omitempty"`
	ExpectedCompletionAt *time.Time      `gorm:"column:expected_completion_at" json:"expected_completion_at,omitempty"`
	CompletedAt          *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CancelledAt          *time.Time      `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason   string          `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`
	DisputeReason        string          `gorm:"column:dispute_reason;type:text" json:"dispute_reason,omitempty"`
	Version              uint            `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

// New builds the pending contract an accepted offer turns into.
func New(contractID, offerID, brandID, creatorID string, split pricing.Split, due time.Time) *Contract {
	return &Contract{
		ContractID:           contractID,
		OfferID:              offerID,
		BrandID:              brandID,
		CreatorID:            creatorID,
		Budget:               split.Total,
		PlatformFee:          split.PlatformFee,
		CreatorAmount:        split.CreatorAmount,
		Status:               StatusPending,
		WorkflowStatus:       WorkflowPaymentPending,
		ExpectedCompletionAt: &due,
	}
}

func (c *Contract) IsParty(userID string) bool {
	return userID != "" && (c.BrandID == userID || c.CreatorID == userID)
}

func (c *Contract) applySplit(s pricing.Split) {
	c.Budget = s.Total
	c.PlatformFee = s.PlatformFee
	c.CreatorAmount = s.CreatorAmount
}

// Activate records a successful charge: pending or payment_failed → active.
func (c *Contract) Activate(now time.Time) error {
	if c.Status != StatusPending && c.Status != StatusPaymentFailed {
		return ErrNotAwaitingPayment
	}
	c.Status = StatusActive
	c.WorkflowStatus = WorkflowActive
	c.StartedAt = &now
	return nil
}

// FailPayment records a declined or unreachable charge.
func (c *Contract) FailPayment() error {
	if c.Status != StatusPending && c.Status != StatusPaymentFailed {
		return ErrNotAwaitingPayment
	}
	c.Status = StatusPaymentFailed
	c.WorkflowStatus = WorkflowPaymentFailed
	return nil
}

// CanRetryPayment allows a failed charge, or a pending one whose verdict was
// never recorded once StalePendingAfter has passed since creation.
func (c *Contract) CanRetryPayment(now time.Time) error {
	switch c.Status {
	case StatusPaymentFailed:
		return nil
	case StatusPending:
		if now.Sub(c.CreatedAt) < StalePendingAfter {
			return ErrChargeInFlight
		}
		return nil
	default:
		return ErrNotPaymentFailed
	}
}

// Complete re-prices with the release split and parks the contract until the
// creator reviews it.
func (c *Contract) Complete(now time.Time, split pricing.Split) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	c.applySplit(split)
	c.Status = StatusCompleted
	c.WorkflowStatus = WorkflowWaitingReview
	c.CompletedAt = &now
	return nil
}

func (c *Contract) ReleasePayment() error {
	if c.Status != StatusCompleted || c.WorkflowStatus != WorkflowWaitingReview {
		return ErrNotWaitingReview
	}
	c.WorkflowStatus = WorkflowPaymentAvailable
	return nil
}

func (c *Contract) MarkPaymentWithdrawn() error {
	if c.Status != StatusCompleted || c.WorkflowStatus != WorkflowPaymentAvailable {
		return ErrNotPaymentAvailable
	}
	c.WorkflowStatus = WorkflowPaymentWithdrawn
	return nil
}

// Cancel is a pure status flip; no money moves on this path.
func (c *Contract) Cancel(now time.Time, reason string) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	c.Status = StatusCancelled
	c.WorkflowStatus = ""
	c.CancelledAt = &now
	c.CancellationReason = reason
	return nil
}

func (c *Contract) Dispute(reason string) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	if reason == "" {
		return ErrReasonRequired
	}
	c.Status = StatusDisputed
	c.WorkflowStatus = ""
	c.DisputeReason = reason
	return nil
}

func (c *Contract) Terminate(now time.Time, reason string) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	c.Status = StatusTerminated
	c.WorkflowStatus = WorkflowTerminated
	c.CancelledAt = &now
	c.CancellationReason = reason
	return nil
}

type Resolution string

const (
	ResolveCompleted Resolution = "completed"
	ResolveCancelled Resolution = "cancelled"
)

// Resolve closes a dispute. A completed outcome enters the same review gate
// as Complete; a cancelled outcome is terminal.
func (c *Contract) Resolve(now time.Time, outcome Resolution, split pricing.Split, note string) error {
	if c.Status != StatusDisputed {
		return ErrNotDisputed
	}
	switch outcome {
	case ResolveCompleted:
		c.applySplit(split)
		c.Status = StatusCompleted
		c.WorkflowStatus = WorkflowWaitingReview
		c.CompletedAt = &now
	case ResolveCancelled:
		c.Status = StatusCancelled
		c.WorkflowStatus = ""
		c.CancelledAt = &now
		c.CancellationReason = note
	default:
		return ErrInvalidResolution
	}
	return nil
}

// SplitHolds reports the fee invariant.
func (c *Contract) SplitHolds() bool {
	return c.PlatformFee.Add(c.CreatorAmount).Equal(c.Budget)
}
