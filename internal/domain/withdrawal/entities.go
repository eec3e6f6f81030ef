package withdrawal

import (
	"fmt"
	"strings"
	"time"

	"creator-marketplace/internal/domain/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrNotFound       = apperr.NotFound("withdrawal not found")
	ErrInvalidMethod  = apperr.Validation("unsupported withdrawal method")
	ErrBelowMinimum   = apperr.Validation("amount is below the minimum for this withdrawal method")
	ErrTooManyPending = apperr.Precondition("too many withdrawals in progress")
	ErrNotPending     = apperr.Precondition("withdrawal is not pending")
	ErrNotProcessing  = apperr.Precondition("withdrawal is not processing")
	ErrPayoutInFlight = apperr.Precondition("withdrawal payout may still be in flight")
	ErrInvalidDetails = apperr.Validation("withdrawal details are incomplete for this method")
)

type Method string

const (
	MethodBankTransfer   Method = "bank_transfer"
	MethodPagarmeAccount Method = "pagarme_account"
	MethodPix            Method = "pix"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// InFlight are the states that count against the pending cap.
var InFlight = []Status{StatusPending, StatusProcessing}

// Limits are the per-method minimums and the in-flight cap.
type Limits struct {
	Minimums   map[Method]decimal.Decimal
	MaxPending int
}

func DefaultLimits() Limits {
	return Limits{
		Minimums: map[Method]decimal.Decimal{
			MethodBankTransfer:   decimal.NewFromInt(50),
			MethodPagarmeAccount: decimal.NewFromInt(10),
			MethodPix:            decimal.NewFromInt(5),
		},
		MaxPending: 3,
	}
}

// requiredDetails lists the keys each payout rail needs.
var requiredDetails = map[Method][]string{
	MethodBankTransfer:   {"bank_code", "agency", "account", "account_holder"},
	MethodPagarmeAccount: {"recipient_id"},
	MethodPix:            {"pix_key"},
}

func (l Limits) Validate(method Method, amount decimal.Decimal, details map[string]any) error {
	minimum, ok := l.Minimums[method]
	if !ok {
		return ErrInvalidMethod
	}
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: minimum for %s is %s", ErrBelowMinimum, method, minimum.StringFixed(2))
	}
	for _, k := range requiredDetails[method] {
		v, ok := details[k]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidDetails, k)
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidDetails, k)
		}
	}
	return nil
}

// Table: withdrawals
type Withdrawal struct {
	ID                uint64            `gorm:"primaryKey;column:id" json:"-"`
	WithdrawalID      string            `gorm:"column:withdrawal_id;size:32;uniqueIndex:ux_withdrawals_withdrawal_id" json:"withdrawal_id"`
	CreatorID         string            `gorm:"column:creator_id;size:32;not null;index:idx_withdrawals_creator_status,priority:1" json:"creator_id"`
	Amount            decimal.Decimal   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	WithdrawalMethod  Method            `gorm:"column:withdrawal_method;size:32;not null" json:"withdrawal_method"`
	WithdrawalDetails datatypes.JSONMap `gorm:"column:withdrawal_details" json:"withdrawal_details"`
	Status            Status            `gorm:"column:status;size:16;not null;index:idx_withdrawals_creator_status,priority:2" json:"status"`
	TransactionID     string            `gorm:"column:transaction_id;size:64" json:"transaction_id,omitempty"`
	ProcessedAt       *time.Time        `gorm:"column:processed_at" json:"processed_at,omitempty"`
	FailureReason     string            `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	CancelledAt       *time.Time        `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

// StaleProcessingAfter is how long a payout may go unrecorded before the
// withdrawal can be claimed again.
const StaleProcessingAfter = 15 * time.Minute

// StartProcessing claims a pending withdrawal, or reclaims a processing one
// whose payout verdict was never stored.
func (w *Withdrawal) StartProcessing(now time.Time) error {
	switch w.Status {
	case StatusPending:
	case StatusProcessing:
		if now.Sub(w.UpdatedAt) < StaleProcessingAfter {
			return ErrPayoutInFlight
		}
	default:
		return ErrNotPending
	}
	w.Status = StatusProcessing
	return nil
}

// PayoutKey is fixed per withdrawal: it is paid out at most once.
func (w *Withdrawal) PayoutKey() string { return "payout_" + w.WithdrawalID }

func (w *Withdrawal) Complete(now time.Time, txRef string) error {
	if w.Status != StatusProcessing {
		return ErrNotProcessing
	}
	w.Status = StatusCompleted
	w.TransactionID = txRef
	w.ProcessedAt = &now
	return nil
}

func (w *Withdrawal) Fail(now time.Time, reason string) error {
	if w.Status != StatusProcessing {
		return ErrNotProcessing
	}
	w.Status = StatusFailed
	w.FailureReason = reason
	w.ProcessedAt = &now
	return nil
}

func (w *Withdrawal) Cancel(now time.Time, reason string) error {
	if w.Status != StatusPending {
		return ErrNotPending
	}
	w.Status = StatusCancelled
	w.FailureReason = reason
	w.CancelledAt = &now
	return nil
}
