package payment

import (
	"context"
	"log/slog"
	"time"

	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	"creator-marketplace/internal/domain/gateway"
	paymentDomain "creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/domain/uow"

	"github.com/shopspring/decimal"
)

type Charger interface {
	Charge(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (gateway.Result, error)
}

type Payouter interface {
	Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gateway.Result, error)
}

// Escrow charges a contract's brand with no transaction open, then stores the
// verdict in a second transaction.
type Escrow struct {
	uow     uow.UnitOfWork
	charger Charger
	logger  *slog.Logger
	now     func() time.Time
}

func NewEscrow(tx uow.UnitOfWork, charger Charger, logger *slog.Logger) *Escrow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Escrow{uow: tx, charger: charger, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Charge leaves the contract active or payment_failed. Declines and an
// unreachable gateway are both recorded as payment_failed and are not errors.
func (e *Escrow) Charge(ctx context.Context, contractID string, amount decimal.Decimal, methodRef string) (*contract.Contract, error) {
	res, err := e.charger.Charge(ctx, amount, methodRef)
	if err != nil {
		e.logger.ErrorContext(ctx, "charge outcome unknown",
			"module", "payment", "operation", "charge", "contract_id", contractID, "outcome", "failed", "error", err)
		res = gateway.Result{Reason: "gateway unavailable"}
	}

	// the verdict must be stored even if the caller went away mid-charge
	ctx = context.WithoutCancel(ctx)
	var out *contract.Contract
	err = e.uow.WithinContractTx(ctx, contractID, func(r uow.Repos, c *contract.Contract) error {
		p, err := r.Payments.GetByContractIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		now := e.now()
		if res.Success {
			if err := c.Activate(now); err != nil {
				return err
			}
			if err := p.Capture(now, res.TransactionRef); err != nil {
				return err
			}
		} else {
			if err := c.FailPayment(); err != nil {
				return err
			}
			if err := p.Fail(res.Reason); err != nil {
				return err
			}
		}
		if err := r.Contracts.Update(ctx, c); err != nil {
			return err
		}
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "charge recorded",
		"module", "payment", "operation", "charge", "contract_id", contractID, "outcome", string(out.Status))
	return out, nil
}

// ChargeEvent reports the outcome Charge left the contract in.
func ChargeEvent(c *contract.Contract, actorID string, at time.Time) event.Event {
	t := event.ContractActivated
	if c.Status == contract.StatusPaymentFailed {
		t = event.ContractPaymentFailed
	}
	return event.New(t, c.ContractID, actorID, at, map[string]any{
		"brand_id":   c.BrandID,
		"creator_id": c.CreatorID,
		"budget":     c.Budget.StringFixed(2),
	})
}

// Hold moves a finished contract's creator amount into pending escrow. The
// contract must already carry the release split; the payment is repriced to match.
func Hold(ctx context.Context, r uow.Repos, c *contract.Contract) (*paymentDomain.Payment, error) {
	p, err := r.Payments.GetByContractIDForUpdate(ctx, c.ContractID)
	if err != nil {
		return nil, err
	}
	if p.Stage != paymentDomain.StageCaptured {
		return nil, paymentDomain.ErrNotCaptured
	}
	p.Reprice(pricing.Split{Total: c.Budget, PlatformFee: c.PlatformFee, CreatorAmount: c.CreatorAmount})
	if _, err := r.Balances.LockOrCreate(ctx, c.CreatorID); err != nil {
		return nil, err
	}
	if err := r.Balances.AddPending(ctx, c.CreatorID, c.CreatorAmount); err != nil {
		return nil, err
	}
	if err := r.Payments.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Release completes the payment and credits the creator. Only the creator's
// review on a waiting_review contract reaches here.
func Release(ctx context.Context, r uow.Repos, c *contract.Contract, now time.Time) (*paymentDomain.Payment, error) {
	if err := c.ReleasePayment(); err != nil {
		return nil, err
	}
	p, err := r.Payments.GetByContractIDForUpdate(ctx, c.ContractID)
	if err != nil {
		return nil, err
	}
	if err := p.Release(now); err != nil {
		return nil, err
	}
	if err := r.Balances.ReleasePending(ctx, c.CreatorID, p.CreatorAmount); err != nil {
		return nil, err
	}
	if err := r.Contracts.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := r.Payments.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
