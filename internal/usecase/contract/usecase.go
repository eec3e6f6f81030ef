package contract

import (
	"context"
	"log/slog"
	"time"

	"creator-marketplace/internal/domain/apperr"
	contractDomain "creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	"creator-marketplace/internal/domain/gateway"
	paymentDomain "creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/usecase/payment"
)

var ErrReasonTooLong = apperr.Validation("reason must be at most 1000 characters")

const maxReason = 1000

type Usecase struct {
	uow       uow.UnitOfWork
	contracts contractDomain.Repository
	payments  paymentDomain.Repository
	escrow    *payment.Escrow
	pricing   pricing.Policy
	sink      event.Sink
	logger    *slog.Logger
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, contracts contractDomain.Repository, payments paymentDomain.Repository, escrow *payment.Escrow, policy pricing.Policy, sink event.Sink, logger *slog.Logger) *Usecase {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		uow:       tx,
		contracts: contracts,
		payments:  payments,
		escrow:    escrow,
		pricing:   policy,
		sink:      sink,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func brandOnly(c *contractDomain.Contract) user.Capability {
	return user.Capability{Roles: []user.Role{user.RoleBrand}, Parties: []string{c.BrandID}}
}

func parties(c *contractDomain.Contract) user.Capability {
	return user.Capability{Parties: []string{c.BrandID, c.CreatorID}, AdminBypass: true}
}

func checkReason(reason string) error {
	if len(reason) > maxReason {
		return ErrReasonTooLong
	}
	return nil
}

// transition runs one guarded change on a locked contract and publishes t
// once it has committed.
func (u *Usecase) transition(ctx context.Context, actor user.Actor, contractID string, t event.Type,
	capability func(*contractDomain.Contract) user.Capability,
	apply func(r uow.Repos, c *contractDomain.Contract, now time.Time) error,
) (*contractDomain.Contract, error) {
	now := u.now()
	var out *contractDomain.Contract
	err := u.uow.WithinContractTx(ctx, contractID, func(r uow.Repos, c *contractDomain.Contract) error {
		if err := actor.Can(capability(c)); err != nil {
			return err
		}
		if err := apply(r, c, now); err != nil {
			return err
		}
		if err := r.Contracts.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, event.New(t, out.ContractID, actor.UserID, now, map[string]any{
		"brand_id":        out.BrandID,
		"creator_id":      out.CreatorID,
		"status":          string(out.Status),
		"workflow_status": string(out.WorkflowStatus),
	}))
	return out, nil
}

// Complete re-prices the contract with the release split and escrows the
// creator amount as pending. A second call fails with ErrNotActive.
func (u *Usecase) Complete(ctx context.Context, actor user.Actor, contractID string) (*contractDomain.Contract, error) {
	return u.transition(ctx, actor, contractID, event.ContractCompleted, brandOnly,
		func(r uow.Repos, c *contractDomain.Contract, now time.Time) error {
			if err := c.Complete(now, u.pricing.AtRelease(c.Budget)); err != nil {
				return err
			}
			_, err := payment.Hold(ctx, r, c)
			return err
		})
}

// Cancel leaves the captured payment untouched; refunds are handled outside
// this service on the contract.cancelled event.
func (u *Usecase) Cancel(ctx context.Context, actor user.Actor, contractID, reason string) (*contractDomain.Contract, error) {
	if err := checkReason(reason); err != nil {
		return nil, err
	}
	return u.transition(ctx, actor, contractID, event.ContractCancelled, parties,
		func(_ uow.Repos, c *contractDomain.Contract, now time.Time) error {
			return c.Cancel(now, reason)
		})
}

func (u *Usecase) Dispute(ctx context.Context, actor user.Actor, contractID, reason string) (*contractDomain.Contract, error) {
	if err := checkReason(reason); err != nil {
		return nil, err
	}
	return u.transition(ctx, actor, contractID, event.ContractDisputed,
		func(c *contractDomain.Contract) user.Capability {
			return user.Capability{Parties: []string{c.BrandID, c.CreatorID}}
		},
		func(_ uow.Repos, c *contractDomain.Contract, _ time.Time) error {
			return c.Dispute(reason)
		})
}

func (u *Usecase) Terminate(ctx context.Context, actor user.Actor, contractID, reason string) (*contractDomain.Contract, error) {
	if err := checkReason(reason); err != nil {
		return nil, err
	}
	return u.transition(ctx, actor, contractID, event.ContractTerminated, brandOnly,
		func(_ uow.Repos, c *contractDomain.Contract, now time.Time) error {
			return c.Terminate(now, reason)
		})
}

// ResolveDispute is the admin's manual close of a disputed contract. A
// completed outcome enters the review gate exactly like Complete.
func (u *Usecase) ResolveDispute(ctx context.Context, actor user.Actor, contractID string, outcome contractDomain.Resolution, note string) (*contractDomain.Contract, error) {
	if err := checkReason(note); err != nil {
		return nil, err
	}
	adminOnly := func(*contractDomain.Contract) user.Capability {
		return user.Capability{Roles: []user.Role{user.RoleAdmin}}
	}
	return u.transition(ctx, actor, contractID, event.ContractDisputeResolved, adminOnly,
		func(r uow.Repos, c *contractDomain.Contract, now time.Time) error {
			if err := c.Resolve(now, outcome, u.pricing.AtRelease(c.Budget), note); err != nil {
				return err
			}
			if outcome != contractDomain.ResolveCompleted {
				return nil
			}
			_, err := payment.Hold(ctx, r, c)
			return err
		})
}

// MarkPaymentWithdrawn closes a released contract once its money has left.
func (u *Usecase) MarkPaymentWithdrawn(ctx context.Context, actor user.Actor, contractID string) (*contractDomain.Contract, error) {
	creatorOrAdmin := func(c *contractDomain.Contract) user.Capability {
		return user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{c.CreatorID}, AdminBypass: true}
	}
	return u.transition(ctx, actor, contractID, event.ContractPaymentWithdrawn, creatorOrAdmin,
		func(_ uow.Repos, c *contractDomain.Contract, _ time.Time) error {
			return c.MarkPaymentWithdrawn()
		})
}

// RetryPayment re-arms a failed charge and calls the gateway again. An empty
// methodRef reuses the method on the payment record. A contract stuck in
// pending because its first verdict was lost can only be re-driven by an admin.
func (u *Usecase) RetryPayment(ctx context.Context, actor user.Actor, contractID, methodRef string) (*contractDomain.Contract, error) {
	var p *paymentDomain.Payment
	err := u.uow.WithinContractTx(ctx, contractID, func(r uow.Repos, c *contractDomain.Contract) error {
		if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleBrand}, Parties: []string{c.BrandID}, AdminBypass: true}); err != nil {
			return err
		}
		if c.Status == contractDomain.StatusPending && !actor.IsAdmin() {
			return apperr.ErrForbidden
		}
		if err := c.CanRetryPayment(u.now()); err != nil {
			return err
		}
		locked, err := r.Payments.GetByContractIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if err := locked.Retry(); err != nil {
			return err
		}
		if methodRef != "" {
			locked.PaymentMethod = methodRef
		}
		p = locked
		return r.Payments.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	chargeCtx := gateway.WithIdempotencyKey(ctx, p.ChargeKey())
	charged, err := u.escrow.Charge(chargeCtx, contractID, p.TotalAmount, p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, payment.ChargeEvent(charged, actor.UserID, u.now()))
	return charged, nil
}

func (u *Usecase) Get(ctx context.Context, actor user.Actor, contractID string) (*contractDomain.Contract, error) {
	c, err := u.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := actor.Can(parties(c)); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *Usecase) GetPayment(ctx context.Context, actor user.Actor, contractID string) (*paymentDomain.Payment, error) {
	if _, err := u.Get(ctx, actor, contractID); err != nil {
		return nil, err
	}
	return u.payments.GetByContractID(ctx, contractID)
}
