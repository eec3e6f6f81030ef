package withdrawal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	balanceDomain "creator-marketplace/internal/domain/balance"
	contractDomain "creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	"creator-marketplace/internal/domain/gateway"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/domain/user"
	withdrawalDomain "creator-marketplace/internal/domain/withdrawal"
	"creator-marketplace/internal/usecase/payment"
	"creator-marketplace/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CreateWithdrawalInput struct {
	CreatorID string
	Amount    decimal.Decimal
	Method    withdrawalDomain.Method
	Details   map[string]any
}

type Usecase struct {
	uow         uow.UnitOfWork
	withdrawals withdrawalDomain.Repository
	balances    balanceDomain.Repository
	payouts     payment.Payouter
	limits      withdrawalDomain.Limits
	sink        event.Sink
	logger      *slog.Logger
	now         func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, withdrawals withdrawalDomain.Repository, balances balanceDomain.Repository, payouts payment.Payouter, limits withdrawalDomain.Limits, sink event.Sink, logger *slog.Logger) *Usecase {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		uow:         tx,
		withdrawals: withdrawals,
		balances:    balances,
		payouts:     payouts,
		limits:      limits,
		sink:        sink,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func ownerOrAdmin(creatorID string) user.Capability {
	return user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{creatorID}, AdminBypass: true}
}

func (u *Usecase) publish(ctx context.Context, t event.Type, w *withdrawalDomain.Withdrawal, actorID string, at time.Time) {
	data := map[string]any{
		"creator_id": w.CreatorID,
		"amount":     w.Amount.StringFixed(2),
		"method":     string(w.WithdrawalMethod),
	}
	if w.FailureReason != "" {
		data["reason"] = w.FailureReason
	}
	event.PublishAll(ctx, u.sink, u.logger, event.New(t, w.WithdrawalID, actorID, at, data))
}

// Create holds amount out of the creator's available balance and records a
// pending withdrawal. The balance row lock serializes concurrent requests
// from the same creator.
func (u *Usecase) Create(ctx context.Context, actor user.Actor, in CreateWithdrawalInput) (*withdrawalDomain.Withdrawal, error) {
	if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{in.CreatorID}}); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() || !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, balanceDomain.ErrInvalidAmount
	}
	if err := u.limits.Validate(in.Method, in.Amount, in.Details); err != nil {
		return nil, err
	}

	now := u.now()
	w := &withdrawalDomain.Withdrawal{
		WithdrawalID:      id.NewID32(),
		CreatorID:         in.CreatorID,
		Amount:            in.Amount,
		WithdrawalMethod:  in.Method,
		WithdrawalDetails: datatypes.JSONMap(in.Details),
		Status:            withdrawalDomain.StatusPending,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Balances.LockOrCreate(ctx, in.CreatorID)
		if err != nil {
			return err
		}
		n, err := r.Withdrawals.CountInFlight(ctx, in.CreatorID)
		if err != nil {
			return err
		}
		if n >= int64(u.limits.MaxPending) {
			return withdrawalDomain.ErrTooManyPending
		}
		if !b.CanWithdraw(in.Amount) {
			return balanceDomain.ErrInsufficientBalance
		}
		if err := r.Balances.Hold(ctx, in.CreatorID, in.Amount); err != nil {
			return err
		}
		return r.Withdrawals.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, event.WithdrawalRequested, w, actor.UserID, now)
	return w, nil
}

// Process pays a pending withdrawal out. A declined or unreachable payout
// fails the withdrawal and releases its hold; neither is returned as an error.
func (u *Usecase) Process(ctx context.Context, actor user.Actor, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	var w *withdrawalDomain.Withdrawal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		locked, err := r.Withdrawals.GetByWithdrawalIDForUpdate(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if err := actor.Can(ownerOrAdmin(locked.CreatorID)); err != nil {
			return err
		}
		if err := locked.StartProcessing(u.now()); err != nil {
			return err
		}
		w = locked
		return r.Withdrawals.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, event.WithdrawalProcessing, w, actor.UserID, u.now())

	payoutCtx := gateway.WithIdempotencyKey(ctx, w.PayoutKey())
	res, err := u.payouts.Payout(payoutCtx, w.Amount, string(w.WithdrawalMethod), w.WithdrawalDetails)
	if err != nil {
		u.logger.ErrorContext(ctx, "payout outcome unknown",
			"module", "withdrawal", "operation", "process", "withdrawal_id", w.WithdrawalID, "outcome", "failed", "error", err)
		res.Success = false
		res.Reason = "gateway unavailable"
	}

	ctx = context.WithoutCancel(ctx)
	now := u.now()
	var withdrawn []*contractDomain.Contract
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		locked, err := r.Withdrawals.GetByWithdrawalIDForUpdate(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if res.Success {
			if err := locked.Complete(now, res.TransactionRef); err != nil {
				return err
			}
			if err := r.Balances.SettleHold(ctx, locked.CreatorID, locked.Amount); err != nil {
				return err
			}
			withdrawn, err = markWithdrawn(ctx, r, locked.CreatorID)
			if err != nil {
				return err
			}
		} else {
			if err := locked.Fail(now, res.Reason); err != nil {
				return err
			}
			if err := r.Balances.ReleaseHold(ctx, locked.CreatorID, locked.Amount); err != nil {
				return err
			}
		}
		w = locked
		return r.Withdrawals.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	if w.Status == withdrawalDomain.StatusCompleted {
		u.publish(ctx, event.WithdrawalCompleted, w, actor.UserID, now)
		for _, c := range withdrawn {
			event.PublishAll(ctx, u.sink, u.logger, event.New(event.ContractPaymentWithdrawn, c.ContractID, actor.UserID, now, map[string]any{
				"creator_id":    c.CreatorID,
				"withdrawal_id": w.WithdrawalID,
			}))
		}
	} else {
		u.publish(ctx, event.WithdrawalFailed, w, actor.UserID, now)
	}
	return w, nil
}

// markWithdrawn closes released contracts, oldest first, while the creator's
// lifetime withdrawals not yet attributed to a contract cover each one in full.
// Several partial withdrawals therefore add up to one contract.
func markWithdrawn(ctx context.Context, r uow.Repos, creatorID string) ([]*contractDomain.Contract, error) {
	b, err := r.Balances.Get(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	attributed, err := r.Contracts.WithdrawnTotal(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	remaining := b.TotalWithdrawn.Sub(attributed)
	if !remaining.IsPositive() {
		return nil, nil
	}
	available, err := r.Contracts.ListPaymentAvailable(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	var out []*contractDomain.Contract
	for i := range available {
		c := &available[i]
		if c.CreatorAmount.GreaterThan(remaining) {
			break
		}
		if err := c.MarkPaymentWithdrawn(); err != nil {
			return nil, err
		}
		if err := r.Contracts.Update(ctx, c); err != nil {
			return nil, err
		}
		remaining = remaining.Sub(c.CreatorAmount)
		out = append(out, c)
	}
	return out, nil
}

func (u *Usecase) Cancel(ctx context.Context, actor user.Actor, withdrawalID, reason string) (*withdrawalDomain.Withdrawal, error) {
	now := u.now()
	var w *withdrawalDomain.Withdrawal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		locked, err := r.Withdrawals.GetByWithdrawalIDForUpdate(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{locked.CreatorID}}); err != nil {
			return err
		}
		if err := locked.Cancel(now, reason); err != nil {
			return err
		}
		if err := r.Balances.ReleaseHold(ctx, locked.CreatorID, locked.Amount); err != nil {
			return err
		}
		w = locked
		return r.Withdrawals.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, event.WithdrawalCancelled, w, actor.UserID, now)
	return w, nil
}

func (u *Usecase) Get(ctx context.Context, actor user.Actor, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	w, err := u.withdrawals.GetByWithdrawalID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := actor.Can(ownerOrAdmin(w.CreatorID)); err != nil {
		return nil, err
	}
	return w, nil
}

func (u *Usecase) List(ctx context.Context, actor user.Actor, creatorID string, limit, offset int) ([]withdrawalDomain.Withdrawal, error) {
	if err := actor.Can(ownerOrAdmin(creatorID)); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.withdrawals.ListByCreator(ctx, creatorID, limit, offset)
}

// Balance returns an all-zero balance for creators who never earned.
func (u *Usecase) Balance(ctx context.Context, actor user.Actor, creatorID string) (*balanceDomain.CreatorBalance, error) {
	if err := actor.Can(ownerOrAdmin(creatorID)); err != nil {
		return nil, err
	}
	b, err := u.balances.Get(ctx, creatorID)
	if errors.Is(err, balanceDomain.ErrNotFound) {
		return balanceDomain.Empty(creatorID), nil
	}
	return b, err
}
