package offer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"creator-marketplace/internal/domain/apperr"
	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	"creator-marketplace/internal/domain/gateway"
	offerDomain "creator-marketplace/internal/domain/offer"
	paymentDomain "creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/usecase/payment"
	"creator-marketplace/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidBudget = apperr.Validation("budget must be greater than zero with at most two decimals")
	ErrInvalidDays   = apperr.Validation("estimated_days must be greater than zero")
	ErrSelfOffer     = apperr.Validation("brand and creator must differ")
	ErrInvalidExpiry = apperr.Validation("expires_at must be in the future")
)

// Stale offer batches default to defaultStaleBatch and never exceed maxStaleBatch.
const (
	defaultStaleBatch = 100
	maxStaleBatch     = 1000
)

func staleBatch(limit int) int {
	switch {
	case limit <= 0:
		return defaultStaleBatch
	case limit > maxStaleBatch:
		return maxStaleBatch
	}
	return limit
}

type Policy struct {
	Pricing pricing.Policy
	TTL     time.Duration
}

type Usecase struct {
	uow    uow.UnitOfWork
	offers offerDomain.Repository
	escrow *payment.Escrow
	policy Policy
	sink   event.Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, offers offerDomain.Repository, escrow *payment.Escrow, policy Policy, sink event.Sink, logger *slog.Logger) *Usecase {
	if policy.TTL <= 0 {
		policy.TTL = offerDomain.DefaultTTL
	}
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		uow:    tx,
		offers: offers,
		escrow: escrow,
		policy: policy,
		sink:   sink,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validMoney(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

func (u *Usecase) Create(ctx context.Context, actor user.Actor, in CreateOfferInput) (*offerDomain.Offer, error) {
	if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleBrand}, Parties: []string{in.BrandID}}); err != nil {
		return nil, err
	}
	if !validMoney(in.Budget) {
		return nil, ErrInvalidBudget
	}
	if in.EstimatedDays <= 0 {
		return nil, ErrInvalidDays
	}
	if in.CreatorID == in.BrandID {
		return nil, ErrSelfOffer
	}
	now := u.now()
	expires := now.Add(u.policy.TTL)
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return nil, ErrInvalidExpiry
		}
		expires = in.ExpiresAt.UTC()
	}

	o := &offerDomain.Offer{
		OfferID:       id.NewID32(),
		BrandID:       in.BrandID,
		CreatorID:     in.CreatorID,
		Title:         in.Title,
		Description:   in.Description,
		Budget:        in.Budget,
		EstimatedDays: in.EstimatedDays,
		PaymentMethod: in.PaymentMethod,
		Status:        offerDomain.StatusPending,
		ExpiresAt:     expires,
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// locking the creator serializes offers aimed at them
		creator, err := r.Users.GetByUserIDForUpdate(ctx, in.CreatorID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return offerDomain.ErrInvalidCreator
			}
			return err
		}
		if creator.Role != user.RoleCreator {
			return offerDomain.ErrInvalidCreator
		}

		_, err = r.Offers.GetActivePending(ctx, in.BrandID, in.CreatorID, now)
		switch {
		case err == nil:
			return offerDomain.ErrAlreadyPending
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return r.Offers.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	event.PublishAll(ctx, u.sink, u.logger, event.New(event.OfferCreated, o.OfferID, actor.UserID, now, map[string]any{
		"brand_id":   o.BrandID,
		"creator_id": o.CreatorID,
		"budget":     o.Budget.StringFixed(2),
		"expires_at": o.ExpiresAt,
	}))
	return o, nil
}

// Accept turns the offer into a pending contract with its payment record, then
// charges the brand. The charge verdict decides whether the contract is active
// or payment_failed; the offer stays accepted either way.
func (u *Usecase) Accept(ctx context.Context, actor user.Actor, offerID string) (*contract.Contract, error) {
	now := u.now()
	var (
		o *offerDomain.Offer
		c *contract.Contract
		p *paymentDomain.Payment
	)
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, locked *offerDomain.Offer) error {
		if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{locked.CreatorID}}); err != nil {
			return err
		}
		if err := locked.Accept(now); err != nil {
			return err
		}
		split := u.policy.Pricing.AtAcceptance(locked.Budget)
		c = contract.New(id.NewID32(), locked.OfferID, locked.BrandID, locked.CreatorID, split, locked.ExpectedCompletion(now))
		if err := r.Contracts.Create(ctx, c); err != nil {
			return err
		}
		p = paymentDomain.New(id.NewID32(), c.ContractID, c.BrandID, c.CreatorID, locked.PaymentMethod, split)
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}
		if err := r.Offers.Update(ctx, locked); err != nil {
			return err
		}
		o = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, event.New(event.OfferAccepted, o.OfferID, actor.UserID, now, map[string]any{
		"contract_id": c.ContractID,
		"brand_id":    o.BrandID,
	}))

	charged, err := u.escrow.Charge(gateway.WithIdempotencyKey(ctx, p.ChargeKey()), c.ContractID, c.Budget, o.PaymentMethod)
	if err != nil {
		u.logger.ErrorContext(ctx, "recording charge verdict failed",
			"module", "offer", "operation", "accept", "offer_id", o.OfferID, "contract_id", c.ContractID, "error", err)
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, payment.ChargeEvent(charged, actor.UserID, u.now()))
	return charged, nil
}

func (u *Usecase) Reject(ctx context.Context, actor user.Actor, in RejectOfferInput) (*offerDomain.Offer, error) {
	now := u.now()
	var out *offerDomain.Offer
	err := u.uow.WithinOfferTx(ctx, in.OfferID, func(r uow.Repos, o *offerDomain.Offer) error {
		if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleCreator}, Parties: []string{o.CreatorID}}); err != nil {
			return err
		}
		if err := o.Reject(now, in.Reason); err != nil {
			return err
		}
		out = o
		return r.Offers.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, event.New(event.OfferRejected, out.OfferID, actor.UserID, now, map[string]any{
		"brand_id": out.BrandID,
		"reason":   out.RejectionReason,
	}))
	return out, nil
}

func (u *Usecase) Cancel(ctx context.Context, actor user.Actor, offerID string) (*offerDomain.Offer, error) {
	now := u.now()
	var out *offerDomain.Offer
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, o *offerDomain.Offer) error {
		if err := actor.Can(user.Capability{Roles: []user.Role{user.RoleBrand}, Parties: []string{o.BrandID}}); err != nil {
			return err
		}
		if err := o.Cancel(now); err != nil {
			return err
		}
		out = o
		return r.Offers.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	event.PublishAll(ctx, u.sink, u.logger, event.New(event.OfferCanceled, out.OfferID, actor.UserID, now, map[string]any{
		"creator_id": out.CreatorID,
	}))
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, actor user.Actor, offerID string) (*offerDomain.Offer, error) {
	o, err := u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := actor.Can(user.Capability{Parties: []string{o.BrandID, o.CreatorID}, AdminBypass: true}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListStale returns pending offers whose expiry has passed. It never changes them.
func (u *Usecase) ListStale(ctx context.Context, limit int) ([]offerDomain.Offer, error) {
	return u.offers.ListStale(ctx, u.now(), staleBatch(limit))
}

// ExpireStale persists the expired status on up to limit stale offers and
// returns how many it changed. Offers taken by a concurrent accept or cancel
// are skipped.
func (u *Usecase) ExpireStale(ctx context.Context, limit int) (int, error) {
	stale, err := u.ListStale(ctx, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, s := range stale {
		now := u.now()
		var done *offerDomain.Offer
		err := u.uow.WithinOfferTx(ctx, s.OfferID, func(r uow.Repos, o *offerDomain.Offer) error {
			if err := o.Expire(now); err != nil {
				return err
			}
			done = o
			return r.Offers.Update(ctx, o)
		})
		switch {
		case err == nil:
			expired++
			event.PublishAll(ctx, u.sink, u.logger, event.New(event.OfferExpired, done.OfferID, "", now, map[string]any{
				"brand_id":   done.BrandID,
				"creator_id": done.CreatorID,
			}))
		case errors.Is(err, offerDomain.ErrAlreadyProcessed), errors.Is(err, apperr.ErrConcurrentUpdate):
			continue
		default:
			return expired, err
		}
	}
	u.logger.InfoContext(ctx, "stale offers expired",
		"module", "offer", "operation", "expire_stale", "outcome", "ok", "count", expired)
	return expired, nil
}
