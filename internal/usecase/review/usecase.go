package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"creator-marketplace/internal/domain/apperr"
	contractDomain "creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	reviewDomain "creator-marketplace/internal/domain/review"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/usecase/payment"
	"creator-marketplace/pkg/id"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrCommentTooLong = apperr.Validation("comment must be at most 2000 characters")

type SubmitReviewInput struct {
	ContractID string
	Rating     int
	Comment    string
	Categories map[string]int
	// IsPublic defaults to true.
	IsPublic *bool
}

type Usecase struct {
	uow       uow.UnitOfWork
	reviews   reviewDomain.Repository
	contracts contractDomain.Repository
	sink      event.Sink
	logger    *slog.Logger
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, reviews reviewDomain.Repository, contracts contractDomain.Repository, sink event.Sink, logger *slog.Logger) *Usecase {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		uow:       tx,
		reviews:   reviews,
		contracts: contracts,
		sink:      sink,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores the actor's review of the other party and refreshes that
// party's rating. The creator's review of a waiting_review contract also
// releases the escrowed payment, in the same transaction.
func (u *Usecase) Submit(ctx context.Context, actor user.Actor, in SubmitReviewInput) (*reviewDomain.Review, error) {
	if !reviewDomain.ValidRating(in.Rating) {
		return nil, reviewDomain.ErrInvalidRating
	}
	if err := reviewDomain.ValidateCategories(in.Categories); err != nil {
		return nil, err
	}
	if len(in.Comment) > 2000 {
		return nil, ErrCommentTooLong
	}
	public := true
	if in.IsPublic != nil {
		public = *in.IsPublic
	}

	now := u.now()
	var (
		out      *reviewDomain.Review
		released *contractDomain.Contract
	)
	err := u.uow.WithinContractTx(ctx, in.ContractID, func(r uow.Repos, c *contractDomain.Contract) error {
		if err := actor.Can(user.Capability{Parties: []string{c.BrandID, c.CreatorID}}); err != nil {
			return err
		}
		if c.Status != contractDomain.StatusCompleted {
			return reviewDomain.ErrNotReviewable
		}
		_, err := r.Reviews.GetByContractAndReviewer(ctx, c.ContractID, actor.UserID)
		switch {
		case err == nil:
			return reviewDomain.ErrDuplicateReview
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		reviewed := c.CreatorID
		if actor.UserID == c.CreatorID {
			reviewed = c.BrandID
		}
		rv := &reviewDomain.Review{
			ReviewID:         id.NewID32(),
			ContractID:       c.ContractID,
			ReviewerID:       actor.UserID,
			ReviewedID:       reviewed,
			Rating:           in.Rating,
			Comment:          in.Comment,
			RatingCategories: datatypes.NewJSONType(in.Categories),
			IsPublic:         public,
		}
		if err := r.Reviews.Create(ctx, rv); err != nil {
			return err
		}

		avg, count, err := r.Reviews.AggregateFor(ctx, reviewed)
		if err != nil {
			return err
		}
		if err := r.Users.UpdateRating(ctx, reviewed, avg, count); err != nil {
			return err
		}

		// only the creator's own review releases funds
		if actor.UserID == c.CreatorID && c.WorkflowStatus == contractDomain.WorkflowWaitingReview {
			if _, err := payment.Release(ctx, r, c, now); err != nil {
				return err
			}
			released = c
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}

	evs := []event.Event{event.New(event.ReviewSubmitted, out.ReviewID, actor.UserID, now, map[string]any{
		"contract_id": out.ContractID,
		"reviewed_id": out.ReviewedID,
		"rating":      out.Rating,
	})}
	if released != nil {
		evs = append(evs, event.New(event.ContractPaymentReleased, released.ContractID, actor.UserID, now, map[string]any{
			"creator_id":     released.CreatorID,
			"creator_amount": released.CreatorAmount.StringFixed(2),
		}))
	}
	event.PublishAll(ctx, u.sink, u.logger, evs...)
	return out, nil
}

// List returns a contract's reviews; outsiders only see public ones.
func (u *Usecase) List(ctx context.Context, actor user.Actor, contractID string) ([]reviewDomain.Review, error) {
	c, err := u.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	all, err := u.reviews.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if actor.Can(user.Capability{Parties: []string{c.BrandID, c.CreatorID}, AdminBypass: true}) == nil {
		return all, nil
	}
	out := make([]reviewDomain.Review, 0, len(all))
	for _, rv := range all {
		if rv.IsPublic {
			out = append(out, rv)
		}
	}
	return out, nil
}
