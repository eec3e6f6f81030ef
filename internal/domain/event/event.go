package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	OfferCreated  Type = "offer.created"
	OfferAccepted Type = "offer.accepted"
	OfferRejected Type = "offer.rejected"
	OfferCanceled Type = "offer.cancelled"
	OfferExpired  Type = "offer.expired"

	ContractActivated        Type = "contract.activated"
	ContractPaymentFailed    Type = "contract.payment_failed"
	ContractCompleted        Type = "contract.completed"
	ContractCancelled        Type = "contract.cancelled"
	ContractDisputed         Type = "contract.disputed"
	ContractDisputeResolved  Type = "contract.dispute_resolved"
	ContractTerminated       Type = "contract.terminated"
	ContractPaymentReleased  Type = "contract.payment_released"
	ContractPaymentWithdrawn Type = "contract.payment_withdrawn"

	ReviewSubmitted Type = "review.submitted"

	WithdrawalRequested  Type = "withdrawal.requested"
	WithdrawalProcessing Type = "withdrawal.processing"
	WithdrawalCompleted  Type = "withdrawal.completed"
	WithdrawalFailed     Type = "withdrawal.failed"
	WithdrawalCancelled  Type = "withdrawal.cancelled"
)

// Event is published after the transition that produced it has committed.
type Event struct {
	ID          string         `json:"event_id"`
	Type        Type           `json:"event_type"`
	AggregateID string         `json:"aggregate_id"`
	ActorID     string         `json:"actor_id,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// Sink delivers events to whoever fans them out (notifications, sockets,
// admin dashboards). A sink failure never undoes a committed transition.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

func New(t Type, aggregateID, actorID string, at time.Time, data map[string]any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		AggregateID: aggregateID,
		ActorID:     actorID,
		OccurredAt:  at.UTC(),
		Data:        data,
	}
}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }

// Discard drops every event.
var Discard Sink = discard{}

// PublishAll hands evs to s in order. Failures are logged and swallowed; the
// transitions behind them are already committed.
func PublishAll(ctx context.Context, s Sink, logger *slog.Logger, evs ...Event) {
	if s == nil {
		return
	}
	for _, e := range evs {
		if err := s.Publish(ctx, e); err != nil {
			logger.WarnContext(ctx, "event publish failed",
				"module", "events", "event_type", string(e.Type), "aggregate_id", e.AggregateID, "error", err)
		}
	}
}
