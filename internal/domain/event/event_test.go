package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type recordSink struct {
	got []Event
	err error
}

func (r *recordSink) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestNew(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	e := New(OfferCreated, "OF-1", "BR-1", at, map[string]any{"budget": "10.00"})
	if e.ID == "" || e.Type != OfferCreated || e.AggregateID != "OF-1" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt not UTC: %v", e.OccurredAt)
	}
	if New(OfferCreated, "OF-1", "", at, nil).ID == e.ID {
		t.Error("ids should be unique")
	}
}

func TestPublishAll(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &recordSink{err: errors.New("down")}
	now := time.Now()

	PublishAll(context.Background(), s, logger,
		New(ContractActivated, "CT-1", "", now, nil),
		New(OfferAccepted, "OF-1", "", now, nil),
	)
	if len(s.got) != 2 || s.got[0].Type != ContractActivated {
		t.Fatalf("events not delivered in order despite errors: %+v", s.got)
	}

	// nil sink and Discard are no-ops
	PublishAll(context.Background(), nil, logger, New(OfferCreated, "x", "", now, nil))
	if err := Discard.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Discard: %v", err)
	}
}
