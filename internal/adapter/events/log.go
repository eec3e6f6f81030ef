package events

import (
	"context"
	"log/slog"

	"creator-marketplace/internal/domain/event"
)

// LogSink records events in the service log; used when no broker is configured.
type LogSink struct{ logger *slog.Logger }

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, e event.Event) error {
	s.logger.InfoContext(ctx, "domain event",
		"module", "events",
		"event_id", e.ID,
		"event_type", string(e.Type),
		"aggregate_id", e.AggregateID,
		"actor_id", e.ActorID,
		"occurred_at", e.OccurredAt,
	)
	return nil
}
