package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"creator-marketplace/internal/domain/event"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event sink closed")
)

// Async decouples request latency from the downstream sink with a bounded
// queue and one delivery goroutine. Events that do not fit are dropped.
type Async struct {
	next    event.Sink
	queue   chan event.Event
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsync(next event.Sink, size int, logger *slog.Logger) *Async {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		next:    next,
		queue:   make(chan event.Event, size),
		logger:  logger,
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Publish(_ context.Context, e event.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		// request contexts are gone by now
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Publish(ctx, e); err != nil {
			a.logger.Warn("event delivery failed",
				"module", "events", "event_type", string(e.Type), "aggregate_id", e.AggregateID, "error", err)
		}
		cancel()
	}
}

// Close stops intake and waits for the queue to drain or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
