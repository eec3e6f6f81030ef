package events

import (
	"context"
	"sync"

	"creator-marketplace/internal/domain/event"
)

// Memory keeps published events in order. Tests assert on it.
type Memory struct {
	mu     sync.Mutex
	events []event.Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(_ context.Context, e event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Events() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Types() []event.Type {
	evs := m.Events()
	out := make([]event.Type, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}
