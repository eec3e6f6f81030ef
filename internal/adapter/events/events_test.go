package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"creator-marketplace/internal/domain/event"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewKafkaSink_Validation(t *testing.T) {
	if _, err := NewKafkaSink(nil, "t"); err == nil {
		t.Fatal("expected error without brokers")
	}
	if _, err := NewKafkaSink([]string{"localhost:9092"}, ""); err == nil {
		t.Fatal("expected error without topic")
	}
	s, err := NewKafkaSink([]string{"localhost:9092"}, "marketplace.events")
	if err != nil {
		t.Fatalf("NewKafkaSink: %v", err)
	}
	_ = s.Close()
}

func TestKafkaSink_Publish(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSink{writer: w, topic: "marketplace.events"}
	e := event.New(event.ContractCompleted, "CT-1", "BR-1", time.Now(), map[string]any{"creator_amount": "950.00"})

	if err := s.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	m := w.msgs[0]
	if string(m.Key) != "CT-1" {
		t.Errorf("key = %q", m.Key)
	}
	var back event.Event
	if err := json.Unmarshal(m.Value, &back); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if back.Type != event.ContractCompleted || back.Data["creator_amount"] != "950.00" {
		t.Errorf("payload = %+v", back)
	}
	if len(m.Headers) != 2 || string(m.Headers[0].Value) != string(event.ContractCompleted) {
		t.Errorf("headers = %+v", m.Headers)
	}

	w.err = errors.New("broker down")
	if err := s.Publish(context.Background(), e); err == nil {
		t.Fatal("expected writer error")
	}
	_ = s.Close()
	if !w.closed {
		t.Error("writer not closed")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := s.Publish(context.Background(), event.New(event.OfferCreated, "OF-1", "BR-1", time.Now(), nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"event_type":"offer.created"`) || !strings.Contains(out, `"aggregate_id":"OF-1"`) {
		t.Errorf("log line = %s", out)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_ = m.Publish(context.Background(), event.Event{Type: event.OfferCreated})
	_ = m.Publish(context.Background(), event.Event{Type: event.OfferAccepted})
	got := m.Types()
	if len(got) != 2 || got[1] != event.OfferAccepted {
		t.Fatalf("types = %v", got)
	}
}

func TestAsync_DeliversAndDrains(t *testing.T) {
	mem := NewMemory()
	a := NewAsync(mem, 16, quietLogger())
	for i := 0; i < 10; i++ {
		if err := a.Publish(context.Background(), event.Event{Type: event.WithdrawalRequested}); err != nil {
			t.Fatalf("Publish #%d: %v", i, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(mem.Events()); n != 10 {
		t.Fatalf("delivered %d, want 10", n)
	}
	if err := a.Publish(context.Background(), event.Event{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("publish after close: %v", err)
	}
	// second close is harmless
	if err := a.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

type blockingSink struct{ release chan struct{} }

func (b *blockingSink) Publish(context.Context, event.Event) error {
	<-b.release
	return nil
}

func TestAsync_DropsWhenFull(t *testing.T) {
	b := &blockingSink{release: make(chan struct{})}
	a := NewAsync(b, 1, quietLogger())

	// the worker takes at most one event off the queue and blocks on it
	var full bool
	for i := 0; i < 5; i++ {
		if err := a.Publish(context.Background(), event.Event{}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Fatal("expected ErrQueueFull")
	}
	close(b.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
