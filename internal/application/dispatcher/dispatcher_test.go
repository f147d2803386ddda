package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contractdesk/negotiation/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func testEvent(eventType event.Type) *event.Event {
	return event.NewEvent(eventType, "neg-1", "contract-1", "user-1", nil)
}

func TestNewDispatcher(t *testing.T) {
	t.Run("creates dispatcher without logger", func(t *testing.T) {
		d := NewDispatcher()
		if d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})

	t.Run("creates dispatcher with logger", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		if d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})
}

func TestSubscribe(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Subscribe(event.TypeNegotiationCreated, func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	if err := d.Dispatch(context.Background(), testEvent(event.TypeNegotiationCreated)); err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}
	if !called {
		t.Error("subscribed handler was not invoked")
	}
}

func TestDispatch_HandlerOrderAndError(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeNegotiationAccepted, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeNegotiationAccepted, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return errors.New("boom")
	})
	d.SubscribeNamed(event.TypeNegotiationAccepted, "third", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "third")
		return nil
	})

	err := d.Dispatch(context.Background(), testEvent(event.TypeNegotiationAccepted))
	if err == nil {
		t.Fatal("Dispatch() should return handler error")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran in order %v, want [first second]", order)
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	d := NewDispatcher()
	if err := d.Dispatch(context.Background(), testEvent(event.TypeEntryAdded)); err != nil {
		t.Errorf("Dispatch() with no handlers should be a no-op, got %v", err)
	}
}

func TestDispatchAsync_SwallowsHandlerErrors(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	var called atomic.Bool
	d.SubscribeNamed(event.TypeNegotiationRejected, "failing", func(ctx context.Context, evt *event.Event) error {
		called.Store(true)
		return errors.New("notifier unavailable")
	})

	d.DispatchAsync(context.Background(), testEvent(event.TypeNegotiationRejected))

	if err := d.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if !called.Load() {
		t.Fatal("async handler was not invoked")
	}
	if logger.ErrorCount() == 0 {
		t.Error("async handler error should be logged")
	}
}

func TestDispatch_RecoversHandlerPanic(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeNegotiationCancelled, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("oops")
	})

	err := d.Dispatch(context.Background(), testEvent(event.TypeNegotiationCancelled))
	if err == nil {
		t.Fatal("Dispatch() should surface recovered panic as error")
	}
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	var calls atomic.Int32

	d.SubscribeNamed(event.TypeEntryAdded, "counter", func(ctx context.Context, evt *event.Event) error {
		calls.Add(1)
		return nil
	})

	if err := d.Dispatch(context.Background(), testEvent(event.TypeEntryAdded)); err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	d.Unsubscribe(event.TypeEntryAdded, "counter")

	if err := d.Dispatch(context.Background(), testEvent(event.TypeEntryAdded)); err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
}

func TestClose(t *testing.T) {
	d := NewDispatcher()

	done := make(chan struct{})
	d.Subscribe(event.TypeNegotiationCreated, func(ctx context.Context, evt *event.Event) error {
		time.Sleep(10 * time.Millisecond)
		close(done)
		return nil
	})

	d.DispatchAsync(context.Background(), testEvent(event.TypeNegotiationCreated))

	if err := d.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	select {
	case <-done:
	default:
		t.Error("Close() should wait for in-flight async handlers")
	}

	if err := d.Close(); err == nil {
		t.Error("second Close() should return an error")
	}

	if err := d.Dispatch(context.Background(), testEvent(event.TypeNegotiationCreated)); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}
}

func TestListHandlers(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeNegotiationAccepted, "notify-counterparty", func(ctx context.Context, evt *event.Event) error {
		return nil
	})

	handlers := d.ListHandlers(event.TypeNegotiationAccepted)
	if len(handlers) != 1 {
		t.Fatalf("ListHandlers() returned %d handlers, want 1", len(handlers))
	}
	if handlers[0].Name != "notify-counterparty" {
		t.Errorf("handler name = %s, want notify-counterparty", handlers[0].Name)
	}
	if handlers[0].Handler != nil {
		t.Error("ListHandlers() should not expose handler functions")
	}
}
