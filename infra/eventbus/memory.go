// Package eventbus provides the in-process event bus implementation.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/eventbus"
)

// MemoryBus is a synchronous in-memory implementation of eventbus.Bus.
// It records every emitted event, which tests use to assert on side effects.
type MemoryBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewMemoryBus creates a new in-memory event bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register adds a handler for a specific event type.
func (b *MemoryBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
// Handler errors are logged and swallowed: side effects never abort the
// emitting operation.
func (b *MemoryBus) Emit(ctx context.Context, e events.Event) error {
	eventType := e.Type()
	b.mu.RLock()
	handlers := b.handlers[eventType]
	b.mu.RUnlock()

	b.mu.Lock()
	b.published = append(b.published, e)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, e); err != nil {
			b.logger.Error("event handler failed", "event", eventType, "error", err)
		}
	}
	return nil
}

// Published returns the events emitted so far. For tests.
func (b *MemoryBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]events.Event, len(b.published))
	copy(out, b.published)
	return out
}

// ClearPublished resets the recorded events. For tests.
func (b *MemoryBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

var _ eventbus.Bus = (*MemoryBus)(nil)
