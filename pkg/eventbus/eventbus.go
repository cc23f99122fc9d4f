// Package eventbus defines the contract for publishing and subscribing to
// domain events.
package eventbus

import (
	"context"

	"github.com/veltris/banking/pkg/domain/events"
)

// HandlerFunc handles one event. Returned errors are logged by the bus, not
// propagated to the emitter; event side effects never abort the operation
// that produced them.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus dispatches domain events to registered handlers.
type Bus interface {
	// Register adds a handler for the given event type.
	Register(eventType string, handler HandlerFunc)
	// Emit dispatches the event to all handlers registered for its type.
	Emit(ctx context.Context, e events.Event) error
}
