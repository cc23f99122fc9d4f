// Package provider defines the outbound collaborator contracts: alert
// delivery and one-time-code delivery. Both are fire-and-forget from the
// core's perspective; a delivery failure is logged and never aborts the
// banking operation that triggered it.
package provider

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers a user-facing alert to the identity's registered
// contact (email in the reference deployment).
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, subject, body string) error
}

// OTPChannel delivers a one-time code to the identity's registered contact.
// action is a short human-readable description of what the code authorizes.
type OTPChannel interface {
	Deliver(ctx context.Context, userID uuid.UUID, code, action string) error
}
