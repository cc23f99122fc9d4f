// Package ticket models short-lived authorization tickets: the pending
// OTP-gated action keyed by identity and purpose. A ticket carries the code
// the user must echo back and the serialized parameters of the suspended
// operation, and expires on its own.
package ticket

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no ticket exists for the identity and
	// purpose.
	ErrNotFound = errors.New("ticket not found")

	// ErrCodeMismatch is returned by ConsumeIfMatch when the candidate code
	// does not match the stored one. The ticket stays in place.
	ErrCodeMismatch = errors.New("ticket code mismatch")

	// ErrExpired is returned by ConsumeIfMatch when the ticket's validity
	// window has passed. The ticket is removed.
	ErrExpired = errors.New("ticket expired")
)

// Purpose names the gated operation a ticket authorizes.
type Purpose string

const (
	PurposeLogin    Purpose = "login"
	PurposePinReset Purpose = "pin_reset"
	PurposeTransfer Purpose = "transfer"
	PurposeRecovery Purpose = "recovery"
)

// Ticket is one pending authorization. At most one ticket exists per
// identity+purpose; storing a new one replaces the old.
type Ticket struct {
	Identity  uuid.UUID `json:"identity"`
	Purpose   Purpose   `json:"purpose"`
	Code      string    `json:"code"`
	Payload   []byte    `json:"payload,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the ticket's validity window has passed.
func (t *Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Store persists tickets for their validity window.
type Store interface {
	// Put stores the ticket, replacing any existing one for the same
	// identity and purpose.
	Put(ctx context.Context, t Ticket) error
	// Get returns the ticket for the identity and purpose, or ErrNotFound.
	// Expiry is the caller's concern: Get may return an expired ticket.
	Get(ctx context.Context, identity uuid.UUID, purpose Purpose) (*Ticket, error)
	// Delete removes the ticket. Deleting a missing ticket is not an error.
	Delete(ctx context.Context, identity uuid.UUID, purpose Purpose) error
	// ConsumeIfMatch atomically removes and returns the ticket when code
	// matches the stored one. At most one caller can consume a given ticket;
	// losers see ErrNotFound. A mismatch reports ErrCodeMismatch and leaves
	// the ticket in place; an expired ticket reports ErrExpired and is
	// removed.
	ConsumeIfMatch(ctx context.Context, identity uuid.UUID, purpose Purpose, code string) (*Ticket, error)
}
