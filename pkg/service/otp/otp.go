// Package otp issues and verifies one-time codes for step-up authorization.
// A pending action is held as a ticket keyed by user and purpose; verifying
// the code consumes the ticket and hands back the suspended parameters.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/provider"
	"github.com/veltris/banking/pkg/ticket"
)

var (
	// ErrInvalidCode is returned when the echoed code does not match.
	ErrInvalidCode = errors.New("invalid one-time code")

	// ErrCodeExpired is returned when the code's validity window has passed.
	ErrCodeExpired = errors.New("one-time code expired")

	// ErrNoPendingAction is returned when no code was issued for the user and
	// purpose, or a previous attempt already consumed it.
	ErrNoPendingAction = errors.New("no pending action for this code")
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

// Service issues, delivers and verifies one-time codes.
type Service struct {
	tickets  ticket.Store
	channel  provider.OTPChannel
	validity time.Duration
	logger   *slog.Logger
}

// New creates an OTP service. Codes stay valid for the given duration.
func New(tickets ticket.Store, channel provider.OTPChannel, validity time.Duration, logger *slog.Logger) *Service {
	return &Service{tickets: tickets, channel: channel, validity: validity, logger: logger}
}

// Issue generates a fresh code for the user and purpose, stores it with the
// suspended action's payload, and delivers it. Issuing replaces any earlier
// code for the same purpose. Delivery failures are logged, not returned; the
// user can always request a resend.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, purpose ticket.Purpose, payload []byte) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	now := time.Now()
	t := ticket.Ticket{
		Identity:  userID,
		Purpose:   purpose,
		Code:      code,
		Payload:   payload,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.validity),
	}
	if err := s.tickets.Put(ctx, t); err != nil {
		return err
	}
	s.deliver(ctx, userID, code, string(purpose))
	return nil
}

// Verify checks the echoed code. On a match the ticket is consumed and the
// suspended payload returned. Consumption is atomic in the store, so a code
// redeems at most once no matter how many verifications race. Expired
// tickets are removed and report ErrCodeExpired; a mismatch leaves the
// ticket in place for another attempt.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, purpose ticket.Purpose, code string) ([]byte, error) {
	t, err := s.tickets.ConsumeIfMatch(ctx, userID, purpose, code)
	switch {
	case err == nil:
		return t.Payload, nil
	case errors.Is(err, ticket.ErrNotFound):
		return nil, ErrNoPendingAction
	case errors.Is(err, ticket.ErrExpired):
		return nil, ErrCodeExpired
	case errors.Is(err, ticket.ErrCodeMismatch):
		return nil, ErrInvalidCode
	default:
		return nil, err
	}
}

// Resend delivers a fresh code for an already pending action, keeping the
// original payload and restarting the validity window.
func (s *Service) Resend(ctx context.Context, userID uuid.UUID, purpose ticket.Purpose) error {
	t, err := s.tickets.Get(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return ErrNoPendingAction
		}
		return err
	}
	if t.Expired(time.Now()) {
		_ = s.tickets.Delete(ctx, userID, purpose)
		return ErrNoPendingAction
	}
	return s.Issue(ctx, userID, purpose, t.Payload)
}

func (s *Service) deliver(ctx context.Context, userID uuid.UUID, code, action string) {
	if err := s.channel.Deliver(ctx, userID, code, action); err != nil {
		s.logger.Error("otp delivery failed", "user_id", userID, "action", action, "error", err)
	}
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
