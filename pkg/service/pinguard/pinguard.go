// Package pinguard verifies transaction PINs and enforces the lockout policy:
// five consecutive mismatches block the account until an operator unblocks it.
package pinguard

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/eventbus"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/utils"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Service guards PIN verification and updates.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a pin guard service.
func New(uow repository.UnitOfWork, bus eventbus.Bus, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// Verify checks pin against the user's account. A mismatch increments the
// attempt counter; the fifth consecutive mismatch blocks the account, and that
// attempt reports account.ErrAccountBlocked rather than a wrong-PIN error.
// Non-final mismatches return *account.WrongPinError carrying the attempts
// left. The counter mutation commits even when verification fails.
//
// The account row is locked for the whole verification, so concurrent
// attempts against one account serialize and no counter increment is lost.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, pin string) error {
	var verifyErr error
	var blockedNow *account.Account

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		resolved, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		acc, err := uow.Accounts().GetForUpdate(ctx, resolved.ID)
		if err != nil {
			return err
		}
		if acc.IsBlocked() {
			verifyErr = account.ErrAccountBlocked
			return nil
		}
		if acc.PinHash == "" {
			verifyErr = account.ErrPinNotSet
			return nil
		}
		if utils.CheckHash(pin, acc.PinHash) {
			if acc.PinAttempts != 0 {
				acc.PinAttempts = 0
				return uow.Accounts().Update(ctx, acc)
			}
			return nil
		}

		acc.PinAttempts++
		if acc.PinAttempts >= account.MaxPinAttempts {
			acc.Status = account.StatusBlocked
			blockedNow = acc
			verifyErr = account.ErrAccountBlocked
		} else {
			verifyErr = &account.WrongPinError{Remaining: account.MaxPinAttempts - acc.PinAttempts}
		}
		return uow.Accounts().Update(ctx, acc)
	})
	if err != nil {
		return err
	}
	if blockedNow != nil {
		s.logger.Warn("account blocked after repeated wrong pin",
			"account_id", blockedNow.ID, "user_id", blockedNow.UserID)
		_ = s.bus.Emit(ctx, events.AccountBlocked{
			AccountID: blockedNow.ID,
			UserID:    blockedNow.UserID,
		})
	}
	return verifyErr
}

// SetPin creates or replaces the user's transaction PIN. The candidate must
// be exactly four digits. Setting a PIN resets the attempt counter.
func (s *Service) SetPin(ctx context.Context, userID uuid.UUID, pin string) error {
	if !pinPattern.MatchString(pin) {
		return account.ErrInvalidPin
	}
	hash, err := utils.HashPin(pin)
	if err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		resolved, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		acc, err := uow.Accounts().GetForUpdate(ctx, resolved.ID)
		if err != nil {
			return err
		}
		if acc.IsBlocked() {
			return account.ErrAccountBlocked
		}
		acc.PinHash = hash
		acc.PinAttempts = 0
		return uow.Accounts().Update(ctx, acc)
	})
}

// HasPin reports whether the user has created a transaction PIN.
func (s *Service) HasPin(ctx context.Context, userID uuid.UUID) (bool, error) {
	acc, err := s.uow.Accounts().GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return acc.PinHash != "", nil
}
