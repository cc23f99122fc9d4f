// Package accountsvc covers the account lifecycle around the money paths:
// opening, KYC submission and confirmation, operator unblock, preference
// toggles and the dashboard reads.
package accountsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/repository"
)

// ErrUnknownPreference is returned when a preference name is not recognized.
var ErrUnknownPreference = errors.New("unknown preference")

// Preference names a user-toggleable account flag.
type Preference string

const (
	PrefEmailAlerts Preference = "email_alerts"
	PrefHideBalance Preference = "hide_balance"
	PrefDarkMode    Preference = "dark_mode"
)

// Service manages account lifecycle state.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an account service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Open creates the account for a newly registered user: generated number,
// zero balance, default credit score.
func (s *Service) Open(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	var acc *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		built, err := account.New().WithUserID(userID).Build()
		if err != nil {
			return err
		}
		acc = built
		return uow.Accounts().Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account opened", "account_id", acc.ID, "user_id", userID, "number", acc.Number)
	return acc, nil
}

// Get returns the user's account.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return s.uow.Accounts().GetByUserID(ctx, userID)
}

// SubmitKYC flags the account as having submitted identity documents.
func (s *Service) SubmitKYC(ctx context.Context, userID uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		acc.KYCSubmitted = true
		return uow.Accounts().Update(ctx, acc)
	})
}

// ConfirmKYC is the operator action accepting submitted documents.
func (s *Service) ConfirmKYC(ctx context.Context, accountID uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().Get(ctx, accountID)
		if err != nil {
			return err
		}
		acc.KYCConfirmed = true
		return uow.Accounts().Update(ctx, acc)
	})
}

// Unblock is the operator action lifting a PIN lockout. It is the only way
// out of the blocked state and resets the attempt counter.
func (s *Service) Unblock(ctx context.Context, accountID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().Get(ctx, accountID)
		if err != nil {
			return err
		}
		acc.Status = account.StatusActive
		acc.PinAttempts = 0
		return uow.Accounts().Update(ctx, acc)
	})
	if err == nil {
		s.logger.Info("account unblocked", "account_id", accountID)
	}
	return err
}

// SetPreference toggles one of the account display and alert flags.
func (s *Service) SetPreference(ctx context.Context, userID uuid.UUID, pref Preference, on bool) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		switch pref {
		case PrefEmailAlerts:
			acc.EmailAlerts = on
		case PrefHideBalance:
			acc.HideBalance = on
		case PrefDarkMode:
			acc.DarkMode = on
		default:
			return ErrUnknownPreference
		}
		return uow.Accounts().Update(ctx, acc)
	})
}

// MonthlySummary is the dashboard's money-in/money-out aggregate for one
// calendar month.
type MonthlySummary struct {
	In  money.Money
	Out money.Money
}

// Summary returns the current month's settled money movement for the user.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, at time.Time) (*MonthlySummary, error) {
	in, out, err := s.uow.Transactions().MonthlySums(ctx, userID, at.Year(), at.Month())
	if err != nil {
		return nil, err
	}
	return &MonthlySummary{In: in, Out: out}, nil
}

// History returns the user's most recent transactions.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*account.Transaction, error) {
	return s.uow.Transactions().ListByUser(ctx, userID, limit)
}
