// Package loanengine handles loan applications, the approval decision that
// credits the borrower, and repayment application. Approval and its credit
// commit in one unit of work; the pending-only transition makes the credit
// exactly-once.
package loanengine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/domain/loan"
	"github.com/veltris/banking/pkg/eventbus"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/service/ledger"
	"github.com/veltris/banking/pkg/service/pinguard"
)

// Service is the loan engine.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	pins   *pinguard.Service
	logger *slog.Logger
}

// New creates a loan service.
func New(uow repository.UnitOfWork, bus eventbus.Bus, pins *pinguard.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, pins: pins, logger: logger}
}

// Apply records a loan application. The total repayment is fixed here, at
// application time, as principal plus the flat interest.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, principal money.Money, termMonths int, purpose string) (*loan.Loan, error) {
	var l *loan.Loan
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if acc.IsBlocked() {
			return account.ErrAccountBlocked
		}
		built, err := loan.New().
			WithUserID(userID).
			WithPrincipal(principal).
			WithTermMonths(termMonths).
			WithPurpose(purpose).
			Build()
		if err != nil {
			return err
		}
		l = built
		return uow.Loans().Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	_ = s.bus.Emit(ctx, events.LoanApplied{LoanID: l.ID, UserID: userID, Principal: principal})
	return l, nil
}

// Approve moves a pending loan to approved and credits the principal to the
// borrower's account, atomically. Approving a loan that already left pending
// fails with loan.ErrNotPending and credits nothing.
func (s *Service) Approve(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var l *loan.Loan
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Loans().Get(ctx, loanID)
		if err != nil {
			return err
		}
		if err := stored.Approve(); err != nil {
			return err
		}
		acc, err := uow.Accounts().GetByUserID(ctx, stored.UserID)
		if err != nil {
			return err
		}
		if _, err := ledger.Credit(ctx, uow, acc.ID, stored.Principal); err != nil {
			return err
		}
		tx := account.NewTransaction(account.TxLoan, account.TxSuccess, stored.Principal)
		tx.ReceiverID = &stored.UserID
		tx.Note = stored.Purpose
		if err := uow.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		l = stored
		return uow.Loans().Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("loan approved", "loan_id", l.ID, "user_id", l.UserID, "principal", l.Principal)
	_ = s.bus.Emit(ctx, events.LoanApproved{
		LoanID:    l.ID,
		UserID:    l.UserID,
		Principal: l.Principal,
		Purpose:   l.Purpose,
	})
	return l, nil
}

// Reject moves a pending loan to rejected.
func (s *Service) Reject(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var l *loan.Loan
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Loans().Get(ctx, loanID)
		if err != nil {
			return err
		}
		if err := stored.Reject(); err != nil {
			return err
		}
		l = stored
		return uow.Loans().Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	_ = s.bus.Emit(ctx, events.LoanRejected{LoanID: l.ID, UserID: l.UserID})
	return l, nil
}

// Repay applies a PIN-guarded repayment: the amount is debited from the
// borrower's account and added to the loan's paid total in one unit of work.
// Repaying more than the remaining balance fails cleanly.
func (s *Service) Repay(ctx context.Context, userID uuid.UUID, loanID uuid.UUID, amount money.Money, pin string) (*loan.Loan, error) {
	if err := s.pins.Verify(ctx, userID, pin); err != nil {
		return nil, err
	}
	var l *loan.Loan
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Loans().Get(ctx, loanID)
		if err != nil {
			return err
		}
		if stored.UserID != userID {
			return loan.ErrLoanNotFound
		}
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := stored.ApplyPayment(amount); err != nil {
			return err
		}
		if _, err := ledger.Debit(ctx, uow, acc.ID, amount); err != nil {
			return err
		}
		tx := account.NewTransaction(account.TxRepayment, account.TxSuccess, amount)
		tx.SenderID = &userID
		tx.Note = stored.Purpose
		if err := uow.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		l = stored
		return uow.Loans().Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	_ = s.bus.Emit(ctx, events.LoanRepaid{
		LoanID:  l.ID,
		UserID:  userID,
		Amount:  amount,
		PaidOff: l.PaidOff(),
	})
	return l, nil
}

// ListByUser returns the user's loans, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*loan.Loan, error) {
	return s.uow.Loans().ListByUser(ctx, userID)
}

// ListPending returns loans awaiting a decision, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*loan.Loan, error) {
	return s.uow.Loans().ListPending(ctx)
}
