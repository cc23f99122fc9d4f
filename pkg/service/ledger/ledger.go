// Package ledger is the single write path for balances and transaction
// status. Every balance mutation pairs a row-locked account read with an
// aggregate-validated adjustment, so no partial effect and no negative
// balance can ever be observed.
package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/repository"
)

// Debit removes amount from the account inside the caller's unit of work.
// The account row is locked for the remainder of the transaction. The
// returned account carries the new balance. Fails without mutation when the
// balance does not cover amount.
func Debit(ctx context.Context, uow repository.UnitOfWork, accountID uuid.UUID, amount money.Money) (*account.Account, error) {
	acc, err := uow.Accounts().GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := acc.Debit(amount); err != nil {
		return nil, err
	}
	if err := uow.Accounts().Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Credit adds amount to the account inside the caller's unit of work.
func Credit(ctx context.Context, uow repository.UnitOfWork, accountID uuid.UUID, amount money.Money) (*account.Account, error) {
	acc, err := uow.Accounts().GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := acc.Credit(amount); err != nil {
		return nil, err
	}
	if err := uow.Accounts().Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Transition moves a stored transaction to next, enforcing the status state
// machine, inside the caller's unit of work.
func Transition(ctx context.Context, uow repository.UnitOfWork, txID uuid.UUID, next account.TxStatus) (*account.Transaction, error) {
	tx, err := uow.Transactions().Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := tx.Transition(next); err != nil {
		return nil, err
	}
	if err := uow.Transactions().Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// LockPair row-locks two accounts in ascending ID order, so concurrent
// opposite-direction transfers cannot deadlock. The accounts are returned in
// the argument order.
func LockPair(ctx context.Context, uow repository.UnitOfWork, first, second uuid.UUID) (*account.Account, *account.Account, error) {
	ids := [2]uuid.UUID{first, second}
	if second.String() < first.String() {
		ids[0], ids[1] = second, first
	}
	locked := make(map[uuid.UUID]*account.Account, 2)
	for _, id := range ids {
		acc, err := uow.Accounts().GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = acc
	}
	return locked[first], locked[second], nil
}

// Service exposes the ledger write path as standalone operations, each in its
// own unit of work. Orchestrators that combine several steps use the
// package-level helpers inside a single uow.Do instead.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a ledger service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Debit removes amount from the account in one atomic unit.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount money.Money) (*account.Account, error) {
	var out *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := Debit(ctx, uow, accountID, amount)
		if err != nil {
			return err
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account debited", "account_id", accountID, "amount", amount)
	return out, nil
}

// Credit adds amount to the account in one atomic unit.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount money.Money) (*account.Account, error) {
	var out *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := Credit(ctx, uow, accountID, amount)
		if err != nil {
			return err
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account credited", "account_id", accountID, "amount", amount)
	return out, nil
}

// Transition moves a transaction to next in one atomic unit.
func (s *Service) Transition(ctx context.Context, txID uuid.UUID, next account.TxStatus) (*account.Transaction, error) {
	var out *account.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		tx, err := Transition(ctx, uow, txID, next)
		if err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
