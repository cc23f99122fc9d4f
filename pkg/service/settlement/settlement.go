// Package settlement promotes aged processing transactions to success and
// applies the deferred credits: internal transfers held at the step-up
// threshold credit the receiver here, and reviewed check deposits credit the
// depositor here. Wires leave the bank, so promotion is status-only.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/eventbus"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/service/ledger"
)

// Service runs the settlement sweep.
type Service struct {
	uow         repository.UnitOfWork
	bus         eventbus.Bus
	settleAfter time.Duration
	logger      *slog.Logger
}

// New creates a settlement service. Transactions settle once they have been
// processing for at least settleAfter.
func New(uow repository.UnitOfWork, bus eventbus.Bus, settleAfter time.Duration, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, settleAfter: settleAfter, logger: logger}
}

// Sweep settles every processing transaction older than the settle-after
// window. Each transaction settles in its own unit of work, so one failure
// does not hold back the rest. Returns the number settled.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.settleAfter)
	due, err := s.uow.Transactions().ListProcessingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, tx := range due {
		if err := s.settle(ctx, tx.ID); err != nil {
			s.logger.Error("settlement failed", "transaction_id", tx.ID, "error", err)
			continue
		}
		settled++
	}
	if settled > 0 {
		s.logger.Info("settlement sweep done", "settled", settled, "due", len(due))
	}
	return settled, nil
}

// Review is the operator decision on a processing transaction ahead of the
// sweep: approval settles it immediately with the same deferred-credit
// rules, denial fails it with the given reason. Failing never refunds a
// deposit because deposits were never credited.
func (s *Service) Review(ctx context.Context, txID uuid.UUID, approve bool, reason string) error {
	if approve {
		return s.settle(ctx, txID)
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Transactions().Get(ctx, txID)
		if err != nil {
			return err
		}
		if stored.Status != account.TxProcessing {
			return account.ErrInvalidTransition
		}
		// Debited money comes back when a sender-initiated transfer is denied.
		if stored.SenderID != nil && stored.Type != account.TxDeposit {
			acc, err := uow.Accounts().GetByUserID(ctx, *stored.SenderID)
			if err != nil {
				return err
			}
			if _, err := ledger.Credit(ctx, uow, acc.ID, stored.Amount); err != nil {
				return err
			}
		}
		stored.RejectionReason = reason
		if err := stored.Transition(account.TxFailed); err != nil {
			return err
		}
		return uow.Transactions().Update(ctx, stored)
	})
}

func (s *Service) settle(ctx context.Context, txID uuid.UUID) error {
	var (
		tx       *account.Transaction
		credited bool
		sender   string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Transactions().Get(ctx, txID)
		if err != nil {
			return err
		}
		// The status may have moved since the listing; re-check under the
		// transaction so promotion happens exactly once.
		if stored.Status != account.TxProcessing {
			return nil
		}

		if stored.ReceiverID != nil && !stored.Type.IsExternal() {
			acc, err := uow.Accounts().GetByUserID(ctx, *stored.ReceiverID)
			if err != nil {
				return err
			}
			if _, err := ledger.Credit(ctx, uow, acc.ID, stored.Amount); err != nil {
				return err
			}
			credited = true
		}
		if stored.SenderID != nil {
			usr, err := uow.Users().Get(ctx, *stored.SenderID)
			if err == nil {
				sender = usr.Username
			}
		}
		promoted, err := ledger.Transition(ctx, uow, stored.ID, account.TxSuccess)
		if err != nil {
			return err
		}
		tx = promoted
		return nil
	})
	if err != nil || tx == nil {
		return err
	}

	_ = s.bus.Emit(ctx, events.TransferSettled{
		TransactionID:  tx.ID,
		SenderUserID:   tx.SenderID,
		ReceiverUserID: tx.ReceiverID,
		SenderName:     sender,
		Amount:         tx.Amount,
		Kind:           tx.Type,
		Credited:       credited,
	})
	return nil
}
