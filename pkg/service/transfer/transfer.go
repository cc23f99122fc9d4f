// Package transfer orchestrates money movement: internal and wire transfers,
// check deposits and bill payments. It consults the PIN guard and the OTP
// step-up gate before any ledger mutation, applies all effects of one
// attempt in a single unit of work, and emits events for the notification
// side effects.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/eventbus"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/service/ledger"
	"github.com/veltris/banking/pkg/service/otp"
	"github.com/veltris/banking/pkg/service/pinguard"
	"github.com/veltris/banking/pkg/ticket"
)

// Request describes one transfer attempt. Wire set means an external
// transfer; TargetNumber is ignored in that case.
type Request struct {
	SenderUserID uuid.UUID
	TargetNumber string
	Amount       money.Money
	Pin          string
	Note         string
	Wire         *account.WireDetails
}

// Result is the outcome of a transfer attempt. When OtpRequired is set the
// attempt is suspended: no ledger effect happened and Transaction is nil
// until ConfirmTransfer resumes it.
type Result struct {
	Transaction *account.Transaction
	OtpRequired bool
}

// Service is the transfer engine.
type Service struct {
	uow       repository.UnitOfWork
	bus       eventbus.Bus
	pins      *pinguard.Service
	codes     *otp.Service
	threshold money.Money // from this amount on, transfers need OTP and settle deferred
	logger    *slog.Logger
}

// New creates a transfer service.
func New(uow repository.UnitOfWork, bus eventbus.Bus, pins *pinguard.Service, codes *otp.Service, threshold money.Money, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, pins: pins, codes: codes, threshold: threshold, logger: logger}
}

// pending is the suspended transfer held in the OTP ticket payload.
type pending struct {
	TargetNumber string               `json:"target_number,omitempty"`
	AmountCents  int64                `json:"amount_cents"`
	Note         string               `json:"note,omitempty"`
	Wire         *account.WireDetails `json:"wire,omitempty"`
}

// Transfer validates and either executes the transfer or, for amounts at the
// step-up threshold and for all wire transfers, issues a one-time code and
// suspends the attempt. Validation order: request shape, recipient
// resolution, PIN, funds. A PIN failure therefore always wins over an
// insufficient-funds failure.
func (s *Service) Transfer(ctx context.Context, req Request) (*Result, error) {
	if !req.Amount.IsPositive() {
		return nil, account.ErrAmountMustBePositive
	}

	sender, err := s.uow.Accounts().GetByUserID(ctx, req.SenderUserID)
	if err != nil {
		return nil, err
	}
	if req.Wire == nil {
		if req.TargetNumber == sender.Number {
			return nil, account.ErrCannotTransferToSameAccount
		}
		if _, err := s.uow.Accounts().GetByNumber(ctx, req.TargetNumber); err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return nil, account.ErrRecipientNotFound
			}
			return nil, err
		}
	}

	if err := s.pins.Verify(ctx, req.SenderUserID, req.Pin); err != nil {
		return nil, err
	}
	// Precheck funds so the user learns about a shortfall before the OTP
	// round trip. Execution rechecks under lock.
	if err := sender.CanDebit(req.Amount); err != nil {
		return nil, err
	}

	if s.needsStepUp(req) {
		payload, err := json.Marshal(pending{
			TargetNumber: req.TargetNumber,
			AmountCents:  req.Amount.Cents(),
			Note:         req.Note,
			Wire:         req.Wire,
		})
		if err != nil {
			return nil, err
		}
		if err := s.codes.Issue(ctx, req.SenderUserID, ticket.PurposeTransfer, payload); err != nil {
			return nil, err
		}
		return &Result{OtpRequired: true}, nil
	}

	tx, err := s.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{Transaction: tx}, nil
}

// ConfirmTransfer resumes a suspended transfer once the user echoes the
// one-time code. The stored parameters are authoritative; nothing from the
// confirmation request besides the code is trusted.
func (s *Service) ConfirmTransfer(ctx context.Context, userID uuid.UUID, code string) (*account.Transaction, error) {
	payload, err := s.codes.Verify(ctx, userID, ticket.PurposeTransfer, code)
	if err != nil {
		return nil, err
	}
	var p pending
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	return s.execute(ctx, Request{
		SenderUserID: userID,
		TargetNumber: p.TargetNumber,
		Amount:       money.FromCents(p.AmountCents),
		Note:         p.Note,
		Wire:         p.Wire,
	})
}

// ResendTransferCode redelivers the code of a suspended transfer.
func (s *Service) ResendTransferCode(ctx context.Context, userID uuid.UUID) error {
	return s.codes.Resend(ctx, userID, ticket.PurposeTransfer)
}

func (s *Service) needsStepUp(req Request) bool {
	if req.Wire != nil {
		return true
	}
	return req.Amount.GreaterThanOrEqual(s.threshold)
}

// execute applies the transfer in one unit of work: debit the sender, credit
// the receiver when the transfer settles immediately, and record the
// transaction. Internal transfers at the threshold and all wires resolve to
// processing; the settlement sweep finishes them later.
func (s *Service) execute(ctx context.Context, req Request) (*account.Transaction, error) {
	var (
		tx           *account.Transaction
		receiverUser *uuid.UUID
		senderName   string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		sender, err := uow.Accounts().GetByUserID(ctx, req.SenderUserID)
		if err != nil {
			return err
		}
		usr, err := uow.Users().Get(ctx, req.SenderUserID)
		if err != nil {
			return err
		}
		senderName = usr.Username

		if req.Wire != nil {
			if _, err := ledger.Debit(ctx, uow, sender.ID, req.Amount); err != nil {
				return err
			}
			tx = account.NewTransaction(account.TxWire, account.TxProcessing, req.Amount)
			tx.SenderID = &req.SenderUserID
			tx.Wire = req.Wire
			tx.Note = req.Note
			return uow.Transactions().Create(ctx, tx)
		}

		receiver, err := uow.Accounts().GetByNumber(ctx, req.TargetNumber)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return account.ErrRecipientNotFound
			}
			return err
		}

		deferred := req.Amount.GreaterThanOrEqual(s.threshold)
		senderAcc, receiverAcc, err := ledger.LockPair(ctx, uow, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		if err := senderAcc.Debit(req.Amount); err != nil {
			return err
		}
		if err := uow.Accounts().Update(ctx, senderAcc); err != nil {
			return err
		}

		status := account.TxSuccess
		if deferred {
			status = account.TxProcessing
		} else {
			if err := receiverAcc.Credit(req.Amount); err != nil {
				return err
			}
			if err := uow.Accounts().Update(ctx, receiverAcc); err != nil {
				return err
			}
			receiverUser = &receiverAcc.UserID
		}

		tx = account.NewTransaction(account.TxTransfer, status, req.Amount)
		tx.SenderID = &req.SenderUserID
		tx.ReceiverID = &receiverAcc.UserID
		tx.TargetNumber = req.TargetNumber
		tx.Note = req.Note
		return uow.Transactions().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer executed",
		"transaction_id", tx.ID, "sender", req.SenderUserID,
		"amount", req.Amount, "status", tx.Status)
	_ = s.bus.Emit(ctx, events.TransferExecuted{
		TransactionID:  tx.ID,
		SenderUserID:   req.SenderUserID,
		ReceiverUserID: receiverUser,
		SenderName:     senderName,
		Amount:         req.Amount,
		Kind:           tx.Type,
		Status:         tx.Status,
	})
	return tx, nil
}

// Deposit records a check deposit for review. No balance changes until the
// settlement sweep accepts it.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount money.Money, note string) (*account.Transaction, error) {
	if !amount.IsPositive() {
		return nil, account.ErrAmountMustBePositive
	}
	var tx *account.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if acc.IsBlocked() {
			return account.ErrAccountBlocked
		}
		tx = account.NewTransaction(account.TxDeposit, account.TxProcessing, amount)
		tx.ReceiverID = &userID
		tx.Note = note
		return uow.Transactions().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	_ = s.bus.Emit(ctx, events.DepositSubmitted{
		TransactionID: tx.ID,
		UserID:        userID,
		Amount:        amount,
	})
	return tx, nil
}

// PayBill debits the account and records a successful payment in one unit of
// work. Bill payments are PIN-guarded but never OTP-gated.
func (s *Service) PayBill(ctx context.Context, userID uuid.UUID, biller string, amount money.Money, pin string) (*account.Transaction, error) {
	if !amount.IsPositive() {
		return nil, account.ErrAmountMustBePositive
	}
	if err := s.pins.Verify(ctx, userID, pin); err != nil {
		return nil, err
	}
	var tx *account.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := ledger.Debit(ctx, uow, acc.ID, amount); err != nil {
			return err
		}
		tx = account.NewTransaction(account.TxPayment, account.TxSuccess, amount)
		tx.SenderID = &userID
		tx.Note = biller
		return uow.Transactions().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	_ = s.bus.Emit(ctx, events.BillPaid{
		TransactionID: tx.ID,
		UserID:        userID,
		Amount:        amount,
		Biller:        biller,
	})
	return tx, nil
}
