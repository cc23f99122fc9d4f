package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/money"
)

// ErrInvalidTransition is returned when a transaction status change is not
// allowed by the state machine.
var ErrInvalidTransition = errors.New("invalid transaction status transition")

// ErrTransactionNotFound is returned when a transaction cannot be found.
var ErrTransactionNotFound = errors.New("transaction not found")

// TxType classifies the monetary event a Transaction records.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxTransfer   TxType = "transfer"
	TxWire       TxType = "wire"
	TxPayment    TxType = "payment"
	TxLoan       TxType = "loan"
	TxRepayment  TxType = "repayment"
)

// IsExternal reports whether the type leaves the bank (wire transfers).
// External movements always settle with a delay.
func (t TxType) IsExternal() bool { return t == TxWire }

// TxStatus is the settlement state of a Transaction.
type TxStatus string

const (
	TxPending    TxStatus = "pending"
	TxProcessing TxStatus = "processing"
	TxSuccess    TxStatus = "success"
	TxFailed     TxStatus = "failed"
)

// CanTransitionTo reports whether the status state machine allows moving to
// next. Success and failed are terminal.
func (s TxStatus) CanTransitionTo(next TxStatus) bool {
	switch s {
	case TxPending:
		return next == TxProcessing || next == TxSuccess || next == TxFailed
	case TxProcessing:
		return next == TxSuccess || next == TxFailed
	default:
		return false
	}
}

// WireDetails carries the external-bank metadata of wire transfers.
type WireDetails struct {
	AccountNumber string
	BankName      string
	RoutingNumber string
}

// Transaction is the immutable record of one monetary event. At most the
// status (and its rejection reason) ever changes after creation; amount,
// parties and type never do. A transition into success is paired exactly once
// with the corresponding balance mutation.
type Transaction struct {
	ID         uuid.UUID
	SenderID   *uuid.UUID // nil when money enters from outside (deposits, loans)
	ReceiverID *uuid.UUID // nil when money leaves the bank (wires, bill pay)
	Amount     money.Money
	Type       TxType
	Status     TxStatus
	Date       time.Time

	RejectionReason string
	Wire            *WireDetails
	TargetNumber    string // recipient account number as entered
	Note            string
}

// NewTransaction creates a transaction record with a fresh ID and timestamp.
func NewTransaction(txType TxType, status TxStatus, amount money.Money) *Transaction {
	return &Transaction{
		ID:     uuid.New(),
		Amount: amount,
		Type:   txType,
		Status: status,
		Date:   time.Now(),
	}
}

// Transition moves the transaction to next if the state machine allows it.
func (t *Transaction) Transition(next TxStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	t.Status = next
	return nil
}
