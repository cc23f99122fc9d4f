// Package events defines the domain events emitted after money movement
// commits. Notification and alert side effects hang off these events so the
// ledger paths never block on delivery.
package events

import (
	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
)

// Event is the marker interface for all domain events.
type Event interface {
	Type() string
}

// TransferExecuted is emitted once a transfer attempt committed: the sender
// is debited and exactly one transaction row exists with the given status.
type TransferExecuted struct {
	TransactionID  uuid.UUID
	SenderUserID   uuid.UUID
	ReceiverUserID *uuid.UUID // set only when the receiver was credited immediately
	SenderName     string
	Amount         money.Money
	Kind           account.TxType
	Status         account.TxStatus
}

// TransferSettled is emitted when the settlement sweep promotes a processing
// transaction to success.
type TransferSettled struct {
	TransactionID  uuid.UUID
	SenderUserID   *uuid.UUID
	ReceiverUserID *uuid.UUID
	SenderName     string
	Amount         money.Money
	Kind           account.TxType
	Credited       bool // receiver credited at promotion time
}

// DepositSubmitted is emitted when a check deposit enters review.
type DepositSubmitted struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
	Amount        money.Money
}

// BillPaid is emitted after a successful bill payment.
type BillPaid struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
	Amount        money.Money
	Biller        string
}

// LoanApplied is emitted when a loan application is recorded.
type LoanApplied struct {
	LoanID    uuid.UUID
	UserID    uuid.UUID
	Principal money.Money
}

// LoanApproved is emitted exactly once, on the pending -> approved
// transition that credits the borrower.
type LoanApproved struct {
	LoanID    uuid.UUID
	UserID    uuid.UUID
	Principal money.Money
	Purpose   string
}

// LoanRejected is emitted on the pending -> rejected transition.
type LoanRejected struct {
	LoanID uuid.UUID
	UserID uuid.UUID
}

// LoanRepaid is emitted after a successful repayment.
type LoanRepaid struct {
	LoanID  uuid.UUID
	UserID  uuid.UUID
	Amount  money.Money
	PaidOff bool
}

// AccountBlocked is emitted when repeated wrong-PIN entries block an account.
type AccountBlocked struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
}

func (e TransferExecuted) Type() string { return "TransferExecuted" }
func (e TransferSettled) Type() string  { return "TransferSettled" }
func (e DepositSubmitted) Type() string { return "DepositSubmitted" }
func (e BillPaid) Type() string         { return "BillPaid" }
func (e LoanApplied) Type() string      { return "LoanApplied" }
func (e LoanApproved) Type() string     { return "LoanApproved" }
func (e LoanRejected) Type() string     { return "LoanRejected" }
func (e LoanRepaid) Type() string       { return "LoanRepaid" }
func (e AccountBlocked) Type() string   { return "AccountBlocked" }
