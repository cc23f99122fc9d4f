// Package loan holds the loan aggregate: application, approval, repayment
// tracking and payoff detection.
package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/money"
)

var (
	// ErrLoanNotFound is returned when a loan cannot be found.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrNotPending is returned when approval or rejection is attempted on a
	// loan that already left the pending state. Guards against double
	// approval crediting the borrower twice.
	ErrNotPending = errors.New("loan is not pending")

	// ErrNotApproved is returned when a repayment targets a loan that is not
	// in the approved state.
	ErrNotApproved = errors.New("loan is not approved")

	// ErrExceedsRemaining is returned when a repayment is larger than the
	// outstanding balance.
	ErrExceedsRemaining = errors.New("repayment exceeds remaining balance")

	// ErrInvalidTerm is returned when the term is not a positive month count.
	ErrInvalidTerm = errors.New("loan term must be a positive number of months")
)

// InterestPercent is the flat interest rate applied once, at application
// time. Approval never recomputes it.
const InterestPercent = 5

// Status is the lifecycle state of a loan.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaid     Status = "paid"
)

// Loan tracks one credit line from application to payoff.
//
// Invariants:
//   - AmountPaid is monotonically non-decreasing and never exceeds
//     TotalRepayment.
//   - Status becomes paid exactly when AmountPaid >= TotalRepayment.
type Loan struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Principal      money.Money
	TermMonths     int
	Purpose        string
	Status         Status
	TotalRepayment money.Money
	AmountPaid     money.Money
	AppliedAt      time.Time
	UpdatedAt      time.Time
}

// Builder constructs Loan instances.
type Builder struct {
	id             uuid.UUID
	userID         uuid.UUID
	principal      money.Money
	termMonths     int
	purpose        string
	status         Status
	totalRepayment money.Money
	amountPaid     money.Money
	appliedAt      time.Time
}

// New returns a Builder with application defaults.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		status:    StatusPending,
		appliedAt: time.Now(),
	}
}

func (b *Builder) WithID(id uuid.UUID) *Builder               { b.id = id; return b }
func (b *Builder) WithUserID(userID uuid.UUID) *Builder       { b.userID = userID; return b }
func (b *Builder) WithPrincipal(p money.Money) *Builder       { b.principal = p; return b }
func (b *Builder) WithTermMonths(months int) *Builder         { b.termMonths = months; return b }
func (b *Builder) WithPurpose(purpose string) *Builder        { b.purpose = purpose; return b }
func (b *Builder) WithStatus(s Status) *Builder               { b.status = s; return b }
func (b *Builder) WithTotalRepayment(t money.Money) *Builder  { b.totalRepayment = t; return b }
func (b *Builder) WithAmountPaid(paid money.Money) *Builder   { b.amountPaid = paid; return b }
func (b *Builder) WithAppliedAt(at time.Time) *Builder        { b.appliedAt = at; return b }

// Build validates invariants and returns the Loan. TotalRepayment is fixed
// here, at creation: principal plus the flat interest, unless a value was
// pre-set (hydration).
func (b *Builder) Build() (*Loan, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if !b.principal.IsPositive() {
		return nil, money.ErrInvalidAmount
	}
	if b.termMonths <= 0 {
		return nil, ErrInvalidTerm
	}
	total := b.totalRepayment
	if total.IsZero() {
		t, err := b.principal.Add(b.principal.MulPercent(InterestPercent))
		if err != nil {
			return nil, err
		}
		total = t
	}
	return &Loan{
		ID:             b.id,
		UserID:         b.userID,
		Principal:      b.principal,
		TermMonths:     b.termMonths,
		Purpose:        b.purpose,
		Status:         b.status,
		TotalRepayment: total,
		AmountPaid:     b.amountPaid,
		AppliedAt:      b.appliedAt,
	}, nil
}

// Remaining returns the outstanding repayment balance.
func (l *Loan) Remaining() money.Money {
	remaining, err := l.TotalRepayment.Sub(l.AmountPaid)
	if err != nil {
		return money.Zero()
	}
	return remaining
}

// Approve transitions pending -> approved. Any other source state is an
// invalid transition, making the approval credit exactly-once.
func (l *Loan) Approve() error {
	if l.Status != StatusPending {
		return ErrNotPending
	}
	l.Status = StatusApproved
	return nil
}

// Reject transitions pending -> rejected.
func (l *Loan) Reject() error {
	if l.Status != StatusPending {
		return ErrNotPending
	}
	l.Status = StatusRejected
	return nil
}

// ApplyPayment records a repayment. The amount must be positive, must not
// exceed the remaining balance, and flips the status to paid exactly when the
// total is reached.
func (l *Loan) ApplyPayment(amount money.Money) error {
	if l.Status != StatusApproved {
		return ErrNotApproved
	}
	if !amount.IsPositive() {
		return money.ErrInvalidAmount
	}
	if amount.GreaterThan(l.Remaining()) {
		return ErrExceedsRemaining
	}
	paid, err := l.AmountPaid.Add(amount)
	if err != nil {
		return err
	}
	l.AmountPaid = paid
	if l.AmountPaid.GreaterThanOrEqual(l.TotalRepayment) {
		l.Status = StatusPaid
	}
	return nil
}

// PaidOff reports whether the loan reached the paid state.
func (l *Loan) PaidOff() bool { return l.Status == StatusPaid }
