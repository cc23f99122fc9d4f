// Package account holds the account and transaction aggregates of the
// banking core. Accounts are the single balance-bearing entity; every
// monetary event is recorded against them as an immutable Transaction.
package account

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/money"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds is returned when a debit would overdraw the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountBlocked is returned when an operation is attempted on a blocked
	// account. Blocked is terminal until an operator unblocks the account.
	ErrAccountBlocked = errors.New("account blocked")

	// ErrWrongPin is returned when the supplied transaction PIN does not match.
	ErrWrongPin = errors.New("incorrect pin")

	// ErrPinNotSet is returned when a PIN-guarded operation is attempted before
	// a transaction PIN exists.
	ErrPinNotSet = errors.New("transaction pin not set")

	// ErrInvalidPin is returned when a candidate PIN is not exactly 4 digits.
	ErrInvalidPin = errors.New("pin must be exactly 4 digits")

	// ErrRecipientNotFound is returned when a transfer target account number
	// does not exist.
	ErrRecipientNotFound = errors.New("recipient account not found")

	// ErrCannotTransferToSameAccount is returned when a transfer targets the
	// sender's own account number.
	ErrCannotTransferToSameAccount = errors.New("cannot transfer to same account")

	// ErrAmountMustBePositive is returned when a transaction amount is not
	// strictly positive.
	ErrAmountMustBePositive = errors.New("transaction amount must be positive")
)

// MaxPinAttempts is the number of consecutive wrong-PIN entries that blocks
// the account. The counter resets to zero on any successful verification.
const MaxPinAttempts = 5

// WrongPinError carries the remaining-attempts count alongside ErrWrongPin so
// callers can surface "N attempts left" without a second read.
type WrongPinError struct {
	Remaining int
}

func (e *WrongPinError) Error() string {
	return fmt.Sprintf("incorrect pin, %d attempts left", e.Remaining)
}

// Is makes errors.Is(err, ErrWrongPin) match.
func (e *WrongPinError) Is(target error) bool { return target == ErrWrongPin }

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusBlocked Status = "blocked"
)

// Account is the aggregate root for a user's balance, PIN security state and
// KYC flags. One account per user identity; accounts are never deleted.
//
// Invariants:
//   - Balance is never negative.
//   - PinAttempts resets to zero on successful PIN verification and the
//     account becomes blocked at the MaxPinAttempts-th consecutive mismatch.
type Account struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Number      string
	Balance     money.Money
	Status      Status
	PinHash     string // empty until the user creates a transaction PIN
	PinAttempts int
	CreditScore int

	KYCSubmitted bool
	KYCConfirmed bool

	EmailAlerts bool
	HideBalance bool
	DarkMode    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultCreditScore is assigned at registration.
const DefaultCreditScore = 680

// Builder constructs Account instances, applying defaults and validating
// invariants before the aggregate exists.
type Builder struct {
	id          uuid.UUID
	userID      uuid.UUID
	number      string
	balance     money.Amount
	status      Status
	creditScore int
	createdAt   time.Time
}

// New returns a Builder with registration defaults: fresh ID, zero balance,
// active status and the default credit score.
func New() *Builder {
	return &Builder{
		id:          uuid.New(),
		status:      StatusActive,
		creditScore: DefaultCreditScore,
		createdAt:   time.Now(),
	}
}

// WithID sets the account ID. Used when hydrating from a data store.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owning user. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithNumber sets the account number. When empty, Build generates a fresh
// 10-digit number.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithBalance sets the initial balance in cents. Only for hydration and test
// setup; new accounts open at zero.
func (b *Builder) WithBalance(cents money.Amount) *Builder {
	b.balance = cents
	return b
}

// WithStatus overrides the default active status.
func (b *Builder) WithStatus(s Status) *Builder {
	b.status = s
	return b
}

// Build validates invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if b.balance < 0 {
		return nil, money.ErrNegativeResult
	}
	number := b.number
	if number == "" {
		n, err := NewNumber()
		if err != nil {
			return nil, err
		}
		number = n
	}
	return &Account{
		ID:          b.id,
		UserID:      b.userID,
		Number:      number,
		Balance:     money.FromCents(b.balance),
		Status:      b.status,
		CreditScore: b.creditScore,
		EmailAlerts: true,
		CreatedAt:   b.createdAt,
	}, nil
}

// NewNumber generates a random 10-digit account number.
func NewNumber() (string, error) {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	digits := make([]byte, len(buf))
	for i, c := range buf {
		digits[i] = '0' + c%10
	}
	// No leading zero so the number always renders at full width.
	if digits[0] == '0' {
		digits[0] = '9'
	}
	return string(digits), nil
}

// IsBlocked reports whether the account is in the terminal blocked state.
func (a *Account) IsBlocked() bool { return a.Status == StatusBlocked }

// CanDebit checks that amount is positive and covered by the balance.
func (a *Account) CanDebit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// Debit removes amount from the balance after CanDebit passes.
func (a *Account) Debit(amount money.Money) error {
	if err := a.CanDebit(amount); err != nil {
		return err
	}
	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}
