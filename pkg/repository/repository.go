// Package repository defines the persistence contracts of the banking core.
// Implementations live in infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/loan"
	"github.com/veltris/banking/pkg/domain/notification"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/money"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	// GetForUpdate loads the account holding a row lock for the duration of
	// the enclosing unit of work. Callers locking two accounts must acquire
	// them in ascending ID order; see LockPair.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
}

// TransactionRepository defines data access for transaction records.
type TransactionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error)
	Create(ctx context.Context, t *account.Transaction) error
	Update(ctx context.Context, t *account.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*account.Transaction, error)
	// ListProcessingOlderThan returns processing transactions created before
	// cutoff, for the settlement sweep.
	ListProcessingOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Transaction, error)
	// MonthlySums returns the credited (in) and debited (out) totals for the
	// user in the given month.
	MonthlySums(ctx context.Context, userID uuid.UUID, year int, month time.Month) (in, out money.Money, err error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*loan.Loan, error)
	Create(ctx context.Context, l *loan.Loan) error
	Update(ctx context.Context, l *loan.Loan) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*loan.Loan, error)
	ListPending(ctx context.Context) ([]*loan.Loan, error)
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearForUser(ctx context.Context, userID uuid.UUID) error
}

// UserRepository defines data access for user identities.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
}
