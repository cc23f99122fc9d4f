package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/veltris/banking/pkg/repository"
)

// UoW implements repository.UnitOfWork on a *gorm.DB. Do opens a database
// transaction and hands fn a UoW bound to it, so repositories obtained inside
// fn share the same transaction.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a unit of work over the given database handle.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do executes fn within a transaction boundary. Nested calls reuse the
// enclosing transaction through GORM's savepoint support.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

// Accounts returns the account repository bound to this unit of work.
func (u *UoW) Accounts() repository.AccountRepository {
	return &accountRepository{db: u.db}
}

// Transactions returns the transaction repository bound to this unit of work.
func (u *UoW) Transactions() repository.TransactionRepository {
	return &transactionRepository{db: u.db}
}

// Loans returns the loan repository bound to this unit of work.
func (u *UoW) Loans() repository.LoanRepository {
	return &loanRepository{db: u.db}
}

// Notifications returns the notification repository bound to this unit of work.
func (u *UoW) Notifications() repository.NotificationRepository {
	return &notificationRepository{db: u.db}
}

// Users returns the user repository bound to this unit of work.
func (u *UoW) Users() repository.UserRepository {
	return &userRepository{db: u.db}
}

var _ repository.UnitOfWork = (*UoW)(nil)
