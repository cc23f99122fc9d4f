package repository

import "context"

// UnitOfWork is the transaction boundary of the core. Do runs fn inside one
// database transaction; every repository obtained from the UnitOfWork passed
// to fn shares that transaction, so either all mutations of one logical
// operation commit or none do. If fn returns an error the transaction is
// rolled back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Accounts() AccountRepository
	Transactions() TransactionRepository
	Loans() LoanRepository
	Notifications() NotificationRepository
	Users() UserRepository
}
