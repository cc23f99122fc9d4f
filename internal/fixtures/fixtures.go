// Package fixtures provides in-memory test doubles for the persistence and
// delivery contracts: a map-backed unit of work with rollback-on-error, and
// recording providers.
package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/loan"
	"github.com/veltris/banking/pkg/domain/notification"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/repository"
)

// MemoryUoW implements repository.UnitOfWork over in-process maps. Do
// snapshots state and restores it when fn fails, mirroring a rolled-back
// database transaction. Concurrent Do calls serialize, the way row locks
// serialize the database implementation.
type MemoryUoW struct {
	txMu          sync.Mutex
	mu            sync.Mutex
	accounts      map[uuid.UUID]account.Account
	transactions  map[uuid.UUID]account.Transaction
	loans         map[uuid.UUID]loan.Loan
	notifications map[uuid.UUID]notification.Notification
	users         map[uuid.UUID]user.User
}

// NewMemoryUoW creates an empty in-memory unit of work.
func NewMemoryUoW() *MemoryUoW {
	return &MemoryUoW{
		accounts:      make(map[uuid.UUID]account.Account),
		transactions:  make(map[uuid.UUID]account.Transaction),
		loans:         make(map[uuid.UUID]loan.Loan),
		notifications: make(map[uuid.UUID]notification.Notification),
		users:         make(map[uuid.UUID]user.User),
	}
}

// Do runs fn, restoring the previous state if it returns an error. Only one
// unit of work runs at a time.
func (u *MemoryUoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()

	u.mu.Lock()
	snapAccounts := copyMap(u.accounts)
	snapTxns := copyMap(u.transactions)
	snapLoans := copyMap(u.loans)
	snapNotifs := copyMap(u.notifications)
	snapUsers := copyMap(u.users)
	u.mu.Unlock()

	if err := fn(u); err != nil {
		u.mu.Lock()
		u.accounts = snapAccounts
		u.transactions = snapTxns
		u.loans = snapLoans
		u.notifications = snapNotifs
		u.users = snapUsers
		u.mu.Unlock()
		return err
	}
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (u *MemoryUoW) Accounts() repository.AccountRepository           { return (*memAccounts)(u) }
func (u *MemoryUoW) Transactions() repository.TransactionRepository   { return (*memTransactions)(u) }
func (u *MemoryUoW) Loans() repository.LoanRepository                 { return (*memLoans)(u) }
func (u *MemoryUoW) Notifications() repository.NotificationRepository { return (*memNotifications)(u) }
func (u *MemoryUoW) Users() repository.UserRepository                 { return (*memUsers)(u) }

// SeedAccount stores an account directly, bypassing the repository contract.
func (u *MemoryUoW) SeedAccount(a *account.Account) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.accounts[a.ID] = *a
}

// SeedUser stores a user directly.
func (u *MemoryUoW) SeedUser(usr *user.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[usr.ID] = *usr
}

// SeedLoan stores a loan directly.
func (u *MemoryUoW) SeedLoan(l *loan.Loan) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.loans[l.ID] = *l
}

// SeedTransaction stores a transaction directly.
func (u *MemoryUoW) SeedTransaction(t *account.Transaction) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transactions[t.ID] = *t
}

var _ repository.UnitOfWork = (*MemoryUoW)(nil)

type memAccounts MemoryUoW

func (r *memAccounts) Get(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	out := a
	return &out, nil
}

func (r *memAccounts) GetByUserID(_ context.Context, userID uuid.UUID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID {
			out := a
			return &out, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *memAccounts) GetByNumber(_ context.Context, number string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Number == number {
			out := a
			return &out, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *memAccounts) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.Get(ctx, id)
}

func (r *memAccounts) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = *a
	return nil
}

func (r *memAccounts) Update(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return account.ErrAccountNotFound
	}
	r.accounts[a.ID] = *a
	return nil
}

type memTransactions MemoryUoW

func (r *memTransactions) Get(_ context.Context, id uuid.UUID) (*account.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, account.ErrTransactionNotFound
	}
	out := t
	return &out, nil
}

func (r *memTransactions) Create(_ context.Context, t *account.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = *t
	return nil
}

func (r *memTransactions) Update(_ context.Context, t *account.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[t.ID]
	if !ok {
		return account.ErrTransactionNotFound
	}
	stored.Status = t.Status
	stored.RejectionReason = t.RejectionReason
	r.transactions[t.ID] = stored
	return nil
}

func (r *memTransactions) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*account.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*account.Transaction
	for _, t := range r.transactions {
		if (t.SenderID != nil && *t.SenderID == userID) ||
			(t.ReceiverID != nil && *t.ReceiverID == userID) {
			cp := t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactions) ListProcessingOlderThan(_ context.Context, cutoff time.Time) ([]*account.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*account.Transaction
	for _, t := range r.transactions {
		if t.Status == account.TxProcessing && t.Date.Before(cutoff) {
			cp := t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memTransactions) MonthlySums(_ context.Context, userID uuid.UUID, year int, month time.Month) (money.Money, money.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var in, out int64
	for _, t := range r.transactions {
		if t.Status != account.TxSuccess || t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		if t.ReceiverID != nil && *t.ReceiverID == userID {
			in += t.Amount.Cents()
		}
		if t.SenderID != nil && *t.SenderID == userID {
			out += t.Amount.Cents()
		}
	}
	return money.FromCents(in), money.FromCents(out), nil
}

type memLoans MemoryUoW

func (r *memLoans) Get(_ context.Context, id uuid.UUID) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	out := l
	return &out, nil
}

func (r *memLoans) Create(_ context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[l.ID] = *l
	return nil
}

func (r *memLoans) Update(_ context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return loan.ErrLoanNotFound
	}
	r.loans[l.ID] = *l
	return nil
}

func (r *memLoans) ListByUser(_ context.Context, userID uuid.UUID) ([]*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Loan
	for _, l := range r.loans {
		if l.UserID == userID {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (r *memLoans) ListPending(_ context.Context) ([]*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Loan
	for _, l := range r.loans {
		if l.Status == loan.StatusPending {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out, nil
}

type memNotifications MemoryUoW

func (r *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID] = *n
	return nil
}

func (r *memNotifications) ListByUser(_ context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			cp := n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return notification.ErrNotificationNotFound
	}
	n.Read = true
	r.notifications[id] = n
	return nil
}

func (r *memNotifications) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[id]; !ok {
		return notification.ErrNotificationNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *memNotifications) ClearForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notifications {
		if n.UserID == userID {
			delete(r.notifications, id)
		}
	}
	return nil
}

type memUsers MemoryUoW

func (r *memUsers) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUsers) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return user.ErrUsernameTaken
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUsers) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}
