package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltris/banking/internal/fixtures"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/ledger"
)

func newService(t *testing.T) (*ledger.Service, *fixtures.MemoryUoW) {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	return ledger.New(uow, slog.New(slog.NewTextHandler(io.Discard, nil))), uow
}

func seedAccount(t *testing.T, uow *fixtures.MemoryUoW, cents int64) *account.Account {
	t.Helper()
	acc, err := account.New().WithUserID(uuid.New()).WithBalance(money.Amount(cents)).Build()
	require.NoError(t, err)
	uow.SeedAccount(acc)
	return acc
}

func TestDebit(t *testing.T) {
	svc, uow := newService(t)
	acc := seedAccount(t, uow, 10_000)

	got, err := svc.Debit(context.Background(), acc.ID, money.FromCents(2_500))
	require.NoError(t, err)
	assert.Equal(t, int64(7_500), got.Balance.Cents())

	stored, err := uow.Accounts().Get(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7_500), stored.Balance.Cents())
}

func TestDebit_InsufficientFundsLeavesBalance(t *testing.T) {
	svc, uow := newService(t)
	acc := seedAccount(t, uow, 1_000)

	_, err := svc.Debit(context.Background(), acc.ID, money.FromCents(1_001))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	stored, err := uow.Accounts().Get(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), stored.Balance.Cents())
}

func TestDebit_ExactBalanceToZero(t *testing.T) {
	svc, uow := newService(t)
	acc := seedAccount(t, uow, 5_000)

	got, err := svc.Debit(context.Background(), acc.ID, money.FromCents(5_000))
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestCredit(t *testing.T) {
	svc, uow := newService(t)
	acc := seedAccount(t, uow, 100)

	got, err := svc.Credit(context.Background(), acc.ID, money.FromCents(900))
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), got.Balance.Cents())
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	svc, uow := newService(t)
	acc := seedAccount(t, uow, 100)

	_, err := svc.Credit(context.Background(), acc.ID, money.Zero())
	assert.ErrorIs(t, err, account.ErrAmountMustBePositive)
}

func TestTransition(t *testing.T) {
	svc, uow := newService(t)
	tx := account.NewTransaction(account.TxTransfer, account.TxProcessing, money.FromCents(500))
	uow.SeedTransaction(tx)

	got, err := svc.Transition(context.Background(), tx.ID, account.TxSuccess)
	require.NoError(t, err)
	assert.Equal(t, account.TxSuccess, got.Status)

	// Terminal states reject further movement.
	_, err = svc.Transition(context.Background(), tx.ID, account.TxFailed)
	assert.ErrorIs(t, err, account.ErrInvalidTransition)
}

func TestLockPair_ReturnsArgumentOrder(t *testing.T) {
	_, uow := newService(t)
	a := seedAccount(t, uow, 1)
	b := seedAccount(t, uow, 2)

	first, second, err := ledger.LockPair(context.Background(), uow, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, first.ID)
	assert.Equal(t, b.ID, second.ID)

	// Swapped arguments still map back to the argument order.
	first, second, err = ledger.LockPair(context.Background(), uow, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, first.ID)
	assert.Equal(t, a.ID, second.ID)
}
