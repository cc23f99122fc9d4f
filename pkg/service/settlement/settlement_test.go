package settlement_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltris/banking/infra/eventbus"
	"github.com/veltris/banking/internal/fixtures"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/settlement"
)

type env struct {
	svc *settlement.Service
	uow *fixtures.MemoryUoW
	bus *eventbus.MemoryBus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := fixtures.NewMemoryUoW()
	bus := eventbus.NewMemoryBus(logger)
	return &env{svc: settlement.New(uow, bus, 10*time.Minute, logger), uow: uow, bus: bus}
}

func (e *env) seed(t *testing.T, name string, cents int64) *account.Account {
	t.Helper()
	u := &user.User{ID: uuid.New(), Username: name, Email: name + "@example.com"}
	e.uow.SeedUser(u)
	acc, err := account.New().WithUserID(u.ID).WithBalance(money.Amount(cents)).Build()
	require.NoError(t, err)
	e.uow.SeedAccount(acc)
	return acc
}

func seedTx(e *env, txType account.TxType, status account.TxStatus, cents int64, age time.Duration, sender, receiver *uuid.UUID) *account.Transaction {
	tx := account.NewTransaction(txType, status, money.FromCents(cents))
	tx.Date = time.Now().Add(-age)
	tx.SenderID = sender
	tx.ReceiverID = receiver
	e.uow.SeedTransaction(tx)
	return tx
}

func (e *env) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	acc, err := e.uow.Accounts().Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.Cents()
}

func TestSweep_CreditsDeferredInternalTransfer(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	receiver := e.seed(t, "bob", 0)
	tx := seedTx(e, account.TxTransfer, account.TxProcessing, 150_000, 15*time.Minute, &sender.UserID, &receiver.UserID)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := e.uow.Transactions().Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxSuccess, stored.Status)
	assert.Equal(t, int64(150_000), e.balance(t, receiver.ID))

	published := e.bus.Published()
	require.Len(t, published, 1)
	settled, ok := published[0].(events.TransferSettled)
	require.True(t, ok)
	assert.True(t, settled.Credited)
	assert.Equal(t, "alice", settled.SenderName)
}

func TestSweep_WirePromotesWithoutCredit(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	tx := seedTx(e, account.TxWire, account.TxProcessing, 50_000, 15*time.Minute, &sender.UserID, nil)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := e.uow.Transactions().Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxSuccess, stored.Status)

	published := e.bus.Published()
	require.Len(t, published, 1)
	settled := published[0].(events.TransferSettled)
	assert.False(t, settled.Credited)
}

func TestSweep_CreditsReviewedDeposit(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 1_000)
	seedTx(e, account.TxDeposit, account.TxProcessing, 25_000, 15*time.Minute, nil, &acc.UserID)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(26_000), e.balance(t, acc.ID))
}

func TestSweep_LeavesYoungTransactions(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	receiver := e.seed(t, "bob", 0)
	tx := seedTx(e, account.TxTransfer, account.TxProcessing, 150_000, 2*time.Minute, &sender.UserID, &receiver.UserID)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err := e.uow.Transactions().Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxProcessing, stored.Status)
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))
}

func TestSweep_IgnoresTerminalStatuses(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	receiver := e.seed(t, "bob", 0)
	seedTx(e, account.TxTransfer, account.TxSuccess, 10_000, 15*time.Minute, &sender.UserID, &receiver.UserID)
	seedTx(e, account.TxTransfer, account.TxFailed, 10_000, 15*time.Minute, &sender.UserID, &receiver.UserID)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))
	assert.Empty(t, e.bus.Published())
}

func TestReview_ApproveSettlesImmediately(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 0)
	tx := seedTx(e, account.TxDeposit, account.TxProcessing, 25_000, time.Minute, nil, &acc.UserID)

	require.NoError(t, e.svc.Review(context.Background(), tx.ID, true, ""))

	stored, err := e.uow.Transactions().Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxSuccess, stored.Status)
	assert.Equal(t, int64(25_000), e.balance(t, acc.ID))
}

func TestReview_DenyDepositFailsWithoutCredit(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 0)
	tx := seedTx(e, account.TxDeposit, account.TxProcessing, 25_000, time.Minute, nil, &acc.UserID)

	require.NoError(t, e.svc.Review(context.Background(), tx.ID, false, "illegible check"))

	stored, err := e.uow.Transactions().Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxFailed, stored.Status)
	assert.Equal(t, "illegible check", stored.RejectionReason)
	assert.Equal(t, int64(0), e.balance(t, acc.ID))
}

func TestReview_DenyTransferRefundsSender(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	receiver := e.seed(t, "bob", 0)
	tx := seedTx(e, account.TxTransfer, account.TxProcessing, 150_000, time.Minute, &sender.UserID, &receiver.UserID)

	require.NoError(t, e.svc.Review(context.Background(), tx.ID, false, "fraud hold"))

	assert.Equal(t, int64(150_000), e.balance(t, sender.ID))
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))
}

func TestReview_TerminalTransactionRejected(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 0)
	tx := seedTx(e, account.TxDeposit, account.TxSuccess, 25_000, time.Minute, nil, &acc.UserID)

	err := e.svc.Review(context.Background(), tx.ID, false, "")
	assert.ErrorIs(t, err, account.ErrInvalidTransition)
}

func TestSweep_OneFailureDoesNotBlockOthers(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 0)
	receiver := e.seed(t, "bob", 0)

	// The first due transaction references a receiver that does not exist;
	// the second is fine.
	ghost := uuid.New()
	seedTx(e, account.TxTransfer, account.TxProcessing, 10_000, 20*time.Minute, &sender.UserID, &ghost)
	ok := seedTx(e, account.TxTransfer, account.TxProcessing, 10_000, 15*time.Minute, &sender.UserID, &receiver.UserID)

	n, err := e.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := e.uow.Transactions().Get(context.Background(), ok.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TxSuccess, stored.Status)
	assert.Equal(t, int64(10_000), e.balance(t, receiver.ID))
}
