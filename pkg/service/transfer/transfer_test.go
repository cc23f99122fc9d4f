package transfer_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltris/banking/infra/eventbus"
	infraticket "github.com/veltris/banking/infra/ticket"
	"github.com/veltris/banking/internal/fixtures"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/otp"
	"github.com/veltris/banking/pkg/service/pinguard"
	"github.com/veltris/banking/pkg/service/transfer"
	"github.com/veltris/banking/pkg/utils"
)

const testPin = "1234"

type env struct {
	svc     *transfer.Service
	uow     *fixtures.MemoryUoW
	bus     *eventbus.MemoryBus
	channel *fixtures.RecordingOTPChannel
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := fixtures.NewMemoryUoW()
	bus := eventbus.NewMemoryBus(logger)
	channel := &fixtures.RecordingOTPChannel{}
	pins := pinguard.New(uow, bus, logger)
	store := infraticket.NewMemoryStore()
	t.Cleanup(store.Close)
	codes := otp.New(store, channel, 10*time.Minute, logger)
	threshold := money.FromCents(100_000)
	return &env{
		svc:     transfer.New(uow, bus, pins, codes, threshold, logger),
		uow:     uow,
		bus:     bus,
		channel: channel,
	}
}

func (e *env) seed(t *testing.T, name string, cents int64) *account.Account {
	t.Helper()
	u := &user.User{ID: uuid.New(), Username: name, Email: name + "@example.com"}
	e.uow.SeedUser(u)
	acc, err := account.New().WithUserID(u.ID).WithBalance(money.Amount(cents)).Build()
	require.NoError(t, err)
	acc.PinHash = pinHash(t)
	e.uow.SeedAccount(acc)
	return acc
}

var cachedPinHash string

func pinHash(t *testing.T) string {
	t.Helper()
	if cachedPinHash == "" {
		h, err := utils.HashPin(testPin)
		require.NoError(t, err)
		cachedPinHash = h
	}
	return cachedPinHash
}

func (e *env) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	acc, err := e.uow.Accounts().Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.Cents()
}

func TestTransfer_BelowThresholdSettlesImmediately(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100_000)
	receiver := e.seed(t, "bob", 0)

	res, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(50_000),
		Pin:          testPin,
	})
	require.NoError(t, err)
	require.False(t, res.OtpRequired)
	require.NotNil(t, res.Transaction)

	assert.Equal(t, account.TxSuccess, res.Transaction.Status)
	assert.Equal(t, int64(50_000), e.balance(t, sender.ID))
	assert.Equal(t, int64(50_000), e.balance(t, receiver.ID))
	assert.Empty(t, e.channel.Delivered())

	published := e.bus.Published()
	require.Len(t, published, 1)
	executed, ok := published[0].(events.TransferExecuted)
	require.True(t, ok)
	require.NotNil(t, executed.ReceiverUserID)
	assert.Equal(t, receiver.UserID, *executed.ReceiverUserID)
	assert.Equal(t, "alice", executed.SenderName)
}

func TestTransfer_ThresholdRequiresOtpAndDefersNothing(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)
	receiver := e.seed(t, "bob", 0)

	res, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.NoError(t, err)
	assert.True(t, res.OtpRequired)
	assert.Nil(t, res.Transaction)

	// Nothing moved while the attempt is suspended.
	assert.Equal(t, int64(200_000), e.balance(t, sender.ID))
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))
	require.Len(t, e.channel.Delivered(), 1)
}

func TestConfirmTransfer_ExecutesDeferred(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)
	receiver := e.seed(t, "bob", 0)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.NoError(t, err)

	tx, err := e.svc.ConfirmTransfer(context.Background(), sender.UserID, e.channel.LastCode())
	require.NoError(t, err)

	// At the threshold the transfer lands in processing; the receiver is
	// credited by the settlement sweep, not here.
	assert.Equal(t, account.TxProcessing, tx.Status)
	assert.Equal(t, int64(50_000), e.balance(t, sender.ID))
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))

	var executed *events.TransferExecuted
	for _, ev := range e.bus.Published() {
		if te, ok := ev.(events.TransferExecuted); ok {
			executed = &te
		}
	}
	require.NotNil(t, executed)
	assert.Nil(t, executed.ReceiverUserID)
}

func TestConfirmTransfer_ConcurrentConfirmsExecuteOnce(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)
	receiver := e.seed(t, "bob", 0)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.NoError(t, err)
	code := e.channel.LastCode()

	const racers = 4
	start := make(chan struct{})
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.svc.ConfirmTransfer(context.Background(), sender.UserID, code)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	// The code redeems once; the other racers find nothing pending.
	var confirmed int
	for err := range errs {
		if err == nil {
			confirmed++
		} else {
			assert.ErrorIs(t, err, otp.ErrNoPendingAction)
		}
	}
	assert.Equal(t, 1, confirmed)

	assert.Equal(t, int64(50_000), e.balance(t, sender.ID))
	txns, err := e.uow.Transactions().ListByUser(context.Background(), sender.UserID, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "a single debit and a single transaction row")
}

func TestConfirmTransfer_WrongCode(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)
	receiver := e.seed(t, "bob", 0)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.NoError(t, err)

	if e.channel.LastCode() == "000000" {
		t.Skip("generated code collided with the wrong guess")
	}
	_, err = e.svc.ConfirmTransfer(context.Background(), sender.UserID, "000000")
	require.ErrorIs(t, err, otp.ErrInvalidCode)
	assert.Equal(t, int64(200_000), e.balance(t, sender.ID))
}

func TestConfirmTransfer_NothingPending(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)

	_, err := e.svc.ConfirmTransfer(context.Background(), sender.UserID, "123456")
	assert.ErrorIs(t, err, otp.ErrNoPendingAction)
}

func TestConfirmTransfer_FundsRecheckedAtExecution(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 200_000)
	receiver := e.seed(t, "bob", 0)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.NoError(t, err)

	// Drain the balance while the attempt is suspended.
	drained, err := e.uow.Accounts().Get(context.Background(), sender.ID)
	require.NoError(t, err)
	require.NoError(t, drained.Debit(money.FromCents(100_000)))
	e.uow.SeedAccount(drained)

	_, err = e.svc.ConfirmTransfer(context.Background(), sender.UserID, e.channel.LastCode())
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	// All-or-nothing: the failed execution left no trace.
	assert.Equal(t, int64(100_000), e.balance(t, sender.ID))
	assert.Equal(t, int64(0), e.balance(t, receiver.ID))
	txns, err := e.uow.Transactions().ListByUser(context.Background(), sender.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestTransfer_WireAlwaysStepsUp(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100_000)

	res, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		Amount:       money.FromCents(5_000),
		Pin:          testPin,
		Wire: &account.WireDetails{
			AccountNumber: "987654321",
			BankName:      "First National",
			RoutingNumber: "021000021",
		},
	})
	require.NoError(t, err)
	require.True(t, res.OtpRequired)

	tx, err := e.svc.ConfirmTransfer(context.Background(), sender.UserID, e.channel.LastCode())
	require.NoError(t, err)
	assert.Equal(t, account.TxWire, tx.Type)
	assert.Equal(t, account.TxProcessing, tx.Status)
	require.NotNil(t, tx.Wire)
	assert.Equal(t, "First National", tx.Wire.BankName)
	assert.Equal(t, int64(95_000), e.balance(t, sender.ID))
}

func TestTransfer_RejectsSelfAndUnknownTarget(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100_000)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: sender.Number,
		Amount:       money.FromCents(100),
		Pin:          testPin,
	})
	assert.ErrorIs(t, err, account.ErrCannotTransferToSameAccount)

	_, err = e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: "9999999999",
		Amount:       money.FromCents(100),
		Pin:          testPin,
	})
	assert.ErrorIs(t, err, account.ErrRecipientNotFound)
	assert.Equal(t, int64(100_000), e.balance(t, sender.ID))
}

func TestTransfer_PinFailureWinsOverFunds(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100)
	receiver := e.seed(t, "bob", 0)

	// Both the PIN and the funds are wrong; the PIN error is reported.
	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(1_000),
		Pin:          "0000",
	})
	assert.ErrorIs(t, err, account.ErrWrongPin)
}

func TestTransfer_InsufficientFundsBeforeOtp(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100)
	receiver := e.seed(t, "bob", 0)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: receiver.Number,
		Amount:       money.FromCents(150_000),
		Pin:          testPin,
	})
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	// No code goes out for a transfer that could never execute.
	assert.Empty(t, e.channel.Delivered())
}

func TestTransfer_RejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)
	sender := e.seed(t, "alice", 100_000)

	_, err := e.svc.Transfer(context.Background(), transfer.Request{
		SenderUserID: sender.UserID,
		TargetNumber: "1111111111",
		Amount:       money.Zero(),
		Pin:          testPin,
	})
	assert.ErrorIs(t, err, account.ErrAmountMustBePositive)
}

func TestDeposit_EntersReviewWithoutCrediting(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 1_000)

	tx, err := e.svc.Deposit(context.Background(), acc.UserID, money.FromCents(25_000), "payroll check")
	require.NoError(t, err)
	assert.Equal(t, account.TxDeposit, tx.Type)
	assert.Equal(t, account.TxProcessing, tx.Status)
	assert.Equal(t, int64(1_000), e.balance(t, acc.ID))

	published := e.bus.Published()
	require.Len(t, published, 1)
	_, ok := published[0].(events.DepositSubmitted)
	assert.True(t, ok)
}

func TestPayBill(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 10_000)

	tx, err := e.svc.PayBill(context.Background(), acc.UserID, "City Power & Light", money.FromCents(4_000), testPin)
	require.NoError(t, err)
	assert.Equal(t, account.TxPayment, tx.Type)
	assert.Equal(t, account.TxSuccess, tx.Status)
	assert.Equal(t, int64(6_000), e.balance(t, acc.ID))

	published := e.bus.Published()
	require.Len(t, published, 1)
	paid, ok := published[0].(events.BillPaid)
	require.True(t, ok)
	assert.Equal(t, "City Power & Light", paid.Biller)
}

func TestPayBill_InsufficientFunds(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "alice", 1_000)

	_, err := e.svc.PayBill(context.Background(), acc.UserID, "City Power & Light", money.FromCents(4_000), testPin)
	require.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, int64(1_000), e.balance(t, acc.ID))
}
