package notificationsvc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltris/banking/infra/eventbus"
	"github.com/veltris/banking/internal/fixtures"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/domain/notification"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/notificationsvc"
)

func newService(t *testing.T) (*notificationsvc.Service, *fixtures.MemoryUoW, *fixtures.RecordingNotifier) {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	notifier := &fixtures.RecordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notificationsvc.New(uow, notifier, logger), uow, notifier
}

func TestNotify_StoresAndForwards(t *testing.T) {
	svc, uow, notifier := newService(t)
	userID := uuid.New()

	require.NoError(t, svc.Notify(context.Background(), userID, "Credit Alert", "You received $5.00 from alice."))

	list, err := uow.Notifications().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "You received $5.00 from alice.", list[0].Message)
	assert.False(t, list[0].Read)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Credit Alert", sent[0].Subject)
}

func TestNotify_DeliveryFailureStillStores(t *testing.T) {
	svc, uow, notifier := newService(t)
	notifier.Err = errors.New("smtp down")
	userID := uuid.New()

	require.NoError(t, svc.Notify(context.Background(), userID, "Alert", "hello"))

	list, err := uow.Notifications().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkReadDeleteClear(t *testing.T) {
	svc, uow, _ := newService(t)
	userID := uuid.New()
	require.NoError(t, svc.Notify(context.Background(), userID, "A", "one"))
	require.NoError(t, svc.Notify(context.Background(), userID, "B", "two"))

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.MarkRead(context.Background(), list[0].ID))
	list, err = svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	require.NoError(t, svc.Delete(context.Background(), list[0].ID))
	require.NoError(t, svc.Clear(context.Background(), userID))
	list, err = uow.Notifications().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.MarkRead(context.Background(), uuid.New()), notification.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), notification.ErrNotificationNotFound)
}

func TestHandlers_TransferCopy(t *testing.T) {
	svc, uow, _ := newService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewMemoryBus(logger)
	notificationsvc.RegisterHandlers(bus, svc)

	sender := uuid.New()
	receiver := uuid.New()
	require.NoError(t, bus.Emit(context.Background(), events.TransferExecuted{
		TransactionID:  uuid.New(),
		SenderUserID:   sender,
		ReceiverUserID: &receiver,
		SenderName:     "alice",
		Amount:         money.FromCents(50_000),
		Kind:           account.TxTransfer,
		Status:         account.TxSuccess,
	}))

	got, err := uow.Notifications().ListByUser(context.Background(), receiver)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Credit Alert: You received $500.00 from alice.", got[0].Message)

	senderList, err := uow.Notifications().ListByUser(context.Background(), sender)
	require.NoError(t, err)
	require.Len(t, senderList, 1)
	assert.Equal(t, "Debit Alert: You sent $500.00.", senderList[0].Message)
}

func TestHandlers_DeferredTransferNotifiesReceiverAtSettlement(t *testing.T) {
	svc, uow, _ := newService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewMemoryBus(logger)
	notificationsvc.RegisterHandlers(bus, svc)

	sender := uuid.New()
	receiver := uuid.New()

	require.NoError(t, bus.Emit(context.Background(), events.TransferExecuted{
		SenderUserID: sender,
		SenderName:   "alice",
		Amount:       money.FromCents(150_000),
		Kind:         account.TxTransfer,
		Status:       account.TxProcessing,
	}))
	got, err := uow.Notifications().ListByUser(context.Background(), receiver)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, bus.Emit(context.Background(), events.TransferSettled{
		SenderUserID:   &sender,
		ReceiverUserID: &receiver,
		SenderName:     "alice",
		Amount:         money.FromCents(150_000),
		Kind:           account.TxTransfer,
		Credited:       true,
	}))
	got, err = uow.Notifications().ListByUser(context.Background(), receiver)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Credit Alert: You received $1500.00 from alice.", got[0].Message)
}

func TestHandlers_LoanCopy(t *testing.T) {
	svc, uow, _ := newService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewMemoryBus(logger)
	notificationsvc.RegisterHandlers(bus, svc)
	userID := uuid.New()

	require.NoError(t, bus.Emit(context.Background(), events.LoanApproved{
		LoanID:    uuid.New(),
		UserID:    userID,
		Principal: money.FromCents(100_000),
	}))
	require.NoError(t, bus.Emit(context.Background(), events.LoanRepaid{
		LoanID:  uuid.New(),
		UserID:  userID,
		Amount:  money.FromCents(105_000),
		PaidOff: true,
	}))

	got, err := uow.Notifications().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
