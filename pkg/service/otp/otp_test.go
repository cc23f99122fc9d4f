package otp_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraticket "github.com/veltris/banking/infra/ticket"
	"github.com/veltris/banking/internal/fixtures"
	"github.com/veltris/banking/pkg/service/otp"
	"github.com/veltris/banking/pkg/ticket"
)

func newService(t *testing.T, validity time.Duration) (*otp.Service, *fixtures.RecordingOTPChannel, ticket.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := infraticket.NewMemoryStore()
	t.Cleanup(store.Close)
	channel := &fixtures.RecordingOTPChannel{}
	return otp.New(store, channel, validity, logger), channel, store
}

func TestIssueAndVerify(t *testing.T) {
	svc, channel, _ := newService(t, 10*time.Minute)
	userID := uuid.New()

	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeTransfer, []byte(`{"amount":50}`)))

	delivered := channel.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, userID, delivered[0].UserID)
	assert.Len(t, delivered[0].Code, otp.CodeLength)

	payload, err := svc.Verify(context.Background(), userID, ticket.PurposeTransfer, delivered[0].Code)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"amount":50}`), payload)

	// The ticket is consumed; a second verify finds nothing.
	_, err = svc.Verify(context.Background(), userID, ticket.PurposeTransfer, delivered[0].Code)
	assert.ErrorIs(t, err, otp.ErrNoPendingAction)
}

func TestVerify_WrongCodeKeepsTicket(t *testing.T) {
	svc, channel, _ := newService(t, 10*time.Minute)
	userID := uuid.New()
	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeLogin, nil))

	_, err := svc.Verify(context.Background(), userID, ticket.PurposeLogin, "000000")
	if channel.LastCode() == "000000" {
		t.Skip("generated code collided with the wrong guess")
	}
	require.ErrorIs(t, err, otp.ErrInvalidCode)

	// The real code still works after a failed guess.
	_, err = svc.Verify(context.Background(), userID, ticket.PurposeLogin, channel.LastCode())
	assert.NoError(t, err)
}

func TestVerify_Expired(t *testing.T) {
	svc, channel, store := newService(t, -time.Minute)
	userID := uuid.New()
	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeTransfer, []byte("x")))

	_, err := svc.Verify(context.Background(), userID, ticket.PurposeTransfer, channel.LastCode())
	require.ErrorIs(t, err, otp.ErrCodeExpired)

	// Expiry removed the ticket.
	_, err = store.Get(context.Background(), userID, ticket.PurposeTransfer)
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestVerify_NoPendingAction(t *testing.T) {
	svc, _, _ := newService(t, 10*time.Minute)

	_, err := svc.Verify(context.Background(), uuid.New(), ticket.PurposeTransfer, "123456")
	assert.ErrorIs(t, err, otp.ErrNoPendingAction)
}

func TestIssue_ReplacesPreviousCode(t *testing.T) {
	svc, channel, _ := newService(t, 10*time.Minute)
	userID := uuid.New()

	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeTransfer, nil))
	first := channel.LastCode()
	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeTransfer, nil))
	second := channel.LastCode()
	if first == second {
		t.Skip("consecutive codes collided")
	}

	_, err := svc.Verify(context.Background(), userID, ticket.PurposeTransfer, first)
	assert.ErrorIs(t, err, otp.ErrInvalidCode)
	_, err = svc.Verify(context.Background(), userID, ticket.PurposeTransfer, second)
	assert.NoError(t, err)
}

func TestResend_KeepsPayload(t *testing.T) {
	svc, channel, _ := newService(t, 10*time.Minute)
	userID := uuid.New()
	require.NoError(t, svc.Issue(context.Background(), userID, ticket.PurposeTransfer, []byte("pending-transfer")))

	require.NoError(t, svc.Resend(context.Background(), userID, ticket.PurposeTransfer))
	require.Len(t, channel.Delivered(), 2)

	payload, err := svc.Verify(context.Background(), userID, ticket.PurposeTransfer, channel.LastCode())
	require.NoError(t, err)
	assert.Equal(t, []byte("pending-transfer"), payload)
}

func TestResend_NothingPending(t *testing.T) {
	svc, _, _ := newService(t, 10*time.Minute)

	err := svc.Resend(context.Background(), uuid.New(), ticket.PurposeTransfer)
	assert.ErrorIs(t, err, otp.ErrNoPendingAction)
}
