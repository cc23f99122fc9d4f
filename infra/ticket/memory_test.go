package ticket_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraticket "github.com/veltris/banking/infra/ticket"
	"github.com/veltris/banking/pkg/ticket"
)

func TestMemoryStore_PutReplaces(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	ctx := context.Background()
	identity := uuid.New()

	first := ticket.Ticket{
		Identity:  identity,
		Purpose:   ticket.PurposeTransfer,
		Code:      "111111",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, s.Put(ctx, first))

	second := first
	second.Code = "222222"
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Get(ctx, identity, ticket.PurposeTransfer)
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code, "new ticket replaces the pending one")
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	_, err := s.Get(context.Background(), uuid.New(), ticket.PurposeLogin)
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	ctx := context.Background()
	identity := uuid.New()

	require.NoError(t, s.Delete(ctx, identity, ticket.PurposeLogin))

	require.NoError(t, s.Put(ctx, ticket.Ticket{
		Identity:  identity,
		Purpose:   ticket.PurposeLogin,
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, s.Delete(ctx, identity, ticket.PurposeLogin))
	_, err := s.Get(ctx, identity, ticket.PurposeLogin)
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestMemoryStore_ConsumeIfMatch(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	ctx := context.Background()
	identity := uuid.New()

	require.NoError(t, s.Put(ctx, ticket.Ticket{
		Identity:  identity,
		Purpose:   ticket.PurposeTransfer,
		Code:      "123456",
		Payload:   []byte(`{"amount":50}`),
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	// A mismatch leaves the ticket in place.
	_, err := s.ConsumeIfMatch(ctx, identity, ticket.PurposeTransfer, "654321")
	require.ErrorIs(t, err, ticket.ErrCodeMismatch)

	got, err := s.ConsumeIfMatch(ctx, identity, ticket.PurposeTransfer, "123456")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"amount":50}`), got.Payload)

	// Consumed: the same code cannot redeem twice.
	_, err = s.ConsumeIfMatch(ctx, identity, ticket.PurposeTransfer, "123456")
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestMemoryStore_ConsumeIfMatchExpired(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	ctx := context.Background()
	identity := uuid.New()

	require.NoError(t, s.Put(ctx, ticket.Ticket{
		Identity:  identity,
		Purpose:   ticket.PurposeLogin,
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := s.ConsumeIfMatch(ctx, identity, ticket.PurposeLogin, "123456")
	require.ErrorIs(t, err, ticket.ErrExpired)

	// Expired tickets are evicted on the way out.
	_, err = s.Get(ctx, identity, ticket.PurposeLogin)
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestMemoryStore_ConsumeIfMatchSingleWinner(t *testing.T) {
	s := infraticket.NewMemoryStore()
	t.Cleanup(s.Close)
	ctx := context.Background()
	identity := uuid.New()

	require.NoError(t, s.Put(ctx, ticket.Ticket{
		Identity:  identity,
		Purpose:   ticket.PurposeTransfer,
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	const racers = 8
	start := make(chan struct{})
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.ConsumeIfMatch(ctx, identity, ticket.PurposeTransfer, "123456")
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ticket.ErrNotFound)
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer redeems the code")
}

func TestTicket_Expired(t *testing.T) {
	tk := ticket.Ticket{ExpiresAt: time.Now().Add(-time.Second)}
	assert.True(t, tk.Expired(time.Now()))
	tk.ExpiresAt = time.Now().Add(time.Minute)
	assert.False(t, tk.Expired(time.Now()))
}
