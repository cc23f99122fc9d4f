// Package ticket provides ticket.Store implementations: an in-memory store
// for single-process deployments and tests, and a Redis store.
package ticket

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/ticket"
)

// MemoryStore implements ticket.Store with an in-process map.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]ticket.Ticket

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates an in-memory ticket store and starts a janitor that
// evicts expired tickets. Close stops the janitor.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		tickets: make(map[string]ticket.Ticket),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func key(identity uuid.UUID, purpose ticket.Purpose) string {
	return identity.String() + ":" + string(purpose)
}

// Put stores the ticket, replacing any pending one for the same key.
func (s *MemoryStore) Put(_ context.Context, t ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[key(t.Identity, t.Purpose)] = t
	return nil
}

// Get returns the stored ticket or ticket.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, identity uuid.UUID, purpose ticket.Purpose) (*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[key(identity, purpose)]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	out := t
	return &out, nil
}

// Delete removes the ticket if present.
func (s *MemoryStore) Delete(_ context.Context, identity uuid.UUID, purpose ticket.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, key(identity, purpose))
	return nil
}

// ConsumeIfMatch removes and returns the ticket in one critical section, so
// a code can only ever be redeemed once.
func (s *MemoryStore) ConsumeIfMatch(_ context.Context, identity uuid.UUID, purpose ticket.Purpose, code string) (*ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(identity, purpose)
	t, ok := s.tickets[k]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	if t.Expired(time.Now()) {
		delete(s.tickets, k)
		return nil, ticket.ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(t.Code), []byte(code)) != 1 {
		return nil, ticket.ErrCodeMismatch
	}
	delete(s.tickets, k)
	out := t
	return &out, nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for k, t := range s.tickets {
				if t.Expired(now) {
					delete(s.tickets, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ ticket.Store = (*MemoryStore)(nil)
