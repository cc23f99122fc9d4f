package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/veltris/banking/pkg/ticket"
)

// RedisStore implements ticket.Store on Redis. Expiry is delegated to Redis
// TTLs, so Get never returns an expired ticket.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed ticket store from client options.
func NewRedisStore(opt *redis.Options, prefix string, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(opt),
		prefix: prefix,
		logger: logger.With("store", "redis-ticket"),
	}
}

func (s *RedisStore) key(identity uuid.UUID, purpose ticket.Purpose) string {
	return s.prefix + identity.String() + ":" + string(purpose)
}

// Put stores the ticket with a TTL matching its expiry.
func (s *RedisStore) Put(ctx context.Context, t ticket.Ticket) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to store
	}
	return s.client.Set(ctx, s.key(t.Identity, t.Purpose), data, ttl).Err()
}

// Get returns the stored ticket or ticket.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, identity uuid.UUID, purpose ticket.Purpose) (*ticket.Ticket, error) {
	data, err := s.client.Get(ctx, s.key(identity, purpose)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ticket.ErrNotFound
		}
		return nil, err
	}
	var t ticket.Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		s.logger.Error("corrupt ticket payload", "key", s.key(identity, purpose), "error", err)
		return nil, ticket.ErrNotFound
	}
	return &t, nil
}

// Delete removes the ticket if present.
func (s *RedisStore) Delete(ctx context.Context, identity uuid.UUID, purpose ticket.Purpose) error {
	return s.client.Del(ctx, s.key(identity, purpose)).Err()
}

// consumeScript deletes the ticket only when the stored code matches, in one
// server-side step. Returns the ticket JSON on a match and "mismatch"
// otherwise; a missing key yields a nil reply.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return false
end
local t = cjson.decode(v)
if t.code ~= ARGV[1] then
	return 'mismatch'
end
redis.call('DEL', KEYS[1])
return v
`)

// ConsumeIfMatch redeems the ticket exactly once: the compare and the delete
// run as one script, so concurrent verifications of the same code cannot
// both succeed. Expired tickets are gone by TTL and report ErrNotFound.
func (s *RedisStore) ConsumeIfMatch(ctx context.Context, identity uuid.UUID, purpose ticket.Purpose, code string) (*ticket.Ticket, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(identity, purpose)}, code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ticket.ErrNotFound
		}
		return nil, err
	}
	data, ok := res.(string)
	if !ok {
		return nil, ticket.ErrNotFound
	}
	if data == "mismatch" {
		return nil, ticket.ErrCodeMismatch
	}
	var t ticket.Ticket
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		s.logger.Error("corrupt ticket payload", "key", s.key(identity, purpose), "error", err)
		return nil, ticket.ErrNotFound
	}
	return &t, nil
}

var _ ticket.Store = (*RedisStore)(nil)
