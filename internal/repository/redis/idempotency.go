package redisrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemPending = "pending"
	idemDone    = "done:"
)

// Deletes KEYS[1] only while it still holds the pending marker.
var abandonScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore remembers the response of a request under a client-chosen key.
// A request first claims the key; the holder then either completes it with the
// response body or abandons it so a retry can run again.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Claim marks key as in progress for at most hold. It reports false when the
// key is already pending or completed.
func (s *IdempotencyStore) Claim(ctx context.Context, key string, hold time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemPending, hold).Result()
}

// Complete stores the response for replay for the store TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, response string) error {
	return s.rdb.Set(ctx, key, idemDone+response, s.ttl).Err()
}

// Response returns the stored response once the key has been completed.
func (s *IdempotencyStore) Response(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	resp, ok := strings.CutPrefix(v, idemDone)
	return resp, ok, nil
}

// Abandon frees a pending claim. A completed key is left alone.
func (s *IdempotencyStore) Abandon(ctx context.Context, key string) error {
	return abandonScript.Run(ctx, s.rdb, []string{key}, idemPending).Err()
}
