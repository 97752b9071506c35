package redisrepo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

type menu struct {
	Items []string `json:"items"`
}

func TestGetOrSetJSON_LoadsOnceThenServesCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	var calls atomic.Int32
	loader := func(ctx context.Context) (menu, error) {
		calls.Add(1)
		return menu{Items: []string{"Pilsen", "IPA"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrSetJSON(ctx, cache, KeyEventConfig(), time.Minute, loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pilsen", "IPA"}, got.Items)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mr.Exists(KeyEventConfig()))
	assert.Equal(t, time.Minute, mr.TTL(KeyEventConfig()))
}

func TestGetOrSetJSON_ConcurrentMissesShareLoader(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (menu, error) {
		calls.Add(1)
		<-release
		return menu{Items: []string{"Manga"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := GetOrSetJSON(ctx, cache, "k", time.Minute, loader)
			assert.NoError(t, err)
			assert.Equal(t, []string{"Manga"}, got.Items)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestGetOrSetJSON_LoaderErrorIsNotCached(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := New(client)
	boom := errors.New("db down")

	_, err := GetOrSetJSON(context.Background(), cache, "k", time.Minute,
		func(ctx context.Context) (menu, error) { return menu{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrSetJSON_RedisDownFallsThrough(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := New(client)
	mr.Close()

	got, err := GetOrSetJSON(context.Background(), cache, "k", time.Minute,
		func(ctx context.Context) (menu, error) { return menu{Items: []string{"Vinho"}}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"Vinho"}, got.Items)
}

func TestNilCache(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	got, err := GetOrSetJSON(ctx, cache, "k", time.Minute,
		func(ctx context.Context) (menu, error) { return menu{Items: []string{"IPA"}}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"IPA"}, got.Items)

	assert.NoError(t, cache.InvalidateConfig(ctx))
}

func TestInvalidateConfig(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := New(client)

	require.NoError(t, mr.Set(KeyEventConfig(), `{"items":["old"]}`))
	require.NoError(t, cache.InvalidateConfig(context.Background()))
	assert.False(t, mr.Exists(KeyEventConfig()))
}

func TestIdempotencyStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewIdempotencyStore(client, time.Hour)
	ctx := context.Background()
	key := KeyIdemSale("abc")

	_, ok, err := store.Response(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	claimed, err := store.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	again, err := store.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	_, ok, err = store.Response(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "a pending claim has no response")

	require.NoError(t, store.Complete(ctx, key, `{"sale_id":1}`))

	payload, ok, err := store.Response(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"sale_id":1}`, payload)
	assert.Equal(t, time.Hour, mr.TTL(key))

	require.NoError(t, store.Abandon(ctx, key))
	assert.True(t, mr.Exists(key), "completed keys survive abandon")
}

func TestIdempotencyStore_Abandon(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewIdempotencyStore(client, time.Hour)
	ctx := context.Background()
	key := KeyIdemSale("retry-me")

	claimed, err := store.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Abandon(ctx, key))
	assert.False(t, mr.Exists(key))

	claimed, err = store.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "an abandoned key can be claimed again")
}

func TestSlidingWindowLimiter(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewSlidingWindowLimiter(client, "writes", 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := limiter.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(i), d.Hits)
	}

	for range 2 {
		d, err := limiter.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, int64(3), d.Hits, "rejected hits are not recorded")
		assert.Greater(t, d.RetryAfter, time.Duration(0))
		assert.LessOrEqual(t, d.RetryAfter, time.Minute)
	}

	members, err := mr.ZMembers(KeyRateLimit("writes", "ip:10.0.0.1"))
	require.NoError(t, err)
	assert.Len(t, members, 3)

	d, err := limiter.Allow(ctx, "ip:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "limits are per id")
}

func TestLedgerPubSub(t *testing.T) {
	client, _ := setupTestRedis(t)
	ps := NewLedgerPubSub(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	got := make(chan LedgerChange, 1)
	done := make(chan error, 1)

	go func() {
		done <- ps.Subscribe(ctx, ready, func(ctx context.Context, c LedgerChange) {
			got <- c
		})
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not ready")
	}

	require.NoError(t, ps.Publish(ctx, ChangeSaleFinalized, 7))

	select {
	case c := <-got:
		assert.Equal(t, ChangeSaleFinalized, c.Type)
		assert.Equal(t, int64(7), c.SaleID)
		assert.NotZero(t, c.TsUnix)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestLedgerPubSub_PublishRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	ps := NewLedgerPubSub(client)
	mr.Close()

	err := ps.Publish(context.Background(), ChangeSaleFinalized, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redisrepo.LedgerPubSub.Publish")
}

func TestNilPubSubPublish(t *testing.T) {
	var ps *LedgerPubSub
	assert.NoError(t, ps.Publish(context.Background(), ChangeSystemReset, 0))
}
