package session_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/nikolayk812/ecomall/internal/port"
	"github.com/nikolayk812/ecomall/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return mr, client
}

func TestRedisStore_SetGetRemove(t *testing.T) {
	_, client := setupRedis(t)

	store, err := session.NewRedisStore(client, time.Hour)
	require.NoError(t, err)

	assertStoreRoundTrip(t, store)
}

func TestRedisStore_Expires(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := t.Context()

	store, err := session.NewRedisStore(client, time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "customer_category:s1", "bulk-club"))
	assert.True(t, mr.Exists("ecomall:session:customer_category:s1"))

	mr.FastForward(time.Minute + time.Second)

	_, found, err := store.Get(ctx, "customer_category:s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_ConnectionLost(t *testing.T) {
	mr, client := setupRedis(t)

	store, err := session.NewRedisStore(client, time.Minute)
	require.NoError(t, err)

	mr.Close()

	_, _, err = store.Get(t.Context(), "k")
	require.Error(t, err)
}

func TestNewRedisStore_InvalidArgs(t *testing.T) {
	_, err := session.NewRedisStore(nil, time.Minute)
	require.EqualError(t, err, "redis client is nil")

	_, client := setupRedis(t)
	_, err = session.NewRedisStore(client, 0)
	require.EqualError(t, err, "ttl must be positive: 0s")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := session.NewRedisClient(t.Context(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = session.NewRedisClient(t.Context(), "://bad")
	require.Error(t, err)
}

func TestMemoryStore_SetGetRemove(t *testing.T) {
	assertStoreRoundTrip(t, session.NewMemoryStore())
}

func assertStoreRoundTrip(t *testing.T, store port.SessionStore) {
	t.Helper()
	ctx := t.Context()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "customer_category:abc", "local-resident"))

	value, found, err := store.Get(ctx, "customer_category:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "local-resident", value)

	require.NoError(t, store.Set(ctx, "customer_category:abc", "bulk-club"))
	value, _, err = store.Get(ctx, "customer_category:abc")
	require.NoError(t, err)
	assert.Equal(t, "bulk-club", value)

	require.NoError(t, store.Remove(ctx, "customer_category:abc"))
	require.NoError(t, store.Remove(ctx, "customer_category:abc"))

	_, found, err = store.Get(ctx, "customer_category:abc")
	require.NoError(t, err)
	assert.False(t, found)
}
