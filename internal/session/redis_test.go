package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, time.Hour), mr
}

func TestCreateAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	state, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.True(t, state.Authenticated)
	assert.Equal(t, int64(42), state.UserID)
	assert.Equal(t, token, state.Token)
}

func TestLookupUnknownIsAnonymous(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Lookup(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	state, err = store.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Anonymous, state)
}

func TestDestroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, store.Destroy(ctx, token))

	state, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	assert.NoError(t, store.Destroy(ctx, token))
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	state, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
}

func TestTokensAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, 1)
	require.NoError(t, err)
	b, err := store.Create(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCorruptSession(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(keyPrefix+"bad", "not-a-number"))

	_, err := store.Lookup(context.Background(), "bad")
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Anonymous, FromContext(ctx))

	ctx = WithState(ctx, AuthenticatedAs("tok", 3))
	s := FromContext(ctx)
	assert.True(t, s.Authenticated)
	assert.Equal(t, int64(3), s.UserID)
}
