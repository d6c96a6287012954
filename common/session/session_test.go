package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

var testActor = records.Actor{ID: "u1", UserID: "emp001", FullName: "Ann", Role: records.RoleHR}

func TestNew_Expiry(t *testing.T) {
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	s := New("tok", testActor, now, time.Hour, time.Time{})
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "tok", s.AccessToken())

	s = New("tok", testActor, now, time.Hour, now.Add(10*time.Minute))
	assert.Equal(t, now.Add(10*time.Minute), s.ExpiresAt)

	s = New("tok", testActor, now, 0, time.Time{})
	assert.Equal(t, now.Add(DefaultTTL), s.ExpiresAt)

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(DefaultTTL)))
}

func TestNilSessionHasNoToken(t *testing.T) {
	var s *Session
	assert.Equal(t, "", s.AccessToken())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New("tok", testActor, time.Now(), time.Hour, time.Time{})
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := New("tok", testActor, now, time.Hour, time.Time{})
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Actor, got.Actor)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SweepAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	short := New("a", testActor, now, time.Minute, time.Time{})
	long := New("b", testActor, now, time.Hour, time.Time{})
	require.NoError(t, store.Save(ctx, short))
	require.NoError(t, store.Save(ctx, long))

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	require.NoError(t, store.Delete(ctx, long.ID))
	_, err := store.Get(ctx, long.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreFromClient(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	s := New("tok", testActor, time.Now(), time.Hour, time.Time{})
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists(keyPrefix+s.ID))
	ttl := mr.TTL(keyPrefix + s.ID)
	assert.Greater(t, ttl, 59*time.Minute)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, s.Actor, got.Actor)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	s := New("tok", testActor, time.Now(), time.Minute, time.Time{})
	require.NoError(t, store.Save(ctx, s))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_RejectsExpiredSession(t *testing.T) {
	store, _ := setupRedisStore(t)
	past := time.Now().Add(-2 * time.Hour)
	s := New("tok", testActor, past, time.Hour, time.Time{})
	assert.ErrorIs(t, store.Save(context.Background(), s), ErrExpired)
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("not a url")
	assert.Error(t, err)
}
