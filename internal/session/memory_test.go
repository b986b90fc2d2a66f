package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
)

func newTestMemoryStore(now time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	return s
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	now := time.Now()
	store := newTestMemoryStore(now)
	ctx := context.Background()

	sess := &Session{
		ID:        "s1",
		Token:     &auth.TokenInfo{AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(time.Hour)},
		Permanent: true,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	// Stored values are copies.
	got.Token.AccessToken = "mutated"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Token.AccessToken)
}

func TestMemoryStore_Expired(t *testing.T) {
	now := time.Now()
	store := newTestMemoryStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, store.Save(ctx, &Session{ID: "live", ExpiresAt: now.Add(time.Hour)}))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestMemoryStore_UpdateToken(t *testing.T) {
	now := time.Now()
	store := newTestMemoryStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{
		ID:        "s1",
		Token:     &auth.TokenInfo{AccessToken: "old"},
		ExpiresAt: now.Add(time.Hour),
	}))

	require.NoError(t, store.UpdateToken(ctx, "s1", &auth.TokenInfo{AccessToken: "new"}))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Token.AccessToken)

	require.NoError(t, store.UpdateToken(ctx, "s1", nil))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got.Token)

	// A deleted session is not resurrected by a late token write.
	require.NoError(t, store.Delete(ctx, "s1"))
	err = store.UpdateToken(ctx, "s1", &auth.TokenInfo{AccessToken: "late"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteMissing(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestMemoryStore_ClearToken(t *testing.T) {
	now := time.Now()
	store := newTestMemoryStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{
		ID:        "s1",
		Token:     &auth.TokenInfo{AccessToken: "current"},
		ExpiresAt: now.Add(time.Hour),
	}))

	// A stale access token leaves the newer token in place.
	require.NoError(t, store.ClearToken(ctx, "s1", "older"))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.Token)
	assert.Equal(t, "current", got.Token.AccessToken)

	require.NoError(t, store.ClearToken(ctx, "s1", "current"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got.Token)

	assert.ErrorIs(t, store.ClearToken(ctx, "missing", "current"), ErrNotFound)
}
