package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-bot/types"
)

func newTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Hour), mr
}

func TestSessionStore_GetMissingReturnsIdle(t *testing.T) {
	store, _ := newTestSessionStore(t)

	sess, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.ChatID)
	assert.Equal(t, types.StateIdle, sess.State)
}

func TestSessionStore_SaveRoundTripAndTTL(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	in := &types.Session{ChatID: 7, State: types.StateSlotListDisplayed, ServiceID: 5, Date: "2025-05-01"}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, types.StateSlotListDisplayed, out.State)
	assert.Equal(t, int64(5), out.ServiceID)
	assert.Equal(t, "2025-05-01", out.Date)
	assert.Equal(t, time.Hour, mr.TTL("session:7"))

	mr.FastForward(2 * time.Hour)
	expired, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, expired.State)
}

func TestSessionStore_LocaleHasNoTTL(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	got, err := store.GetLocale(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.SaveLocale(ctx, 9, "he"))
	mr.FastForward(48 * time.Hour)

	got, err = store.GetLocale(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "he", got)
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &types.Session{ChatID: 3, State: types.StateAwaitingDate}))
	require.NoError(t, store.Delete(ctx, 3))
	assert.False(t, mr.Exists("session:3"))
}
