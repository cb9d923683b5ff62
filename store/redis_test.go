package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
	"github.com/reoring/gopdm/store"
)

func setupRedis(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.NewRedisStoreWithClient(client, newSerializer(), "test:")
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestRedisStore_SaveLoad(t *testing.T) {
	st, mr := setupRedis(t)
	ctx := context.Background()

	n := sampleNote("hello")
	require.NoError(t, st.Save(ctx, n))
	assert.True(t, mr.Exists("test:"+n.UUID()))

	h, err := st.Load(ctx, n.UUID())
	require.NoError(t, err)
	got, ok := h.(*note)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Text.Value())
	assert.Equal(t, n.UUID(), got.UUID())
}

func TestRedisStore_Overwrite(t *testing.T) {
	st, _ := setupRedis(t)
	ctx := context.Background()

	n := sampleNote("v1")
	require.NoError(t, st.Save(ctx, n))
	require.NoError(t, n.Text.SetValue("v2"))
	require.NoError(t, st.Save(ctx, n))

	h, err := st.Load(ctx, n.UUID())
	require.NoError(t, err)
	assert.Equal(t, "v2", h.(*note).Text.Value())
}

func TestRedisStore_NotFound(t *testing.T) {
	st, _ := setupRedis(t)
	ctx := context.Background()

	_, err := st.Load(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))

	err = st.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestRedisStore_DeleteAndList(t *testing.T) {
	st, mr := setupRedis(t)
	ctx := context.Background()

	a, b := sampleNote("a"), sampleNote("b")
	require.NoError(t, st.Save(ctx, a))
	require.NoError(t, st.Save(ctx, b))
	require.NoError(t, mr.Set("test:junk", "not json"))

	entries, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "Note", e.Class)
	}

	require.NoError(t, st.Delete(ctx, a.UUID()))
	entries, err = st.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.UUID(), entries[0].UUID)
}

func TestRedisStore_ConnectFailure(t *testing.T) {
	cfg := store.DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1"
	_, err := store.NewRedisStore(context.Background(), cfg, newSerializer())
	require.Error(t, err)
	iss, ok := gopdm.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(gopdm.CodeIOError))
}
