package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "bookmarks")
	require.NoError(t, err)
	assert.False(t, ok, "unset key should be absent")

	require.NoError(t, s.Set(ctx, "bookmarks", `[{"id":"a"}]`))
	got, ok, err := s.Get(ctx, "bookmarks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, got)

	require.NoError(t, s.Set(ctx, "bookmarks", `[]`))
	got, ok, err = s.Get(ctx, "bookmarks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, got)

	require.NoError(t, s.Remove(ctx, "bookmarks"))
	_, ok, err = s.Get(ctx, "bookmarks")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Remove(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())

	t.Run("failing store", func(t *testing.T) {
		s := NewMemoryStoreWithError()
		_, _, err := s.Get(context.Background(), "bookmarks")
		assert.Error(t, err)
		assert.Error(t, s.Set(context.Background(), "bookmarks", "[]"))
		assert.Error(t, s.Remove(context.Background(), "bookmarks"))
	})

	t.Run("failing writes only", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Set(context.Background(), "bookmarks", "[]"))

		boom := errors.New("disk full")
		s.FailWrites(boom)
		assert.ErrorIs(t, s.Set(context.Background(), "bookmarks", "[1]"), boom)

		got, ok, err := s.Get(context.Background(), "bookmarks")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", got)
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "forkify:")
	exerciseStore(t, store)

	t.Run("namespaced key", func(t *testing.T) {
		require.NoError(t, store.Set(context.Background(), "bookmarks", "[]"))
		v, err := mr.Get("forkify:bookmarks")
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("connect via url", func(t *testing.T) {
		c, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
		require.NoError(t, err)
		assert.NoError(t, c.Close())
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewRedisClient(context.Background(), "not-a-url")
		assert.Error(t, err)
	})
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "forkify.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	t.Run("reopen keeps data", func(t *testing.T) {
		require.NoError(t, store.Set(context.Background(), "bookmarks", `[{"id":"z"}]`))

		other, err := NewSQLiteStore(dbPath)
		require.NoError(t, err)
		defer other.Close()

		got, ok, err := other.Get(context.Background(), "bookmarks")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"z"}]`, got)
	})
}
