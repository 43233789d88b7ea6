package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb, "test")
}

func TestStore_AsideHitAndMiss(t *testing.T) {
	t.Parallel()
	mr, store := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *entry) func(context.Context) error {
		return func(context.Context) error {
			calls++
			*dest = entry{Name: "golang", Count: calls}
			return nil
		}
	}

	var first entry
	require.NoError(t, store.Aside(ctx, CommunityKey("GoLang"), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("community:golang"))

	var second entry
	require.NoError(t, store.Aside(ctx, CommunityKey("golang"), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read must be served from cache")
	assert.Equal(t, first, second)
}

func TestStore_InvalidateForcesReload(t *testing.T) {
	t.Parallel()
	mr, store := newTestStore(t)
	ctx := context.Background()

	var v entry
	require.NoError(t, store.Aside(ctx, CommunityKey("go"), &v, time.Minute, func(context.Context) error {
		v = entry{Name: "go", Count: 1}
		return nil
	}))

	require.NoError(t, store.InvalidateCommunity(ctx, "GO"))
	assert.False(t, mr.Exists("community:go"))

	var reloaded entry
	require.NoError(t, store.Aside(ctx, CommunityKey("go"), &reloaded, time.Minute, func(context.Context) error {
		reloaded = entry{Name: "go", Count: 2}
		return nil
	}))
	assert.Equal(t, 2, reloaded.Count)
}

func TestStore_AsideSkipsPopulateAfterConcurrentInvalidate(t *testing.T) {
	t.Parallel()
	mr, store := newTestStore(t)
	ctx := context.Background()

	var stale entry
	err := store.Aside(ctx, CommunityKey("go"), &stale, time.Minute, func(ctx context.Context) error {
		stale = entry{Name: "go", Count: 1}
		// A writer commits and invalidates while this reader is still loading.
		return store.InvalidateCommunity(ctx, "go")
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("community:go"), "value loaded before the invalidation must not be cached")
}

func TestStore_AsideFetchError(t *testing.T) {
	t.Parallel()
	mr, store := newTestStore(t)

	boom := errors.New("db down")
	var v entry
	err := store.Aside(context.Background(), CommunityKey("go"), &v, time.Minute, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("community:go"))
}

func TestStore_Disabled(t *testing.T) {
	t.Parallel()

	for _, store := range []*Store{nil, NewStore(nil, "off")} {
		calls := 0
		var v entry
		for i := 0; i < 2; i++ {
			require.NoError(t, store.Aside(context.Background(), "k", &v, time.Minute, func(context.Context) error {
				calls++
				return nil
			}))
		}
		assert.Equal(t, 2, calls)
		assert.NoError(t, store.Invalidate(context.Background(), "k"))
	}
}

func TestStore_RedisDownFallsBackToFetch(t *testing.T) {
	t.Parallel()
	mr, store := newTestStore(t)
	mr.Close()

	calls := 0
	var v entry
	err := store.Aside(context.Background(), "k", &v, time.Minute, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Error(t, store.Invalidate(context.Background(), "k"))
}

func TestStore_JSONHelpers(t *testing.T) {
	t.Parallel()
	_, store := newTestStore(t)
	ctx := context.Background()

	found, err := store.GetJSON(ctx, "missing", &entry{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetJSON(ctx, "k", entry{Name: "x"}, time.Minute))
	var got entry
	found, err = store.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", got.Name)
}

func TestInitRedis_Unreachable(t *testing.T) {
	InitRedis("redis://127.0.0.1:1")
	assert.Nil(t, GetClient())

	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	assert.IsType(t, &redis.Client{}, GetClient())
	_ = GetClient().Close()
}
