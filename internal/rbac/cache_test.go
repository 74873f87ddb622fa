package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*PermissionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPermissionCache(client, time.Minute), mr
}

func TestPermissionCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Load(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	grants := Grants{Granted: []string{"edit_posts", "read"}}
	require.NoError(t, cache.Store(ctx, 5, 0, grants))

	loaded, ok, err := cache.Load(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, grants, loaded)
	assert.True(t, mr.TTL(permKey(5)) > 0)
}

func TestPermissionCacheSkipsStaleStore(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	gen, err := cache.Generation(ctx, 9)
	require.NoError(t, err)

	// a role mutation commits while the resolution is still being computed
	require.NoError(t, cache.InvalidateUsers(ctx, []int64{9}))

	require.NoError(t, cache.Store(ctx, 9, gen, Grants{Granted: []string{"read"}}))
	_, ok, err := cache.Load(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok, "stale grants must not be cached")

	current, err := cache.Generation(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, gen+1, current)
}

func TestNilPermissionCacheIsNoop(t *testing.T) {
	var cache *PermissionCache
	ctx := context.Background()

	_, ok, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Store(ctx, 1, 0, Grants{}))
	assert.NoError(t, cache.InvalidateUsers(ctx, []int64{1}))
}

func TestGrantsHas(t *testing.T) {
	g := Grants{Granted: []string{"edit_posts", "read"}}
	assert.True(t, g.Has("read"))
	assert.False(t, g.Has("publish_posts"))
	assert.False(t, g.Has(""))
	assert.True(t, Grants{Administrator: true}.Has("anything"))
}
