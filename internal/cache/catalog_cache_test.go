package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCatalogCache(client, ttl), mr
}

func setCurrent(t *testing.T, c *CatalogCache, courses []domain.Course) {
	t.Helper()
	ctx := context.Background()
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	stored, err := c.Set(ctx, gen, courses)
	require.NoError(t, err)
	require.True(t, stored)
}

func TestCatalogCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	courses := []domain.Course{
		{ID: "c1", Title: "Go", Price: 10, CreatorID: "a1", CreatedAt: now, UpdatedAt: now},
		{ID: "c2", Title: "Rust", Description: "systems", Price: 0, ImageURL: "img", CreatorID: "a2", CreatedAt: now, UpdatedAt: now},
	}
	setCurrent(t, c, courses)

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, courses, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")

	setCurrent(t, c, courses)
	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_EmptyCatalogIsAHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	setCurrent(t, c, []domain.Course{})
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCatalogCache_Disabled(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*CatalogCache{nil, NewCatalogCache(nil, time.Minute)} {
		stored, err := c.Set(ctx, 0, []domain.Course{{ID: "c1"}})
		require.NoError(t, err)
		assert.False(t, stored)
		_, ok, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, c.Invalidate(ctx))
	}

	zeroTTL, _ := newTestCache(t, 0)
	stored, err := zeroTTL.Set(ctx, 0, []domain.Course{{ID: "c1"}})
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := zeroTTL.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_RedisDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, ok, err := c.Get(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_SetSkipsLoadsOlderThanInvalidation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)

	// a mutation invalidates while the reader is still loading the old list
	require.NoError(t, c.Invalidate(ctx))

	stored, err := c.Set(ctx, gen, []domain.Course{{ID: "old"}})
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	stored, err = c.Set(ctx, next, []domain.Course{{ID: "new"}})
	require.NoError(t, err)
	assert.True(t, stored)
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got[0].ID)
}
