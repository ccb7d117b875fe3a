package cache

import (
	"context"
	"testing"
	"time"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestManagerGetSet(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(10, time.Minute, clock.now)
	ctx := context.Background()

	_, err := m.Get(ctx, "tomatsoppa")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.True(t, IsMiss(err))

	require.NoError(t, m.Set(ctx, "tomatsoppa", "{}"))
	got, err := m.Get(ctx, "tomatsoppa")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)

	require.NoError(t, m.Delete(ctx, "tomatsoppa"))
	_, err = m.Get(ctx, "tomatsoppa")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestManagerExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(10, time.Minute, clock.now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	clock.t = clock.t.Add(2 * time.Minute)

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, int64(1), m.GetStats().Evictions)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(2, time.Hour, clock.now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m := newManager(1, time.Hour, time.Now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "a", "2"))
	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	assert.Zero(t, m.GetStats().Evictions)
}

func TestNewDisabledCache(t *testing.T) {
	c, err := New(&config.Config{Cache: config.CacheConfig{Enabled: false}})
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "a", "1"))
	_, err = c.Get(context.Background(), "a")
	assert.True(t, IsMiss(err))
}

func TestManagerClose(t *testing.T) {
	m := NewManager(&config.CacheConfig{MaxSize: 5, TTL: time.Minute, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Set(context.Background(), "a", "1"))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Zero(t, m.GetStats().Size)
}
