package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/pkg/config"
)

func newTestCache(t *testing.T, ttlHours int) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{
		Enabled: true,
		Dir:     t.TempDir(),
		TTL:     ttlHours,
	})
	require.NoError(t, err)
	return c
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t, 1)

	require.NoError(t, c.Set("report:gender", "", []byte(`{"status":"PASS"}`)))

	data, ok := c.Get("report:gender", "")
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"PASS"}`, string(data))

	_, ok = c.Get("report:race", "")
	assert.False(t, ok)
}

func TestChecksumMismatch(t *testing.T) {
	c := newTestCache(t, 1)

	sum := HashBytes([]byte("original input"))
	require.NoError(t, c.Set("audit", sum, []byte("result")))

	_, ok := c.Get("audit", HashBytes([]byte("changed input")))
	assert.False(t, ok)

	data, ok := c.Get("audit", sum)
	require.True(t, ok)
	assert.Equal(t, "result", string(data))
}

func TestExpiredEntry(t *testing.T) {
	c := newTestCache(t, 1)
	c.ttl = -time.Second

	require.NoError(t, c.Set("stale", "", []byte("old")))
	_, ok := c.Get("stale", "")
	assert.False(t, ok)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.Set("k", "", []byte("v")))
	_, ok := c.Get("k", "")
	assert.False(t, ok)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestInvalidateAndStats(t *testing.T) {
	c := newTestCache(t, 1)

	require.NoError(t, c.Set("a", "", []byte("1")))
	require.NoError(t, c.Set("b", "", []byte("2")))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalSize)

	require.NoError(t, c.Invalidate("a"))
	require.NoError(t, c.Invalidate("a")) // idempotent

	stats, err = c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestHashBytesStable(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("x")), HashBytes([]byte("x")))
	assert.NotEqual(t, HashBytes([]byte("x")), HashBytes([]byte("y")))
	assert.Len(t, HashBytes(nil), 64)
}
