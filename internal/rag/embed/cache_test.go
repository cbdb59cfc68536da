package embed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, maxBytes int64) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.db")
	c, err := OpenCache(CacheConfig{Path: path, MaxBytes: maxBytes})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenCache_RequiresPath(t *testing.T) {
	_, err := OpenCache(CacheConfig{})
	assert.Error(t, err)
}

func TestCache_SetThenGetRoundTrips(t *testing.T) {
	c := openTestCache(t, 0)
	vec := []float32{0.1, 0.2, 0.3}
	require.NoError(t, c.Set("model-a", "hello world", vec))

	got, ok := c.Get("model-a", "hello world")
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestCache_GetMissReturnsFalse(t *testing.T) {
	c := openTestCache(t, 0)
	_, ok := c.Get("model-a", "never stored")
	assert.False(t, ok)
}

func TestCache_PartitionedByModel(t *testing.T) {
	c := openTestCache(t, 0)
	require.NoError(t, c.Set("model-a", "same text", []float32{1}))
	require.NoError(t, c.Set("model-b", "same text", []float32{2}))

	gotA, okA := c.Get("model-a", "same text")
	gotB, okB := c.Get("model-b", "same text")
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, []float32{1}, gotA)
	assert.Equal(t, []float32{2}, gotB)
}

func TestCache_StatsTracksHitsAndMisses(t *testing.T) {
	c := openTestCache(t, 0)
	require.NoError(t, c.Set("m", "a", []float32{1, 2}))
	_, _ = c.Get("m", "a") // hit
	_, _ = c.Get("m", "b") // miss

	hits, misses, used := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.True(t, used > 0)
}

func TestCache_EvictsLeastRecentlyUsedOverBudget(t *testing.T) {
	// Each float32 vector of length 1 costs 4 bytes; cap the cache to 8 bytes
	// (room for two entries at most) and confirm the first write is evicted
	// once a third forces the budget over.
	c := openTestCache(t, 8)
	require.NoError(t, c.Set("m", "first", []float32{1}))
	require.NoError(t, c.Set("m", "second", []float32{2}))
	require.NoError(t, c.Set("m", "third", []float32{3}))

	_, okFirst := c.Get("m", "first")
	_, okThird := c.Get("m", "third")
	assert.False(t, okFirst, "oldest entry should have been evicted")
	assert.True(t, okThird, "newest entry should remain")
}

func TestCache_ClearRemovesModelPartitionOnly(t *testing.T) {
	c := openTestCache(t, 0)
	require.NoError(t, c.Set("model-a", "x", []float32{1}))
	require.NoError(t, c.Set("model-b", "x", []float32{2}))

	require.NoError(t, c.Clear("model-a"))

	_, okA := c.Get("model-a", "x")
	_, okB := c.Get("model-b", "x")
	assert.False(t, okA)
	assert.True(t, okB)
}

func TestCache_ClearAllRemovesEverything(t *testing.T) {
	c := openTestCache(t, 0)
	require.NoError(t, c.Set("model-a", "x", []float32{1}))
	require.NoError(t, c.Set("model-b", "y", []float32{2}))

	require.NoError(t, c.Clear(""))

	_, okA := c.Get("model-a", "x")
	_, okB := c.Get("model-b", "y")
	assert.False(t, okA)
	assert.False(t, okB)
	_, _, used := c.Stats()
	assert.Equal(t, int64(0), used)
}
