package embed

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a minimal in-memory Provider test double: it returns a
// deterministic vector per text and counts how many times the underlying
// batch call was actually invoked, so tests can assert on cache/singleflight
// behavior instead of real network calls.
type fakeProvider struct {
	model      string
	dimensions int
	calls      int64
}

func (f *fakeProvider) Dimensions() int   { return f.dimensions }
func (f *fakeProvider) ModelName() string { return f.model }
func (f *fakeProvider) HealthCheck(ctx context.Context) bool { return true }

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	atomic.AddInt64(&f.calls, 1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func newTestLayer(t *testing.T, provider Provider) *Layer {
	t.Helper()
	cache, err := OpenCache(CacheConfig{Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return NewLayer(provider, cache)
}

func TestLayer_EmbedBatchPreservesOrder(t *testing.T) {
	p := &fakeProvider{model: "m", dimensions: 1}
	l := newTestLayer(t, p)

	vecs, err := l.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"}, 10)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, float32(3), vecs[2][0])
}

func TestLayer_EmbedBatchServesRepeatFromCache(t *testing.T) {
	p := &fakeProvider{model: "m", dimensions: 1}
	l := newTestLayer(t, p)

	_, err := l.EmbedBatch(context.Background(), []string{"hello"}, 1)
	require.NoError(t, err)
	_, err = l.EmbedBatch(context.Background(), []string{"hello"}, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&p.calls), "second call should be served entirely from cache")
}

func TestLayer_ConcurrentIdenticalMissesCollapseViaSingleflight(t *testing.T) {
	p := &fakeProvider{model: "m", dimensions: 1}
	l := newTestLayer(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Embed(context.Background(), "same-text")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&p.calls))
}

func TestLayer_Embed_SingleText(t *testing.T) {
	p := &fakeProvider{model: "m", dimensions: 1}
	l := newTestLayer(t, p)

	vec, err := l.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, float32(4), vec[0])
}

func TestLayer_DelegatesDimensionsAndModelName(t *testing.T) {
	p := &fakeProvider{model: "my-model", dimensions: 768}
	l := newTestLayer(t, p)
	assert.Equal(t, 768, l.Dimensions())
	assert.Equal(t, "my-model", l.ModelName())
}
