package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausebase/internal/rag/lexical"
	"clausebase/internal/rag/rerank"
	"clausebase/internal/rag/store"
)

// fakeEmbedder is a deterministic embed.Provider test double; ErrOnEmbed,
// when set, is returned by Embed instead of a vector.
type fakeEmbedder struct {
	dims      int
	ErrOnEmbed error
}

func (f *fakeEmbedder) Dimensions() int                  { return f.dims }
func (f *fakeEmbedder) ModelName() string                { return "fake" }
func (f *fakeEmbedder) HealthCheck(context.Context) bool { return true }
func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.ErrOnEmbed != nil {
		return nil, f.ErrOnEmbed
	}
	vec := make([]float32, f.dims)
	vec[0] = 1
	return vec, nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, _ int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := f.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeVectorStore is a store.VectorStore test double that returns a fixed
// set of results, or ErrOnSearch when set.
type fakeVectorStore struct {
	results     []store.Result
	ErrOnSearch error
	dims        int
}

func (f *fakeVectorStore) Upsert(context.Context, string, []float32, map[string]string) error { return nil }
func (f *fakeVectorStore) Delete(context.Context, string) error                               { return nil }
func (f *fakeVectorStore) Dimension() int                                                     { return f.dims }
func (f *fakeVectorStore) Close() error                                                       { return nil }
func (f *fakeVectorStore) SimilaritySearch(context.Context, []float32, int, store.Filter) ([]store.Result, error) {
	if f.ErrOnSearch != nil {
		return nil, f.ErrOnSearch
	}
	return f.results, nil
}

// fakeReranker is a rerank.Reranker test double.
type fakeReranker struct {
	ErrOnRerank error
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, candidates []rerank.Candidate, _ int) ([]rerank.Scored, error) {
	if f.ErrOnRerank != nil {
		return nil, f.ErrOnRerank
	}
	out := make([]rerank.Scored, len(candidates))
	for i, c := range candidates {
		out[i] = rerank.Scored{ID: c.ID, Score: 1.0}
	}
	return out, nil
}

// capturingLogger records every Error call for assertions.
type capturingLogger struct {
	errors []string
}

func (c *capturingLogger) Info(string, map[string]any)  {}
func (c *capturingLogger) Debug(string, map[string]any) {}
func (c *capturingLogger) Error(msg string, _ map[string]any) {
	c.errors = append(c.errors, msg)
}

func TestEngine_Search_EmptyQueryReturnsEmptyResponseNoError(t *testing.T) {
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4}, nil, nil, nil)
	resp, err := e.Search(context.Background(), "", RetrieveOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Empty(t, resp.Query)
}

func TestEngine_Search_WhitespaceOnlyQueryReturnsEmptyResponseNoError(t *testing.T) {
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4}, nil, nil, nil)
	resp, err := e.Search(context.Background(), "   \t\n  ", RetrieveOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestEngine_Search_TrimsQueryBeforeEmbedding(t *testing.T) {
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4}, nil, nil, nil)
	resp, err := e.Search(context.Background(), "  cooling limits  ", RetrieveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cooling limits", resp.Query)
}

func TestEngine_Search_EmbeddingErrorDegradesToEmptyResultInsteadOfError(t *testing.T) {
	log := &capturingLogger{}
	e := NewEngine(&fakeEmbedder{dims: 4, ErrOnEmbed: errors.New("provider unreachable")}, &fakeVectorStore{dims: 4}, nil, nil, nil, WithLogger(log))
	resp, err := e.Search(context.Background(), "temperature range", RetrieveOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Contains(t, resp.Degraded, "embed")
	assert.NotEmpty(t, log.errors)
}

func TestEngine_Search_VectorStoreErrorDegradesToEmptyResultInsteadOfError(t *testing.T) {
	log := &capturingLogger{}
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4, ErrOnSearch: errors.New("store unavailable")}, nil, nil, nil, WithLogger(log))
	resp, err := e.Search(context.Background(), "temperature range", RetrieveOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Contains(t, resp.Degraded, "vector")
	assert.NotEmpty(t, log.errors)
}

func TestEngine_Search_RerankErrorDegradesToFusedResultsInsteadOfError(t *testing.T) {
	log := &capturingLogger{}
	vecResults := []store.Result{{ID: "c1", Score: 0.9}}
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4, results: vecResults}, nil, &fakeReranker{ErrOnRerank: errors.New("rerank service down")}, nil, WithLogger(log))
	resp, err := e.Search(context.Background(), "temperature range", RetrieveOptions{Rerank: true})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Contains(t, resp.Degraded, "rerank")
	assert.NotEmpty(t, log.errors)
}

func TestEngine_Search_InvalidFilterKeyReturnsError(t *testing.T) {
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4}, nil, nil, nil)
	_, err := e.Search(context.Background(), "temperature range", RetrieveOptions{Filter: store.Filter{"not_allowed": store.Exact("x")}})
	assert.Error(t, err)
}

func TestEngine_Search_LexicalUnavailableDegrades(t *testing.T) {
	e := NewEngine(&fakeEmbedder{dims: 4}, &fakeVectorStore{dims: 4}, lexical.New(), nil, nil)
	resp, err := e.Search(context.Background(), "temperature range", RetrieveOptions{UseLexical: true})
	require.NoError(t, err)
	assert.Contains(t, resp.Degraded, "lexical")
}
