package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerrors "clausebase/internal/rag/errors"
)

func TestNewCloudReranker_DefaultsBaseURLAndModel(t *testing.T) {
	r := NewCloudReranker("", "key", "")
	assert.Equal(t, "https://api.cohere.com", r.baseURL)
	assert.Equal(t, "rerank-english-v3.0", r.model)
}

func TestCloudReranker_Rerank_EmptyCandidatesShortCircuits(t *testing.T) {
	r := NewCloudReranker("http://unused", "key", "")
	out, err := r.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCloudReranker_Rerank_RequiresAPIKey(t *testing.T) {
	r := NewCloudReranker("http://unused", "", "")
	_, err := r.Rerank(context.Background(), "q", []Candidate{{ID: "1", Content: "x"}}, 1)
	assert.Equal(t, ragerrors.Config, ragerrors.CodeOf(err))
}

func TestCloudReranker_Rerank_MapsIndicesBackToCandidateIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cohereRerankReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"doc-a-text", "doc-b-text"}, req.Documents)

		resp := cohereRerankResp{Results: []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		}{
			{Index: 1, RelevanceScore: 0.9},
			{Index: 0, RelevanceScore: 0.2},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	r := NewCloudReranker(srv.URL, "test-key", "")
	out, err := r.Rerank(context.Background(), "query", []Candidate{
		{ID: "a", Content: "doc-a-text"},
		{ID: "b", Content: "doc-b-text"},
	}, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, "a", out[1].ID)
}

func TestCloudReranker_Rerank_UnauthorizedMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewCloudReranker(srv.URL, "bad-key", "")
	_, err := r.Rerank(context.Background(), "q", []Candidate{{ID: "1", Content: "x"}}, 1)
	assert.Equal(t, ragerrors.Auth, ragerrors.CodeOf(err))
}

func TestCloudReranker_Rerank_OutOfRangeIndexIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := cohereRerankResp{Results: []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		}{
			{Index: 5, RelevanceScore: 0.5},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	r := NewCloudReranker(srv.URL, "key", "")
	out, err := r.Rerank(context.Background(), "q", []Candidate{{ID: "1", Content: "x"}}, 1)
	require.NoError(t, err)
	assert.Empty(t, out)
}
