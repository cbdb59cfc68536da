package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	ragerrors "clausebase/internal/rag/errors"
)

// CloudReranker calls a Cohere-style rerank API: POST {model, query,
// documents, top_n} to baseURL+"/v2/rerank", returning per-document
// relevance scores indexed against the submitted document order. Grounded
// on the Cohere ClientV2.rerank contract the corpus's original reranker
// wrapped.
type CloudReranker struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewCloudReranker(baseURL, apiKey, model string) *CloudReranker {
	if baseURL == "" {
		baseURL = "https://api.cohere.com"
	}
	if model == "" {
		model = "rerank-english-v3.0"
	}
	return &CloudReranker{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type cohereRerankReq struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type cohereRerankResp struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (r *CloudReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Scored, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if r.apiKey == "" {
		return nil, ragerrors.Configf("cloud reranker: api key is required")
	}
	if topN <= 0 {
		topN = len(candidates)
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Content
	}

	reqBody, err := json.Marshal(cohereRerankReq{
		Model:     r.model,
		Query:     query,
		Documents: docs,
		TopN:      topN,
	})
	if err != nil {
		return nil, ragerrors.Internalf("encode rerank request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v2/rerank", bytes.NewReader(reqBody))
	if err != nil {
		return nil, ragerrors.Internalf("build rerank request: %v", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, ragerrors.Connectionf("rerank provider unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ragerrors.Authf("rerank provider rejected credentials")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ragerrors.RateLimitedf("rerank provider rate limit exceeded")
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return nil, ragerrors.Connectionf("rerank provider error: %s", resp.Status)
		}
		return nil, ragerrors.InvalidInputf("rerank provider rejected request: %s: %s", resp.Status, string(b))
	}

	var rr cohereRerankResp
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, ragerrors.Internalf("decode rerank response: %v", err)
	}

	out := make([]Scored, 0, len(rr.Results))
	for _, item := range rr.Results {
		if item.Index < 0 || item.Index >= len(candidates) {
			continue
		}
		out = append(out, Scored{ID: candidates[item.Index].ID, Score: item.RelevanceScore})
	}
	return out, nil
}
