// Package strategy implements the workflow strategy layer (§4.10): a fixed
// template — preprocess query, run the retrieval engine, adjust ranking,
// format output — specialized per workflow (rcca, trade, explore, plan).
// Grounded on intelligencedev-manifold's retrieve package shape, but the
// template itself is a direct port of knowledge-mcp's
// search/workflow_search.py WorkflowSearcher.
package strategy

import (
	"context"

	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/store"
)

// SearchQuery is the strategy-preprocessed form of a raw query (§4.10).
// ExpandedTerms is carried for transparency/debugging; strategies consult
// their own keyword tables during AdjustRanking rather than this field, by
// design — the engine search call always runs against Original.
type SearchQuery struct {
	Original      string
	ExpandedTerms []string
	Filters       store.Filter
	Facets        []string
}

// Strategy customizes the three strategy-owned phases of the workflow
// search template (§4.10).
type Strategy interface {
	Name() string
	PreprocessQuery(query string, params map[string]any) SearchQuery
	AdjustRanking(results []retrieve.RetrievedItem) []retrieve.RetrievedItem
	FormatOutput(results []retrieve.RetrievedItem, params map[string]any) map[string]any
}

// WorkflowSearcher is the fixed template (§4.10): preprocess → engine.Search
// → adjust ranking → format output. It always returns a map carrying
// result_type and total_results; on error it returns the error envelope
// shape instead of propagating the error, matching the workflow tools'
// always-succeeds-with-a-payload contract.
type WorkflowSearcher struct {
	Engine *retrieve.Engine
}

func NewWorkflowSearcher(engine *retrieve.Engine) *WorkflowSearcher {
	return &WorkflowSearcher{Engine: engine}
}

// Search runs the template for the given strategy and raw query.
func (w *WorkflowSearcher) Search(ctx context.Context, s Strategy, query string, n int, params map[string]any) map[string]any {
	sq := s.PreprocessQuery(query, params)

	resp, err := w.Engine.Search(ctx, sq.Original, retrieve.RetrieveOptions{
		K:          n,
		UseLexical: true,
		Filter:     sq.Filters,
	})
	if err != nil {
		return map[string]any{
			"result_type":   "error",
			"error":         err.Error(),
			"total_results": 0,
		}
	}

	ranked := s.AdjustRanking(resp.Items)
	out := s.FormatOutput(ranked, params)
	if _, ok := out["total_results"]; !ok {
		out["total_results"] = len(ranked)
	}
	return out
}
