// Package rerank implements the reranking stage of §4.8: a cloud
// cross-encoder API backend (the default) and a build-tag-gated local
// cross-encoder backend.
package rerank

import "context"

// Candidate is a single result to be scored against a query.
type Candidate struct {
	ID      string
	Content string
}

// Scored pairs a Candidate's ID with its reranked relevance score.
type Scored struct {
	ID    string
	Score float64
}

// Reranker scores candidates against a query and returns them sorted by
// relevance, descending. A candidate's ID must be preserved verbatim so the
// caller can map scores back onto its own result objects.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Scored, error)
}
