//go:build crossencoder

package rerank

// This file provides an adapter to a local cross-encoder model server when
// built with the `crossencoder` tag. No Go cross-encoder inference library
// exists in this module's dependency surface (the original implementation's
// local backend is a Python sentence-transformers model), so by default
// this module ships only the cloud backend; this stub documents the
// extension point without imposing the dependency on ordinary builds.

import "context"

// LocalReranker is a stub adapter for a local cross-encoder inference
// server (e.g. a sentence-transformers model served over HTTP). It always
// returns candidates in their submitted order with a zero score until a
// real backend is wired in behind the `crossencoder` build tag.
type LocalReranker struct {
	ModelName string
}

func (l LocalReranker) Rerank(_ context.Context, _ string, candidates []Candidate, topN int) ([]Scored, error) {
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}
	out := make([]Scored, topN)
	for i := 0; i < topN; i++ {
		out[i] = Scored{ID: candidates[i].ID, Score: 0}
	}
	return out, nil
}
