package retrieve

import "clausebase/internal/rag/store"

// RetrieveOptions configures a single retrieval operation (§4.9).
type RetrieveOptions struct {
	// K is the desired total number of results after fusion/reranking.
	K int
	// LexK is the number of BM25 candidates to pull pre-fusion.
	LexK int
	// VecK is the number of vector candidates to pull pre-fusion.
	VecK int
	// UseLexical toggles BM25 fusion; when false only vector search runs
	// (graceful degradation when the lexical index is unavailable, §4.9).
	UseLexical bool
	// RRFK is the reciprocal rank fusion constant; 0 defaults to 60.
	RRFK int
	// Rerank toggles the optional cross-encoder reranking stage.
	Rerank bool
	// RerankTopN is the number of results the reranker is asked to return;
	// every fused candidate is sent to it. 0 (or a value above the number
	// of candidates) means all fused candidates.
	RerankTopN int
	// Filter applies the §4.6 metadata filter whitelist. The vector store
	// applies it directly; BM25 hits carry no metadata, so while a filter is
	// set only the BM25 hits that the filtered vector search also returned
	// are fused.
	Filter store.Filter
	// ScoreThreshold drops items scoring below it after fusion/reranking
	// (§6 search operation input). 0 disables filtering. Note the scale:
	// without reranking, Score is the RRF-fused value, at most 2/(RRFK+1)
	// (~0.033 at the default RRFK=60) and at most 1/(RRFK+1) (~0.016) for a
	// hit found by only one of the two searches; after reranking, Score is
	// the reranker's score. Neither is the original's raw cosine similarity
	// (~[-1,1]) — a cosine-scale threshold like 0.5 drops every fused result.
	ScoreThreshold float64
}

// RetrievedItem is a single retrieval hit, enriched with citation fields
// (§4.9). ChunkType and Normative mirror the chunk package's enums as
// strings so this package stays independent of the chunk package's types.
type RetrievedItem struct {
	ChunkID      string
	DocumentID   string
	Text         string
	Score        float64
	DocumentTitle string
	DocumentType string
	ClauseNumber string
	SectionTitle string
	PageNumbers  []int
	ChunkType    string
	Normative    string
	Citation     string
	// Explanation carries per-item provenance: fusion ranks/contributions
	// and any workflow-strategy boosts applied on top.
	Explanation map[string]float64
}

// RetrieveResponse is the result of a full retrieval call (§4.9/§6).
type RetrieveResponse struct {
	Query string
	Items []RetrievedItem
	// Degraded lists which stages (embed, vector, lexical, rerank) were
	// skipped or failed due to backend unavailability rather than caller
	// request (§4.9 graceful degradation). An embed or vector failure
	// leaves Items empty.
	Degraded []string
}
