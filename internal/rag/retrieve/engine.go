package retrieve

import (
	"context"
	"strings"

	"clausebase/internal/rag/embed"
	"clausebase/internal/rag/lexical"
	"clausebase/internal/rag/observability"
	"clausebase/internal/rag/rerank"
	"clausebase/internal/rag/store"
)

// ChunkMetadata is the subset of per-chunk fields the engine needs to build
// a RetrievedItem's citation (§4.9), looked up by chunk ID after fusion.
type ChunkMetadata struct {
	Text          string
	DocumentID    string
	DocumentTitle string
	DocumentType  string
	ClauseNumber  string
	SectionTitle  string
	PageNumbers   []int
	ChunkType     string
	Normative     string
}

// MetadataLookup resolves fused candidate IDs to their chunk metadata. The
// caller supplies whatever backing store implements it (e.g. the registry
// package's Registry, written at ingestion time).
type MetadataLookup interface {
	Lookup(ctx context.Context, chunkID string) (ChunkMetadata, bool)
}

// noopLogger discards every event; the default when NewEngine is called
// without WithLogger, matching service.noopLogger's role one layer up.
type noopLogger struct{}

func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}
func (noopLogger) Debug(string, map[string]any) {}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithLogger wires a logger for the degrade-and-log paths in Search.
func WithLogger(log observability.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// Engine is the retrieval engine template method of §4.9: trim query,
// embed, search the vector store, optionally fuse in BM25 via RRF,
// optionally rerank, then attach citations.
type Engine struct {
	embedder embed.Provider
	vectors  store.VectorStore
	lexicon  *lexical.Index
	reranker rerank.Reranker
	meta     MetadataLookup
	log      observability.Logger
}

func NewEngine(embedder embed.Provider, vectors store.VectorStore, lexicon *lexical.Index, reranker rerank.Reranker, meta MetadataLookup, opts ...EngineOption) *Engine {
	e := &Engine{embedder: embedder, vectors: vectors, lexicon: lexicon, reranker: reranker, meta: meta, log: noopLogger{}}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Search runs the full retrieval template method and returns ranked,
// citation-annotated results. An empty query is not an error (§4.9 step 1);
// it short-circuits to an empty response. Errors from the embedder, vector
// store, or reranker during a single query are logged with the query and
// cause and degrade to an empty/partial result list rather than
// propagating (§4.9, §7, TESTABLE PROPERTY #8) — only a caller-supplied
// invalid filter is returned as an error, since that is a request defect,
// not a downstream failure.
func (e *Engine) Search(ctx context.Context, query string, opt RetrieveOptions) (RetrieveResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return RetrieveResponse{}, nil
	}
	if err := store.ValidateFilter(opt.Filter); err != nil {
		return RetrieveResponse{}, err
	}

	k := opt.K
	if k <= 0 {
		k = 10
	}
	vecK := opt.VecK
	if vecK <= 0 {
		vecK = k * 3
	}
	lexK := opt.LexK
	if lexK <= 0 {
		lexK = k * 3
	}

	var degraded []string

	qvec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.log.Error("search: embedding failed, degrading to empty result", map[string]any{"query": query, "error": err.Error()})
		return RetrieveResponse{Query: query, Degraded: []string{"embed"}}, nil
	}

	vecResults, err := e.vectors.SimilaritySearch(ctx, qvec, vecK, opt.Filter)
	if err != nil {
		e.log.Error("search: vector store search failed, degrading to empty result", map[string]any{"query": query, "error": err.Error()})
		return RetrieveResponse{Query: query, Degraded: []string{"vector"}}, nil
	}

	var lexResults []lexical.Result
	if opt.UseLexical {
		if e.lexicon == nil || e.lexicon.DocumentCount() == 0 {
			degraded = append(degraded, "lexical")
		} else {
			lexResults = e.lexicon.Search(query, lexK)
		}
	}
	if len(opt.Filter) > 0 && len(lexResults) > 0 {
		// BM25 hits carry no metadata, so under a filter only those the
		// filtered vector search also returned are kept.
		inVec := make(map[string]bool, len(vecResults))
		for _, r := range vecResults {
			inVec[r.ID] = true
		}
		kept := lexResults[:0]
		for _, r := range lexResults {
			if inVec[r.ID] {
				kept = append(kept, r)
			}
		}
		lexResults = kept
	}

	fused := FuseRRF(vecResults, lexResults, opt.RRFK)
	if len(fused) > k {
		// Keep a generous pre-rerank pool; final truncation happens below.
	}

	items := make([]RetrievedItem, 0, len(fused))
	for _, c := range fused {
		item := RetrievedItem{
			ChunkID: c.ID,
			Score:   c.Fused,
			Explanation: map[string]float64{
				"fused":    c.Fused,
				"vec_rrf":  c.VecScore,
				"lex_rrf":  c.LexScore,
			},
		}
		if e.meta != nil {
			if md, ok := e.meta.Lookup(ctx, c.ID); ok {
				item.Text = md.Text
				item.DocumentID = md.DocumentID
				item.DocumentTitle = md.DocumentTitle
				item.DocumentType = md.DocumentType
				item.ClauseNumber = md.ClauseNumber
				item.SectionTitle = md.SectionTitle
				item.PageNumbers = md.PageNumbers
				item.ChunkType = md.ChunkType
				item.Normative = md.Normative
			}
		}
		item.Citation = FormatCitation(item.DocumentTitle, item.ClauseNumber, item.PageNumbers, item.SectionTitle)
		items = append(items, item)
	}

	if opt.Rerank {
		if e.reranker == nil {
			degraded = append(degraded, "rerank")
		} else {
			topN := opt.RerankTopN
			if topN <= 0 || topN > len(items) {
				topN = len(items)
			}
			candidates := make([]rerank.Candidate, len(items))
			for i, it := range items {
				candidates[i] = rerank.Candidate{ID: it.ChunkID, Content: it.Text}
			}
			scored, err := e.reranker.Rerank(ctx, query, candidates, topN)
			if err != nil {
				e.log.Error("search: rerank failed, degrading to unranked fused results", map[string]any{"query": query, "error": err.Error()})
				degraded = append(degraded, "rerank")
			} else {
				byID := make(map[string]RetrievedItem, len(items))
				for _, it := range items {
					byID[it.ChunkID] = it
				}
				reordered := make([]RetrievedItem, 0, len(scored))
				for _, s := range scored {
					it, ok := byID[s.ID]
					if !ok {
						continue
					}
					it.Score = s.Score
					it.Explanation["rerank"] = s.Score
					reordered = append(reordered, it)
				}
				items = reordered
			}
		}
	}

	if opt.ScoreThreshold > 0 {
		filtered := items[:0]
		for _, it := range items {
			if it.Score >= opt.ScoreThreshold {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	if len(items) > k {
		items = items[:k]
	}

	return RetrieveResponse{Query: query, Items: items, Degraded: degraded}, nil
}
