// Package service is the composition root (§6): it wires the embedding
// layer, vector store, lexical index, reranker, retrieval engine, and
// ingestion pipeline together and exposes the six named external operations
// (search, stats, rcca, trade, explore, plan) plus ingest.
package service

import (
	"context"
	"time"

	"clausebase/internal/rag/ingest"
	"clausebase/internal/rag/observability"
	"clausebase/internal/rag/registry"
	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/store"
	"clausebase/internal/rag/strategy"
)

// Logger is the structured-logging contract the service emits through.
type Logger = observability.Logger

// Metrics is the counters/histograms contract the service emits through.
type Metrics = observability.Metrics

// Service provides the high-level RAG operations backed by the retrieval
// engine, ingestion pipeline, and chunk registry.
type Service struct {
	engine   *retrieve.Engine
	pipeline *ingest.Pipeline
	registry *registry.Registry
	vectors  store.VectorStore
	searcher *strategy.WorkflowSearcher

	log     Logger
	metrics Metrics
	clock   Clock
}

// New constructs a Service from its fully-wired collaborators.
func New(engine *retrieve.Engine, pipeline *ingest.Pipeline, reg *registry.Registry, vectors store.VectorStore, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		pipeline: pipeline,
		registry: reg,
		vectors:  vectors,
		searcher: strategy.NewWorkflowSearcher(engine),
		log:      noopLogger{},
		metrics:  observability.NoopMetrics{},
		clock:    SystemClock{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ingest runs the ingestion pipeline for one document (§4.3).
func (s *Service) Ingest(ctx context.Context, req ingest.Request) (ingest.Response, error) {
	start := s.clock.Now()
	s.metrics.IncCounter("ingestion_docs_total", nil)

	resp, err := s.pipeline.Ingest(ctx, req)
	dur := s.clock.Now().Sub(start)
	s.metrics.ObserveHistogram("ingestion_duration_ms", float64(ms(dur)), map[string]string{"document_id": req.DocumentID})
	if err != nil {
		s.log.Error("ingest failed", map[string]any{"document_id": req.DocumentID, "error": err.Error()})
		return ingest.Response{}, err
	}
	s.log.Info("ingest completed", map[string]any{
		"document_id": resp.DocumentID, "chunks": resp.Stats.NumChunks, "skipped": resp.Skipped,
	})
	return resp, nil
}

// Search is the §6 "search" operation: plain hybrid retrieval, no workflow
// strategy applied.
func (s *Service) Search(ctx context.Context, query string, n int, filter store.Filter, scoreThreshold float64) (retrieve.RetrieveResponse, error) {
	start := s.clock.Now()
	resp, err := s.engine.Search(ctx, query, retrieve.RetrieveOptions{
		K: n, UseLexical: true, Filter: filter, ScoreThreshold: scoreThreshold,
	})
	s.metrics.ObserveHistogram("retrieval_duration_ms", float64(ms(s.clock.Now().Sub(start))), nil)
	if err != nil {
		s.log.Error("search failed", map[string]any{"error": err.Error()})
		return retrieve.RetrieveResponse{}, err
	}
	s.metrics.IncCounter("retrieval_results_total", nil)
	return resp, nil
}

// Stats is the §6 "stats" operation: collection-level counts.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	stats, err := s.registry.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats["vector_dimension"] = s.vectors.Dimension()
	return stats, nil
}

// RCCA is the §6 "rcca" operation.
func (s *Service) RCCA(ctx context.Context, query string, n int, projectID string) map[string]any {
	params := map[string]any{}
	if projectID != "" {
		params["project_id"] = projectID
	}
	return s.searcher.Search(ctx, &strategy.RCCA{}, query, n, params)
}

// Trade is the §6 "trade" operation.
func (s *Service) Trade(ctx context.Context, query string, alternatives, criteria []string, n int) map[string]any {
	params := map[string]any{"alternatives": alternatives, "criteria": criteria}
	return s.searcher.Search(ctx, &strategy.Trade{}, query, n, params)
}

// Explore is the §6 "explore" operation.
func (s *Service) Explore(ctx context.Context, query string, facets []string, n int) map[string]any {
	params := map[string]any{}
	if len(facets) > 0 {
		params["facets"] = facets
	}
	return s.searcher.Search(ctx, &strategy.Explore{}, query, n, params)
}

// Plan is the §6 "plan" operation.
func (s *Service) Plan(ctx context.Context, query string, category string, n int) map[string]any {
	params := map[string]any{}
	if category != "" {
		params["category"] = category
	}
	return s.searcher.Search(ctx, &strategy.Plan{}, query, n, params)
}

type noopLogger struct{}

func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}
func (noopLogger) Debug(string, map[string]any) {}

func ms(d time.Duration) int64 { return int64(d / time.Millisecond) }
