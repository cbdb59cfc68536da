// Package wire is the single composition function shared by cmd/ingestctl
// and cmd/queryctl: it builds every collaborator named in §6 (embedding
// provider+cache+layer, vector store, lexical index, chunk registry,
// reranker, retrieval engine, ingestion pipeline) from a loaded Config and
// assembles the resulting service.Service.
package wire

import (
	"context"
	"fmt"

	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/config"
	"clausebase/internal/rag/embed"
	"clausebase/internal/rag/ingest"
	"clausebase/internal/rag/lexical"
	"clausebase/internal/rag/observability"
	"clausebase/internal/rag/registry"
	"clausebase/internal/rag/rerank"
	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/service"
	"clausebase/internal/rag/store"
)

// Collaborators holds every constructed component, so callers (the CLI
// drivers) can close them in order on shutdown.
type Collaborators struct {
	Service  *service.Service
	Registry *registry.Registry
	Vectors  store.VectorStore
	Cache    *embed.Cache
}

// Close releases every closeable collaborator, logging nothing itself —
// callers decide how to report close errors.
func (c *Collaborators) Close() {
	if c.Registry != nil {
		_ = c.Registry.Close()
	}
	if c.Vectors != nil {
		_ = c.Vectors.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}

// Build constructs the full collaborator graph from cfg and rebuilds the
// in-memory BM25 lexical index from the registry's persisted chunks, since
// lexical.Index keeps no state of its own across process restarts.
func Build(ctx context.Context, cfg config.Config) (*Collaborators, error) {
	logger := observability.NewZerologLogger(nil, cfg.LogLevel)

	var provider embed.Provider
	switch cfg.EmbeddingProvider {
	case "local":
		provider = embed.NewLocalProvider(embed.LocalProviderConfig{
			BaseURL:    cfg.LocalEmbeddingURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDims,
		})
	default:
		p, err := embed.NewRemoteProvider(cfg.RemoteAPIKey, "", cfg.EmbeddingModel, cfg.EmbeddingDims)
		if err != nil {
			return nil, fmt.Errorf("wire: remote embedding provider: %w", err)
		}
		provider = p
	}

	cache, err := embed.OpenCache(embed.CacheConfig{Path: cfg.CacheDir + "/embeddings.db", MaxBytes: cfg.CacheMaxBytes})
	if err != nil {
		return nil, fmt.Errorf("wire: embedding cache: %w", err)
	}
	layer := embed.NewLayer(provider, cache)

	vectors, err := store.Open(ctx, store.Config{
		Backend:      cfg.VectorStoreBackend,
		DSN:          cfg.VectorStoreURL,
		Collection:   cfg.CollectionName,
		Dimensions:   cfg.EmbeddingDims,
		EmbeddedPath: cfg.EmbeddedStorePath,
	})
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("wire: vector store: %w", err)
	}

	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		vectors.Close()
		cache.Close()
		return nil, fmt.Errorf("wire: chunk registry: %w", err)
	}

	lexicon := lexical.New()
	var ids, texts []string
	_ = reg.All(ctx, func(chunkID string, md retrieve.ChunkMetadata) error {
		ids = append(ids, chunkID)
		texts = append(texts, md.Text)
		return nil
	})
	if len(ids) > 0 {
		_ = lexicon.Build(ids, texts)
	}

	var reranker rerank.Reranker
	if cfg.RerankerEnabled {
		reranker = rerank.NewCloudReranker("", cfg.RerankerAPIKey, cfg.RerankerModel)
	}

	engine := retrieve.NewEngine(layer, vectors, lexicon, reranker, reg, retrieve.WithLogger(logger))

	chunkCfg := chunk.DefaultConfig()
	chunkCfg.TargetTokens = cfg.ChunkMinTokens
	chunkCfg.MaxTokens = cfg.ChunkMaxTokens
	chunkCfg.OverlapTokens = cfg.ChunkOverlapTokens
	chunkCfg.Model = cfg.EmbeddingModel
	chunker := chunk.New(chunkCfg)
	pipeline := &ingest.Pipeline{
		Chunker:  chunker,
		Embedder: layer,
		Vectors:  vectors,
		Lexicon:  lexicon,
		Hashes:   reg,
		Meta:     reg,
	}

	svc := service.New(engine, pipeline, reg, vectors, service.WithLogger(logger))

	return &Collaborators{Service: svc, Registry: reg, Vectors: vectors, Cache: cache}, nil
}
