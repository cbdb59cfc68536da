package store

import (
	"context"
	"strings"
	"time"

	ragerrors "clausebase/internal/rag/errors"
)

// Config selects and configures the vector store backend (§6 config
// surface: VECTOR_STORE_BACKEND, VECTOR_STORE_URL, COLLECTION_NAME,
// EMBEDDED_STORE_PATH).
type Config struct {
	// Backend is "qdrant" (also accepted as "networked", the name
	// config.Config uses), "embedded", or "auto" (try qdrant, fall back to
	// embedded on connection failure — mirrors the corpus's auto/fallback
	// database-manager pattern).
	Backend    string
	DSN        string
	Collection string
	Metric     string
	Dimensions int
	// EmbeddedPath is the bbolt file backing the embedded fallback.
	EmbeddedPath string
}

// Open constructs the configured VectorStore, with "auto" probing Qdrant
// first and degrading to the embedded backend on failure (§4.6 graceful
// degradation, §5 reconnection policy).
func Open(ctx context.Context, cfg Config) (VectorStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", "embedded":
		return OpenEmbeddedStore(cfg.EmbeddedPath, cfg.Dimensions)

	case "qdrant", "networked":
		return NewQdrantStore(cfg.DSN, cfg.Collection, cfg.Dimensions, cfg.Metric)

	case "auto":
		qs, err := NewQdrantStore(cfg.DSN, cfg.Collection, cfg.Dimensions, cfg.Metric)
		if err == nil {
			hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if healthy(hctx, qs) {
				return qs, nil
			}
			qs.Close()
		}
		return OpenEmbeddedStore(cfg.EmbeddedPath, cfg.Dimensions)

	default:
		return nil, ragerrors.Configf("unsupported vector store backend %q", cfg.Backend)
	}
}

func healthy(ctx context.Context, s *QdrantStore) bool {
	probe := make([]float32, s.dimension)
	_, err := s.SimilaritySearch(ctx, probe, 1, nil)
	return err == nil
}
