// Package embed implements the embedding provider contract, its two
// backends (remote cloud API, local HTTP-reachable model server), the
// content-addressed persistent cache, and the provider+cache+single-flight
// composition layer consumed by ingestion and query-time embedding (§4.5).
package embed

import "context"

// Provider is the polymorphic embedding provider contract (§4.5).
type Provider interface {
	Dimensions() int
	ModelName() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
	HealthCheck(ctx context.Context) bool
}
