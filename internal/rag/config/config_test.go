package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RemoteProviderRequiresAPIKey(t *testing.T) {
	cfg := Config{
		EmbeddingProvider:  "remote",
		EmbeddingDims:      1536,
		VectorStoreBackend: "embedded",
		ChunkMinTokens:     500,
		ChunkMaxTokens:     1000,
		ChunkOverlapTokens: 100,
		CacheMaxBytes:      1024,
	}
	problems := cfg.Validate()
	assert.Contains(t, problems, "EMBEDDING_API_KEY is required when EMBEDDING_PROVIDER=remote")
}

func TestValidate_LocalProviderRequiresURL(t *testing.T) {
	cfg := Config{
		EmbeddingProvider:  "local",
		EmbeddingDims:      768,
		VectorStoreBackend: "embedded",
		ChunkMinTokens:     500,
		ChunkMaxTokens:     1000,
		CacheMaxBytes:      1024,
	}
	problems := cfg.Validate()
	assert.Contains(t, problems, "LOCAL_EMBEDDING_URL is required when EMBEDDING_PROVIDER=local")
}

func TestValidate_UnknownProviderRejected(t *testing.T) {
	cfg := Config{EmbeddingProvider: "carrier-pigeon", EmbeddingDims: 1, VectorStoreBackend: "embedded", ChunkMinTokens: 1, ChunkMaxTokens: 2, CacheMaxBytes: 1}
	assert.Contains(t, cfg.Validate(), "EMBEDDING_PROVIDER must be \"remote\" or \"local\"")
}

func TestValidate_NetworkedBackendRequiresURL(t *testing.T) {
	cfg := Config{
		EmbeddingProvider: "remote", RemoteAPIKey: "k", EmbeddingDims: 1536,
		VectorStoreBackend: "networked",
		ChunkMinTokens:      500, ChunkMaxTokens: 1000, CacheMaxBytes: 1024,
	}
	assert.Contains(t, cfg.Validate(), "VECTOR_STORE_URL is required when VECTOR_STORE_BACKEND=networked")
}

func TestValidate_ChunkBoundsMustBeOrdered(t *testing.T) {
	cfg := Config{
		EmbeddingProvider: "remote", RemoteAPIKey: "k", EmbeddingDims: 1536,
		VectorStoreBackend: "embedded",
		ChunkMinTokens:      1000, ChunkMaxTokens: 500, CacheMaxBytes: 1024,
	}
	assert.Contains(t, cfg.Validate(), "CHUNK_MIN_TOKENS/CHUNK_MAX_TOKENS must be positive with min <= max")
}

func TestValidate_OverlapMustBeLessThanMax(t *testing.T) {
	cfg := Config{
		EmbeddingProvider: "remote", RemoteAPIKey: "k", EmbeddingDims: 1536,
		VectorStoreBackend: "embedded",
		ChunkMinTokens:      500, ChunkMaxTokens: 1000, ChunkOverlapTokens: 1000,
		CacheMaxBytes: 1024,
	}
	assert.Contains(t, cfg.Validate(), "CHUNK_OVERLAP_TOKENS must be non-negative and less than CHUNK_MAX_TOKENS")
}

func TestValidate_ValidConfigHasNoProblems(t *testing.T) {
	cfg := Config{
		EmbeddingProvider: "remote", RemoteAPIKey: "k", EmbeddingDims: 1536,
		VectorStoreBackend: "embedded",
		ChunkMinTokens:      500, ChunkMaxTokens: 1000, ChunkOverlapTokens: 100,
		CacheMaxBytes: 1024,
	}
	assert.Empty(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("CONFIG_FILE", "")
	cfg := Load()
	assert.Equal(t, "remote", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.EmbeddingDims)
	assert.True(t, cfg.HybridSearch)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL", "custom-model")
	t.Setenv("CHUNK_MAX_TOKENS", "2000")
	cfg := Load()
	assert.Equal(t, "custom-model", cfg.EmbeddingModel)
	assert.Equal(t, 2000, cfg.ChunkMaxTokens)
}
