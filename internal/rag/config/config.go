// Package config loads clausebase's environment-sourced configuration
// (§6), grounded on intelligencedev-manifold's internal/config.Load
// (godotenv.Overload + os.Getenv) pattern.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// fileOverrides mirrors a subset of Config that may be set via an optional
// YAML file (intelligencedev-manifold's internal/config.Load reads a similar
// YAML file for its service definitions); environment variables still win
// when both are set.
type fileOverrides struct {
	EmbeddingProvider  string `yaml:"embedding_provider"`
	EmbeddingModel     string `yaml:"embedding_model"`
	VectorStoreBackend string `yaml:"vector_store_backend"`
	CollectionName     string `yaml:"collection_name"`
	LogLevel           string `yaml:"log_level"`
}

func loadFileOverrides(path string) fileOverrides {
	var fo fileOverrides
	if path == "" {
		return fo
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fo
	}
	_ = yaml.Unmarshal(b, &fo)
	return fo
}

// Config is the complete environment-sourced configuration surface (§6).
type Config struct {
	// Embedding provider selection: "remote" or "local".
	EmbeddingProvider string
	RemoteAPIKey      string
	EmbeddingModel    string
	EmbeddingDims     int
	LocalEmbeddingURL string

	// Vector store selection: "networked" (qdrant), "embedded", or "auto".
	VectorStoreBackend string
	VectorStoreURL     string
	VectorStoreAPIKey  string
	EmbeddedStorePath  string
	CollectionName     string

	HybridSearch bool

	ChunkMinTokens     int
	ChunkMaxTokens     int
	ChunkOverlapTokens int

	CacheDir      string
	CacheMaxBytes int64

	RegistryPath string

	RerankerEnabled bool
	RerankerAPIKey  string
	RerankerModel   string

	LogLevel string
}

// Load reads configuration from the environment. An optional local .env file
// is applied first with godotenv.Overload, so its values replace variables
// already set in the process environment; the resulting environment then
// takes precedence over the optional CONFIG_FILE YAML overrides.
func Load() Config {
	_ = godotenv.Overload()
	fo := loadFileOverrides(os.Getenv("CONFIG_FILE"))

	cfg := Config{
		EmbeddingProvider:  firstNonEmpty(os.Getenv("EMBEDDING_PROVIDER"), fo.EmbeddingProvider, "remote"),
		RemoteAPIKey:       os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:     firstNonEmpty(os.Getenv("EMBEDDING_MODEL"), fo.EmbeddingModel, "text-embedding-3-small"),
		EmbeddingDims:      envInt("EMBEDDING_DIMENSIONS", 1536),
		LocalEmbeddingURL:  os.Getenv("LOCAL_EMBEDDING_URL"),
		VectorStoreBackend: firstNonEmpty(os.Getenv("VECTOR_STORE_BACKEND"), fo.VectorStoreBackend, "auto"),
		VectorStoreURL:     os.Getenv("VECTOR_STORE_URL"),
		VectorStoreAPIKey:  os.Getenv("VECTOR_STORE_API_KEY"),
		EmbeddedStorePath:  firstNonEmpty(os.Getenv("EMBEDDED_STORE_PATH"), "./data/vectors.db"),
		CollectionName:     firstNonEmpty(os.Getenv("COLLECTION_NAME"), fo.CollectionName, "clausebase"),
		HybridSearch:       envBool("HYBRID_SEARCH", true),
		ChunkMinTokens:     envInt("CHUNK_MIN_TOKENS", 500),
		ChunkMaxTokens:     envInt("CHUNK_MAX_TOKENS", 1000),
		ChunkOverlapTokens: envInt("CHUNK_OVERLAP_TOKENS", 100),
		CacheDir:           firstNonEmpty(os.Getenv("EMBEDDING_CACHE_DIR"), "./data/cache"),
		CacheMaxBytes:      envInt64("EMBEDDING_CACHE_MAX_BYTES", 512*1024*1024),
		RegistryPath:       firstNonEmpty(os.Getenv("REGISTRY_PATH"), "./data/registry.db"),
		RerankerEnabled:    envBool("RERANKER_ENABLED", false),
		RerankerAPIKey:     os.Getenv("RERANKER_API_KEY"),
		RerankerModel:      os.Getenv("RERANKER_MODEL"),
		LogLevel:           firstNonEmpty(os.Getenv("LOG_LEVEL"), fo.LogLevel, "info"),
	}
	return cfg
}

// Validate returns the list of missing/invalid fields (§6: "Config
// validation returns a list of missing/invalid fields").
func (c Config) Validate() []string {
	var problems []string

	switch c.EmbeddingProvider {
	case "remote":
		if c.RemoteAPIKey == "" {
			problems = append(problems, "EMBEDDING_API_KEY is required when EMBEDDING_PROVIDER=remote")
		}
	case "local":
		if c.LocalEmbeddingURL == "" {
			problems = append(problems, "LOCAL_EMBEDDING_URL is required when EMBEDDING_PROVIDER=local")
		}
	default:
		problems = append(problems, "EMBEDDING_PROVIDER must be \"remote\" or \"local\"")
	}

	if c.EmbeddingDims <= 0 {
		problems = append(problems, "EMBEDDING_DIMENSIONS must be positive")
	}

	switch c.VectorStoreBackend {
	case "networked":
		if c.VectorStoreURL == "" {
			problems = append(problems, "VECTOR_STORE_URL is required when VECTOR_STORE_BACKEND=networked")
		}
	case "embedded", "auto":
	default:
		problems = append(problems, "VECTOR_STORE_BACKEND must be \"networked\", \"embedded\", or \"auto\"")
	}

	if c.ChunkMinTokens <= 0 || c.ChunkMaxTokens <= 0 || c.ChunkMinTokens > c.ChunkMaxTokens {
		problems = append(problems, "CHUNK_MIN_TOKENS/CHUNK_MAX_TOKENS must be positive with min <= max")
	}
	if c.ChunkOverlapTokens < 0 || c.ChunkOverlapTokens >= c.ChunkMaxTokens {
		problems = append(problems, "CHUNK_OVERLAP_TOKENS must be non-negative and less than CHUNK_MAX_TOKENS")
	}
	if c.CacheMaxBytes <= 0 {
		problems = append(problems, "EMBEDDING_CACHE_MAX_BYTES must be positive")
	}

	return problems
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
