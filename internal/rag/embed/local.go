package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	ragerrors "clausebase/internal/rag/errors"
)

// LocalProvider is the "local model" backend of the §4.5 provider contract:
// an OpenAI-compatible HTTP endpoint for a self-hosted inference server
// (e.g. llama.cpp's server mode, or any text-embeddings-inference-style
// deployment). Grounded directly on the generic embedding HTTP client this
// module's teacher used for its own local/self-hosted model servers.
type LocalProvider struct {
	httpClient *http.Client
	baseURL    string
	path       string
	apiHeader  string
	apiKey     string
	model      string
	dimensions int
	timeout    time.Duration
}

type LocalProviderConfig struct {
	BaseURL    string
	Path       string
	APIHeader  string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

func NewLocalProvider(cfg LocalProviderConfig) *LocalProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	path := cfg.Path
	if path == "" {
		path = "/v1/embeddings"
	}
	return &LocalProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		path:       path,
		apiHeader:  cfg.APIHeader,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    timeout,
	}
}

func (p *LocalProvider) Dimensions() int   { return p.dimensions }
func (p *LocalProvider) ModelName() string { return p.model }

type localEmbedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type localEmbedResp struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ragerrors.InvalidInputf("embed: text must not be empty")
	}
	vecs, err := p.EmbedBatch(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ragerrors.InvalidInputf("embed_batch: texts must not be empty")
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := p.call(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (p *LocalProvider) call(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(localEmbedReq{Model: p.model, Input: inputs})
	if err != nil {
		return nil, ragerrors.Internalf("encode embedding request: %v", err)
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, p.baseURL+p.path, bytes.NewReader(body))
	if err != nil {
		return nil, ragerrors.Internalf("build embedding request: %v", err)
	}
	if p.apiHeader == "Authorization" && p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	} else if p.apiHeader != "" && p.apiKey != "" {
		req.Header.Set(p.apiHeader, p.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if cctx.Err() != nil {
			return nil, ragerrors.Timeoutf("local embedding provider timed out")
		}
		return nil, ragerrors.Connectionf("local embedding provider unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ragerrors.Authf("local embedding provider rejected credentials")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ragerrors.RateLimitedf("local embedding provider rate limit exceeded")
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return nil, ragerrors.Connectionf("local embedding provider error: %s", resp.Status)
		}
		return nil, ragerrors.InvalidInputf("local embedding provider rejected request: %s: %s", resp.Status, string(b))
	}

	var er localEmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, ragerrors.Internalf("decode embedding response: %v", err)
	}
	if len(er.Data) != len(inputs) {
		return nil, ragerrors.Internalf("local embedding provider returned %d vectors for %d inputs", len(er.Data), len(inputs))
	}
	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}

func (p *LocalProvider) HealthCheck(ctx context.Context) bool {
	_, err := p.Embed(ctx, "ping")
	return err == nil
}
