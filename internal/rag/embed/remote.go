package embed

import (
	"context"
	"strings"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	ragerrors "clausebase/internal/rag/errors"
)

// RemoteProvider is the cloud embedding provider backend (§4.5 "remote
// API"), backed by the official OpenAI Go SDK's Embeddings endpoint. It is
// the cloud counterpart of LocalProvider, which speaks the same wire
// protocol to a self-hosted, OpenAI-compatible model server.
type RemoteProvider struct {
	client     sdk.Client
	model      string
	dimensions int
}

// NewRemoteProvider constructs a cloud embedding provider. baseURL may be
// empty to use OpenAI's default endpoint, or point at any
// OpenAI-API-compatible embeddings endpoint.
func NewRemoteProvider(apiKey, baseURL, model string, dimensions int) (*RemoteProvider, error) {
	if apiKey == "" {
		return nil, ragerrors.Configf("remote embedding provider: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &RemoteProvider{
		client:     sdk.NewClient(opts...),
		model:      model,
		dimensions: dimensions,
	}, nil
}

func (p *RemoteProvider) Dimensions() int  { return p.dimensions }
func (p *RemoteProvider) ModelName() string { return p.model }

func (p *RemoteProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ragerrors.InvalidInputf("embed: text must not be empty")
	}
	vecs, err := p.EmbedBatch(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *RemoteProvider) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
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
		batch := texts[start:end]
		for i, t := range batch {
			if strings.TrimSpace(t) == "" {
				return nil, ragerrors.InvalidInputf("embed_batch: empty text at index %d", start+i)
			}
		}

		resp, err := p.client.Embeddings.New(ctx, sdk.EmbeddingNewParams{
			Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model: sdk.EmbeddingModel(p.model),
		})
		if err != nil {
			return nil, classifyOpenAIError(err)
		}
		if len(resp.Data) != len(batch) {
			return nil, ragerrors.Internalf("embed_batch: provider returned %d vectors for %d inputs", len(resp.Data), len(batch))
		}
		for _, d := range resp.Data {
			vec := make([]float32, len(d.Embedding))
			for i, f := range d.Embedding {
				vec[i] = float32(f)
			}
			out = append(out, vec)
		}
	}
	return out, nil
}

func (p *RemoteProvider) HealthCheck(ctx context.Context) bool {
	vec, err := p.Embed(ctx, "health check")
	if err != nil {
		return false
	}
	return len(vec) == p.dimensions
}

// classifyOpenAIError maps SDK error shapes onto the §4.5 error kind
// taxonomy without ever echoing the credential used to make the call.
func classifyOpenAIError(err error) error {
	var apiErr *sdk.Error
	if ok := errorsAs(err, &apiErr); ok {
		switch apiErr.StatusCode {
		case 401, 403:
			return ragerrors.Authf("embedding provider authentication failed")
		case 429:
			return ragerrors.RateLimitedf("embedding provider rate limit exceeded")
		case 408:
			return ragerrors.Timeoutf("embedding provider request timed out")
		default:
			if apiErr.StatusCode >= 500 {
				return ragerrors.Connectionf("embedding provider unavailable (status %d)", apiErr.StatusCode)
			}
			return ragerrors.InvalidInputf("embedding provider rejected request (status %d)", apiErr.StatusCode)
		}
	}
	return ragerrors.Connectionf("embedding provider request failed: %v", err)
}

func errorsAs(err error, target **sdk.Error) bool {
	for err != nil {
		if e, ok := err.(*sdk.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
