package embed

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Layer composes a Provider with a persistent Cache and single-flight
// de-duplication (§4.5 "provider+cache composition"): identical (model,
// text) pairs requested concurrently result in exactly one provider call.
type Layer struct {
	provider Provider
	cache    *Cache
	group    singleflight.Group
}

func NewLayer(provider Provider, cache *Cache) *Layer {
	return &Layer{provider: provider, cache: cache}
}

func (l *Layer) Dimensions() int   { return l.provider.Dimensions() }
func (l *Layer) ModelName() string { return l.provider.ModelName() }
func (l *Layer) HealthCheck(ctx context.Context) bool { return l.provider.HealthCheck(ctx) }

// Embed returns a single text's vector, preferring the cache.
func (l *Layer) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := l.EmbedBatch(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch resolves each text against the cache first, then calls the
// underlying provider only for cache misses, preserving input order in the
// returned slice (scatter-gather). Concurrent misses for the same (model,
// text) collapse into a single in-flight provider call.
func (l *Layer) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	if l.cache != nil {
		for i, t := range texts {
			if vec, ok := l.cache.Get(l.provider.ModelName(), t); ok {
				out[i] = vec
				continue
			}
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	} else {
		for i, t := range texts {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	type result struct {
		vec []float32
		err error
	}
	results := make([]chan result, len(missTexts))
	for i, t := range missTexts {
		ch := make(chan result, 1)
		results[i] = ch
		go func(text string, ch chan result) {
			v, err, _ := l.group.Do(l.provider.ModelName()+"\x00"+text, func() (any, error) {
				// A call that finished just before this one joined the group
				// has already cached the vector; reuse it.
				if l.cache != nil {
					if vec, ok := l.cache.Get(l.provider.ModelName(), text); ok {
						return vec, nil
					}
				}
				vecs, err := l.provider.EmbedBatch(ctx, []string{text}, 1)
				if err != nil {
					return nil, err
				}
				vec := vecs[0]
				if l.cache != nil {
					_ = l.cache.Set(l.provider.ModelName(), text, vec)
				}
				return vec, nil
			})
			if err != nil {
				ch <- result{err: err}
				return
			}
			ch <- result{vec: v.([]float32)}
		}(t, ch)
	}

	for i, idx := range missIdx {
		r := <-results[i]
		if r.err != nil {
			return nil, r.err
		}
		out[idx] = r.vec
	}
	return out, nil
}
