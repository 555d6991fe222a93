// Package embedclient is C6: a batching embedding client contract with two
// recognized provider shapes (openai-style, jina-style) and a process-wide
// singleton cache keyed by (provider, model).
package embedclient

import (
	"context"
	"sync"

	"github.com/Aman-CERP/codevector/internal/cverrors"
)

// maxBatch is the hard per-call input limit; larger batches are chunked
// transparently by Embed.
const maxBatch = 2048

// Client is the embedding client contract every provider shape satisfies.
type Client interface {
	// EmbedBatch embeds inputs in request order, one vector per input, and
	// is responsible for whatever provider-specific batch limit its own
	// transport enforces — callers rely on Embed (below) for the 2048 cap.
	EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error)
	// ModelName identifies the model this client was constructed for, used
	// as half of the singleton cache key.
	ModelName() string
}

// Embedder wraps a Client with the order-preserving, 2048-batch-capped
// embed() contract from spec.md §4.6, plus a once-computed, cached
// dimension().
type Embedder struct {
	client Client

	dimOnce sync.Once
	dim     int
	dimErr  error
}

// New wraps client in the batching/dimension-caching Embedder contract.
func New(client Client) *Embedder {
	return &Embedder{client: client}
}

// Embed embeds inputs, preserving order, transparently chunking into
// successive calls of at most 2048 inputs each when inputs is longer.
func (e *Embedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if len(inputs) <= maxBatch {
		vectors, err := e.client.EmbedBatch(ctx, inputs)
		if err != nil {
			return nil, cverrors.EmbeddingProvider("embedding call failed", err)
		}
		if len(vectors) != len(inputs) {
			return nil, cverrors.EmbeddingProvider("embedding provider returned a mismatched vector count", nil)
		}
		return vectors, nil
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += maxBatch {
		end := start + maxBatch
		if end > len(inputs) {
			end = len(inputs)
		}
		vectors, err := e.client.EmbedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, cverrors.EmbeddingProvider("embedding call failed", err)
		}
		if len(vectors) != end-start {
			return nil, cverrors.EmbeddingProvider("embedding provider returned a mismatched vector count", nil)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// probeText is the fixed string used to compute Dimension once per process.
const probeText = "dimension probe"

// Dimension returns the embedding dimension, computed once (via a single
// probe call) and cached for the lifetime of the Embedder.
func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	e.dimOnce.Do(func() {
		vectors, err := e.client.EmbedBatch(ctx, []string{probeText})
		if err != nil {
			e.dimErr = cverrors.EmbeddingProvider("failed to probe embedding dimension", err)
			return
		}
		if len(vectors) != 1 {
			e.dimErr = cverrors.EmbeddingProvider("dimension probe returned an unexpected vector count", nil)
			return
		}
		e.dim = len(vectors[0])
	})
	return e.dim, e.dimErr
}

// ModelName exposes the wrapped client's model name for cache keying.
func (e *Embedder) ModelName() string { return e.client.ModelName() }

// cacheKey is (provider, model).
type cacheKey struct {
	provider string
	model    string
}

// Cache is the process-wide model-client cache from spec.md §5: one lock
// guarding lazy construction, keyed by (provider, model).
type Cache struct {
	mu    sync.Mutex
	items map[cacheKey]*Embedder
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[cacheKey]*Embedder)}
}

// GetOrCreate returns the cached Embedder for (provider, model), building
// it with build if absent. build is only ever invoked while holding the
// cache's lock, so concurrent callers racing on the same key never
// construct two clients.
func (c *Cache) GetOrCreate(provider, model string, build func() (Client, error)) (*Embedder, error) {
	key := cacheKey{provider: provider, model: model}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		return e, nil
	}
	client, err := build()
	if err != nil {
		return nil, err
	}
	e := New(client)
	c.items[key] = e
	return e, nil
}
