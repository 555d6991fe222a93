package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// JinaClient is the jina-shape provider. It shares the openai-shape
// request/response envelope (embeddings.create(input, model) ->
// data[i].embedding) and the same Bearer auth header, but targets Jina's
// embeddings endpoint.
type JinaClient struct {
	apiKey string
	model  string
	http   *http.Client
}

const jinaEmbeddingsURL = "https://api.jina.ai/v1/embeddings"

func NewJinaClient(apiKey, model string) *JinaClient {
	return &JinaClient{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *JinaClient) ModelName() string { return c.model }

func (c *JinaClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{Input: inputs, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, jinaEmbeddingsURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out embeddingsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return nil, fmt.Errorf("jina embeddings api error (%d): %s", resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("jina embeddings api error: status %d", resp.StatusCode)
	}

	vectors := make([][]float32, len(out.Data))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			continue
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
