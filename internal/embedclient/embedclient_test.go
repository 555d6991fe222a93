package embedclient

import (
	"context"
	"testing"
)

type fakeClient struct {
	model string
	calls [][]string
}

func (f *fakeClient) ModelName() string { return f.model }

func (f *fakeClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string{}, inputs...))
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func TestEmbedPreservesOrderUnderBatchCap(t *testing.T) {
	fc := &fakeClient{model: "probe"}
	e := New(fc)

	inputs := make([]string, 3000)
	for i := range inputs {
		inputs[i] = "segment"
	}

	vectors, err := e.Embed(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != len(inputs) {
		t.Fatalf("expected %d vectors, got %d", len(inputs), len(vectors))
	}
	if len(fc.calls) != 2 {
		t.Fatalf("expected exactly 2 provider calls for 3000 inputs, got %d", len(fc.calls))
	}
	if len(fc.calls[0]) != 2048 || len(fc.calls[1]) != 952 {
		t.Fatalf("expected batches of 2048 and 952, got %d and %d", len(fc.calls[0]), len(fc.calls[1]))
	}
}

func TestDimensionComputedOnce(t *testing.T) {
	fc := &fakeClient{model: "probe"}
	e := New(fc)

	d1, err := e.Dimension(context.Background())
	if err != nil {
		t.Fatalf("Dimension: %v", err)
	}
	d2, err := e.Dimension(context.Background())
	if err != nil {
		t.Fatalf("Dimension: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("dimension changed across calls")
	}
	if len(fc.calls) != 1 {
		t.Fatalf("expected exactly one probe call, got %d", len(fc.calls))
	}
}

func TestCacheReturnsSameInstanceForSameKey(t *testing.T) {
	cache := NewCache()
	builds := 0
	build := func() (Client, error) {
		builds++
		return &fakeClient{model: "m"}, nil
	}

	e1, err := cache.GetOrCreate("openai", "m", build)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	e2, err := cache.GetOrCreate("openai", "m", build)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected the same cached Embedder instance")
	}
	if builds != 1 {
		t.Fatalf("expected exactly one build call, got %d", builds)
	}
}
