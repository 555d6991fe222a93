package embedded

import "testing"

func TestEncodeDecodeVectorRoundTrips(t *testing.T) {
	v := []float32{1.5, -2.25, 0, 3.125, -7}
	got := decodeVector(encodeVector(v))
	if len(got) != len(v) {
		t.Fatalf("expected %d components, got %d", len(v), len(got))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Fatalf("component %d: expected %v, got %v", i, v[i], got[i])
		}
	}
}

func TestEncodeDecodeEmptyVector(t *testing.T) {
	got := decodeVector(encodeVector(nil))
	if len(got) != 0 {
		t.Fatalf("expected empty vector, got %v", got)
	}
}
