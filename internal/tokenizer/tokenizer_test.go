package tokenizer

import "testing"

func TestCountKnownEncodings(t *testing.T) {
	for _, enc := range []string{CL100kBase, O200kBase} {
		n, err := Count("package main\n\nfunc main() {}\n", enc)
		if err != nil {
			t.Fatalf("Count(%s): %v", enc, err)
		}
		if n == 0 {
			t.Fatalf("Count(%s) returned 0 tokens for non-empty text", enc)
		}
	}
}

func TestCountUnknownEncoding(t *testing.T) {
	if _, err := Count("x", "not-a-real-encoding"); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestCountingFuncBindsEncoding(t *testing.T) {
	f := CountingFunc(CL100kBase)
	n, err := f("hello world")
	if err != nil {
		t.Fatalf("CountingFunc: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected nonzero token count")
	}
}

func TestCountIsCachedAcrossCalls(t *testing.T) {
	// Exercise the encoding cache twice; the second call must reuse the
	// cached *tiktoken.Tiktoken rather than re-parsing the BPE ranks file.
	a, err := Count("alpha beta gamma", CL100kBase)
	if err != nil {
		t.Fatalf("first Count: %v", err)
	}
	mu.Lock()
	first := cache[CL100kBase]
	mu.Unlock()
	if first == nil {
		t.Fatalf("expected %s to be cached after the first Count", CL100kBase)
	}
	b, err := Count("alpha beta gamma", CL100kBase)
	if err != nil {
		t.Fatalf("second Count: %v", err)
	}
	mu.Lock()
	again := cache[CL100kBase]
	mu.Unlock()
	if again != first {
		t.Fatalf("expected the second Count to reuse the cached encoder")
	}
	if a != b {
		t.Fatalf("token count changed across calls: %d != %d", a, b)
	}
}
