package service

import (
	"context"
	"testing"

	"github.com/Aman-CERP/codevector/internal/config"
)

func TestBuildEmbedClientRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.EmbeddingProvider = "bogus"

	if _, err := buildEmbedClient(cfg); err == nil {
		t.Fatal("expected an error for an unknown embedding_provider")
	}
}

func TestBuildEmbedClientAcceptsOpenAIAndJina(t *testing.T) {
	for _, provider := range []string{"openai", "jina"} {
		cfg := config.Default()
		cfg.Vector.EmbeddingProvider = provider
		if _, err := buildEmbedClient(cfg); err != nil {
			t.Fatalf("provider %q: %v", provider, err)
		}
	}
}

func TestBuildStoreRejectsUnknownPlatform(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.Platform = "bogus"

	if _, err := buildStore(context.Background(), cfg, 8); err == nil {
		t.Fatal("expected an error for an unknown vector.platform")
	}
}

func TestBuildStoreAcceptsEmbeddedLite(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.Platform = "embedded-lite"
	cfg.Vector.Embedded.Path = t.TempDir() + "/codevector.db"

	store, err := buildStore(context.Background(), cfg, 8)
	if err != nil {
		t.Fatalf("buildStore: %v", err)
	}
	if store == nil {
		t.Fatal("expected a non-nil store")
	}
}
