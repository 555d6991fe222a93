package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default(): %v", err)
	}
}

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vector.Platform != "embedded-lite" {
		t.Fatalf("expected the default platform, got %q", cfg.Vector.Platform)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
vector:
  platform: native-vector-db
  embedding_provider: jina
  embedding_model: jina-embeddings-v3
  native:
    host: qdrant.internal
    port: 6334
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vector.Platform != "native-vector-db" {
		t.Fatalf("expected yaml platform override, got %q", cfg.Vector.Platform)
	}
	if cfg.Vector.Native.Host != "qdrant.internal" {
		t.Fatalf("expected yaml native host override, got %q", cfg.Vector.Native.Host)
	}
	// Defaults not named in the file survive the merge.
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected the default server port to survive, got %d", cfg.Server.Port)
	}
}

func TestEnvOverridesTakePrecedenceOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("vector:\n  embedding_model: from-yaml\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("CODEVECTOR_EMBEDDING_MODEL", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vector.EmbeddingModel != "from-env" {
		t.Fatalf("expected env var to win over yaml, got %q", cfg.Vector.EmbeddingModel)
	}
}

func TestValidateRejectsUnknownPlatform(t *testing.T) {
	cfg := Default()
	cfg.Vector.Platform = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for an unknown platform")
	}
}

func TestValidateRequiresChatProviderWhenCode2DescEnabled(t *testing.T) {
	cfg := Default()
	cfg.Vector.Code2Desc = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when code2desc is enabled with no chat provider")
	}
}

func TestValidateRequiresRelationalURL(t *testing.T) {
	cfg := Default()
	cfg.Vector.Platform = "relational"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for the relational platform with no url")
	}
}
