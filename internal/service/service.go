// Package service wires a config.Config into the concrete collaborators
// the rest of codevector depends on: an embedding client, an optional
// code2desc describer, one of the three C8 vector-store adapters, and the
// C9/C10 Indexer/Retriever built on top of them.
//
// Grounded on seanblong-reposearch's cmd/api/main.go, which does this same
// config-to-collaborator wiring inline in main before constructing its
// search.Service.
package service

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/codevector/internal/config"
	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/describer"
	"github.com/Aman-CERP/codevector/internal/embedclient"
	"github.com/Aman-CERP/codevector/internal/indexer"
	"github.com/Aman-CERP/codevector/internal/loader"
	"github.com/Aman-CERP/codevector/internal/pipeline"
	"github.com/Aman-CERP/codevector/internal/retrieval"
	"github.com/Aman-CERP/codevector/internal/segment"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
	"github.com/Aman-CERP/codevector/internal/vectorstore/embedded"
	"github.com/Aman-CERP/codevector/internal/vectorstore/native"
	"github.com/Aman-CERP/codevector/internal/vectorstore/relational"
)

// Service bundles the constructed Indexer and Retriever, plus the store
// they share so Close can release it.
type Service struct {
	Indexer   *indexer.Indexer
	Retriever *retrieval.Retriever
	store     vectorstore.Store
}

// Build constructs a Service from cfg: an embedding client for
// cfg.Vector.EmbeddingProvider, an optional describer when code2desc is
// enabled, the C8 store named by cfg.Vector.Platform, and the C9/C10
// collaborators bound to both.
func Build(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, err := buildEmbedClient(cfg)
	if err != nil {
		return nil, err
	}
	embedder := embedclient.New(client)

	dim, err := embedder.Dimension(ctx)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg, dim)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	var desc pipeline.Describer
	if cfg.Vector.Code2Desc {
		desc = describer.New(cfg.Vector.ChatAPIKey, cfg.Vector.ChatModel, cfg.Vector.ChatBaseURL)
	}

	pl := pipeline.New(embedder, desc, cfg.Vector.Code2Desc)
	ld := loader.New(loader.NewDefaultRegistry())
	idx := indexer.New(ld, pl, store, segment.DefaultOptions())
	ret := retrieval.New(embedder, store)

	return &Service{Indexer: idx, Retriever: ret, store: store}, nil
}

// Close releases the underlying vector store.
func (s *Service) Close() error {
	return s.store.Close()
}

func buildEmbedClient(cfg *config.Config) (embedclient.Client, error) {
	switch cfg.Vector.EmbeddingProvider {
	case "openai":
		return embedclient.NewOpenAIClient(cfg.Vector.EmbeddingAPIKey, cfg.Vector.EmbeddingModel, cfg.Vector.EmbeddingBaseURL), nil
	case "jina":
		return embedclient.NewJinaClient(cfg.Vector.EmbeddingAPIKey, cfg.Vector.EmbeddingModel), nil
	default:
		return nil, cverrors.Config(fmt.Sprintf("unknown embedding_provider %q", cfg.Vector.EmbeddingProvider), nil)
	}
}

func buildStore(ctx context.Context, cfg *config.Config, dim int) (vectorstore.Store, error) {
	switch cfg.Vector.Platform {
	case "relational":
		return relational.New(ctx, cfg.Vector.Relational.URL, cfg.Vector.EmbeddingModel, dim)
	case "native-vector-db":
		return native.New(cfg.Vector.Native.Host, cfg.Vector.Native.Port, cfg.Vector.EmbeddingModel, dim)
	case "embedded-lite":
		return embedded.New(cfg.Vector.Embedded.Path, cfg.Vector.EmbeddingModel, dim)
	default:
		return nil, cverrors.Config(fmt.Sprintf("unknown vector.platform %q", cfg.Vector.Platform), nil)
	}
}
