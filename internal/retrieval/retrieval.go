// Package retrieval implements C10: turning a (repo_id, query) pair into
// a ranked list of stored segments, via the same embedding client the
// indexer uses and whichever C8 adapter is configured.
//
// Grounded on we0-index's router/vector_router.py retrieval handler.
package retrieval

import (
	"context"
	"strings"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/embedclient"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

// Request is the body of POST /vector/retrieval.
type Request struct {
	RepoID  string
	FileIDs []string
	Query   string
	TopK    int
}

// Retriever is C10, bound to one embedding client and one vector store.
type Retriever struct {
	embedder *embedclient.Embedder
	store    vectorstore.Store
}

// New builds a Retriever.
func New(embedder *embedclient.Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Search validates req, embeds the query text, and returns the matching
// DocumentMeta list with score populated.
func (r *Retriever) Search(ctx context.Context, req Request) ([]model.DocumentMeta, error) {
	if strings.TrimSpace(req.RepoID) == "" {
		return nil, cverrors.Validation("repo_id must not be empty")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, cverrors.Validation("query must not be empty")
	}

	vectors, err := r.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, err
	}

	docs, err := r.store.SearchByVector(ctx, req.RepoID, vectors[0], vectorstore.SearchOptions{
		FileIDs: req.FileIDs,
		TopK:    req.TopK,
	})
	if err != nil {
		return nil, err
	}

	metas := make([]model.DocumentMeta, len(docs))
	for i, d := range docs {
		metas[i] = d.Meta
		metas[i].Content = d.Content
	}
	return metas, nil
}
