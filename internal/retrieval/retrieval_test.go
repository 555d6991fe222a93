package retrieval

import (
	"context"
	"testing"

	"github.com/Aman-CERP/codevector/internal/embedclient"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

type fakeClient struct{ lastInputs []string }

func (f *fakeClient) ModelName() string { return "fake" }
func (f *fakeClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	f.lastInputs = inputs
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeStore struct {
	gotRepoID string
	gotOpts   vectorstore.SearchOptions
}

func (s *fakeStore) Init(ctx context.Context) error                          { return nil }
func (s *fakeStore) Create(ctx context.Context, docs []model.Document) error { return nil }
func (s *fakeStore) Upsert(ctx context.Context, docs []model.Document) error { return nil }
func (s *fakeStore) Delete(ctx context.Context, repoID string, fileIDs []string) error {
	return nil
}
func (s *fakeStore) Drop(ctx context.Context, repoID string) error { return nil }
func (s *fakeStore) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	return nil, nil
}
func (s *fakeStore) SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts vectorstore.SearchOptions) ([]model.Document, error) {
	s.gotRepoID = repoID
	s.gotOpts = opts
	return []model.Document{
		{Content: "func a() {}", Meta: model.DocumentMeta{SegmentID: "s1", RepoID: repoID, Score: 0.9}},
	}, nil
}
func (s *fakeStore) Close() error { return nil }

func TestSearchRejectsEmptyRepoID(t *testing.T) {
	r := New(embedclient.New(&fakeClient{}), &fakeStore{})
	if _, err := r.Search(context.Background(), Request{Query: "q"}); err == nil {
		t.Fatalf("expected an error for an empty repo_id")
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	r := New(embedclient.New(&fakeClient{}), &fakeStore{})
	if _, err := r.Search(context.Background(), Request{RepoID: "r"}); err == nil {
		t.Fatalf("expected an error for an empty query")
	}
}

func TestSearchEmbedsAndReturnsMetaWithContent(t *testing.T) {
	client := &fakeClient{}
	store := &fakeStore{}
	r := New(embedclient.New(client), store)

	metas, err := r.Search(context.Background(), Request{RepoID: "r", Query: "how does x work", FileIDs: []string{"f1"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(client.lastInputs) != 1 || client.lastInputs[0] != "how does x work" {
		t.Fatalf("expected the query embedded as a single-element batch, got %v", client.lastInputs)
	}
	if store.gotRepoID != "r" {
		t.Fatalf("repo id not forwarded to the store")
	}
	if len(store.gotOpts.FileIDs) != 1 || store.gotOpts.FileIDs[0] != "f1" {
		t.Fatalf("file_ids not forwarded to the store")
	}
	if len(metas) != 1 || metas[0].Content != "func a() {}" {
		t.Fatalf("expected content carried from the document onto its metadata")
	}
}
