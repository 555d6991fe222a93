package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Aman-CERP/codevector/internal/embedclient"
	"github.com/Aman-CERP/codevector/internal/indexer"
	"github.com/Aman-CERP/codevector/internal/loader"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/pipeline"
	"github.com/Aman-CERP/codevector/internal/retrieval"
	"github.com/Aman-CERP/codevector/internal/segment"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

type fakeClient struct{}

func (fakeClient) ModelName() string { return "fake" }
func (fakeClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeStore struct {
	upserted []model.Document
}

func (s *fakeStore) Init(ctx context.Context) error { return nil }
func (s *fakeStore) Create(ctx context.Context, docs []model.Document) error {
	s.upserted = append(s.upserted, docs...)
	return nil
}
func (s *fakeStore) Upsert(ctx context.Context, docs []model.Document) error {
	s.upserted = append(s.upserted, docs...)
	return nil
}
func (s *fakeStore) Delete(ctx context.Context, repoID string, fileIDs []string) error { return nil }
func (s *fakeStore) Drop(ctx context.Context, repoID string) error                     { return nil }
func (s *fakeStore) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	return []model.DocumentMeta{{RepoID: repoID, SegmentID: "s1"}}, nil
}
func (s *fakeStore) SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts vectorstore.SearchOptions) ([]model.Document, error) {
	return []model.Document{{Content: "func a() {}", Meta: model.DocumentMeta{RepoID: repoID, SegmentID: "s1", Score: 0.5}}}, nil
}
func (s *fakeStore) Close() error { return nil }

func newTestServer() (*Server, *fakeStore) {
	store := &fakeStore{}
	emb := embedclient.New(fakeClient{})
	p := pipeline.New(emb, nil, false)
	l := loader.New(loader.NewDefaultRegistry())
	idx := indexer.New(l, p, store, segment.DefaultOptions())
	ret := retrieval.New(emb, store)
	return New(idx, ret, nil), store
}

func TestUpsertIndexStoresEachFile(t *testing.T) {
	s, store := newTestServer()

	body, _ := json.Marshal(map[string]interface{}{
		"uid":           "u",
		"repo_abs_path": "/srv/repo",
		"file_infos": []map[string]string{
			{"relative_path": "main.go", "content": "package main\n\nfunc main() {}\n"},
		},
	})

	req := httptest.NewRequest("POST", "/vector/upsert_index", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true, got %+v", resp)
	}
	if len(store.upserted) == 0 {
		t.Fatalf("expected the file to be upserted")
	}
}

func TestRetrievalReturnsScoredMeta(t *testing.T) {
	s, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"repo_id": "r1", "query": "how does main work"})
	req := httptest.NewRequest("POST", "/vector/retrieval", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := resp.Data.([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("expected one result, got %+v", resp.Data)
	}
}

func TestRetrievalRejectsEmptyQueryWith400(t *testing.T) {
	s, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"repo_id": "r1"})
	req := httptest.NewRequest("POST", "/vector/retrieval", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("expected 400 for an empty query, got %d", w.Code)
	}
}

func TestDropIndexSucceeds(t *testing.T) {
	s, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"repo_id": "r1"})
	req := httptest.NewRequest("POST", "/vector/drop_index", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAllIndexListsMeta(t *testing.T) {
	s, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"repo_id": "r1"})
	req := httptest.NewRequest("POST", "/vector/all_index", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWrongMethodIsRejected(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest("GET", "/vector/retrieval", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 405 {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
