// Package native implements the Qdrant-backed Store adapter: one
// collection per (embedding model, dimension), with repo_id/file_id kept
// as indexed payload fields instead of a SQL schema.
//
// Grounded on Guru2308-rag-code's internal/vectorstore/qdrant.go.
package native

import (
	"context"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

// Store is the qdrant/go-client adapter.
type Store struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// New connects to a Qdrant instance at host:port and binds it to the
// collection named for (embeddingModel, dimension).
func New(host string, port int, embeddingModel string, dimension int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, cverrors.VectorStore("failed to create qdrant client", err)
	}
	return &Store{
		client:     client,
		collection: vectorstore.CollectionName(embeddingModel, dimension),
		dimension:  dimension,
	}, nil
}

func (s *Store) Close() error { return nil }

// Init creates the collection, with cosine distance and payload indices on
// repo_id and file_id, if it does not already exist.
func (s *Store) Init(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return cverrors.VectorStore("failed to check collection existence", err)
	}
	if exists {
		return nil
	}

	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return cverrors.VectorStore("failed to create collection "+s.collection, err)
	}

	for _, field := range []string{"repo_id", "file_id"} {
		if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return cverrors.VectorStore("failed to create payload index on "+field, err)
		}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, docs []model.Document) error {
	return s.upsertPoints(ctx, docs)
}

func (s *Store) Upsert(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	fileIDs := map[string]bool{}
	repoID := docs[0].Meta.RepoID
	for _, d := range docs {
		fileIDs[d.Meta.FileID] = true
	}
	ids := make([]string, 0, len(fileIDs))
	for id := range fileIDs {
		ids = append(ids, id)
	}
	if err := s.Delete(ctx, repoID, ids); err != nil {
		return err
	}
	return s.upsertPoints(ctx, docs)
}

func (s *Store) upsertPoints(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(d.Meta.SegmentID),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(payloadOf(d.Meta, d.Content)),
		}
	}
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	}); err != nil {
		return cverrors.VectorStore("failed to upsert points", err)
	}
	return nil
}

func payloadOf(m model.DocumentMeta, content string) map[string]any {
	return map[string]any{
		"repo_id":              m.RepoID,
		"file_id":              m.FileID,
		"relative_path":        m.RelativePath,
		"start_line":           float64(m.StartLine),
		"end_line":             float64(m.EndLine),
		"segment_block":        float64(m.SegmentBlock),
		"segment_hash":         m.SegmentHash,
		"segment_cl100k_token": float64(m.SegmentCl100kToken),
		"segment_o200k_token":  float64(m.SegmentO200kToken),
		"description":          m.Description,
		"content":              content,
	}
}

func metaFromPayload(id string, payload map[string]*qdrant.Value) model.DocumentMeta {
	return model.DocumentMeta{
		SegmentID:          id,
		RepoID:             payload["repo_id"].GetStringValue(),
		FileID:             payload["file_id"].GetStringValue(),
		RelativePath:       payload["relative_path"].GetStringValue(),
		StartLine:          int(payload["start_line"].GetDoubleValue()),
		EndLine:            int(payload["end_line"].GetDoubleValue()),
		SegmentBlock:       int(payload["segment_block"].GetDoubleValue()),
		SegmentHash:        payload["segment_hash"].GetStringValue(),
		SegmentCl100kToken: int(payload["segment_cl100k_token"].GetDoubleValue()),
		SegmentO200kToken:  int(payload["segment_o200k_token"].GetDoubleValue()),
		Description:        payload["description"].GetStringValue(),
	}
}

func (s *Store) Delete(ctx context.Context, repoID string, fileIDs []string) error {
	must := []*qdrant.Condition{qdrant.NewMatch("repo_id", repoID)}
	if len(fileIDs) > 0 {
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{Key: "file_id", Match: qdrant.NewMatchKeywords(fileIDs...)},
			},
		})
	}
	if _, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{Must: must}),
	}); err != nil {
		return cverrors.VectorStore("failed to delete points", err)
	}
	return nil
}

func (s *Store) Drop(ctx context.Context, repoID string) error {
	return s.Delete(ctx, repoID, nil)
}

// scrollPageSize bounds each Scroll call; Qdrant defaults Limit to a small
// value when unset, so every page must set it explicitly.
const scrollPageSize = 256

// AllMeta pages through the collection via Scroll, using the last point of
// each page as the next page's offset, until a page comes back short of
// scrollPageSize.
func (s *Store) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	var out []model.DocumentMeta
	var offset *qdrant.PointId

	for {
		req := &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch("repo_id", repoID)}},
			WithPayload:    qdrant.NewWithPayload(true),
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
		}
		points, err := s.client.Scroll(ctx, req)
		if err != nil {
			return nil, cverrors.VectorStore("failed to scroll collection", err)
		}
		for _, p := range points {
			out = append(out, metaFromPayload(p.Id.GetUuid(), p.Payload))
		}
		if len(points) < scrollPageSize {
			return out, nil
		}
		offset = points[len(points)-1].Id
	}
}

func (s *Store) SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts vectorstore.SearchOptions) ([]model.Document, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	must := []*qdrant.Condition{qdrant.NewMatch("repo_id", repoID)}
	if len(opts.FileIDs) > 0 {
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{Key: "file_id", Match: qdrant.NewMatchKeywords(opts.FileIDs...)},
			},
		})
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Filter:         &qdrant.Filter{Must: must},
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, cverrors.VectorStore("failed to query collection", err)
	}

	var out []model.Document
	for _, point := range resp {
		score := float64(point.Score)
		if score < opts.ScoreThreshold {
			continue
		}
		meta := metaFromPayload(point.Id.GetUuid(), point.Payload)
		meta.Score = score
		out = append(out, model.Document{
			Content: point.Payload["content"].GetStringValue(),
			Meta:    meta,
		})
	}
	return out, nil
}

var _ vectorstore.Store = (*Store)(nil)
