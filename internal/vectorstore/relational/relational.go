// Package relational implements the pgvector-backed Store adapter: a
// Postgres table with a fixed-width vector column, one table per
// (embedding model, dimension) collection.
//
// Grounded on seanblong-reposearch's internal/store/store.go, trimmed to
// spec.md §4.8's cosine-only search_by_vector (the teacher's hybrid
// BM25/trigram/vector fusion query does not survive this adapter).
package relational

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

// Store is the pgx/v5 + pgvector adapter.
type Store struct {
	pool       *pgxpool.Pool
	table      string
	dimension  int
	normalized bool // true when dimension > vectorstore.DimensionCap
}

// New opens a pool against url and binds it to the collection named for
// (embeddingModel, dimension).
func New(ctx context.Context, url, embeddingModel string, dimension int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, cverrors.VectorStore("invalid postgres connection string", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, cverrors.VectorStore("failed to connect to postgres", err)
	}

	storeDim := dimension
	normalized := dimension > vectorstore.DimensionCap
	if normalized {
		storeDim = vectorstore.DimensionCap
	}

	return &Store{
		pool:       pool,
		table:      vectorstore.CollectionName(embeddingModel, dimension),
		dimension:  storeDim,
		normalized: normalized,
	}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Init creates the backing table, its pgvector HNSW cosine index, and the
// (repo_id, file_id) lookup index, if they do not already exist.
func (s *Store) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS %[1]s (
  segment_id            TEXT PRIMARY KEY,
  repo_id                TEXT NOT NULL,
  file_id                TEXT NOT NULL,
  relative_path          TEXT NOT NULL,
  start_line             INT NOT NULL,
  end_line               INT NOT NULL,
  segment_block          INT NOT NULL,
  segment_hash           TEXT NOT NULL,
  segment_cl100k_token   INT NOT NULL,
  segment_o200k_token    INT NOT NULL,
  description            TEXT,
  content                TEXT NOT NULL,
  embedding              vector(%[2]d) NOT NULL,
  created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[1]s_repo_file_idx ON %[1]s (repo_id, file_id);
CREATE INDEX IF NOT EXISTS %[1]s_file_idx ON %[1]s (file_id);
CREATE INDEX IF NOT EXISTS %[1]s_embedding_hnsw_idx
  ON %[1]s USING hnsw (embedding vector_cosine_ops)
  WITH (m = 16, ef_construction = 64);
`, s.table, s.dimension)

	if _, err := s.pool.Exec(ctx, q); err != nil {
		return cverrors.VectorStore("failed to initialize collection "+s.table, err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, docs []model.Document) error {
	return s.insert(ctx, docs)
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
	return s.insert(ctx, docs)
}

func (s *Store) insert(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	q := fmt.Sprintf(`
INSERT INTO %s (
  segment_id, repo_id, file_id, relative_path, start_line, end_line,
  segment_block, segment_hash, segment_cl100k_token, segment_o200k_token,
  description, content, embedding
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (segment_id) DO UPDATE SET
  relative_path = EXCLUDED.relative_path,
  start_line = EXCLUDED.start_line,
  end_line = EXCLUDED.end_line,
  segment_block = EXCLUDED.segment_block,
  segment_hash = EXCLUDED.segment_hash,
  segment_cl100k_token = EXCLUDED.segment_cl100k_token,
  segment_o200k_token = EXCLUDED.segment_o200k_token,
  description = EXCLUDED.description,
  content = EXCLUDED.content,
  embedding = EXCLUDED.embedding
`, s.table)

	for _, d := range docs {
		vec, _ := vectorstore.NormalizeForCap(d.Vector)
		batch.Queue(q,
			d.Meta.SegmentID, d.Meta.RepoID, d.Meta.FileID, d.Meta.RelativePath,
			d.Meta.StartLine, d.Meta.EndLine, d.Meta.SegmentBlock, d.Meta.SegmentHash,
			d.Meta.SegmentCl100kToken, d.Meta.SegmentO200kToken, d.Meta.Description,
			d.Content, pgvector.NewVector(vec),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range docs {
		if _, err := br.Exec(); err != nil {
			return cverrors.VectorStore("failed to upsert segment", err)
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, repoID string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE repo_id = $1`, s.table), repoID)
		if err != nil {
			return cverrors.VectorStore("failed to delete by repo", err)
		}
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE repo_id = $1 AND file_id = ANY($2)`, s.table)
	if _, err := s.pool.Exec(ctx, q, repoID, fileIDs); err != nil {
		return cverrors.VectorStore("failed to delete by file", err)
	}
	return nil
}

func (s *Store) Drop(ctx context.Context, repoID string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE repo_id = $1`, s.table), repoID)
	if err != nil {
		return cverrors.VectorStore("failed to drop repo", err)
	}
	return nil
}

func (s *Store) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	q := fmt.Sprintf(`
SELECT segment_id, repo_id, file_id, relative_path, start_line, end_line,
       segment_block, segment_hash, segment_cl100k_token, segment_o200k_token, description
FROM %s WHERE repo_id = $1 ORDER BY relative_path, start_line
`, s.table)
	rows, err := s.pool.Query(ctx, q, repoID)
	if err != nil {
		return nil, cverrors.VectorStore("failed to list metadata", err)
	}
	defer rows.Close()

	var out []model.DocumentMeta
	for rows.Next() {
		var m model.DocumentMeta
		if err := rows.Scan(&m.SegmentID, &m.RepoID, &m.FileID, &m.RelativePath,
			&m.StartLine, &m.EndLine, &m.SegmentBlock, &m.SegmentHash,
			&m.SegmentCl100kToken, &m.SegmentO200kToken, &m.Description); err != nil {
			return nil, cverrors.VectorStore("failed to scan metadata row", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts vectorstore.SearchOptions) ([]model.Document, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	qv, _ := vectorstore.NormalizeForCap(queryVector)

	where := "repo_id = $1"
	args := []any{repoID}
	if len(opts.FileIDs) > 0 {
		where += " AND file_id = ANY($2)"
		args = append(args, opts.FileIDs)
	}
	args = append(args, pgvector.NewVector(qv), topK)

	q := fmt.Sprintf(`
SELECT segment_id, repo_id, file_id, relative_path, start_line, end_line,
       segment_block, segment_hash, segment_cl100k_token, segment_o200k_token,
       description, content, 1 - (embedding <=> $%d) AS score
FROM %s
WHERE %s
ORDER BY embedding <=> $%d
LIMIT $%d
`, len(args)-1, s.table, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, cverrors.VectorStore("failed to search by vector", err)
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var d model.Document
		var score float64
		if err := rows.Scan(&d.Meta.SegmentID, &d.Meta.RepoID, &d.Meta.FileID, &d.Meta.RelativePath,
			&d.Meta.StartLine, &d.Meta.EndLine, &d.Meta.SegmentBlock, &d.Meta.SegmentHash,
			&d.Meta.SegmentCl100kToken, &d.Meta.SegmentO200kToken, &d.Meta.Description,
			&d.Content, &score); err != nil {
			return nil, cverrors.VectorStore("failed to scan search row", err)
		}
		if score < opts.ScoreThreshold {
			continue
		}
		d.Meta.Score = score
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ vectorstore.Store = (*Store)(nil)
