// Package embedded implements the pure-Go, single-process Store adapter:
// a coder/hnsw graph for vector search plus a SQLite side table (via
// modernc.org/sqlite, no CGO) for metadata that the graph itself cannot
// hold.
//
// Grounded on the teacher's own internal/store/hnsw.go: same lazy-deletion
// strategy (coder/hnsw breaks on deleting its last node, so deleted
// segments are left in the graph and dropped at search time when their
// metadata row is missing) and the same cosine-distance-as-raw-score
// convention, which this adapter deliberately preserves rather than
// "fixing" into a similarity in [0,1] — see DESIGN.md's Open Question
// decision.
//
// The metadata table is indexed on repo_id only; there is no file_id or
// (repo_id, file_id) index, so file-scoped lookups filter the repo's rows.
// SearchByVector searches the graph, then looks each candidate up by
// segment_id.
package embedded

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/coder/hnsw"
	_ "modernc.org/sqlite"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

// Store is the coder/hnsw + SQLite adapter.
type Store struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[string]
	db    *sql.DB
	table string
}

// New opens (creating if absent) a SQLite database at sqlitePath and binds
// an in-memory HNSW graph to it, for the collection named for
// (embeddingModel, dimension). The graph is rebuilt from the metadata
// table's stored vectors on every process start; there is no on-disk
// persistence of the graph itself.
func New(sqlitePath, embeddingModel string, dimension int) (*Store, error) {
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, cverrors.VectorStore("failed to open embedded metadata store", err)
	}

	graph := hnsw.NewGraph[string]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 64

	s := &Store{
		graph: graph,
		db:    db,
		table: vectorstore.CollectionName(embeddingModel, dimension),
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the metadata table and repopulates the in-memory graph
// from whatever it already contains.
func (s *Store) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  segment_id TEXT PRIMARY KEY,
  repo_id TEXT NOT NULL,
  file_id TEXT NOT NULL,
  relative_path TEXT NOT NULL,
  start_line INTEGER NOT NULL,
  end_line INTEGER NOT NULL,
  segment_block INTEGER NOT NULL,
  segment_hash TEXT NOT NULL,
  segment_cl100k_token INTEGER NOT NULL,
  segment_o200k_token INTEGER NOT NULL,
  description TEXT,
  content TEXT NOT NULL,
  vector BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_repo_idx ON %[1]s (repo_id);
`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return cverrors.VectorStore("failed to initialize embedded collection "+s.table, err)
	}
	return s.rebuildGraph(ctx)
}

func (s *Store) rebuildGraph(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT segment_id, vector FROM %s`, s.table))
	if err != nil {
		return cverrors.VectorStore("failed to load vectors for graph rebuild", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return cverrors.VectorStore("failed to scan stored vector", err)
		}
		s.graph.Add(hnsw.MakeNode(id, decodeVector(raw)))
	}
	return rows.Err()
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cverrors.VectorStore("failed to begin transaction", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`
INSERT INTO %s (segment_id, repo_id, file_id, relative_path, start_line, end_line,
  segment_block, segment_hash, segment_cl100k_token, segment_o200k_token,
  description, content, vector)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(segment_id) DO UPDATE SET
  relative_path=excluded.relative_path, start_line=excluded.start_line,
  end_line=excluded.end_line, segment_block=excluded.segment_block,
  segment_hash=excluded.segment_hash, segment_cl100k_token=excluded.segment_cl100k_token,
  segment_o200k_token=excluded.segment_o200k_token, description=excluded.description,
  content=excluded.content, vector=excluded.vector
`, s.table)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return cverrors.VectorStore("failed to prepare insert", err)
	}
	defer stmt.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.Meta.SegmentID, d.Meta.RepoID, d.Meta.FileID, d.Meta.RelativePath,
			d.Meta.StartLine, d.Meta.EndLine, d.Meta.SegmentBlock, d.Meta.SegmentHash,
			d.Meta.SegmentCl100kToken, d.Meta.SegmentO200kToken, d.Meta.Description,
			d.Content, encodeVector(d.Vector)); err != nil {
			return cverrors.VectorStore("failed to insert segment", err)
		}
		s.graph.Add(hnsw.MakeNode(d.Meta.SegmentID, d.Vector))
	}

	if err := tx.Commit(); err != nil {
		return cverrors.VectorStore("failed to commit insert", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, repoID string, fileIDs []string) error {
	var (
		ids []string
		err error
	)
	if len(fileIDs) == 0 {
		ids, err = s.segmentIDsForRepo(ctx, repoID)
	} else {
		ids, err = s.segmentIDsForFiles(ctx, repoID, fileIDs)
	}
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cverrors.VectorStore("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE segment_id = ?`, s.table))
	if err != nil {
		return cverrors.VectorStore("failed to prepare delete", err)
	}
	defer stmt.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return cverrors.VectorStore("failed to delete segment", err)
		}
		// Lazy deletion: the node is left in the graph and orphaned rather
		// than removed, since coder/hnsw corrupts the graph when the
		// removed node is its last one. SearchByVector filters orphans out
		// by failing their metadata lookup.
	}
	return tx.Commit()
}

func (s *Store) segmentIDsForRepo(ctx context.Context, repoID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT segment_id FROM %s WHERE repo_id = ?`, s.table), repoID)
	if err != nil {
		return nil, cverrors.VectorStore("failed to list segment ids", err)
	}
	return scanIDs(rows)
}

func (s *Store) segmentIDsForFiles(ctx context.Context, repoID string, fileIDs []string) ([]string, error) {
	var out []string
	for _, fileID := range fileIDs {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT segment_id FROM %s WHERE repo_id = ? AND file_id = ?`, s.table),
			repoID, fileID)
		if err != nil {
			return nil, cverrors.VectorStore("failed to list segment ids", err)
		}
		ids, err := scanIDs(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, cverrors.VectorStore("failed to scan segment id", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) Drop(ctx context.Context, repoID string) error {
	return s.Delete(ctx, repoID, nil)
}

func (s *Store) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	q := fmt.Sprintf(`
SELECT segment_id, repo_id, file_id, relative_path, start_line, end_line,
       segment_block, segment_hash, segment_cl100k_token, segment_o200k_token, description
FROM %s WHERE repo_id = ? ORDER BY relative_path, start_line`, s.table)
	rows, err := s.db.QueryContext(ctx, q, repoID)
	if err != nil {
		return nil, cverrors.VectorStore("failed to list metadata", err)
	}
	defer rows.Close()

	var out []model.DocumentMeta
	for rows.Next() {
		var m model.DocumentMeta
		var description sql.NullString
		if err := rows.Scan(&m.SegmentID, &m.RepoID, &m.FileID, &m.RelativePath,
			&m.StartLine, &m.EndLine, &m.SegmentBlock, &m.SegmentHash,
			&m.SegmentCl100kToken, &m.SegmentO200kToken, &description); err != nil {
			return nil, cverrors.VectorStore("failed to scan metadata row", err)
		}
		m.Description = description.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// SearchByVector queries the in-memory graph, then joins the resulting
// segment ids back against the metadata table. Score is the raw HNSW
// cosine distance (0 = identical), not a normalized similarity.
func (s *Store) SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts vectorstore.SearchOptions) ([]model.Document, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	allowed := vectorstore.FileIDSet(opts.FileIDs)

	s.mu.RLock()
	// Over-fetch since results are filtered down to this repo/file set
	// after the graph search.
	candidates := s.graph.Search(queryVector, topK*10+topK)
	s.mu.RUnlock()

	var out []model.Document
	for _, c := range candidates {
		if len(out) >= topK {
			break
		}
		meta, content, ok, err := s.lookup(ctx, c.Key)
		if err != nil {
			return nil, err
		}
		if !ok || meta.RepoID != repoID {
			continue
		}
		if allowed != nil && !allowed[meta.FileID] {
			continue
		}
		distance := float64(s.graph.Distance(queryVector, c.Value))
		if distance < opts.ScoreThreshold {
			continue
		}
		meta.Score = distance
		out = append(out, model.Document{Content: content, Meta: meta})
	}
	return out, nil
}

func (s *Store) lookup(ctx context.Context, segmentID string) (model.DocumentMeta, string, bool, error) {
	q := fmt.Sprintf(`
SELECT repo_id, file_id, relative_path, start_line, end_line, segment_block,
       segment_hash, segment_cl100k_token, segment_o200k_token, description, content
FROM %s WHERE segment_id = ?`, s.table)
	row := s.db.QueryRowContext(ctx, q, segmentID)

	var m model.DocumentMeta
	var description sql.NullString
	var content string
	m.SegmentID = segmentID
	if err := row.Scan(&m.RepoID, &m.FileID, &m.RelativePath, &m.StartLine, &m.EndLine,
		&m.SegmentBlock, &m.SegmentHash, &m.SegmentCl100kToken, &m.SegmentO200kToken,
		&description, &content); err != nil {
		if err == sql.ErrNoRows {
			return model.DocumentMeta{}, "", false, nil
		}
		return model.DocumentMeta{}, "", false, cverrors.VectorStore("failed to look up segment", err)
	}
	m.Description = description.String
	return m, content, true, nil
}

var _ vectorstore.Store = (*Store)(nil)
