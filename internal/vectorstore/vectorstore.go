// Package vectorstore is C8: the uniform vector-store interface and its
// three adapters (relational, native, embedded).
package vectorstore

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/Aman-CERP/codevector/internal/model"
)

// DimensionCap is the relational backend's vector-column width; native
// dimensions above this are truncated and L2-normalized (spec.md §4.8).
const DimensionCap = 2000

// SearchOptions bounds a search_by_vector call.
type SearchOptions struct {
	FileIDs        []string // optional set-membership filter
	TopK           int      // default 5
	ScoreThreshold float64  // default 0.0
}

// Store is C8's uniform operation set.
type Store interface {
	// Init ensures the collection/table for the current embedding model
	// exists. Idempotent.
	Init(ctx context.Context) error
	// Create inserts or replaces docs by segment_id. docs must be
	// non-empty.
	Create(ctx context.Context, docs []model.Document) error
	// Upsert deletes any existing documents for the (repo_id, file_id)
	// pairs present in docs, then inserts docs. docs must share one
	// repo_id.
	Upsert(ctx context.Context, docs []model.Document) error
	// Delete removes documents matching repoID and any of fileIDs; an
	// empty fileIDs removes every document for repoID. A missing
	// collection is not treated as a no-op: the backend's error is
	// returned.
	Delete(ctx context.Context, repoID string, fileIDs []string) error
	// Drop removes every document for repoID. As with Delete, a missing
	// collection is not treated as a no-op: the backend's error is returned.
	Drop(ctx context.Context, repoID string) error
	// AllMeta returns every stored DocumentMeta for repoID.
	AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error)
	// SearchByVector returns up to opts.TopK documents for repoID (and,
	// when set, confined to opts.FileIDs) with meta.score populated as
	// cosine similarity, filtered to score >= opts.ScoreThreshold.
	SearchByVector(ctx context.Context, repoID string, queryVector []float32, opts SearchOptions) ([]model.Document, error)
	Close() error
}

// CollectionName implements spec.md §4.8's naming rule:
// we0_index_{embedding_model}_{dimension}, with "-" replaced by "_".
func CollectionName(embeddingModel string, dimension int) string {
	safe := strings.ReplaceAll(embeddingModel, "-", "_")
	return "we0_index_" + safe + "_" + strconv.Itoa(dimension)
}

// NormalizeForCap applies the relational backend's dimension-cap policy
// (spec.md §4.8): when v's dimension exceeds DimensionCap, truncate to the
// first DimensionCap components and L2-normalize. Vectors at or under the
// cap are returned unchanged. The query vector must undergo the identical
// transform (spec.md invariant 10).
func NormalizeForCap(v []float32) (out []float32, normalized bool) {
	if len(v) <= DimensionCap {
		return v, false
	}
	truncated := make([]float32, DimensionCap)
	copy(truncated, v[:DimensionCap])
	return l2Normalize(truncated), true
}

func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity returns cos(a, b), assuming a and b have equal length.
func CosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FileIDSet builds a membership set for filtering.
func FileIDSet(fileIDs []string) map[string]bool {
	if len(fileIDs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(fileIDs))
	for _, id := range fileIDs {
		set[id] = true
	}
	return set
}
