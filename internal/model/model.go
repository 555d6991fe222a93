// Package model holds the data shapes shared across the indexing and
// retrieval pipeline: code segments, document metadata, and the stable id
// derivations used to key them.
package model

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// idNamespace anchors every UUIDv5 derivation in this package. It is the
// RFC 4122 URL namespace, matching the "uuidv5(URL namespace, ...)" the
// stable-ID formulas are defined against; the direct-path repo_id and the
// file_id formulas don't name a namespace explicitly, so the same one is
// reused for both rather than inventing a second anchor.
var idNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// CodeSegment is the output of a Segmenter: one contiguous, self-contained
// slice of a source file.
type CodeSegment struct {
	Code  string
	Start int // 1-indexed, inclusive
	End   int // 1-indexed, inclusive
	Block int // force-split sequence number within one logical chunk, 0 if unsplit
}

// DocumentMeta is the metadata persisted alongside an embedding vector.
type DocumentMeta struct {
	RepoID               string `json:"repo_id"`
	FileID               string `json:"file_id"`
	SegmentID            string `json:"segment_id"`
	RelativePath         string `json:"relative_path"`
	StartLine            int    `json:"start_line"`
	EndLine              int    `json:"end_line"`
	SegmentBlock         int    `json:"segment_block"`
	SegmentHash          string `json:"segment_hash"`
	SegmentCl100kToken   int    `json:"segment_cl100k_base_token"`
	SegmentO200kToken    int    `json:"segment_o200k_base_token"`
	Description          string `json:"description,omitempty"`
	// Score is populated only on search results; it is meaningless on
	// stored metadata.
	Score float64 `json:"score,omitempty"`
	// Content optionally carries the segment's code, for backends (the
	// native and embedded adapters) whose payload is the only place the
	// code is stored.
	Content string `json:"content,omitempty"`
}

// Document is a CodeSegment paired with its metadata and (once embedded)
// its vector.
type Document struct {
	Content string
	Meta    DocumentMeta
	Vector  []float32
}

// RepoIDForGit derives the deterministic repo_id for a cloned repository:
// uuidv5(URL namespace, "{uid}{domain}/{owner}/{repo}:").
func RepoIDForGit(uid, domain, owner, repo string) string {
	name := uid + domain + "/" + owner + "/" + repo + ":"
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// RepoIDForPath derives the deterministic repo_id for a direct (non-git)
// upsert request: uuidv5(URL namespace, "{uid}:{repoAbsPath}").
func RepoIDForPath(uid, repoAbsPath string) string {
	name := uid + ":" + repoAbsPath
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// FileID derives the deterministic file_id for a file within a repo:
// uuidv5(URL namespace, "{uid}:{repoPathOrCanonical}:{relativePath}").
// repoPathOrCanonical is the same string used to derive the repo's repo_id
// (the repo's absolute path, or its "{domain}/{owner}/{repo}" form).
func FileID(uid, repoPathOrCanonical, relativePath string) string {
	name := uid + ":" + repoPathOrCanonical + ":" + relativePath
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// SegmentID mints a fresh random id for a segment. Segments are never
// addressed by content; re-indexing a file always produces new segment ids,
// and the old ones for that file are superseded on upsert.
func SegmentID() string {
	return uuid.NewString()
}

// ContentHash returns the stable hex-encoded SHA-256 of a segment's text,
// used for dedup and for detecting whether a segment's content actually
// changed across re-indexing.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
