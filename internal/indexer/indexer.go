package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/codevector/internal/gitignore"
	"github.com/Aman-CERP/codevector/internal/loader"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/pipeline"
	"github.com/Aman-CERP/codevector/internal/segment"
	"github.com/Aman-CERP/codevector/internal/vectorstore"
)

// maxInFlight is the per-file bounded-concurrency gate (spec.md §5/§4.9).
const maxInFlight = 100

// Indexer is C9: it turns a git clone request, or a pre-enumerated set of
// blobs, into embedded Documents upserted into a Store.
type Indexer struct {
	loader   *loader.Loader
	pipeline *pipeline.Pipeline
	store    vectorstore.Store
	opts     segment.Options
}

// New builds an Indexer from its collaborators. opts bounds every file's
// segmentation run.
func New(l *loader.Loader, p *pipeline.Pipeline, store vectorstore.Store, opts segment.Options) *Indexer {
	return &Indexer{loader: l, pipeline: p, store: store, opts: opts}
}

// GitCloneRequest is the body of POST /git/clone_and_index.
type GitCloneRequest struct {
	UID         string
	RepoURL     string
	Username    string
	Password    string
	AccessToken string
}

// CloneAndIndex implements spec.md §4.9's git-clone path: parse, derive
// repo_id, clone into a scoped temp dir, walk it skipping dot-prefixed and
// gitignored entries, and run the bounded per-file pipeline.
func (idx *Indexer) CloneAndIndex(ctx context.Context, req GitCloneRequest) (repoID string, fileCount int, err error) {
	ref, err := ParseGitURL(req.RepoURL)
	if err != nil {
		return "", 0, err
	}

	repoID = model.RepoIDForGit(req.UID, ref.Domain, ref.Owner, ref.Repo)
	canonicalPath := ref.Domain + "/" + ref.Owner + "/" + ref.Repo

	cloneURL := AuthenticatedCloneURL(ref, Credentials{
		Username:    req.Username,
		Password:    req.Password,
		AccessToken: req.AccessToken,
	})

	dir, cleanup, err := cloneToTemp(cloneURL)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	blobs, err := walkTree(dir)
	if err != nil {
		return "", 0, err
	}

	n, err := idx.indexBlobs(ctx, repoID, req.UID, canonicalPath, blobs)
	return repoID, n, err
}

// FileInfo is one file of a POST /vector/upsert_index batch: a relative
// path and its content, inline.
type FileInfo struct {
	RelativePath string
	Content      []byte
}

// UpsertIndexRequest is the body of POST /vector/upsert_index.
type UpsertIndexRequest struct {
	UID         string
	RepoAbsPath string
	FileInfos   []FileInfo
}

// FileIDInfo names the file_id derived for one FileInfo, in request order.
type FileIDInfo struct {
	FileID       string
	RelativePath string
}

// UpsertIndexResult is the response to POST /vector/upsert_index.
type UpsertIndexResult struct {
	RepoID    string
	FileInfos []FileIDInfo
}

// UpsertIndex implements the batch direct-upsert path: every file in
// req.FileInfos runs through the same bounded per-file pipeline as the
// clone path, minus the clone and walk.
func (idx *Indexer) UpsertIndex(ctx context.Context, req UpsertIndexRequest) (UpsertIndexResult, error) {
	repoID := model.RepoIDForPath(req.UID, req.RepoAbsPath)

	blobs := make([]loader.Blob, len(req.FileInfos))
	fileInfos := make([]FileIDInfo, len(req.FileInfos))
	for i, fi := range req.FileInfos {
		blobs[i] = loader.Blob{RelativePath: fi.RelativePath, Content: fi.Content}
		fileInfos[i] = FileIDInfo{
			FileID:       model.FileID(req.UID, req.RepoAbsPath, fi.RelativePath),
			RelativePath: fi.RelativePath,
		}
	}

	if _, err := idx.indexBlobs(ctx, repoID, req.UID, req.RepoAbsPath, blobs); err != nil {
		return UpsertIndexResult{}, err
	}
	return UpsertIndexResult{RepoID: repoID, FileInfos: fileInfos}, nil
}

// IndexLocalPath drives the same per-file pipeline as CloneAndIndex, but
// over an already-checked-out local directory rather than a freshly cloned
// one — the `codevector index <path>` CLI path, for local use without the
// HTTP façade.
func (idx *Indexer) IndexLocalPath(ctx context.Context, uid, absPath string) (repoID string, fileCount int, err error) {
	repoID = model.RepoIDForPath(uid, absPath)

	blobs, err := walkTree(absPath)
	if err != nil {
		return "", 0, err
	}

	n, err := idx.indexBlobs(ctx, repoID, uid, absPath, blobs)
	return repoID, n, err
}

// Drop removes every document belonging to repoID.
func (idx *Indexer) Drop(ctx context.Context, repoID string) error {
	return idx.store.Drop(ctx, repoID)
}

// Delete removes the documents belonging to the given fileIDs within repoID.
func (idx *Indexer) Delete(ctx context.Context, repoID string, fileIDs []string) error {
	return idx.store.Delete(ctx, repoID, fileIDs)
}

// AllMeta lists every document's metadata for repoID.
func (idx *Indexer) AllMeta(ctx context.Context, repoID string) ([]model.DocumentMeta, error) {
	return idx.store.AllMeta(ctx, repoID)
}

// UpsertFileRequest is the body of a direct, clone-free upsert.
type UpsertFileRequest struct {
	UID          string
	RepoAbsPath  string
	RelativePath string
	Content      []byte
}

// UpsertFile implements the direct upsert_index_by_file path: same
// file_id derivation and per-file pipeline as the clone path, minus the
// clone and walk.
func (idx *Indexer) UpsertFile(ctx context.Context, req UpsertFileRequest) (repoID string, err error) {
	repoID = model.RepoIDForPath(req.UID, req.RepoAbsPath)
	blob := loader.Blob{RelativePath: req.RelativePath, Content: req.Content}
	_, err = idx.indexBlobs(ctx, repoID, req.UID, req.RepoAbsPath, []loader.Blob{blob})
	return repoID, err
}

// indexBlobs runs every blob through the loader/pipeline under a
// capacity-maxInFlight semaphore, upserting each file's documents as soon
// as they're ready. Per-file errors (decode, embed, or upsert) are logged
// and skip that file only; they never fail the batch or cancel sibling
// goroutines. Only a cancelled ctx propagates to the caller.
func (idx *Indexer) indexBlobs(ctx context.Context, repoID, uid, repoPathOrCanonical string, blobs []loader.Blob) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxInFlight)

	var (
		mu        sync.Mutex
		processed int
		failed    int
	)

	for _, b := range blobs {
		b := b
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			segments, err := idx.loader.LoadBlob(b, idx.opts)
			if err != nil {
				// A decode failure skips this file; it is not fatal to the
				// rest of the index run.
				slog.Warn("file decoding failed, skipping", "repo_id", repoID, "file", b.RelativePath, "error", err)
				return nil
			}

			fileID := model.FileID(uid, repoPathOrCanonical, b.RelativePath)
			docs, err := idx.pipeline.BuildAndEmbed(gctx, pipeline.FileContext{
				RepoID:       repoID,
				FileID:       fileID,
				RelativePath: b.RelativePath,
			}, segments)
			if err != nil {
				slog.Warn("file indexing failed, skipping", "repo_id", repoID, "file", b.RelativePath, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if len(docs) == 0 {
				return nil
			}

			if err := idx.store.Upsert(gctx, docs); err != nil {
				slog.Warn("file upsert failed, skipping", "repo_id", repoID, "file", b.RelativePath, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			processed++
			mu.Unlock()
			return nil
		})
	}

	// g.Wait only ever returns non-nil here for ctx cancellation; per-file
	// failures above are logged and counted in failed, never returned.
	if err := g.Wait(); err != nil {
		return processed, err
	}
	if failed > 0 {
		slog.Warn("index run completed with per-file failures", "repo_id", repoID, "failed_count", failed, "processed_count", processed)
	}
	return processed, nil
}

// walkTree enumerates every regular file under root, skipping dot-prefixed
// entries and anything excluded by a .gitignore found along the way. Each
// directory's own .gitignore (if any) is loaded as its entries are visited,
// scoped to that directory via AddPatternWithBase, so nested .gitignore
// files only affect their own subtree.
func walkTree(root string) ([]loader.Blob, error) {
	var blobs []loader.Blob
	matcher := gitignore.New()

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			base := rel
			if rel == "." {
				base = ""
			}
			gi := filepath.Join(path, ".gitignore")
			if _, statErr := os.Stat(gi); statErr == nil {
				if loadErr := matcher.AddFromFile(gi, base); loadErr != nil {
					return loadErr
				}
			}
			if rel != "." && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.Match(rel, false) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		blobs = append(blobs, loader.Blob{RelativePath: rel, Content: content})
		return nil
	})
	return blobs, err
}
