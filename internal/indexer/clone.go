package indexer

import (
	"os"

	"github.com/go-git/go-git/v5"

	"github.com/Aman-CERP/codevector/internal/cverrors"
)

// cloneToTemp clones cloneURL into a fresh scoped temp directory and
// returns its path plus a cleanup func that removes it on every exit
// path. Grounded on go-git/v5's PlainClone usage, per
// ferg-cod3s-conexus/internal/mcp/git_helper.go's use of the library.
func cloneToTemp(cloneURL string) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "codevector-clone-*")
	if err != nil {
		return "", nil, cverrors.Git("failed to create scoped temp directory", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	if _, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:   cloneURL,
		Depth: 1,
	}); err != nil {
		cleanup()
		return "", nil, cverrors.Git("failed to clone repository", err)
	}
	return dir, cleanup, nil
}
