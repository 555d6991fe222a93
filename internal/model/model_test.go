package model

import "testing"

func TestRepoIDForGitStable(t *testing.T) {
	a := RepoIDForGit("", "github.com", "we0-dev", "we0")
	b := RepoIDForGit("", "github.com", "we0-dev", "we0")
	if a != b {
		t.Fatalf("RepoIDForGit not stable: %s != %s", a, b)
	}
	c := RepoIDForGit("", "github.com", "we0-dev", "we1")
	if a == c {
		t.Fatalf("RepoIDForGit collided across distinct repos")
	}
}

func TestRepoIDForGitScopedByUID(t *testing.T) {
	a := RepoIDForGit("user-1", "github.com", "we0-dev", "we0")
	b := RepoIDForGit("user-2", "github.com", "we0-dev", "we0")
	if a == b {
		t.Fatalf("RepoIDForGit did not scope by uid")
	}
}

func TestRepoIDForPathStable(t *testing.T) {
	a := RepoIDForPath("uid", "/srv/repo")
	b := RepoIDForPath("uid", "/srv/repo")
	if a != b {
		t.Fatalf("RepoIDForPath not stable: %s != %s", a, b)
	}
	if a == RepoIDForPath("uid", "/srv/other") {
		t.Fatalf("RepoIDForPath collided across distinct paths")
	}
}

func TestFileIDNamespacedByRepo(t *testing.T) {
	r1 := RepoIDForGit("", "github.com", "a", "b")
	r2 := RepoIDForGit("", "github.com", "c", "d")

	f1 := FileID("", r1, "main.go")
	f2 := FileID("", r2, "main.go")
	if f1 == f2 {
		t.Fatalf("FileID collided across repos for identical relative path")
	}

	again := FileID("", r1, "main.go")
	if f1 != again {
		t.Fatalf("FileID not stable for same (repo, path)")
	}
}

func TestSegmentIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := SegmentID()
		if seen[id] {
			t.Fatalf("SegmentID produced a duplicate")
		}
		seen[id] = true
	}
}

func TestContentHashStableAndSensitive(t *testing.T) {
	h1 := ContentHash("func main() {}")
	h2 := ContentHash("func main() {}")
	if h1 != h2 {
		t.Fatalf("ContentHash not stable for identical content")
	}
	h3 := ContentHash("func main() { }")
	if h1 == h3 {
		t.Fatalf("ContentHash did not change for different content")
	}
}
