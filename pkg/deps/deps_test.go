package deps_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/monkeylang/monkey/pkg/deps"
	"github.com/monkeylang/monkey/pkg/manifest"
)

// initFixtureRepo builds a local (non-bare) git repository containing one commit
// with a main.monkey entry script, mirroring the teacher's use of
// git.PlainInit to build test fixtures rather than reaching out to a real
// remote.
func initFixtureRepo(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.monkey"), []byte(script), 0o644); err != nil {
		t.Fatalf("write fixture script: %v", err)
	}
	if _, err := worktree.Add("main.monkey"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir
}

func TestResolver_LoadClonesAndReadsEntryScript(t *testing.T) {
	repoPath := initFixtureRepo(t, `let greet = fn(name) { "hello " + name };`)

	m := &manifest.Manifest{Dependencies: map[string]*manifest.Dependency{
		"greeter": {Git: repoPath},
	}}
	r := deps.NewResolver(m, t.TempDir(), t.TempDir())

	src, err := r.Load("greeter")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src != `let greet = fn(name) { "hello " + name };` {
		t.Errorf("got %q", src)
	}
}

func TestResolver_LoadUnknownDependency(t *testing.T) {
	m := &manifest.Manifest{Dependencies: map[string]*manifest.Dependency{}}
	r := deps.NewResolver(m, t.TempDir(), t.TempDir())

	if _, err := r.Load("nope"); err == nil {
		t.Error("expected error for unknown dependency")
	}
}

func TestResolver_LoadReadsLocalPathWithoutGit(t *testing.T) {
	manifestDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(manifestDir, "util.monkey"), []byte(`let id = fn(x) { x };`), 0o644); err != nil {
		t.Fatalf("write fixture script: %v", err)
	}

	m := &manifest.Manifest{Dependencies: map[string]*manifest.Dependency{
		"util": {Path: "util.monkey"},
	}}
	r := deps.NewResolver(m, t.TempDir(), manifestDir)

	src, err := r.Load("util")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src != `let id = fn(x) { x };` {
		t.Errorf("got %q", src)
	}
}

func TestResolver_LoadIsCachedAcrossCalls(t *testing.T) {
	repoPath := initFixtureRepo(t, `let x = 1;`)
	m := &manifest.Manifest{Dependencies: map[string]*manifest.Dependency{
		"one": {Git: repoPath},
	}}
	cacheDir := t.TempDir()
	r := deps.NewResolver(m, cacheDir, t.TempDir())

	if _, err := r.Load("one"); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	// Second load must reuse the existing clone (PlainOpen) rather than
	// erroring on a non-empty destination directory.
	if _, err := r.Load("one"); err != nil {
		t.Fatalf("second Load: %v", err)
	}
}
