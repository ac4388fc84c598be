// Package deps resolves monkey.yml dependencies into source text the
// `import` builtin can lex, parse, and evaluate (SPEC_FULL.md §2.3).
package deps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/monkeylang/monkey/pkg/manifest"
)

const defaultEntryScript = "main.monkey"

// Resolver fetches (cloning on first use, reusing a local clone
// thereafter) and reads the entry script for each dependency named in a
// Manifest. Dependencies with no git source are read straight off disk,
// relative to manifestDir.
type Resolver struct {
	manifest    *manifest.Manifest
	cacheDir    string
	manifestDir string
}

// NewResolver returns a Resolver that clones git dependencies into cacheDir
// and resolves path-only dependencies relative to manifestDir.
func NewResolver(m *manifest.Manifest, cacheDir, manifestDir string) *Resolver {
	return &Resolver{manifest: m, cacheDir: cacheDir, manifestDir: manifestDir}
}

// Load fetches dependency name and returns the contents of its entry
// script.
func (r *Resolver) Load(name string) (string, error) {
	dep, ok := r.manifest.Dependencies[name]
	if !ok {
		return "", fmt.Errorf("no dependency named %q in monkey.yml", name)
	}

	if dep.Git == "" {
		return r.loadLocal(name, dep)
	}

	dest := filepath.Join(r.cacheDir, name)
	repo, err := git.PlainOpen(dest)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainClone(dest, false, &git.CloneOptions{URL: dep.Git})
	}
	if err != nil {
		return "", fmt.Errorf("fetching dependency %q: %w", name, err)
	}

	if ref := firstNonEmpty(dep.Tag, dep.Branch, dep.Rev); ref != "" {
		worktree, err := repo.Worktree()
		if err != nil {
			return "", fmt.Errorf("opening worktree for %q: %w", name, err)
		}
		hash, err := repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return "", fmt.Errorf("resolving %q for dependency %q: %w", ref, name, err)
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
			return "", fmt.Errorf("checking out %q for dependency %q: %w", ref, name, err)
		}
	}

	entry := dep.Path
	if entry == "" {
		entry = defaultEntryScript
	}
	contents, err := os.ReadFile(filepath.Join(dest, entry))
	if err != nil {
		return "", fmt.Errorf("reading entry script for %q: %w", name, err)
	}
	return string(contents), nil
}

// loadLocal reads a dependency with no git source straight off disk,
// resolving dep.Path relative to the manifest's own directory.
func (r *Resolver) loadLocal(name string, dep *manifest.Dependency) (string, error) {
	src := dep.Path
	if !filepath.IsAbs(src) {
		src = filepath.Join(r.manifestDir, src)
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("reading entry script for %q: %w", name, err)
	}
	if info.IsDir() {
		src = filepath.Join(src, defaultEntryScript)
	}
	contents, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading entry script for %q: %w", name, err)
	}
	return string(contents), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
