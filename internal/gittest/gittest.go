/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a work tree created under t.TempDir.
type Repo struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
}

// Init creates an empty repository.
func Init(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init test repo: %v", err)
	}
	// Resolve symlinks (macOS /var -> /private/var) so root comparisons hold.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return &Repo{t: t, Dir: dir, Repo: repo}
}

// Write creates or replaces a file relative to the work tree.
func (r *Repo) Write(rel, content string) string {
	r.t.Helper()
	p := filepath.Join(r.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o640); err != nil {
		r.t.Fatalf("failed to write %s: %v", rel, err)
	}
	return p
}

// Commit stages everything and commits it, returning the commit hash.
func (r *Repo) Commit(msg string) string {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := wt.Add("."); err != nil {
		r.t.Fatalf("failed to add files: %v", err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "gig",
			Email: "ci@gig.dev",
			When:  time.Now(),
		},
	})
	if err != nil {
		r.t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// URL returns a file:// URL for cloning the repository.
func (r *Repo) URL() string {
	return "file://" + filepath.ToSlash(r.Dir)
}

// Catalog creates an upstream snippet repository with one committed file
// per name (name.gitignore) and returns it.
func Catalog(t testing.TB, snippets map[string]string) *Repo {
	t.Helper()
	r := Init(t)
	for name, body := range snippets {
		r.Write(name+".gitignore", body)
	}
	r.Write("README.md", "snippets\n")
	r.Commit("initial snippets")
	return r
}
