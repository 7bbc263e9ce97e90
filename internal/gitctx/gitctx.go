/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package gitctx is the version-control collaborator: repository discovery,
// mirror clone/pull, and untracked-file listing. go-git is preferred; the git
// binary is used as a fallback where go-git cannot answer.
package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fulmenhq/gig/pkg/ignore"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrToolMissing means the git binary is not on PATH.
	ErrToolMissing = errors.New("git must be installed to use gig")
	// ErrNotRepository means the working directory is outside a git repository.
	ErrNotRepository = errors.New("must be in a git repository to use gig")
)

// Git implements the collaborator contract against the local machine.
type Git struct {
	lookPath func(string) (string, error)
}

// New returns a Git collaborator.
func New() *Git {
	return &Git{lookPath: exec.LookPath}
}

// IsToolAvailable reports whether the git binary can be found.
func (g *Git) IsToolAvailable() bool {
	_, err := g.lookPath("git")
	return err == nil
}

// IsInsideRepository reports whether path is inside a git work tree.
func (g *Git) IsInsideRepository(path string) bool {
	_, err := g.RepositoryRoot(path)
	return err == nil
}

// RepositoryRoot returns the top-level directory of the work tree holding path.
func (g *Git) RepositoryRoot(path string) (string, error) {
	if root, err := rootGoGit(path); err == nil {
		return root, nil
	}
	if g.IsToolAvailable() {
		out := runGit(path, "rev-parse", "--show-toplevel")
		if out != "" {
			return filepath.Clean(out), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotRepository, path)
}

func rootGoGit(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

// Clone clones url into dir, checking out the remote's default branch.
func (g *Git) Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      url,
		Progress: nil,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// Pull fast-forwards the work tree at dir from remote/branch.
func (g *Git) Pull(ctx context.Context, remote, branch, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	opts := &git.PullOptions{RemoteName: remote}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}
	err = wt.PullContext(ctx, opts)
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return fmt.Errorf("pull %s %s: %w", remote, branch, err)
}

// UntrackedFiles lists files in the work tree at root that are neither
// tracked nor ignored, as sorted slash-separated paths.
func (g *Git) UntrackedFiles(root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	// go-git reports ignored files as untracked; filter them with the
	// repository's own ignore files.
	matcher, err := ignore.NewMatcher(wt.Filesystem.Root(), wt.Excludes...)
	if err != nil {
		return nil, fmt.Errorf("read ignore files: %w", err)
	}

	var files []string
	for path, s := range st {
		if s.Worktree != git.Untracked {
			continue
		}
		slash := filepath.ToSlash(path)
		if matcher.IsIgnored(slash) {
			continue
		}
		files = append(files, slash)
	}
	sort.Strings(files)
	return files, nil
}

func runGit(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, _ := cmd.Output()
	return strings.TrimSpace(string(out))
}
