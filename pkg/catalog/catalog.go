/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package catalog resolves schema names against a local mirror of a remote
// snippet repository.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/gig/pkg/logger"
	"github.com/fulmenhq/gig/pkg/region"
	"github.com/fulmenhq/gig/pkg/safeio"
	"github.com/go-git/go-git/v5"
)

var (
	// ErrCatalogUnavailable means the mirror could not be initialized.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrSchemaNotFound means no mirror entry matches the requested name.
	ErrSchemaNotFound = errors.New("schema not found in catalog")
)

// VCS is the subset of the version-control collaborator the catalog needs.
type VCS interface {
	Clone(ctx context.Context, url, dir string) error
	Pull(ctx context.Context, remote, branch, dir string) error
}

// Config locates the mirror and its upstream.
type Config struct {
	Dir     string // local mirror directory
	URL     string // remote snippet repository
	Remote  string // remote name used when pulling
	Branch  string // branch to pull
	Pattern string // doublestar pattern selecting entries, relative to Dir
	Suffix  string // stripped from entry paths to form names
}

// Entry is one snippet file in the mirror.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// SyncResult reports what EnsureAvailable did.
type SyncResult struct {
	Dir       string
	Cloned    bool
	Refreshed bool
	// RefreshErr is set when a pull failed and the stale mirror is in use.
	RefreshErr error
}

// Catalog is a read-only lookup over the mirror directory.
type Catalog struct {
	cfg  Config
	vcs  VCS
	repo *git.Repository
}

// New returns a catalog for cfg.
func New(cfg Config, vcs VCS) *Catalog {
	if cfg.Pattern == "" {
		cfg.Pattern = "*" + cfg.Suffix
	}
	return &Catalog{cfg: cfg, vcs: vcs}
}

// EnsureAvailable clones the mirror when it is missing and pulls it
// otherwise. A failed pull is only a warning.
func (c *Catalog) EnsureAvailable(ctx context.Context) (*SyncResult, error) {
	res := &SyncResult{Dir: c.cfg.Dir}

	st, err := os.Stat(c.cfg.Dir)
	switch {
	case os.IsNotExist(err):
		if err := c.initialize(ctx); err != nil {
			return nil, err
		}
		res.Cloned = true
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	case !st.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCatalogUnavailable, c.cfg.Dir)
	}

	if err := c.vcs.Pull(ctx, c.cfg.Remote, c.cfg.Branch, c.cfg.Dir); err != nil {
		logger.Warn("Catalog could not be updated, using local copy",
			logger.String("dir", c.cfg.Dir), logger.Err(err))
		res.RefreshErr = err
		return res, nil
	}
	res.Refreshed = true
	return res, nil
}

func (c *Catalog) initialize(ctx context.Context) error {
	if c.cfg.URL == "" {
		return fmt.Errorf("%w: no catalog url configured", ErrCatalogUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(c.cfg.Dir), 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	logger.Info(fmt.Sprintf("Cloning catalog %s into %s", c.cfg.URL, c.cfg.Dir))
	if err := c.vcs.Clone(ctx, c.cfg.URL, c.cfg.Dir); err != nil {
		_ = os.RemoveAll(c.cfg.Dir)
		return fmt.Errorf("%w: clone %s: %v", ErrCatalogUnavailable, c.cfg.URL, err)
	}
	return nil
}

// Entries lists snippet files in the mirror, sorted by name.
func (c *Catalog) Entries() ([]Entry, error) {
	if !doublestar.ValidatePattern(c.cfg.Pattern) {
		return nil, fmt.Errorf("invalid catalog pattern %q", c.cfg.Pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(c.cfg.Dir), c.cfg.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		if m == ".git" || strings.HasPrefix(m, ".git/") {
			continue
		}
		name := strings.TrimSuffix(m, c.cfg.Suffix)
		if name == "" || region.ValidateName(name) != nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Path: path.Clean(m)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// List returns the available schema names in lexicographic order.
func (c *Catalog) List() ([]string, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Lookup finds the entry for name: an exact match first, then a unique
// case-insensitive match.
func (c *Catalog) Lookup(name string) (Entry, error) {
	entries, err := c.Entries()
	if err != nil {
		return Entry{}, err
	}
	var folded []Entry
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
		if strings.EqualFold(e.Name, name) {
			folded = append(folded, e)
		}
	}
	if len(folded) == 1 {
		return folded[0], nil
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
}

// Resolve returns the current content and provenance for name.
func (c *Catalog) Resolve(name string) (region.Snippet, error) {
	e, err := c.Lookup(name)
	if err != nil {
		return region.Snippet{}, err
	}

	data, err := safeio.ReadFileContained(c.cfg.Dir, filepath.Join(c.cfg.Dir, filepath.FromSlash(e.Path)))
	if err != nil {
		return region.Snippet{}, fmt.Errorf("read %s: %w", e.Path, err)
	}
	content := trimTrailingBlank(region.SplitLines(string(data)))

	version, err := c.lastCommit(e.Path)
	if err != nil {
		logger.Debug("catalog: no commit for entry, hashing content",
			logger.String("entry", e.Path), logger.Err(err))
		version = ContentVersion(content)
	}

	return region.Snippet{Name: e.Name, Content: content, Origin: c.cfg.URL, Version: version}, nil
}

// lastCommit returns the hash of the newest commit that touched rel.
func (c *Catalog) lastCommit(rel string) (string, error) {
	if c.repo == nil {
		repo, err := git.PlainOpen(c.cfg.Dir)
		if err != nil {
			return "", err
		}
		c.repo = repo
	}

	iter, err := c.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return "", err
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return "", fmt.Errorf("no history for %s: %w", rel, err)
	}
	return commit.Hash.String(), nil
}

// ContentVersion is the version token for content without history.
func ContentVersion(lines []string) string {
	sum := sha256.Sum256([]byte(region.JoinLines(lines)))
	return "sha256:" + hex.EncodeToString(sum[:])[:12]
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return lines[:end]
}
