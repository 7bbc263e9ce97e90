package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gig/internal/gitctx"
	"github.com/fulmenhq/gig/internal/gittest"
	"github.com/fulmenhq/gig/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVCS records calls and fails on demand.
type stubVCS struct {
	cloneErr error
	pullErr  error
	clones   int
	pulls    int
	onClone  func(dir string)
}

func (s *stubVCS) Clone(_ context.Context, _, dir string) error {
	s.clones++
	if s.onClone != nil {
		s.onClone(dir)
	}
	return s.cloneErr
}

func (s *stubVCS) Pull(context.Context, string, string, string) error {
	s.pulls++
	return s.pullErr
}

func testConfig(dir string) Config {
	return Config{
		Dir:     dir,
		URL:     "https://example.test/gitignore",
		Remote:  "origin",
		Branch:  "master",
		Pattern: "*.gitignore",
		Suffix:  ".gitignore",
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func TestList_SortedAndSuffixStripped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"node.gitignore": "node_modules/\n",
		"c.gitignore":    "*.o\n",
		"README.md":      "not a snippet\n",
	})

	names, err := New(testConfig(dir), &stubVCS{}).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "node"}, names)
}

func TestEntries_RecursivePattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Go.gitignore":                "",
		"Global/macOS.gitignore":      "",
		"community/Deno.gitignore":    "",
		".git/info/ignored.gitignore": "",
	})

	cfg := testConfig(dir)
	cfg.Pattern = "**/*.gitignore"
	entries, err := New(cfg, &stubVCS{}).Entries()
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Global/macOS", "Go", "community/Deno"}, names)
	assert.Equal(t, "Global/macOS.gitignore", entries[0].Path)
}

func TestEntries_InvalidPattern(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Pattern = "[unclosed"
	_, err := New(cfg, &stubVCS{}).Entries()
	assert.Error(t, err)
}

func TestNew_DefaultPatternFromSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Go.gitignore": "", "notes.txt": ""})
	cfg := testConfig(dir)
	cfg.Pattern = ""

	names, err := New(cfg, nil).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, names)
}

func TestResolve_PlainDirectoryHashesContent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Python.gitignore": "__pycache__/  \n*.pyc\n\n\n"})

	c := New(testConfig(dir), &stubVCS{})
	s, err := c.Resolve("Python")
	require.NoError(t, err)
	assert.Equal(t, []string{"__pycache__/", "*.pyc"}, s.Content)
	assert.Equal(t, "https://example.test/gitignore", s.Origin)
	assert.True(t, strings.HasPrefix(s.Version, "sha256:"), s.Version)
	assert.Equal(t, ContentVersion(s.Content), s.Version)

	assert.Equal(t, "Python", s.Name)

	// Case-insensitive fallback when unique, reporting the catalog key.
	again, err := c.Resolve("python")
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestResolve_SpellingsShareOneBlock(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Python.gitignore": "*.pyc\n"})
	c := New(testConfig(dir), &stubVCS{})

	r, problems := region.BuildFromNames([]string{"python", "Python", "PYTHON"}, c)
	require.Empty(t, problems)
	assert.Equal(t, []string{"Python"}, r.Names())

	_, err := region.AddBlock(r, "pYthon", c)
	assert.ErrorIs(t, err, region.ErrAlreadyPresent)

	updated, err := region.UpdateBlock(r, "Python", c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, updated.Names())
}

func TestResolve_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.gitignore": ""})

	c := New(testConfig(dir), &stubVCS{})
	_, err := c.Resolve("zig")
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	_, err = c.Resolve("a.gitignore")
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestResolve_VersionIsLastCommitTouchingFile(t *testing.T) {
	upstream := gittest.Catalog(t, map[string]string{"Go": "*.test\n", "Node": "node_modules/\n"})
	upstream.Write("Node.gitignore", "node_modules/\ndist/\n")
	nodeCommit := upstream.Commit("node dist")

	c := New(testConfig(upstream.Dir), &stubVCS{})
	node, err := c.Resolve("Node")
	require.NoError(t, err)
	assert.Equal(t, nodeCommit, node.Version)
	assert.Equal(t, []string{"node_modules/", "dist/"}, node.Content)

	goSnip, err := c.Resolve("Go")
	require.NoError(t, err)
	assert.NotEqual(t, nodeCommit, goSnip.Version)
	assert.Len(t, goSnip.Version, 40)
}

func TestEnsureAvailable_ClonesWhenMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home", "schemas")
	vcs := &stubVCS{onClone: func(d string) { _ = os.MkdirAll(d, 0o750) }}

	res, err := New(testConfig(dir), vcs).EnsureAvailable(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Cloned)
	assert.Equal(t, 1, vcs.clones)
	assert.Equal(t, 0, vcs.pulls)
}

func TestEnsureAvailable_CloneFailureIsFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schemas")
	vcs := &stubVCS{
		cloneErr: errors.New("network down"),
		onClone:  func(d string) { _ = os.MkdirAll(d, 0o750) },
	}

	_, err := New(testConfig(dir), vcs).EnsureAvailable(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "partial clone should be removed")
}

func TestEnsureAvailable_NoURL(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "schemas"))
	cfg.URL = ""
	_, err := New(cfg, &stubVCS{}).EnsureAvailable(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestEnsureAvailable_PullFailureIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Go.gitignore": "*.test\n"})
	vcs := &stubVCS{pullErr: errors.New("offline")}

	c := New(testConfig(dir), vcs)
	res, err := c.EnsureAvailable(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Refreshed)
	assert.EqualError(t, res.RefreshErr, "offline")

	// Stale mirror still serves lookups.
	names, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, names)
}

func TestEnsureAvailable_NotADirectory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "schemas")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	_, err := New(testConfig(p), &stubVCS{}).EnsureAvailable(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestEnsureAvailable_WithGit(t *testing.T) {
	upstream := gittest.Catalog(t, map[string]string{"Go": "*.test\n"})
	cfg := testConfig(filepath.Join(t.TempDir(), "schemas"))
	cfg.URL = upstream.URL()

	ctx := context.Background()
	res, err := New(cfg, gitctx.New()).EnsureAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, res.Cloned)

	upstream.Write("Rust.gitignore", "target/\n")
	upstream.Commit("add rust")

	c := New(cfg, gitctx.New())
	res, err = c.EnsureAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, res.Refreshed)

	names, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, names)

	s, err := c.Resolve("Rust")
	require.NoError(t, err)
	assert.Equal(t, upstream.URL(), s.Origin)
}
