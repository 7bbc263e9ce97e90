package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gig/internal/gitctx"
	"github.com/fulmenhq/gig/internal/gittest"
	"github.com/fulmenhq/gig/internal/manage"
	"github.com/fulmenhq/gig/pkg/catalog"
	"github.com/fulmenhq/gig/pkg/exitcode"
	"github.com/fulmenhq/gig/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// toolVCS is the real collaborator with the binary probe pinned.
type toolVCS struct {
	*gitctx.Git
	available bool
}

func (v toolVCS) IsToolAvailable() bool { return v.available }

func stubVCS(t *testing.T, available bool) {
	t.Helper()
	prev := newVCS
	newVCS = func() vcsTool { return toolVCS{Git: gitctx.New(), available: available} }
	t.Cleanup(func() { newVCS = prev })
}

type fixture struct {
	repo     *gittest.Repo
	upstream *gittest.Repo
	flags    []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("GIG_HOME", t.TempDir())
	stubVCS(t, true)

	upstream := gittest.Catalog(t, map[string]string{
		"Go":   "*.test\n",
		"Node": "node_modules/\n",
	})
	repo := gittest.Init(t)
	return &fixture{
		repo:     repo,
		upstream: upstream,
		flags:    []string{"--repo", repo.Dir, "--catalog-url", upstream.URL(), "--catalog-branch", "master"},
	}
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execRoot(t, append(args, f.flags...)...)
	return out, err
}

func (f *fixture) gitignore(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.repo.Dir, ".gitignore"))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) parsed(t *testing.T) *region.ManagedFile {
	t.Helper()
	m, err := region.Parse(region.SplitLines(f.gitignore(t)))
	require.NoError(t, err)
	return m
}

func TestInitAddRemove(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "init", "Go")
	require.NoError(t, err)
	assert.Equal(t, "Updated .gitignore (1 schema: Go)\n", out)
	assert.Equal(t, []string{"Go"}, f.parsed(t).Region.Names())

	out, err = f.run(t, "add", "Node")
	require.NoError(t, err)
	assert.Equal(t, "Updated .gitignore (2 schemas: Go, Node)\n", out)

	_, err = f.run(t, "add", "Node")
	assert.ErrorIs(t, err, region.ErrAlreadyPresent)
	assert.Equal(t, exitcode.GeneralError, exitcode.ForError(err))

	_, err = f.run(t, "add", "Cobol")
	assert.ErrorIs(t, err, catalog.ErrSchemaNotFound)

	out, err = f.run(t, "remove", "Go")
	require.NoError(t, err)
	assert.Equal(t, "Updated .gitignore (1 schema: Node)\n", out)
	assert.Equal(t, []string{"Node"}, f.parsed(t).Region.Names())
}

func TestInit_ExistingRegionNeedsForce(t *testing.T) {
	f := newFixture(t)
	f.repo.Write(".gitignore", "*.log\n")

	_, err := f.run(t, "init", "Go")
	require.NoError(t, err)
	before := f.gitignore(t)
	assert.True(t, strings.HasPrefix(before, "*.log\n# <<<GIGBEGIN>>>\n"), before)

	_, err = f.run(t, "init", "Node")
	assert.ErrorIs(t, err, manage.ErrRegionExists)
	assert.Equal(t, exitcode.GeneralError, exitcode.ForError(err))
	assert.Equal(t, before, f.gitignore(t))

	_, err = f.run(t, "init", "--force", "Node")
	require.NoError(t, err)
	m := f.parsed(t)
	assert.Equal(t, []string{"Node"}, m.Region.Names())
	assert.Equal(t, []string{"*.log"}, m.Before)
}

func TestInit_UnknownSchemaIsWarning(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "init", "Go", "Cobol", "Node")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Node"}, f.parsed(t).Region.Names())
}

func TestNoOp_PrintsDiff(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "init", "Go", "--no-op")
	require.NoError(t, err)
	assert.Contains(t, out, "+++ .gitignore (proposed)\n")
	assert.Contains(t, out, "+# <<<GIGBEGIN>>>\n")
	_, statErr := os.Stat(filepath.Join(f.repo.Dir, ".gitignore"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateAndStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "init", "Go", "Node")
	require.NoError(t, err)

	f.upstream.Write("Node.gitignore", "node_modules/\ndist/\n")
	latest := f.upstream.Commit("node dist")

	out, err := f.run(t, "status", "--format", "json")
	require.NoError(t, err)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, ".gitignore", report.File)
	require.Len(t, report.Blocks, 2)
	assert.Equal(t, manage.StateCurrent, report.Blocks[0].State)
	assert.Equal(t, manage.StateOutdated, report.Blocks[1].State)
	assert.Equal(t, latest, report.Blocks[1].Latest)

	out, err = f.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "outdated")
	assert.NotContains(t, out, "\x1b[", "no colour when stdout is not a terminal")

	_, err = f.run(t, "update")
	require.NoError(t, err)
	node, ok := f.parsed(t).Region.Block("Node")
	require.True(t, ok)
	assert.Equal(t, []string{"node_modules/", "dist/"}, node.Content)
	assert.Equal(t, latest, node.Version)

	out, err = f.run(t, "status", "--format", "yaml")
	require.NoError(t, err)
	var after statusReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &after))
	require.Len(t, after.Blocks, 2)
	for _, b := range after.Blocks {
		assert.Equal(t, manage.StateCurrent, b.State, b.Name)
	}

	out, err = f.run(t, "update", "Node")
	require.NoError(t, err)
	assert.Equal(t, ".gitignore is already up to date\n", out)
}

func TestStatus_NoRegion(t *testing.T) {
	f := newFixture(t)
	f.repo.Write(".gitignore", "*.log\n")

	_, err := f.run(t, "status")
	assert.ErrorIs(t, err, region.ErrNoManagedRegion)
}

func TestList(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "Go\nNode\n", out)

	out, err = f.run(t, "list", "--format", "json")
	require.NoError(t, err)
	var report listReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"Go", "Node"}, report.Names)

	_, err = f.run(t, "list", "--format", "xml")
	assert.Equal(t, exitcode.UsageError, exitcode.ForError(err))
}

func TestAddUntracked(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "init", "Go")
	require.NoError(t, err)

	f.repo.Write("notes.txt", "scratch")
	f.repo.Write("tmp/out.bin", "x")

	_, err = f.run(t, "add-untracked")
	require.NoError(t, err)
	b, ok := f.parsed(t).Region.Block(manage.UntrackedBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"/notes.txt", "/tmp/out.bin"}, b.Content)
	assert.True(t, b.Local())
}

func TestPreflight(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		t.Setenv("GIG_HOME", t.TempDir())
		stubVCS(t, true)
		_, _, err := execRoot(t, "status", "--repo", t.TempDir())
		assert.True(t, errors.Is(err, gitctx.ErrNotRepository), "got %v", err)
		assert.Equal(t, exitcode.GeneralError, exitcode.ForError(err))
	})

	t.Run("tool missing", func(t *testing.T) {
		f := newFixture(t)
		stubVCS(t, false)
		_, err := f.run(t, "init", "Go")
		assert.ErrorIs(t, err, gitctx.ErrToolMissing)
		_, statErr := os.Stat(filepath.Join(f.repo.Dir, ".gitignore"))
		assert.True(t, os.IsNotExist(statErr), "nothing is written when preflight fails")
	})

	t.Run("invalid project config", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Write(".gig.yaml", "target:\n  file: ../escape\n")
		_, err := f.run(t, "list")
		assert.Error(t, err)
	})

	t.Run("project config moves the target", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Write(".gig.yaml", "target:\n  file: sub/.gitignore\n")
		require.NoError(t, os.MkdirAll(filepath.Join(f.repo.Dir, "sub"), 0o750))
		out, err := f.run(t, "init", "Go")
		require.NoError(t, err)
		assert.Equal(t, "Updated sub/.gitignore (1 schema: Go)\n", out)
	})
}
