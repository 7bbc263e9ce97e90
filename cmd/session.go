/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gig/internal/gitctx"
	"github.com/fulmenhq/gig/internal/manage"
	"github.com/fulmenhq/gig/pkg/catalog"
	"github.com/fulmenhq/gig/pkg/config"
	"github.com/fulmenhq/gig/pkg/exitcode"
	"github.com/fulmenhq/gig/pkg/logger"
	"github.com/fulmenhq/gig/pkg/safeio"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// vcsTool is everything the CLI needs from version control.
type vcsTool interface {
	catalog.VCS
	IsToolAvailable() bool
	IsInsideRepository(path string) bool
	RepositoryRoot(path string) (string, error)
	UntrackedFiles(root string) ([]string, error)
}

// newVCS is replaced in tests.
var newVCS = func() vcsTool { return gitctx.New() }

// session is the resolved context for one manage command.
type session struct {
	root   string
	runner *manage.Runner
}

// preflight checks the environment before any file is touched: the git tool
// must be available, the --repo path must be inside a repository, and the
// configured target must resolve inside its root.
func preflight(cmd *cobra.Command) (*session, error) {
	vcs := newVCS()
	if !vcs.IsToolAvailable() {
		return nil, gitctx.ErrToolMissing
	}

	repo, _ := cmd.Flags().GetString("repo")
	abs, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", repo, err)
	}
	if !vcs.IsInsideRepository(abs) {
		return nil, fmt.Errorf("%w (%s)", gitctx.ErrNotRepository, abs)
	}
	root, err := vcs.RepositoryRoot(abs)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.Options{RepoRoot: root, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	target, err := safeio.ContainedPath(root, cfg.Target.File)
	if err != nil {
		return nil, fmt.Errorf("target.file: %w", err)
	}

	noOp, _ := cmd.Flags().GetBool("no-op")
	logger.Debug("Resolved repository",
		logger.String("root", root),
		logger.String("target", target),
		logger.String("catalog", cfg.Catalog.Dir))

	return &session{
		root: root,
		runner: &manage.Runner{
			Catalog:    catalog.New(cfg.CatalogConfig(), vcs),
			Root:       root,
			TargetPath: target,
			NoOp:       noOp,
			Color:      useColor(cmd, cmd.OutOrStdout()),
			Untracked:  vcs.UntrackedFiles,
		},
	}, nil
}

// run executes op inside a fresh session.
func run(cmd *cobra.Command, op manage.Operation) (*session, *manage.Result, error) {
	s, err := preflight(cmd)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.runner.Run(cmd.Context(), op)
	if err != nil {
		return s, nil, err
	}
	return s, res, nil
}

// runMutation executes a file-changing op and reports the outcome.
func runMutation(cmd *cobra.Command, op manage.Operation) error {
	s, res, err := run(cmd, op)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rel := relTarget(s)

	if s.runner.NoOp {
		if res.Diff == "" {
			fmt.Fprintf(out, "%s is already up to date\n", rel)
			return nil
		}
		fmt.Fprint(out, res.Diff)
		return nil
	}

	if res.Written {
		fmt.Fprintf(out, "Updated %s (%s)\n", rel, describeNames(res.Names))
		return nil
	}
	fmt.Fprintf(out, "%s is already up to date\n", rel)
	return nil
}

func relTarget(s *session) string {
	if rel, err := filepath.Rel(s.root, s.runner.TargetPath); err == nil {
		return filepath.ToSlash(rel)
	}
	return s.runner.TargetPath
}

func describeNames(names []string) string {
	switch len(names) {
	case 0:
		return "no schemas"
	case 1:
		return "1 schema: " + names[0]
	default:
		return fmt.Sprintf("%d schemas: %s", len(names), strings.Join(names, ", "))
	}
}

// useColor reports whether w is a terminal and colour was not disabled.
func useColor(cmd *cobra.Command, w io.Writer) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("format")
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", exitcode.NewUsage("unsupported format %q (use text, json or yaml)", f)
	}
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to format YAML: %v", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
