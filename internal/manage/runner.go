/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package manage applies gig operations to the managed file of a repository.
package manage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fulmenhq/gig/pkg/catalog"
	"github.com/fulmenhq/gig/pkg/ignore"
	"github.com/fulmenhq/gig/pkg/logger"
	"github.com/fulmenhq/gig/pkg/preview"
	"github.com/fulmenhq/gig/pkg/region"
	"github.com/fulmenhq/gig/pkg/safeio"
)

// UntrackedBlock is the local block written by AddUntracked.
const UntrackedBlock = "untracked"

var (
	// ErrRegionExists is returned by Build when the file already has a region.
	ErrRegionExists = errors.New("managed region already exists (use --force to rebuild it)")
	// ErrUnknownOperation means Run was handed a variant it does not know.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Catalog is the part of *catalog.Catalog the runner needs.
type Catalog interface {
	EnsureAvailable(ctx context.Context) (*catalog.SyncResult, error)
	List() ([]string, error)
	Resolve(name string) (region.Snippet, error)
}

// Runner executes operations against one target file.
type Runner struct {
	Catalog Catalog
	// Root is the repository root; the target must live inside it.
	Root string
	// TargetPath is the absolute path of the managed file.
	TargetPath string
	// NoOp computes the result and a diff without writing.
	NoOp bool
	// Color enables ANSI colour in the NoOp diff.
	Color bool
	// Untracked lists untracked, non-ignored files under a root.
	Untracked func(root string) ([]string, error)
}

// Result is the outcome of one operation.
type Result struct {
	Operation string        `json:"operation" yaml:"operation"`
	Changed   bool          `json:"changed" yaml:"changed"`
	Written   bool          `json:"written" yaml:"written"`
	Warnings  []error       `json:"-" yaml:"-"`
	Names     []string      `json:"names,omitempty" yaml:"names,omitempty"`
	Status    []BlockStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Diff      string        `json:"diff,omitempty" yaml:"diff,omitempty"`
	Content   string        `json:"-" yaml:"-"`
}

// WarningMessages returns the warnings as strings for encoding.
func (r *Result) WarningMessages() []string {
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Error())
	}
	return out
}

func (r *Result) warn(err error) {
	logger.Warn(err.Error())
	r.Warnings = append(r.Warnings, err)
}

// Run executes op. Nothing is written unless the whole new file was built.
func (r *Runner) Run(ctx context.Context, op Operation) (*Result, error) {
	res := &Result{Operation: Name(op)}
	var err error
	switch o := op.(type) {
	case Build:
		err = r.build(ctx, o, res)
	case Add:
		err = r.add(ctx, o, res)
	case AddUntracked:
		err = r.addUntracked(res)
	case Update:
		err = r.update(ctx, o, res)
	case Remove:
		err = r.remove(o, res)
	case List:
		err = r.list(ctx, res)
	case Status:
		err = r.status(ctx, res)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownOperation, op)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// refresh makes the catalog available. A failed pull has already been
// logged by the catalog; it is kept on the result as a warning.
func (r *Runner) refresh(ctx context.Context, res *Result) error {
	if r.Catalog == nil {
		return fmt.Errorf("%w: no catalog configured", catalog.ErrCatalogUnavailable)
	}
	sync, err := r.Catalog.EnsureAvailable(ctx)
	if err != nil {
		return err
	}
	if sync != nil && sync.RefreshErr != nil {
		res.Warnings = append(res.Warnings, fmt.Errorf("catalog refresh failed, using local copy: %w", sync.RefreshErr))
	}
	return ctx.Err()
}

func (r *Runner) resolver() region.Resolver {
	return region.ResolverFunc(r.Catalog.Resolve)
}

// target is the current state of the managed file. normalized is text as
// the renderer would write it; a rendering equal to it changes nothing.
type target struct {
	exists     bool
	text       string
	normalized string
	lines      []string
}

func (r *Runner) readTarget() (*target, error) {
	if _, err := safeio.ContainedPath(r.Root, r.TargetPath); err != nil {
		return nil, err
	}
	data, ok, err := safeio.ReadFileIfExists(r.Root, r.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.TargetPath, err)
	}
	t := &target{exists: ok, text: string(data)}
	t.lines = region.SplitLines(t.text)
	t.normalized = region.JoinLines(t.lines)
	return t, nil
}

// parseTarget reads the target and requires a managed region in it.
func (r *Runner) parseTarget() (*target, *region.ManagedFile, error) {
	t, err := r.readTarget()
	if err != nil {
		return nil, nil, err
	}
	if !t.exists {
		return nil, nil, r.formatError(&region.ParseError{Kind: region.ErrNoManagedRegion})
	}
	m, err := region.Parse(t.lines)
	if err != nil {
		return nil, nil, r.formatError(err)
	}
	return t, m, nil
}

// formatError names the target file in region format failures.
func (r *Runner) formatError(err error) error {
	if !region.IsFormatError(err) {
		return err
	}
	rel, relErr := filepath.Rel(r.Root, r.TargetPath)
	if relErr != nil {
		rel = r.TargetPath
	}
	return fmt.Errorf("%s: %w", filepath.ToSlash(rel), err)
}

func (r *Runner) build(ctx context.Context, op Build, res *Result) error {
	if err := r.refresh(ctx, res); err != nil {
		return err
	}
	t, err := r.readTarget()
	if err != nil {
		return err
	}

	var base *region.ManagedFile
	switch m, perr := region.Parse(t.lines); {
	case perr == nil && !op.Force:
		return ErrRegionExists
	case perr == nil:
		base = m
	case errors.Is(perr, region.ErrNoManagedRegion):
		base = region.NewManagedFile(t.lines)
	default:
		return r.formatError(perr)
	}

	reg, problems := region.BuildFromNames(op.Names, r.resolver())
	for _, p := range problems {
		res.warn(p)
	}
	return r.write(t, base.WithRegion(reg), res)
}

func (r *Runner) add(ctx context.Context, op Add, res *Result) error {
	if err := r.refresh(ctx, res); err != nil {
		return err
	}
	t, m, err := r.parseTarget()
	if err != nil {
		return err
	}
	reg, err := region.AddBlock(m.Region, op.Name, r.resolver())
	if err != nil {
		return err
	}
	return r.write(t, m.WithRegion(reg), res)
}

func (r *Runner) addUntracked(res *Result) error {
	if r.Untracked == nil {
		return errors.New("untracked file listing is not available")
	}
	t, m, err := r.parseTarget()
	if err != nil {
		return err
	}

	files, err := r.Untracked(r.Root)
	if err != nil {
		return fmt.Errorf("failed to list untracked files: %w", err)
	}

	self := ""
	if rel, err := filepath.Rel(r.Root, r.TargetPath); err == nil {
		self = filepath.ToSlash(rel)
	}

	entries := map[string]struct{}{}
	if existing, ok := m.Region.Block(UntrackedBlock); ok {
		for _, line := range existing.Content {
			entries[line] = struct{}{}
		}
	}
	added := 0
	for _, f := range files {
		rel := filepath.ToSlash(f)
		if rel == self {
			continue
		}
		entry, err := ignore.Literal(rel)
		if err != nil {
			res.warn(err)
			continue
		}
		if _, seen := entries[entry]; !seen {
			entries[entry] = struct{}{}
			added++
		}
	}
	if added == 0 {
		logger.Info("No new untracked files to record")
		res.Names = m.Region.Names()
		return nil
	}

	content := make([]string, 0, len(entries))
	for e := range entries {
		content = append(content, e)
	}
	sort.Strings(content)

	reg, err := region.PutLocalBlock(m.Region, region.SchemaBlock{
		Name:    UntrackedBlock,
		Version: catalog.ContentVersion(content),
		Content: content,
	})
	if err != nil {
		return err
	}
	return r.write(t, m.WithRegion(reg), res)
}

func (r *Runner) update(ctx context.Context, op Update, res *Result) error {
	if err := r.refresh(ctx, res); err != nil {
		return err
	}
	t, m, err := r.parseTarget()
	if err != nil {
		return err
	}

	if op.Name != "" {
		reg, err := region.UpdateBlock(m.Region, op.Name, r.resolver())
		if err != nil {
			return err
		}
		return r.write(t, m.WithRegion(reg), res)
	}

	reg := m.Region
	for _, b := range m.Region.Blocks {
		if b.Local() {
			logger.Debug("Skipping local block", logger.String("name", b.Name))
			continue
		}
		next, err := region.UpdateBlock(reg, b.Name, r.resolver())
		if err != nil {
			res.warn(err)
			continue
		}
		reg = next
	}
	return r.write(t, m.WithRegion(reg), res)
}

func (r *Runner) remove(op Remove, res *Result) error {
	t, m, err := r.parseTarget()
	if err != nil {
		return err
	}
	reg, err := region.RemoveBlock(m.Region, op.Name)
	if err != nil {
		return err
	}
	return r.write(t, m.WithRegion(reg), res)
}

func (r *Runner) list(ctx context.Context, res *Result) error {
	if err := r.refresh(ctx, res); err != nil {
		return err
	}
	names, err := r.Catalog.List()
	if err != nil {
		return err
	}
	res.Names = names
	return nil
}

func (r *Runner) status(ctx context.Context, res *Result) error {
	if err := r.refresh(ctx, res); err != nil {
		return err
	}
	_, m, err := r.parseTarget()
	if err != nil {
		return err
	}
	res.Names = m.Region.Names()
	res.Status = make([]BlockStatus, 0, len(m.Region.Blocks))
	for _, b := range m.Region.Blocks {
		res.Status = append(res.Status, r.blockStatus(b, res))
	}
	return nil
}

// write renders m and replaces the target when the content changed.
func (r *Runner) write(t *target, m *region.ManagedFile, res *Result) error {
	text, err := m.Text()
	if err != nil {
		return err
	}
	res.Content = text
	res.Names = m.Region.Names()
	res.Changed = text != t.normalized

	if r.NoOp {
		name := filepath.Base(r.TargetPath)
		res.Diff = preview.Render(preview.Lines(t.normalized, text), preview.Options{
			OldName: name,
			NewName: name + " (proposed)",
			Context: preview.DefaultContext,
			Color:   r.Color,
		})
		logger.Info("No changes written", logger.String("file", r.TargetPath), logger.Bool("changed", res.Changed))
		return nil
	}
	if !res.Changed {
		logger.Debug("Managed file already up to date", logger.String("file", r.TargetPath))
		return nil
	}
	if err := safeio.WriteFileAtomic(r.TargetPath, []byte(text)); err != nil {
		return err
	}
	res.Written = true
	logger.Debug("Wrote managed file", logger.String("file", r.TargetPath), logger.Int("blocks", len(m.Region.Blocks)))
	return nil
}
