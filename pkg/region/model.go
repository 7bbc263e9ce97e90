/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package region implements the gig managed region: the tag grammar, the
// parser that locates the region inside a user-owned file, the model and its
// mutations, and the serializer that renders it back.
package region

import "strings"

// SchemaBlock is one named snippet embedded in the managed region.
type SchemaBlock struct {
	// Name is the catalog key, unique within a region.
	Name string `json:"name" yaml:"name"`
	// Origin is the source reference; empty for local blocks.
	Origin string `json:"origin" yaml:"origin"`
	// Version is an opaque content-identity token, e.g. a commit hash.
	Version string `json:"version" yaml:"version"`
	// Content holds the raw lines between the block tags.
	Content []string `json:"content" yaml:"content"`
}

// Local reports whether the block was produced locally rather than taken
// from the catalog.
func (b SchemaBlock) Local() bool {
	return b.Origin == ""
}

func (b SchemaBlock) clone() SchemaBlock {
	b.Content = append([]string(nil), b.Content...)
	return b
}

// Region is the machine-owned span of the file.
type Region struct {
	Banner []string
	Blocks []SchemaBlock
}

// NewRegion returns an empty region carrying the fixed banner.
func NewRegion() Region {
	return Region{Banner: DefaultBanner()}
}

// Names returns block names in region order.
func (r Region) Names() []string {
	names := make([]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		names = append(names, b.Name)
	}
	return names
}

// Index returns the position of the named block, or -1.
func (r Region) Index(name string) int {
	for i, b := range r.Blocks {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Block returns the named block.
func (r Region) Block(name string) (SchemaBlock, bool) {
	if i := r.Index(name); i >= 0 {
		return r.Blocks[i], true
	}
	return SchemaBlock{}, false
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (r Region) Clone() Region {
	out := Region{Banner: append([]string(nil), r.Banner...)}
	if r.Blocks != nil {
		out.Blocks = make([]SchemaBlock, len(r.Blocks))
		for i, b := range r.Blocks {
			out.Blocks[i] = b.clone()
		}
	}
	return out
}

// ManagedFile is a user-owned file with exactly one managed region.
// Before and After are opaque and preserved as-is.
type ManagedFile struct {
	Before []string
	Region Region
	After  []string
}

// NewManagedFile wraps existing user lines with an empty region appended.
func NewManagedFile(before []string) *ManagedFile {
	return &ManagedFile{
		Before: append([]string(nil), before...),
		Region: NewRegion(),
	}
}

// WithRegion returns a copy of m whose region is replaced by r.
func (m *ManagedFile) WithRegion(r Region) *ManagedFile {
	return &ManagedFile{Before: m.Before, Region: r, After: m.After}
}

// SplitLines splits file text into lines, stripping trailing whitespace
// from each line the same way the file is re-rendered. A trailing newline
// does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimRight(p, " \t\r")
	}
	return parts
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
