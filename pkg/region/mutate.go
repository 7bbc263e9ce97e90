/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package region

import "fmt"

// Snippet is the resolved content and provenance of one schema.
type Snippet struct {
	// Name is the catalog key that matched. Empty means the requested
	// name is already canonical.
	Name    string
	Content []string
	Origin  string
	Version string
}

// Resolver maps a schema name to its current snippet.
type Resolver interface {
	Resolve(name string) (Snippet, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (Snippet, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (Snippet, error) { return f(name) }

// BuildFromNames builds a fresh region with one block per resolvable name,
// in input order. The first occurrence of a schema wins, including names
// that resolve to the same catalog key. Names that fail validation or
// resolution are skipped and reported in the returned slice; the remaining
// names are still processed.
func BuildFromNames(names []string, resolver Resolver) (Region, []error) {
	r := NewRegion()
	var problems []error
	for _, name := range names {
		if r.Index(name) >= 0 {
			continue
		}
		b, err := resolveBlock(name, resolver)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if r.Index(b.Name) >= 0 {
			continue
		}
		r.Blocks = append(r.Blocks, b)
	}
	return r, problems
}

// AddBlock resolves name and appends it to the end of the region.
func AddBlock(r Region, name string, resolver Resolver) (Region, error) {
	if r.Index(name) >= 0 {
		return r, fmt.Errorf("%w: %s", ErrAlreadyPresent, name)
	}
	b, err := resolveBlock(name, resolver)
	if err != nil {
		return r, err
	}
	if r.Index(b.Name) >= 0 {
		return r, fmt.Errorf("%w: %s", ErrAlreadyPresent, b.Name)
	}
	out := r.Clone()
	out.Blocks = append(out.Blocks, b)
	return out, nil
}

// RemoveBlock drops the named block, keeping the order of the rest.
func RemoveBlock(r Region, name string) (Region, error) {
	i := r.Index(name)
	if i < 0 {
		return r, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	out := r.Clone()
	out.Blocks = append(out.Blocks[:i], out.Blocks[i+1:]...)
	return out, nil
}

// UpdateBlock re-resolves the named block and replaces it in place. The
// block keeps the name it was recorded under.
func UpdateBlock(r Region, name string, resolver Resolver) (Region, error) {
	i := r.Index(name)
	if i < 0 {
		return r, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if r.Blocks[i].Local() {
		return r, fmt.Errorf("%w: %s", ErrLocalBlock, name)
	}
	b, err := resolveBlock(name, resolver)
	if err != nil {
		return r, err
	}
	b.Name = r.Blocks[i].Name
	out := r.Clone()
	out.Blocks[i] = b
	return out, nil
}

// PutLocalBlock stores a block that does not come from the catalog,
// replacing an existing block of the same name in place or appending.
func PutLocalBlock(r Region, b SchemaBlock) (Region, error) {
	if err := ValidateName(b.Name); err != nil {
		return r, err
	}
	b = b.clone()
	b.Origin = ""
	out := r.Clone()
	if i := out.Index(b.Name); i >= 0 {
		out.Blocks[i] = b
		return out, nil
	}
	out.Blocks = append(out.Blocks, b)
	return out, nil
}

func resolveBlock(name string, resolver Resolver) (SchemaBlock, error) {
	if err := ValidateName(name); err != nil {
		return SchemaBlock{}, &ResolveError{Name: name, Err: err}
	}
	s, err := resolver.Resolve(name)
	if err != nil {
		return SchemaBlock{}, &ResolveError{Name: name, Err: err}
	}
	if s.Name != "" {
		name = s.Name
	}
	return SchemaBlock{
		Name:    name,
		Origin:  s.Origin,
		Version: s.Version,
		Content: append([]string{}, s.Content...),
	}, nil
}
