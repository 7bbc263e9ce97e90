/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher answers whether a work-tree path is ignored by the repository.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered patterns:
// 1. .git/ itself (always ignored)
// 2. every .gitignore in the tree
// 3. extra, in order, matched last so they win
func NewMatcher(repoRoot string, extra ...gitignore.Pattern) (*Matcher, error) {
	patterns := []gitignore.Pattern{gitignore.ParsePattern(".git/", nil)}

	repoPatterns, err := gitignore.ReadPatterns(osfs.New(repoRoot), nil)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, repoPatterns...)
	patterns = append(patterns, extra...)

	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// IsIgnored checks if a slash-separated, root-relative file path is ignored
func (m *Matcher) IsIgnored(path string) bool {
	parts := splitPath(path)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// ErrUnrepresentable means a path cannot be written as an ignore line.
var ErrUnrepresentable = errors.New("path cannot be expressed as a gitignore pattern")

// Literal returns a root-anchored pattern matching exactly path, a
// slash-separated path relative to the repository root. Glob, comment and
// negation characters are backslash-escaped. Trailing whitespace is written
// as a bracket class so it survives line trimming.
func Literal(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" || strings.ContainsAny(path, "\n\r") {
		return "", fmt.Errorf("%w: %q", ErrUnrepresentable, path)
	}

	body := strings.TrimRight(path, " \t")
	trailing := path[len(body):]

	var b strings.Builder
	b.WriteByte('/')
	leading := true
	for _, r := range body {
		switch {
		case leading && r == ' ':
			b.WriteString("\\ ")
			continue
		case strings.ContainsRune(`\[]*?!#`, r):
			b.WriteByte('\\')
		}
		leading = false
		b.WriteRune(r)
	}
	for _, r := range trailing {
		b.WriteByte('[')
		b.WriteRune(r)
		b.WriteByte(']')
	}
	return b.String(), nil
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
