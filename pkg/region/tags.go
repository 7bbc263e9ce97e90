/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package region

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker lines delimiting the managed region and the schema blocks inside it.
const (
	RegionBegin = "# <<<GIGBEGIN>>>"
	RegionEnd   = "# <<<GIGEND>>>"
	BlockEnd    = "# <<<GIGSCHEMAEND>>>"

	// BannerLine is written once, directly after RegionBegin.
	BannerLine = "# Content between <<<GIGBEGIN>>> and <<<GIGEND>>> managed by gig DO NOT MODIFY"
)

// blockBeginPattern is the parse grammar for a schema block opening tag.
// Rendering goes through blockBeginTemplate.
var blockBeginPattern = regexp.MustCompile(`^# <<<GIGSCHEMABEGIN name="([^"]*)" url="([^"]*)" commit="([^"]*)">>>`)

// blockBeginTemplate is the render template for a schema block opening tag.
const blockBeginTemplate = `# <<<GIGSCHEMABEGIN name="%s" url="%s" commit="%s">>>`

// Tag holds the provenance captured from a block opening tag.
type Tag struct {
	Name    string
	Origin  string
	Version string
}

// DefaultBanner returns a fresh copy of the fixed banner.
func DefaultBanner() []string {
	return []string{BannerLine}
}

// IsRegionBegin reports whether line opens the managed region.
func IsRegionBegin(line string) bool {
	return strings.HasPrefix(line, RegionBegin)
}

// IsRegionEnd reports whether line closes the managed region.
func IsRegionEnd(line string) bool {
	return strings.HasPrefix(line, RegionEnd)
}

// IsBlockEnd reports whether line closes a schema block.
func IsBlockEnd(line string) bool {
	return strings.HasPrefix(line, BlockEnd)
}

// isBanner reports whether line is one of the fixed banner lines.
func isBanner(line string) bool {
	return line == BannerLine
}

// MatchBlockBegin extracts the provenance from a block opening tag.
func MatchBlockBegin(line string) (Tag, bool) {
	m := blockBeginPattern.FindStringSubmatch(line)
	if m == nil {
		return Tag{}, false
	}
	return Tag{Name: m[1], Origin: m[2], Version: m[3]}, true
}

// FormatBlockBegin renders a block opening tag. Fields that the parse
// grammar could not read back are rejected.
func FormatBlockBegin(t Tag) (string, error) {
	if err := ValidateName(t.Name); err != nil {
		return "", err
	}
	for _, f := range []string{t.Origin, t.Version} {
		if !renderable(f) {
			return "", fmt.Errorf("%w: provenance %q for %q", ErrInvalidName, f, t.Name)
		}
	}
	return fmt.Sprintf(blockBeginTemplate, t.Name, t.Origin, t.Version), nil
}

// ValidateName checks that name can be used as a block name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !renderable(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func renderable(s string) bool {
	return !strings.ContainsAny(s, "\"\r\n")
}
