/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package region

import "fmt"

// Render produces the file lines for m:
//
//	before
//	RegionBegin
//	banner
//	<blank>
//	for each block: begin tag, content, BlockEnd, <blank>
//	RegionEnd
//	after
func Render(m *ManagedFile) ([]string, error) {
	out := make([]string, 0, len(m.Before)+len(m.After)+4)
	out = append(out, m.Before...)
	out = append(out, RegionBegin)
	out = append(out, m.Region.Banner...)
	out = append(out, "")

	seen := make(map[string]struct{}, len(m.Region.Blocks))
	for _, b := range m.Region.Blocks {
		if _, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSchema, b.Name)
		}
		seen[b.Name] = struct{}{}

		tag, err := FormatBlockBegin(Tag{Name: b.Name, Origin: b.Origin, Version: b.Version})
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
		out = append(out, b.Content...)
		out = append(out, BlockEnd, "")
	}

	out = append(out, RegionEnd)
	out = append(out, m.After...)
	return out, nil
}

// Text renders m as file content terminated by a newline.
func (m *ManagedFile) Text() (string, error) {
	lines, err := Render(m)
	if err != nil {
		return "", err
	}
	return JoinLines(lines), nil
}
