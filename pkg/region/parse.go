/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package region

import "strings"

// Parse locates the managed region in lines and parses its blocks.
// Lines are expected to be trailing-whitespace stripped (see SplitLines).
func Parse(lines []string) (*ManagedFile, error) {
	begin, end, ok := findRegion(lines)
	if !ok {
		return nil, &ParseError{Kind: ErrNoManagedRegion}
	}

	blocks, err := parseBlocks(lines, begin, end)
	if err != nil {
		return nil, err
	}

	return &ManagedFile{
		Before: append([]string{}, lines[:begin]...),
		Region: Region{Banner: DefaultBanner(), Blocks: blocks},
		After:  append([]string{}, lines[end+1:]...),
	}, nil
}

// findRegion returns the first region-begin and the last region-end.
func findRegion(lines []string) (begin, end int, ok bool) {
	begin, end = -1, -1
	for i, line := range lines {
		switch {
		case begin < 0 && IsRegionBegin(line):
			begin = i
		case IsRegionEnd(line):
			end = i
		}
	}
	if begin < 0 || end <= begin {
		return 0, 0, false
	}
	return begin, end, true
}

// parseBlocks scans the lines strictly between the region markers.
func parseBlocks(lines []string, begin, end int) ([]SchemaBlock, error) {
	blocks := []SchemaBlock{}
	seen := make(map[string]struct{})

	var (
		inside  bool
		pending Tag
		start   int
	)

	for i := begin + 1; i < end; i++ {
		line := lines[i]

		if tag, ok := MatchBlockBegin(line); ok {
			if inside {
				return nil, &ParseError{Kind: ErrMalformedRegion, Line: i + 1, Name: tag.Name}
			}
			if strings.TrimSpace(tag.Name) == "" {
				return nil, &ParseError{Kind: ErrMalformedRegion, Line: i + 1}
			}
			inside, pending, start = true, tag, i
			continue
		}

		if IsBlockEnd(line) {
			if !inside {
				return nil, &ParseError{Kind: ErrMalformedRegion, Line: i + 1}
			}
			if _, dup := seen[pending.Name]; dup {
				return nil, &ParseError{Kind: ErrDuplicateSchema, Line: start + 1, Name: pending.Name}
			}
			seen[pending.Name] = struct{}{}
			blocks = append(blocks, SchemaBlock{
				Name:    pending.Name,
				Origin:  pending.Origin,
				Version: pending.Version,
				Content: append([]string{}, lines[start+1:i]...),
			})
			inside = false
			continue
		}

		if inside || line == "" || isBanner(line) {
			continue
		}
		// Text outside any block would be dropped on the next render.
		return nil, &ParseError{Kind: ErrMalformedRegion, Line: i + 1}
	}

	if inside {
		return nil, &ParseError{Kind: ErrUnterminatedBlock, Line: start + 1, Name: pending.Name}
	}
	return blocks, nil
}
