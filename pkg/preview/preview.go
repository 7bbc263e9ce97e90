/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package preview renders line diffs between the current and proposed
// content of a managed file.
package preview

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line
type Op int

const (
	Context Op = iota
	Added
	Removed
)

// Line is one line of a diff. OldPos and NewPos count the old and new lines
// that precede it.
type Line struct {
	Op     Op
	Text   string
	OldPos int
	NewPos int
}

// Options controls Render output.
type Options struct {
	OldName string
	NewName string
	// Context is the number of unchanged lines kept around each change.
	Context int
	Color   bool
}

// DefaultContext matches diff -u.
const DefaultContext = 3

// Lines computes a line-level diff of old and new.
func Lines(old, new string) []Line {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lineArray := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []Line
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			l := Line{Text: text, OldPos: oldPos, NewPos: newPos}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				l.Op = Context
				oldPos++
				newPos++
			case diffmatchpatch.DiffDelete:
				l.Op = Removed
				oldPos++
			case diffmatchpatch.DiffInsert:
				l.Op = Added
				newPos++
			}
			out = append(out, l)
		}
	}
	return out
}

// Changed reports whether any line was added or removed.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Context {
			return true
		}
	}
	return false
}

// Render formats lines as a unified diff. It returns "" when nothing changed.
func Render(lines []Line, opts Options) string {
	if !Changed(lines) {
		return ""
	}
	ctx := opts.Context
	if ctx < 0 {
		ctx = 0
	}

	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	hdr := color.New(color.FgCyan)
	for _, c := range []*color.Color{add, del, hdr} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", opts.OldName)
	fmt.Fprintf(&b, "+++ %s\n", opts.NewName)
	for _, h := range hunks(lines, ctx) {
		seg := lines[h[0]:h[1]]
		oldCount, newCount := 0, 0
		for _, l := range seg {
			if l.Op != Added {
				oldCount++
			}
			if l.Op != Removed {
				newCount++
			}
		}
		b.WriteString(hdr.Sprintf("@@ -%s +%s @@", span(seg[0].OldPos, oldCount), span(seg[0].NewPos, newCount)))
		b.WriteByte('\n')
		for _, l := range seg {
			switch l.Op {
			case Added:
				b.WriteString(add.Sprint("+" + l.Text))
			case Removed:
				b.WriteString(del.Sprint("-" + l.Text))
			default:
				b.WriteString(" " + l.Text)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// span formats a hunk range; an empty range points at the preceding line.
func span(pos, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", pos)
	}
	return fmt.Sprintf("%d,%d", pos+1, count)
}

// hunks groups changed lines with ctx lines of context into [start, end) spans.
func hunks(lines []Line, ctx int) [][2]int {
	var out [][2]int
	for i, l := range lines {
		if l.Op == Context {
			continue
		}
		start := max(i-ctx, 0)
		end := min(i+ctx+1, len(lines))
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = max(out[n-1][1], end)
			continue
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
