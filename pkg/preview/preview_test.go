package preview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_Replace(t *testing.T) {
	lines := Lines("a\nb\nc\n", "a\nB\nc\n")

	var ops []Op
	var texts []string
	for _, l := range lines {
		ops = append(ops, l.Op)
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []Op{Context, Removed, Added, Context}, ops)
	assert.Equal(t, []string{"a", "b", "B", "c"}, texts)
	assert.True(t, Changed(lines))
}

func TestLines_Identical(t *testing.T) {
	lines := Lines("x\ny\n", "x\ny\n")
	assert.False(t, Changed(lines))
	assert.Len(t, lines, 2)
	assert.Equal(t, "", Render(lines, Options{Context: DefaultContext}))
}

func TestLines_FromEmpty(t *testing.T) {
	lines := Lines("", "one\ntwo\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, Added, l.Op)
	}
}

func TestRender_PlainUnified(t *testing.T) {
	out := Render(Lines("a\nb\nc\n", "a\nB\nc\n"), Options{
		OldName: ".gitignore",
		NewName: ".gitignore (proposed)",
		Context: DefaultContext,
	})

	want := strings.Join([]string{
		"--- .gitignore",
		"+++ .gitignore (proposed)",
		"@@ -1,3 +1,3 @@",
		" a",
		"-b",
		"+B",
		" c",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRender_AppendToEmpty(t *testing.T) {
	out := Render(Lines("", "x\n"), Options{OldName: "a", NewName: "b"})
	assert.Contains(t, out, "@@ -0,0 +1,1 @@\n+x\n")
}

func TestRender_SplitsDistantHunks(t *testing.T) {
	var old, new []string
	for i := 0; i < 20; i++ {
		old = append(old, fmt.Sprintf("l%d", i))
		new = append(new, fmt.Sprintf("l%d", i))
	}
	new[1] = "changed1"
	new[18] = "changed18"

	out := Render(Lines(strings.Join(old, "\n")+"\n", strings.Join(new, "\n")+"\n"), Options{Context: 1})
	assert.Equal(t, 2, strings.Count(out, "@@ -"))
	assert.NotContains(t, out, " l10\n")
}

func TestRender_Color(t *testing.T) {
	out := Render(Lines("a\n", "b\n"), Options{Color: true})
	assert.Contains(t, out, "\x1b[")

	plain := Render(Lines("a\n", "b\n"), Options{Color: false})
	assert.NotContains(t, plain, "\x1b[")
}
