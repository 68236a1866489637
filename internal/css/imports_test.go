package css

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func parseFile(t *testing.T, path string) *Stylesheet {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sheet, err := Parse(string(data), path)
	require.NoError(t, err)
	return sheet
}

func TestInlineImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.css":      `@import "base.css"; .app { color: red; }`,
		"base.css":      `@import "vars/reset.css"; body { margin: 0; }`,
		"vars/reset.css": `* { box-sizing: border-box; }`,
	})

	entry := filepath.Join(dir, "main.css")
	sheet, err := InlineImports(parseFile(t, entry), entry)
	require.NoError(t, err)

	require.Len(t, sheet.Nodes, 3)
	assert.Equal(t, []string{"*"}, sheet.Nodes[0].(*Rule).Selectors)
	assert.Equal(t, []string{"body"}, sheet.Nodes[1].(*Rule).Selectors)
	assert.Equal(t, []string{".app"}, sheet.Nodes[2].(*Rule).Selectors)
}

func TestInlineImportsCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.css": `@import "b.css";`,
		"b.css": `@import "a.css";`,
	})

	entry := filepath.Join(dir, "a.css")
	_, err := InlineImports(parseFile(t, entry), entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestInlineImportsMissingFileFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.css": `@import "nope.css";`,
	})

	entry := filepath.Join(dir, "a.css")
	_, err := InlineImports(parseFile(t, entry), entry)
	assert.Error(t, err)
}

func TestInlineImportsKeepsRemote(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.css": `@import url("https://fonts.example/css"); .a { color: red; }`,
	})

	entry := filepath.Join(dir, "a.css")
	sheet, err := InlineImports(parseFile(t, entry), entry)
	require.NoError(t, err)

	at := sheet.Nodes[0].(*AtRule)
	assert.Equal(t, "import", at.Name)
}

func TestImportTarget(t *testing.T) {
	tests := []struct {
		params string
		want   string
		ok     bool
	}{
		{`"x.css"`, "x.css", true},
		{`'x.css'`, "x.css", true},
		{`url("x.css")`, "x.css", true},
		{`url(x.css)`, "x.css", true},
		{`"https://cdn.example/x.css"`, "", false},
		{`url("x.css") screen and (min-width: 600px)`, "", false},
		{``, "", false},
	}
	for _, tt := range tests {
		got, ok := importTarget(tt.params)
		assert.Equal(t, tt.ok, ok, "params %q", tt.params)
		if tt.ok {
			assert.Equal(t, tt.want, got, "params %q", tt.params)
		}
	}
}
