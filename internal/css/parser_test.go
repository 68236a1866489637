package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/sitekit/sitekit/internal/errors"
)

func TestParseSimpleRule(t *testing.T) {
	sheet, err := Parse(".btn { color: red; padding: 4px 8px; }", "a.css")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)

	r := sheet.Nodes[0].(*Rule)
	assert.Equal(t, []string{".btn"}, r.Selectors)
	assert.Equal(t, []Decl{{"color", "red"}, {"padding", "4px 8px"}}, r.Decls)
	assert.Equal(t, "a.css", r.Src)
	assert.Equal(t, 1, r.Line)
}

func TestParseSelectorList(t *testing.T) {
	sheet, err := Parse("h1,\nh2 , h3 { margin: 0 }", "a.css")
	require.NoError(t, err)
	r := sheet.Nodes[0].(*Rule)
	assert.Equal(t, []string{"h1", "h2", "h3"}, r.Selectors)
	assert.Equal(t, []Decl{{"margin", "0"}}, r.Decls)
}

func TestParseNestedRule(t *testing.T) {
	src := `.card {
  color: black;
  &:hover { color: blue; }
  .title { font-weight: bold; }
}`
	sheet, err := Parse(src, "a.css")
	require.NoError(t, err)

	r := sheet.Nodes[0].(*Rule)
	require.Len(t, r.Nested, 2)
	assert.Equal(t, []string{"&:hover"}, r.Nested[0].(*Rule).Selectors)
	assert.Equal(t, []string{".title"}, r.Nested[1].(*Rule).Selectors)
}

func TestParseAtRules(t *testing.T) {
	src := `@import "base.css";
@utilities;
@media (min-width: 768px) {
  .wide { display: flex; }
}`
	sheet, err := Parse(src, "a.css")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 3)

	imp := sheet.Nodes[0].(*AtRule)
	assert.Equal(t, "import", imp.Name)
	assert.Equal(t, `"base.css"`, imp.Params)
	assert.False(t, imp.HasBody)

	util := sheet.Nodes[1].(*AtRule)
	assert.Equal(t, "utilities", util.Name)

	media := sheet.Nodes[2].(*AtRule)
	assert.Equal(t, "media", media.Name)
	assert.Equal(t, "(min-width: 768px)", media.Params)
	require.Len(t, media.Body, 1)
}

func TestParseMediaNestedInRule(t *testing.T) {
	src := `.a {
  color: red;
  @media (min-width: 640px) { color: blue; }
}`
	sheet, err := Parse(src, "a.css")
	require.NoError(t, err)

	r := sheet.Nodes[0].(*Rule)
	require.Len(t, r.Nested, 1)
	at := r.Nested[0].(*AtRule)
	assert.True(t, at.HasBody)
	inner := at.Body[0].(*Rule)
	assert.Equal(t, []string{"&"}, inner.Selectors)
	assert.Equal(t, []Decl{{"color", "blue"}}, inner.Decls)
}

func TestParseCommentsIgnored(t *testing.T) {
	sheet, err := Parse("/* top */ .a { /* mid */ color: red; }", "a.css")
	require.NoError(t, err)
	r := sheet.Nodes[0].(*Rule)
	assert.Equal(t, []Decl{{"color", "red"}}, r.Decls)
}

func TestParseStringsInValues(t *testing.T) {
	sheet, err := Parse(`.a { content: "a; b: {c}"; background: url(x.png); }`, "a.css")
	require.NoError(t, err)
	r := sheet.Nodes[0].(*Rule)
	assert.Equal(t, Decl{"content", `"a; b: {c}"`}, r.Decls[0])
	assert.Equal(t, Decl{"background", "url(x.png)"}, r.Decls[1])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed block", ".a { color: red;"},
		{"declaration without colon", ".a { color red; }"},
		{"unterminated comment", ".a { color: red; } /* oops"},
		{"stray close brace", "} .a { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "bad.css")
			require.Error(t, err)
			assert.True(t, sterrors.IsSyntax(err), "expected syntax error, got %v", err)
			assert.Contains(t, err.Error(), "bad.css")
		})
	}
}
