package css

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/internal/sourcemap"
	"github.com/sitekit/sitekit/internal/theme"
)

func used(classes ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, c := range classes {
		m[c] = struct{}{}
	}
	return m
}

func TestGenerateUtilitiesPrunes(t *testing.T) {
	th := theme.Default()
	total := len(th.Rules())
	require.Greater(t, total, 100, "default theme should define a large utility table")

	nodes := GenerateUtilities(th, used("wd-flex", "wd-text-red1", "wd-m-4", "not-a-utility"))

	require.Len(t, nodes, 3)
	var classes []string
	for _, n := range nodes {
		classes = append(classes, n.(*Rule).Selectors[0])
	}
	assert.ElementsMatch(t, []string{".wd-flex", ".wd-text-red1", ".wd-m-4"}, classes)
}

func TestGenerateUtilitiesEmptyUsage(t *testing.T) {
	nodes := GenerateUtilities(theme.Default(), used("btn", "container"))
	assert.Empty(t, nodes)
}

func TestGenerateUtilitiesResponsiveVariants(t *testing.T) {
	th := theme.Default()
	nodes := GenerateUtilities(th, used("md:wd-flex", "sm:wd-hidden", "zz:wd-flex"))

	require.Len(t, nodes, 2)

	sm := nodes[0].(*AtRule)
	assert.Equal(t, "(min-width: 640px)", sm.Params)
	assert.Equal(t, []string{`.sm\:wd-hidden`}, sm.Body[0].(*Rule).Selectors)

	md := nodes[1].(*AtRule)
	assert.Equal(t, "(min-width: 768px)", md.Params)
	assert.Equal(t, []string{`.md\:wd-flex`}, md.Body[0].(*Rule).Selectors)
}

func TestGenerateUtilitiesTableOrder(t *testing.T) {
	th := theme.Default()
	nodes := GenerateUtilities(th, used("wd-text-red1", "wd-bg-red1", "wd-flex"))

	// Base rules come back in theme table order, not usage order.
	var classes []string
	for _, n := range nodes {
		classes = append(classes, n.(*Rule).Selectors[0])
	}
	assert.Equal(t, []string{".wd-flex", ".wd-text-red1", ".wd-bg-red1"}, classes)
}

func TestEscapeClass(t *testing.T) {
	assert.Equal(t, `md\:wd-flex`, escapeClass("md:wd-flex"))
	assert.Equal(t, `wd-w-1\/2`, escapeClass("wd-w-1/2"))
	assert.Equal(t, "wd-flex", escapeClass("wd-flex"))
}

func TestScanContentHTMLAndTokens(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/public/pages/index.html": `<div class="wd-flex wd-bg-navy1"><span class="md:wd-hidden">x</span></div>`,
		"src/public/partials/_c.hbs":  `<p class="wd-text-red1">{{name}}</p>`,
		"src/assets/js/app.js":        `el.classList.add("wd-m-4");`,
	})

	got, err := ScanContent(root, []string{
		"src/public/**/*.html",
		"src/public/**/*.hbs",
		"src/assets/js/**/*.js",
	})
	require.NoError(t, err)

	for _, want := range []string{"wd-flex", "wd-bg-navy1", "md:wd-hidden", "wd-text-red1", "wd-m-4"} {
		_, ok := got[want]
		assert.True(t, ok, "missing %s", want)
	}
}

func TestScanContentMissingDirs(t *testing.T) {
	got, err := ScanContent(t.TempDir(), []string{"src/public/**/*.html"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInjectUtilitiesDirective(t *testing.T) {
	nodes := mustParse(t, `body { margin: 0; }
@utilities;
.footer { color: grey; }`)
	gen := []Node{&Rule{Selectors: []string{".wd-flex"}, Decls: []Decl{{"display", "flex"}}}}

	out := injectUtilities(nodes, gen)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"body"}, out[0].(*Rule).Selectors)
	assert.Equal(t, []string{".wd-flex"}, out[1].(*Rule).Selectors)
	assert.Equal(t, []string{".footer"}, out[2].(*Rule).Selectors)
}

func TestInjectUtilitiesAppendsWithoutDirective(t *testing.T) {
	nodes := mustParse(t, `body { margin: 0; }`)
	gen := []Node{&Rule{Selectors: []string{".wd-flex"}, Decls: []Decl{{"display", "flex"}}}}

	out := injectUtilities(nodes, gen)
	require.Len(t, out, 2)
	assert.Equal(t, []string{".wd-flex"}, out[1].(*Rule).Selectors)
}

func TestSerializeFormatted(t *testing.T) {
	nodes := []Node{
		&Rule{Selectors: []string{".a", ".b"}, Decls: []Decl{{"color", "red"}}},
		&AtRule{Name: "media", Params: "(min-width: 640px)", HasBody: true, Body: []Node{
			&Rule{Selectors: []string{".c"}, Decls: []Decl{{"display", "none"}}},
		}},
	}
	out := Serialize(nodes, false, nil, nil)

	want := `.a,
.b {
  color: red;
}

@media (min-width: 640px) {
  .c {
    display: none;
  }
}
`
	assert.Equal(t, want, out)
}

func TestSerializeMinified(t *testing.T) {
	nodes := []Node{
		&Rule{Selectors: []string{".a", ".b"}, Decls: []Decl{{"color", "red"}, {"margin", "0"}}},
		&AtRule{Name: "media", Params: "(min-width: 640px)", HasBody: true, Body: []Node{
			&Rule{Selectors: []string{".c"}, Decls: []Decl{{"display", "none"}}},
		}},
	}
	out := Serialize(nodes, true, nil, nil)

	assert.Equal(t, ".a,.b{color:red;margin:0}@media (min-width: 640px){.c{display:none}}", out)
	assert.NotContains(t, out, "\n")
}

func TestSerializeRecordsMappings(t *testing.T) {
	nodes := []Node{
		&Rule{Selectors: []string{".a"}, Decls: []Decl{{"color", "red"}}, Src: "one.css", Line: 3},
		&Rule{Selectors: []string{".b"}, Decls: []Decl{{"color", "blue"}}, Src: "two.css", Line: 1},
	}

	smap := sourcemap.NewBuilder("style.css")
	Serialize(nodes, false, smap, nil)

	data, err := smap.JSON()
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.Contains(s, "one.css") && strings.Contains(s, "two.css"), s)
}
