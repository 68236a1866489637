package templates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
)

func writeTree(t *testing.T, files map[string]string) config.Dirs {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return config.DefaultDirs(root)
}

func compileTo(t *testing.T, dirs config.Dirs, mode config.Mode) string {
	t.Helper()
	c := NewCompiler(dirs, mode, "App.templates", logging.Discard())
	require.NoError(t, c.Compile(context.Background()))
	out, err := os.ReadFile(filepath.Join(dirs.Build.JS, OutputName))
	require.NoError(t, err)
	return string(out)
}

func TestCompilePartialKeyStripsUnderscore(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/partials/_card.hbs": `<div class="card">{{name}}</div>`,
	})
	js := compileTo(t, dirs, config.ModeDebug)
	assert.Contains(t, js, `Handlebars.registerPartial("card", Handlebars.template(`)
}

func TestCompileNamespaceGuards(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/templates/home.hbs":  "<h1>{{title}}</h1>",
		"src/public/templates/about.hbs": "<p>{{text}}</p>",
	})
	js := compileTo(t, dirs, config.ModeDebug)

	assert.Contains(t, js, `this["App"] = this["App"] || {};`)
	assert.Contains(t, js, `this["App"]["templates"] = this["App"]["templates"] || {};`)
	assert.Contains(t, js, `this["App"]["templates"]["home"] = Handlebars.template(`)
	assert.Contains(t, js, `this["App"]["templates"]["about"] = Handlebars.template(`)
}

func TestCompileNestedTemplateDirs(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/templates/home.hbs":          "<h1>root</h1>",
		"src/public/templates/sub/home.hbs":      "<h1>nested</h1>",
		"src/public/templates/sub/deep/item.hbs": "<li>deep</li>",
	})
	js := compileTo(t, dirs, config.ModeDebug)

	// Subdirectories extend the namespace, so same-named files in
	// different directories declare distinct properties.
	assert.Contains(t, js, `this["App"]["templates"]["sub"] = this["App"]["templates"]["sub"] || {};`)
	assert.Contains(t, js, `this["App"]["templates"]["sub"]["deep"] = this["App"]["templates"]["sub"]["deep"] || {};`)
	assert.Contains(t, js, `this["App"]["templates"]["home"] = Handlebars.template(`)
	assert.Contains(t, js, `this["App"]["templates"]["sub"]["home"] = Handlebars.template(`)
	assert.Contains(t, js, `this["App"]["templates"]["sub"]["deep"]["item"] = Handlebars.template(`)
	assert.Equal(t, 1, strings.Count(js, `this["App"]["templates"]["sub"] =`),
		"each namespace level is guarded once")
	assert.Contains(t, js, "root")
	assert.Contains(t, js, "nested")
}

func TestCompilePartialsPrecedeTemplates(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/partials/_card.hbs": "{{name}}",
		"src/public/templates/home.hbs": "{{> card}}",
	})
	js := compileTo(t, dirs, config.ModeDebug)
	assert.Less(t, strings.Index(js, "registerPartial"), strings.Index(js, `["home"]`))
}

func TestCompilePartialCollisionLastWins(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/partials/a/_card.hbs": "first",
		"src/public/partials/b/_card.hbs": "second",
	})

	var buf strings.Builder
	log := logging.New(logging.Options{Output: &buf, Level: "warn"})
	c := NewCompiler(dirs, config.ModeDebug, "App.templates", log)
	require.NoError(t, c.Compile(context.Background()))

	js, err := os.ReadFile(filepath.Join(dirs.Build.JS, OutputName))
	require.NoError(t, err)

	// Both registrations are emitted in glob order, so the later one wins
	// at load time.
	assert.Equal(t, 2, strings.Count(string(js), `registerPartial("card"`))
	assert.Less(t, strings.Index(string(js), "first"), strings.Index(string(js), "second"))

	assert.Contains(t, buf.String(), "collision")
	assert.Contains(t, buf.String(), "a/_card.hbs")
	assert.Contains(t, buf.String(), "b/_card.hbs")
}

func TestCompileProductionMinifies(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/templates/home.hbs": "<h1>{{title}}</h1>",
	})
	js := compileTo(t, dirs, config.ModeProduction)
	assert.NotContains(t, js, "  var out")
	assert.Contains(t, js, `rt.lookup(ctx0, ["title"])`)
}

func TestCompileInvalidTemplateFails(t *testing.T) {
	dirs := writeTree(t, map[string]string{
		"src/public/templates/bad.hbs": "{{#if x}}never closed",
	})
	c := NewCompiler(dirs, config.ModeDebug, "App.templates", logging.Discard())
	err := c.Compile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hbs")
}

func TestCompileMissingDirsWritesEmptyBundle(t *testing.T) {
	dirs := config.DefaultDirs(t.TempDir())
	js := compileTo(t, dirs, config.ModeDebug)
	assert.Empty(t, js)
}

func TestWriteRuntime(t *testing.T) {
	dirs := config.DefaultDirs(t.TempDir())
	c := NewCompiler(dirs, config.ModeDebug, "App.templates", logging.Discard())
	require.NoError(t, c.WriteRuntime(context.Background()))

	out, err := os.ReadFile(filepath.Join(dirs.Build.JS, RuntimeName))
	require.NoError(t, err)
	assert.Contains(t, string(out), "root.Handlebars")
	assert.Contains(t, string(out), "registerPartial")
}
