package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	th := Default()

	assert.Equal(t, "wd-", th.Prefix)
	assert.Equal(t, "#e84118", th.Colors["red1"])
	assert.Equal(t, 700, th.FontWeights["bold"])
	assert.NotEmpty(t, th.Content)
	assert.NotEmpty(t, th.Screens)
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	th, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Prefix, th.Prefix)
}

func TestLoadOverridesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	doc := `
prefix: tw-
colors:
  brand: "#123456"
utilities:
  clearfix:
    clear: both
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tw-", th.Prefix)
	assert.Equal(t, "#123456", th.Colors["brand"])
	assert.Equal(t, "both", th.Utilities["clearfix"]["clear"])
}

func TestLoadMalformedThemeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRulesGeneration(t *testing.T) {
	th := Default()
	idx := th.Index()

	r, ok := idx["wd-text-red1"]
	require.True(t, ok)
	assert.Equal(t, []Decl{{"color", "#e84118"}}, r.Decls)

	r, ok = idx["wd-bg-navy2"]
	require.True(t, ok)
	assert.Equal(t, []Decl{{"background-color", "#192a56"}}, r.Decls)

	r, ok = idx["wd-hidden"]
	require.True(t, ok)
	assert.Equal(t, []Decl{{"display", "none"}}, r.Decls)

	r, ok = idx["wd-mx-4"]
	require.True(t, ok)
	assert.Equal(t, []Decl{{"margin-left", "1rem"}, {"margin-right", "1rem"}}, r.Decls)

	r, ok = idx["wd-font-bold"]
	require.True(t, ok)
	assert.Equal(t, []Decl{{"font-weight", "700"}}, r.Decls)

	_, ok = idx["text-red1"] // unprefixed must not exist
	assert.False(t, ok)
}

func TestRulesDeterministic(t *testing.T) {
	th := Default()
	assert.Equal(t, th.Rules(), th.Rules())
}
