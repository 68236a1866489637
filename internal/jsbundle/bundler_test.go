package jsbundle

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

func bundleProject(t *testing.T) config.Dirs {
	t.Helper()
	root := writeJS(t, map[string]string{
		"src/assets/js/main.js": `import greet from "./lib/greet.js";
import "./boot.js";

if (process.env.NODE_ENV !== "production") {
  console.log("debug build");
}
greet("world");
`,
		"src/assets/js/lib/greet.js": `export default function greet(name) {
  console.log("hello " + name);
}
`,
		"src/assets/js/boot.js": "document.title = \"sitekit\";\n",
	})
	return config.DefaultDirs(root)
}

func TestBundleDebug(t *testing.T) {
	dirs := bundleProject(t)
	b := New(dirs, config.ModeDebug, "main.js", logging.Discard())
	require.NoError(t, b.Bundle(context.Background()))

	out, err := os.ReadFile(filepath.Join(dirs.Build.JS, "main.js"))
	require.NoError(t, err)
	js := string(out)

	// Dependencies first, entry last, each under its header comment.
	assert.Less(t, strings.Index(js, "// lib/greet.js"), strings.Index(js, "// main.js"))
	assert.Less(t, strings.Index(js, "// boot.js"), strings.Index(js, "// main.js"))

	// Shared scope: the default import became an alias of the synthesized
	// binding and the export keyword is gone.
	assert.Contains(t, js, "var lib_greet_default = function greet(name)")
	assert.Contains(t, js, "var greet = lib_greet_default;")
	assert.NotContains(t, js, "export default")
	assert.NotContains(t, js, "import ")

	// Mode constant substituted but branches kept in debug.
	assert.Contains(t, js, `"production" !== "production"`)
	assert.Contains(t, js, "console.log(\"debug build\")")

	assert.Contains(t, js, "sourceMappingURL=main.js.map")

	mapData, err := os.ReadFile(filepath.Join(dirs.Build.JS, "main.js.map"))
	require.NoError(t, err)
	assert.Contains(t, string(mapData), `"version":3`)
	assert.Contains(t, string(mapData), "lib/greet.js")
}

func TestBundleProduction(t *testing.T) {
	dirs := bundleProject(t)
	b := New(dirs, config.ModeProduction, "main.js", logging.Discard())
	require.NoError(t, b.Bundle(context.Background()))

	out, err := os.ReadFile(filepath.Join(dirs.Build.JS, "main.js"))
	require.NoError(t, err)
	js := string(out)

	// Dead branch eliminated, comments stripped, no map reference.
	assert.NotContains(t, js, "debug build")
	assert.NotContains(t, js, "// lib/greet.js")
	assert.NotContains(t, js, "sourceMappingURL")
	assert.Contains(t, js, "var greet = lib_greet_default;")
	assert.Contains(t, js, "document.title")

	_, err = os.Stat(filepath.Join(dirs.Build.JS, "main.js.map"))
	assert.True(t, os.IsNotExist(err), "production build must not write a map")
}

func TestBundleVendorImport(t *testing.T) {
	root := writeJS(t, map[string]string{
		"src/assets/js/main.js":          "import fmt from \"fmt\";\nfmt(1);\n",
		"src/assets/js/vendor/fmt.js":    "export default function fmt(n) { return n; }\n",
	})
	dirs := config.DefaultDirs(root)
	b := New(dirs, config.ModeDebug, "main.js", logging.Discard())
	require.NoError(t, b.Bundle(context.Background()))

	out, err := os.ReadFile(filepath.Join(dirs.Build.JS, "main.js"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "var fmt = vendor_fmt_default;")
}

func TestBundleMissingEntryFails(t *testing.T) {
	dirs := config.DefaultDirs(t.TempDir())
	b := New(dirs, config.ModeDebug, "main.js", logging.Discard())
	err := b.Bundle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.js")
}
