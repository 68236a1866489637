// Package jsbundle implements the JS bundler: it resolves the ES-module
// import graph from one entry file, rewrites module syntax so the modules
// share one scope, substitutes the build-mode constant, and writes a single
// ES-module bundle, minified with trivially-dead branches dropped in
// production and source-mapped in debug.
package jsbundle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sitekit/sitekit/internal/errors"
)

// importStmt is one import statement found in a module.
type importStmt struct {
	line      int    // 0-based line index in the module source
	clause    string // binding clause, empty for side-effect imports
	specifier string
	resolved  string // absolute path after resolution
}

var (
	importRe     = regexp.MustCompile(`^\s*import\s+(?:(.+?)\s+from\s+)?['"]([^'"]+)['"]\s*;?\s*$`)
	exportFromRe = regexp.MustCompile(`^\s*export\s+(?:\*|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]\s*;?\s*$`)
)

// scanImports finds import statements (and re-exports, which also pull a
// module in) in source. Only whole-line statements are recognized; that
// covers what a browser-targeted entry tree writes.
func scanImports(source string) []importStmt {
	var out []importStmt
	for i, line := range strings.Split(source, "\n") {
		if m := importRe.FindStringSubmatch(line); m != nil {
			out = append(out, importStmt{line: i, clause: strings.TrimSpace(m[1]), specifier: m[2]})
			continue
		}
		if m := exportFromRe.FindStringSubmatch(line); m != nil {
			out = append(out, importStmt{line: i, specifier: m[1]})
		}
	}
	return out
}

// resolveSpecifier maps an import specifier to a file. Relative specifiers
// resolve against the importing file; bare specifiers resolve against the
// vendor directory under the source js root. Tries the exact path, then
// ".js", then "/index.js".
func resolveSpecifier(fromFile, jsRoot, spec string) (string, error) {
	var base string
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base = filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(spec))
	} else if filepath.IsAbs(spec) || strings.HasPrefix(spec, "/") {
		return "", fmt.Errorf("absolute import %q is not allowed", spec)
	} else {
		base = filepath.Join(jsRoot, "vendor", filepath.FromSlash(spec))
	}

	for _, candidate := range []string{base, base + ".js", filepath.Join(base, "index.js")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("cannot resolve import %q from %s", spec, fromFile)
}

// module is one resolved file in the bundle graph.
type module struct {
	path    string // absolute path
	rel     string // slash path relative to the js root, for display
	source  string
	imports []importStmt
}

// ident derives the identifier prefix used for this module's synthesized
// bindings (default exports).
func (m *module) ident() string {
	name := strings.TrimSuffix(m.rel, filepath.Ext(m.rel))
	var sb strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// loadGraph resolves the module graph from the entry file in dependency
// (post-order) order. Import cycles are fatal and name the chain.
func loadGraph(entry, jsRoot string) ([]*module, error) {
	var order []*module
	loaded := make(map[string]*module)
	inStack := make(map[string]bool)
	var stack []string

	var visit func(path string) error
	visit = func(path string) error {
		key := filepath.Clean(path)
		if inStack[key] {
			return fmt.Errorf("import cycle: %s -> %s", strings.Join(stack, " -> "), key)
		}
		if _, done := loaded[key]; done {
			return nil
		}

		data, err := os.ReadFile(key)
		if err != nil {
			return errors.TaskFile("js", key, err)
		}

		rel, relErr := filepath.Rel(jsRoot, key)
		if relErr != nil {
			rel = filepath.Base(key)
		}
		m := &module{path: key, rel: filepath.ToSlash(rel), source: string(data)}
		m.imports = scanImports(m.source)

		inStack[key] = true
		stack = append(stack, m.rel)
		for i := range m.imports {
			resolved, err := resolveSpecifier(key, jsRoot, m.imports[i].specifier)
			if err != nil {
				return errors.TaskFile("js", key, err)
			}
			m.imports[i].resolved = filepath.Clean(resolved)
			if err := visit(resolved); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(inStack, key)

		loaded[key] = m
		order = append(order, m)
		return nil
	}

	if err := visit(entry); err != nil {
		return nil, err
	}
	return order, nil
}
