package jsbundle

import (
	"fmt"
	"regexp"
	"strings"
)

// modeConstant is the in-source reference replaced with a literal, exactly
// as the original sources write it.
const modeConstant = "process.env.NODE_ENV"

var (
	exportDefaultRe = regexp.MustCompile(`^(\s*)export\s+default\s+(.*)$`)
	exportDeclRe    = regexp.MustCompile(`^(\s*)export\s+((?:async\s+)?(?:function|class|const|let|var)\b.*)$`)
	exportListRe    = regexp.MustCompile(`^\s*export\s*\{[^}]*\}\s*;?\s*$`)
	namespaceRe     = regexp.MustCompile(`^\*\s+as\s+`)
)

// rewriteModule turns one module's source into shared-scope form, keeping
// the line count identical so debug source maps stay line-accurate:
//   - import lines become default-binding declarations or blank lines
//   - export keywords are stripped from declarations
//   - `export default` becomes a synthesized module-scoped binding
//
// idents maps resolved import paths to module identifier prefixes.
func rewriteModule(m *module, idents map[string]string) (string, error) {
	lines := strings.Split(m.source, "\n")
	selfIdent := m.ident()

	importAt := make(map[int]importStmt, len(m.imports))
	for _, imp := range m.imports {
		importAt[imp.line] = imp
	}

	for i := range lines {
		if imp, ok := importAt[i]; ok {
			binding, err := importBinding(imp, idents)
			if err != nil {
				return "", fmt.Errorf("%s:%d: %w", m.rel, i+1, err)
			}
			lines[i] = binding
			continue
		}
		if dm := exportDefaultRe.FindStringSubmatch(lines[i]); dm != nil {
			lines[i] = dm[1] + "var " + selfIdent + "_default = " + dm[2]
			continue
		}
		if em := exportDeclRe.FindStringSubmatch(lines[i]); em != nil {
			lines[i] = em[1] + em[2]
			continue
		}
		if exportListRe.MatchString(lines[i]) {
			lines[i] = ""
		}
	}

	out := strings.Join(lines, "\n")
	out = strings.ReplaceAll(out, modeConstant, `"production"`)
	return out, nil
}

// importBinding builds the replacement line for an import statement.
// Named imports need no binding: the exporting module's declarations are
// already in the shared scope. Default imports alias the synthesized
// default binding. Namespace imports are not supported.
func importBinding(imp importStmt, idents map[string]string) (string, error) {
	clause := strings.TrimSpace(imp.clause)
	if clause == "" {
		return "", nil // side-effect import or re-export
	}
	if namespaceRe.MatchString(clause) {
		return "", fmt.Errorf("namespace import of %q is not supported by the bundler", imp.specifier)
	}

	// Split `foo, { a, b }` into default part and named part.
	defaultName := clause
	if brace := strings.IndexByte(clause, '{'); brace >= 0 {
		defaultName = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(clause[:brace]), ","))
	}
	if defaultName == "" {
		return "", nil
	}

	ident, ok := idents[imp.resolved]
	if !ok {
		return "", fmt.Errorf("unresolved module for %q", imp.specifier)
	}
	return "var " + defaultName + " = " + ident + "_default;", nil
}
