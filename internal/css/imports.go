package css

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InlineImports resolves @import statements in sheet by splicing the parsed
// contents of the referenced files in place, recursively. Paths resolve
// relative to the importing file. Remote imports (http/https) are left
// untouched. An unresolvable local import or an import cycle is fatal.
func InlineImports(sheet *Stylesheet, file string) (*Stylesheet, error) {
	seen := map[string]bool{normalizePath(file): true}
	nodes, err := inlineNodes(sheet.Nodes, file, seen)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Nodes: nodes}, nil
}

func inlineNodes(nodes []Node, file string, seen map[string]bool) ([]Node, error) {
	var out []Node
	for _, n := range nodes {
		at, ok := n.(*AtRule)
		if !ok || at.Name != "import" || at.HasBody {
			out = append(out, n)
			continue
		}

		target, ok := importTarget(at.Params)
		if !ok {
			// Remote or unrecognized form, keep the statement.
			out = append(out, n)
			continue
		}

		resolved := filepath.Join(filepath.Dir(file), filepath.FromSlash(target))
		key := normalizePath(resolved)
		if seen[key] {
			return nil, fmt.Errorf("%s:%d: import cycle through %s", at.Src, at.Line, target)
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: resolving @import %q: %w", at.Src, at.Line, target, err)
		}

		imported, err := Parse(string(data), resolved)
		if err != nil {
			return nil, err
		}

		seen[key] = true
		inlined, err := inlineNodes(imported.Nodes, resolved, seen)
		delete(seen, key)
		if err != nil {
			return nil, err
		}
		out = append(out, inlined...)
	}
	return out, nil
}

// importTarget extracts the file path from an @import prelude. Returns
// ok=false for remote URLs and media-qualified imports, which are passed
// through verbatim.
func importTarget(params string) (string, bool) {
	s := strings.TrimSpace(params)
	if strings.HasPrefix(s, "url(") {
		close := strings.IndexByte(s, ')')
		if close < 0 || strings.TrimSpace(s[close+1:]) != "" {
			return "", false
		}
		s = strings.TrimSpace(s[4:close])
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if strings.ContainsAny(s, " \t") {
		return "", false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//") {
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}

func normalizePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
