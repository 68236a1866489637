package css

import (
	"strings"

	"github.com/sitekit/sitekit/internal/sourcemap"
)

// Serialize renders flattened nodes to CSS text. In formatted mode each
// rule's starting line is recorded into smap (when non-nil) against its
// source file, run through mapSource for display names. Minified mode
// emits one line and records nothing.
func Serialize(nodes []Node, minify bool, smap *sourcemap.Builder, mapSource func(string) string) string {
	w := &cssWriter{minify: minify, smap: smap, mapSource: mapSource}
	w.nodes(nodes, "")
	return w.sb.String()
}

type cssWriter struct {
	sb        strings.Builder
	line      int
	minify    bool
	smap      *sourcemap.Builder
	mapSource func(string) string
}

func (w *cssWriter) write(s string) {
	w.sb.WriteString(s)
	w.line += strings.Count(s, "\n")
}

func (w *cssWriter) nodes(nodes []Node, indent string) {
	for i, n := range nodes {
		if !w.minify && i > 0 {
			w.write("\n")
		}
		switch v := n.(type) {
		case *Rule:
			w.rule(v, indent)
		case *AtRule:
			w.atRule(v, indent)
		}
	}
}

func (w *cssWriter) mark(src string, srcLine int) {
	if w.smap == nil || src == "" {
		return
	}
	name := src
	if w.mapSource != nil {
		name = w.mapSource(src)
	}
	if srcLine < 1 {
		srcLine = 1
	}
	w.smap.AddMapping(w.line, name, srcLine-1)
}

func (w *cssWriter) rule(r *Rule, indent string) {
	if len(r.Decls) == 0 {
		return
	}
	if w.minify {
		w.write(strings.Join(r.Selectors, ","))
		w.write("{")
		for i, d := range r.Decls {
			if i > 0 {
				w.write(";")
			}
			w.write(d.Prop + ":" + d.Value)
		}
		w.write("}")
		return
	}

	w.mark(r.Src, r.Line)
	for i, sel := range r.Selectors {
		if i > 0 {
			w.write(",\n")
		}
		w.write(indent + sel)
	}
	w.write(" {\n")
	for _, d := range r.Decls {
		w.write(indent + "  " + d.Prop + ": " + d.Value + ";\n")
	}
	w.write(indent + "}\n")
}

func (w *cssWriter) atRule(at *AtRule, indent string) {
	header := "@" + at.Name
	if at.Params != "" {
		header += " " + at.Params
	}

	if !at.HasBody {
		if w.minify {
			w.write(header + ";")
		} else {
			w.write(indent + header + ";\n")
		}
		return
	}

	if w.minify {
		w.write(header + "{")
		w.nodes(at.Body, "")
		w.write("}")
		return
	}

	w.mark(at.Src, at.Line)
	w.write(indent + header + " {\n")
	w.nodes(at.Body, indent+"  ")
	w.write(indent + "}\n")
}
