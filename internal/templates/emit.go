package templates

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Emit compiles an AST into a precompiled template expression against the
// bundled runtime: `Handlebars.template(function (ctx0, rt) {...})`.
func Emit(nodes []Node) string {
	e := &emitter{}
	e.printf("Handlebars.template(function (ctx0, rt) {")
	e.depth++
	e.printf("var out = \"\";")
	e.emitNodes(nodes, 0)
	e.printf("return out;")
	e.depth--
	e.printf("})")
	return strings.TrimSuffix(e.sb.String(), "\n")
}

type emitter struct {
	sb    strings.Builder
	depth int // indentation level
}

func (e *emitter) printf(format string, args ...any) {
	e.sb.WriteString(strings.Repeat("  ", e.depth))
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteByte('\n')
}

// emitNodes writes statements appending to `out`. level is the each-loop
// nesting depth; the context variable at a level is ctx<level>.
func (e *emitter) emitNodes(nodes []Node, level int) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			if n.Value != "" {
				e.printf("out += %s;", jsString(n.Value))
			}

		case *Mustache:
			fn := "rt.escape"
			if n.Raw {
				fn = "rt.str"
			}
			e.printf("out += %s(%s);", fn, valueExpr(n.Path, level))

		case *Partial:
			e.printf("out += rt.partial(%s, ctx%d);", jsString(n.Name), level)

		case *Block:
			e.emitBlock(n, level)
		}
	}
}

func (e *emitter) emitBlock(b *Block, level int) {
	switch b.Kind {
	case BlockEach:
		inner := level + 1
		e.printf("var list%d = rt.lookup(ctx%d, %s);", inner, level, jsPath(b.Path))
		e.printf("if (list%d != null) {", inner)
		e.depth++
		e.printf("for (var i%d = 0; i%d < list%d.length; i%d++) {", inner, inner, inner, inner)
		e.depth++
		e.printf("var ctx%d = list%d[i%d];", inner, inner, inner)
		e.emitNodes(b.Body, inner)
		e.depth--
		e.printf("}")
		e.depth--
		e.printf("}")

	case BlockIf, BlockUnless:
		cond := fmt.Sprintf("rt.truthy(%s)", valueExpr(b.Path, level))
		if b.Kind == BlockUnless {
			cond = "!" + cond
		}
		e.printf("if (%s) {", cond)
		e.depth++
		e.emitNodes(b.Body, level)
		e.depth--
		if len(b.Else) > 0 {
			e.printf("} else {")
			e.depth++
			e.emitNodes(b.Else, level)
			e.depth--
		}
		e.printf("}")
	}
}

// valueExpr builds the JS expression resolving a path at a loop level.
func valueExpr(path []string, level int) string {
	if len(path) == 0 {
		return fmt.Sprintf("ctx%d", level)
	}
	if len(path) == 1 && path[0] == "@index" {
		if level == 0 {
			return "undefined" // no enclosing loop
		}
		return fmt.Sprintf("i%d", level)
	}
	return fmt.Sprintf("rt.lookup(ctx%d, %s)", level, jsPath(path))
}

func jsPath(path []string) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = jsString(seg)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// jsString renders a JS string literal. JSON string syntax is a subset of
// JS, so json.Marshal does the escaping.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
