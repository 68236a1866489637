package templates

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// escapeHTML matches the runtime's escapeExpression table exactly so both
// backends produce identical output.
var escapeHTML = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// Render renders an AST against a data tree of maps, slices, and scalars.
// partials maps registration keys to parsed partial ASTs; a missing partial
// renders as the empty string, matching the runtime.
func Render(nodes []Node, data any, partials map[string][]Node) string {
	var sb strings.Builder
	r := &renderer{partials: partials}
	r.render(&sb, nodes, frame{ctx: data, index: -1})
	return sb.String()
}

type frame struct {
	ctx   any
	index int // -1 outside each
}

type renderer struct {
	partials map[string][]Node
}

func (r *renderer) render(sb *strings.Builder, nodes []Node, f frame) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(n.Value)

		case *Mustache:
			s := stringify(resolve(f, n.Path))
			if !n.Raw {
				s = escapeHTML.Replace(s)
			}
			sb.WriteString(s)

		case *Partial:
			if body, ok := r.partials[n.Name]; ok {
				r.render(sb, body, f)
			}

		case *Block:
			r.renderBlock(sb, n, f)
		}
	}
}

func (r *renderer) renderBlock(sb *strings.Builder, b *Block, f frame) {
	value := resolve(f, b.Path)

	switch b.Kind {
	case BlockEach:
		items := sliceOf(value)
		for i, item := range items {
			r.render(sb, b.Body, frame{ctx: item, index: i})
		}

	case BlockIf:
		if truthy(value) {
			r.render(sb, b.Body, f)
		} else {
			r.render(sb, b.Else, f)
		}

	case BlockUnless:
		if !truthy(value) {
			r.render(sb, b.Body, f)
		} else {
			r.render(sb, b.Else, f)
		}
	}
}

// resolve walks a dotted path from the frame context. An empty path is the
// context itself; "@index" is the enclosing loop index.
func resolve(f frame, path []string) any {
	if len(path) == 1 && path[0] == "@index" {
		if f.index < 0 {
			return nil
		}
		return f.index
	}
	cur := f.ctx
	for _, seg := range path {
		cur = field(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func field(v any, name string) any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m[name]
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		mv := rv.MapIndex(reflect.ValueOf(name))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return field(rv.Elem().Interface(), name)
	case reflect.Struct:
		fv := rv.FieldByName(name)
		if !fv.IsValid() {
			return nil
		}
		return fv.Interface()
	default:
		return nil
	}
}

func sliceOf(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// truthy mirrors the runtime's isTruthy: JS falsiness plus empty arrays.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return true
}

// stringify matches the runtime's String() coercion for the value shapes
// templates produce: nil renders empty, floats drop a trailing .0.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
