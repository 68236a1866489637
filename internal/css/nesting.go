package css

import "strings"

// Flatten resolves &-style nesting into flat selectors. Nested rules get
// their parent selectors prepended (or substituted for '&'); at-rules
// nested inside rules hoist to the top level with the parent selector
// context applied to their contents. The result contains only flat rules
// and at-rules whose bodies are flat rules.
func Flatten(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			out = append(out, flattenRule(nil, v)...)
		case *AtRule:
			if v.HasBody {
				body := Flatten(v.Body)
				out = append(out, &AtRule{
					Name: v.Name, Params: v.Params,
					Body: body, HasBody: true,
					Src: v.Src, Line: v.Line,
				})
			} else {
				out = append(out, v)
			}
		}
	}
	return out
}

func flattenRule(parents []string, r *Rule) []Node {
	combined := combineSelectors(parents, r.Selectors)

	var out []Node
	if len(r.Decls) > 0 {
		out = append(out, &Rule{Selectors: combined, Decls: r.Decls, Src: r.Src, Line: r.Line})
	}

	for _, n := range r.Nested {
		switch v := n.(type) {
		case *Rule:
			out = append(out, flattenRule(combined, v)...)
		case *AtRule:
			if !v.HasBody {
				out = append(out, v)
				continue
			}
			var body []Node
			for _, inner := range v.Body {
				switch iv := inner.(type) {
				case *Rule:
					body = append(body, flattenRule(combined, iv)...)
				case *AtRule:
					body = append(body, iv)
				}
			}
			out = append(out, &AtRule{
				Name: v.Name, Params: v.Params,
				Body: body, HasBody: true,
				Src: v.Src, Line: v.Line,
			})
		}
	}
	return out
}

// combineSelectors merges parent and child selector lists. A child selector
// containing '&' substitutes each parent for it; otherwise the parent is
// prepended as an ancestor.
func combineSelectors(parents, children []string) []string {
	if len(parents) == 0 {
		out := make([]string, 0, len(children))
		for _, c := range children {
			// '&' at the top level refers to nothing; drop it.
			out = append(out, collapseSpace(strings.ReplaceAll(c, "&", "")))
		}
		return out
	}

	var out []string
	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				out = append(out, collapseSpace(strings.ReplaceAll(c, "&", p)))
			} else {
				out = append(out, p+" "+c)
			}
		}
	}
	return out
}
