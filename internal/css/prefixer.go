package css

// Property-level vendor prefixes, mirroring the legacy browser matrix the
// original pipeline targeted.
var prefixedProps = map[string][]string{
	"user-select":      {"-webkit-", "-moz-", "-ms-"},
	"appearance":       {"-webkit-", "-moz-"},
	"box-sizing":       {"-webkit-", "-moz-"},
	"transform":        {"-webkit-", "-ms-"},
	"transform-origin": {"-webkit-", "-ms-"},
	"transition":       {"-webkit-"},
	"animation":        {"-webkit-"},
	"backdrop-filter":  {"-webkit-"},
	"text-size-adjust": {"-webkit-", "-ms-"},
	"hyphens":          {"-webkit-", "-ms-"},
	"tab-size":         {"-moz-"},
	"column-count":     {"-webkit-", "-moz-"},
	"column-gap":       {"-webkit-", "-moz-"},
	"flex":             {"-webkit-", "-ms-"},
	"flex-direction":   {"-webkit-"},
	"flex-wrap":        {"-webkit-"},
	"align-items":      {"-webkit-"},
	"justify-content":  {"-webkit-"},
	"order":            {"-webkit-"},
}

// Value-level prefixes: property -> value -> prefixed replacement values.
var prefixedValues = map[string]map[string][]string{
	"display": {
		"flex":        {"-webkit-flex", "-ms-flexbox"},
		"inline-flex": {"-webkit-inline-flex", "-ms-inline-flexbox"},
	},
	"position": {
		"sticky": {"-webkit-sticky"},
	},
}

// Prefix inserts vendor-prefixed declarations ahead of the standard ones
// throughout the node tree. Operates on flattened nodes.
func Prefix(nodes []Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			v.Decls = prefixDecls(v.Decls)
		case *AtRule:
			if v.HasBody {
				Prefix(v.Body)
			}
		}
	}
}

func prefixDecls(decls []Decl) []Decl {
	out := make([]Decl, 0, len(decls))
	for _, d := range decls {
		if values, ok := prefixedValues[d.Prop]; ok {
			for _, pv := range values[d.Value] {
				out = append(out, Decl{Prop: d.Prop, Value: pv})
			}
		}
		for _, prefix := range prefixedProps[d.Prop] {
			out = append(out, Decl{Prop: prefix + d.Prop, Value: d.Value})
		}
		out = append(out, d)
	}
	return out
}
