package theme

import (
	"sort"
	"strconv"
)

// Decl is one CSS declaration inside a generated utility rule.
type Decl struct {
	Prop  string
	Value string
}

// Rule is one generated utility: a single class with its declarations.
type Rule struct {
	Class string
	Decls []Decl
}

// Rules generates the full candidate utility table, prefixed and in
// deterministic order. The CSS transformer prunes this table down to the
// classes actually referenced in scanned content.
func (t *Theme) Rules() []Rule {
	var rules []Rule

	add := func(class string, decls ...Decl) {
		rules = append(rules, Rule{Class: t.Prefix + class, Decls: decls})
	}

	// Display and layout helpers.
	add("block", Decl{"display", "block"})
	add("inline-block", Decl{"display", "inline-block"})
	add("inline", Decl{"display", "inline"})
	add("flex", Decl{"display", "flex"})
	add("inline-flex", Decl{"display", "inline-flex"})
	add("grid", Decl{"display", "grid"})
	add("hidden", Decl{"display", "none"})
	add("relative", Decl{"position", "relative"})
	add("absolute", Decl{"position", "absolute"})
	add("fixed", Decl{"position", "fixed"})
	add("sticky", Decl{"position", "sticky"})

	// Flexbox helpers.
	add("flex-row", Decl{"flex-direction", "row"})
	add("flex-col", Decl{"flex-direction", "column"})
	add("flex-wrap", Decl{"flex-wrap", "wrap"})
	add("items-start", Decl{"align-items", "flex-start"})
	add("items-center", Decl{"align-items", "center"})
	add("items-end", Decl{"align-items", "flex-end"})
	add("justify-start", Decl{"justify-content", "flex-start"})
	add("justify-center", Decl{"justify-content", "center"})
	add("justify-end", Decl{"justify-content", "flex-end"})
	add("justify-between", Decl{"justify-content", "space-between"})

	// Text alignment.
	add("text-left", Decl{"text-align", "left"})
	add("text-center", Decl{"text-align", "center"})
	add("text-right", Decl{"text-align", "right"})

	// Color utilities.
	for _, name := range sortedKeys(t.Colors) {
		v := t.Colors[name]
		add("text-"+name, Decl{"color", v})
		add("bg-"+name, Decl{"background-color", v})
		add("border-"+name, Decl{"border-color", v})
	}

	// Font utilities.
	for _, name := range sortedKeys(t.FontFamilies) {
		add("font-"+name, Decl{"font-family", t.FontFamilies[name]})
	}
	for _, name := range sortedKeys(t.FontWeights) {
		add("font-"+name, Decl{"font-weight", strconv.Itoa(t.FontWeights[name])})
	}

	// Margin and padding from the spacing scale.
	type side struct {
		short string
		props []string
	}
	sides := []side{
		{"", nil}, // all sides
		{"t", []string{"-top"}},
		{"r", []string{"-right"}},
		{"b", []string{"-bottom"}},
		{"l", []string{"-left"}},
		{"x", []string{"-left", "-right"}},
		{"y", []string{"-top", "-bottom"}},
	}
	for _, box := range []struct{ short, prop string }{{"m", "margin"}, {"p", "padding"}} {
		for _, s := range sides {
			for _, step := range sortedKeys(t.Spacing) {
				v := t.Spacing[step]
				var decls []Decl
				if s.props == nil {
					decls = []Decl{{box.prop, v}}
				} else {
					for _, suffix := range s.props {
						decls = append(decls, Decl{box.prop + suffix, v})
					}
				}
				add(box.short+s.short+"-"+step, decls...)
			}
		}
	}

	// Custom utilities from the theme document, declaration order sorted
	// for reproducible output.
	for _, class := range sortedKeys(t.Utilities) {
		decls := t.Utilities[class]
		var ds []Decl
		for _, prop := range sortedKeys(decls) {
			ds = append(ds, Decl{prop, decls[prop]})
		}
		add(class, ds...)
	}

	return rules
}

// Index returns the utility table keyed by class name.
func (t *Theme) Index() map[string]Rule {
	rules := t.Rules()
	idx := make(map[string]Rule, len(rules))
	for _, r := range rules {
		idx[r.Class] = r
	}
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
