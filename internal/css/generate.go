package css

import (
	"sort"
	"strings"

	"github.com/sitekit/sitekit/internal/theme"
)

// generatedSrc is the virtual source file name used in source maps for
// rules produced from the theme rather than read from disk.
const generatedSrc = "<utilities>"

// GenerateUtilities produces the pruned utility rules: only theme utilities
// whose class (or screen-variant form) appears in the used set are emitted.
// Base rules come back in theme table order; responsive variants are
// grouped into one @media block per screen, ordered by min-width.
func GenerateUtilities(th *theme.Theme, used map[string]struct{}) []Node {
	table := th.Rules()
	idx := make(map[string]theme.Rule, len(table))
	for _, r := range table {
		idx[r.Class] = r
	}

	var nodes []Node
	for _, r := range table {
		if _, ok := used[r.Class]; ok {
			nodes = append(nodes, utilityRule(r.Class, r.Decls))
		}
	}

	// Collect screen variants out of the used set.
	variants := make(map[string][]theme.Rule) // screen -> rules in table order
	seen := make(map[string]bool)
	for tok := range used {
		colon := strings.IndexByte(tok, ':')
		if colon <= 0 {
			continue
		}
		screen, class := tok[:colon], tok[colon+1:]
		if _, ok := th.Screens[screen]; !ok {
			continue
		}
		r, ok := idx[class]
		if !ok || seen[tok] {
			continue
		}
		seen[tok] = true
		variants[screen] = append(variants[screen], theme.Rule{Class: screen + ":" + r.Class, Decls: r.Decls})
	}

	for _, screen := range screensByWidth(th.Screens) {
		rules := variants[screen]
		if len(rules) == 0 {
			continue
		}
		sort.Slice(rules, func(i, j int) bool { return rules[i].Class < rules[j].Class })
		body := make([]Node, 0, len(rules))
		for _, r := range rules {
			body = append(body, utilityRule(r.Class, r.Decls))
		}
		nodes = append(nodes, &AtRule{
			Name:    "media",
			Params:  "(min-width: " + th.Screens[screen] + ")",
			Body:    body,
			HasBody: true,
			Src:     generatedSrc,
		})
	}
	return nodes
}

func utilityRule(class string, decls []theme.Decl) *Rule {
	ds := make([]Decl, 0, len(decls))
	for _, d := range decls {
		ds = append(ds, Decl{Prop: d.Prop, Value: d.Value})
	}
	return &Rule{
		Selectors: []string{"." + escapeClass(class)},
		Decls:     ds,
		Src:       generatedSrc,
	}
}

// escapeClass escapes the characters a variant class name carries that are
// not valid bare in a selector.
func escapeClass(class string) string {
	var sb strings.Builder
	for i := 0; i < len(class); i++ {
		c := class[i]
		if c == ':' || c == '/' || c == '.' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// screensByWidth orders screen names by their min-width value (numeric
// prefix), name as tiebreak, so media blocks emit smallest first.
func screensByWidth(screens map[string]string) []string {
	names := make([]string, 0, len(screens))
	for name := range screens {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := widthValue(screens[names[i]]), widthValue(screens[names[j]])
		if wi != wj {
			return wi < wj
		}
		return names[i] < names[j]
	})
	return names
}

func widthValue(s string) int {
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
