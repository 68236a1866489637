// Package templates implements the handlebars-subset template compiler. A
// template parses to an AST with two backends: a Go renderer used by tests
// and diagnostics, and a JS emitter producing precompiled functions against
// the embedded runtime.
package templates

import (
	"strings"

	"github.com/sitekit/sitekit/internal/errors"
)

// Node is one AST node: *Text, *Mustache, *Block, or *Partial.
type Node interface {
	node()
}

// Text is a literal run between mustaches.
type Text struct {
	Value string
}

// Mustache is an interpolation. An empty Path means `this`; the special
// segment "@index" resolves to the current each-loop index.
type Mustache struct {
	Path []string
	Raw  bool // {{{...}}}: skip HTML escaping
	Line int
}

// BlockKind discriminates the supported block helpers.
type BlockKind int

const (
	BlockIf BlockKind = iota
	BlockUnless
	BlockEach
)

func (k BlockKind) String() string {
	switch k {
	case BlockUnless:
		return "unless"
	case BlockEach:
		return "each"
	default:
		return "if"
	}
}

// Block is an {{#if}}, {{#unless}}, or {{#each}} section.
type Block struct {
	Kind BlockKind
	Path []string
	Body []Node
	Else []Node // nil when no {{else}}; unused for each
	Line int
}

// Partial is a {{> name}} inclusion. The partial renders with the current
// context.
type Partial struct {
	Name string
	Line int
}

func (*Text) node()     {}
func (*Mustache) node() {}
func (*Block) node()    {}
func (*Partial) node()  {}

type tmplParser struct {
	file string
	src  string
	pos  int
	line int
}

// Parse parses template source. file is used in error positions only.
func Parse(file, source string) ([]Node, error) {
	p := &tmplParser{file: file, src: source, line: 1}
	nodes, terminator, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if terminator != "" {
		return nil, p.errf("unexpected {{%s}} outside a block", terminator)
	}
	return nodes, nil
}

func (p *tmplParser) errf(format string, args ...any) error {
	return errors.Syntaxf(p.file, p.line, 0, format, args...)
}

// advance consumes n bytes, counting lines.
func (p *tmplParser) advance(n int) {
	p.line += strings.Count(p.src[p.pos:p.pos+n], "\n")
	p.pos += n
}

// parseNodes parses until EOF, {{else}}, or a {{/name}} close tag. The
// terminator ("" at EOF, "else", or "/name") is returned for the caller to
// validate.
func (p *tmplParser) parseNodes() ([]Node, string, error) {
	var nodes []Node
	for p.pos < len(p.src) {
		open := strings.Index(p.src[p.pos:], "{{")
		if open < 0 {
			nodes = append(nodes, &Text{Value: p.src[p.pos:]})
			p.advance(len(p.src) - p.pos)
			break
		}
		if open > 0 {
			nodes = append(nodes, &Text{Value: p.src[p.pos : p.pos+open]})
			p.advance(open)
		}

		node, terminator, err := p.parseMustache()
		if err != nil {
			return nil, "", err
		}
		if terminator != "" {
			return nodes, terminator, nil
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, "", nil
}

// parseMustache parses one {{...}} construct starting at p.pos. Returns
// either a node, or a non-empty terminator for {{else}} / {{/name}}.
func (p *tmplParser) parseMustache() (Node, string, error) {
	raw := strings.HasPrefix(p.src[p.pos:], "{{{")
	closeTok := "}}"
	openLen := 2
	if raw {
		closeTok = "}}}"
		openLen = 3
	}

	end := strings.Index(p.src[p.pos+openLen:], closeTok)
	if end < 0 {
		return nil, "", p.errf("unclosed mustache")
	}
	inner := p.src[p.pos+openLen : p.pos+openLen+end]
	line := p.line
	p.advance(openLen + end + len(closeTok))

	// Comments: {{! ... }} and {{!-- ... --}}.
	if strings.HasPrefix(inner, "!") {
		if strings.HasPrefix(inner, "!--") && !strings.HasSuffix(inner, "--") {
			// The comment body contained }}; resync on the real close.
			close := strings.Index(p.src[p.pos:], "--}}")
			if close < 0 {
				return nil, "", p.errf("unclosed comment")
			}
			p.advance(close + len("--}}"))
		}
		return nil, "", nil
	}

	expr := strings.TrimSpace(inner)
	switch {
	case raw:
		path, err := p.parsePath(expr)
		if err != nil {
			return nil, "", err
		}
		return &Mustache{Path: path, Raw: true, Line: line}, "", nil

	case expr == "else":
		return nil, "else", nil

	case strings.HasPrefix(expr, "/"):
		return nil, expr, nil

	case strings.HasPrefix(expr, ">"):
		name := strings.TrimSpace(expr[1:])
		if name == "" {
			return nil, "", p.errf("partial reference needs a name")
		}
		return &Partial{Name: name, Line: line}, "", nil

	case strings.HasPrefix(expr, "#"):
		return p.parseBlock(expr, line)

	default:
		path, err := p.parsePath(expr)
		if err != nil {
			return nil, "", err
		}
		return &Mustache{Path: path, Line: line}, "", nil
	}
}

func (p *tmplParser) parseBlock(expr string, line int) (Node, string, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(expr, "#"), " ")
	arg = strings.TrimSpace(arg)

	var kind BlockKind
	switch name {
	case "if":
		kind = BlockIf
	case "unless":
		kind = BlockUnless
	case "each":
		kind = BlockEach
	default:
		return nil, "", p.errf("unsupported block helper %q", name)
	}
	if arg == "" {
		return nil, "", p.errf("{{#%s}} needs an argument", name)
	}
	path, err := p.parsePath(arg)
	if err != nil {
		return nil, "", err
	}

	body, terminator, err := p.parseNodes()
	if err != nil {
		return nil, "", err
	}

	block := &Block{Kind: kind, Path: path, Body: body, Line: line}
	if terminator == "else" {
		if kind == BlockEach {
			return nil, "", p.errf("{{else}} is not supported inside {{#each}}")
		}
		block.Else, terminator, err = p.parseNodes()
		if err != nil {
			return nil, "", err
		}
	}
	if terminator != "/"+name {
		return nil, "", p.errf("{{#%s}} is not closed", name)
	}
	return block, "", nil
}

// parsePath splits a dotted path expression. `this` and `.` resolve to the
// current context; no other punctuation is allowed.
func (p *tmplParser) parsePath(expr string) ([]string, error) {
	if expr == "" {
		return nil, p.errf("empty expression")
	}
	if expr == "this" || expr == "." {
		return nil, nil
	}
	parts := strings.Split(expr, ".")
	for _, part := range parts {
		if part == "" || strings.ContainsAny(part, " \t(){}[]\"'") {
			return nil, p.errf("invalid path expression %q", expr)
		}
	}
	return parts, nil
}
