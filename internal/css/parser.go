// Package css implements the CSS transformer: import inlining, utility
// generation with content-based pruning, nesting resolution, vendor
// prefixing, concatenation, and debug source maps or production
// minification.
package css

import (
	"strings"

	"github.com/sitekit/sitekit/internal/errors"
)

// Node is either *Rule or *AtRule.
type Node interface{ node() }

// Decl is one declaration inside a rule.
type Decl struct {
	Prop  string
	Value string
}

// Rule is a selector block. Nested holds &-style child rules and nested
// at-rules until the nesting pass flattens them.
type Rule struct {
	Selectors []string
	Decls     []Decl
	Nested    []Node
	Src       string
	Line      int
}

// AtRule is an @-rule, either a statement (@import "x";) or a block
// (@media ... { ... }).
type AtRule struct {
	Name    string
	Params  string
	Body    []Node
	HasBody bool
	Src     string
	Line    int
}

func (*Rule) node()   {}
func (*AtRule) node() {}

// Stylesheet is a parsed CSS file.
type Stylesheet struct {
	Nodes []Node
}

type parser struct {
	src  string
	file string
	pos  int
	line int
	col  int
}

// Parse parses one CSS source file. Comments are discarded. Parse errors
// carry file and position.
func Parse(src, file string) (*Stylesheet, error) {
	p := &parser{src: src, file: file, line: 1, col: 1}
	nodes, err := p.parseNodes(true)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Nodes: nodes}, nil
}

func (p *parser) errf(format string, args ...any) error {
	return errors.Syntaxf(p.file, p.line, p.col, format, args...)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

// skipSpace consumes whitespace and comments.
func (p *parser) skipSpace() error {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.advance()
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			start := p.line
			p.advance()
			p.advance()
			closed := false
			for !p.eof() {
				if p.peek() == '*' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/' {
					p.advance()
					p.advance()
					closed = true
					break
				}
				p.advance()
			}
			if !closed {
				return errors.Syntaxf(p.file, start, 0, "unterminated comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// readUntil consumes text until one of the stop bytes appears at the top
// nesting level, respecting strings and parentheses. The stop byte is not
// consumed. Returns the consumed text and the stop byte (0 at EOF).
func (p *parser) readUntil(stops string) (string, byte, error) {
	var sb strings.Builder
	depth := 0
	for !p.eof() {
		c := p.peek()
		if depth == 0 && strings.IndexByte(stops, c) >= 0 {
			return sb.String(), c, nil
		}
		switch c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '"', '\'':
			quoted, err := p.readString()
			if err != nil {
				return "", 0, err
			}
			sb.WriteString(quoted)
			continue
		case '/':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '*' {
				if err := p.skipSpace(); err != nil {
					return "", 0, err
				}
				sb.WriteByte(' ')
				continue
			}
		}
		sb.WriteByte(p.advance())
	}
	return sb.String(), 0, nil
}

// readString consumes a quoted string including quotes.
func (p *parser) readString() (string, error) {
	quote := p.advance()
	var sb strings.Builder
	sb.WriteByte(quote)
	for !p.eof() {
		c := p.advance()
		sb.WriteByte(c)
		if c == '\\' && !p.eof() {
			sb.WriteByte(p.advance())
			continue
		}
		if c == quote {
			return sb.String(), nil
		}
	}
	return "", p.errf("unterminated string")
}

// parseNodes parses rules and at-rules until '}' (or EOF when top is true).
func (p *parser) parseNodes(top bool) ([]Node, error) {
	var nodes []Node
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.eof() {
			if !top {
				return nil, p.errf("unexpected end of file, unclosed block")
			}
			return nodes, nil
		}
		if p.peek() == '}' {
			if top {
				return nil, p.errf("unexpected '}'")
			}
			return nodes, nil
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
}

func (p *parser) parseNode() (Node, error) {
	if p.peek() == '@' {
		return p.parseAtRule(false)
	}
	return p.parseRule()
}

// parseAtRule parses an @-rule. When inRule is true the body is parsed as a
// rule body under an implicit "&" selector, so `@media` blocks nested in a
// rule may contain bare declarations.
func (p *parser) parseAtRule(inRule bool) (Node, error) {
	line := p.line
	p.advance() // '@'
	name, stop, err := p.readUntil(" \t\n\r{;")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, p.errf("missing at-rule name")
	}

	params := ""
	if stop != '{' && stop != ';' && stop != 0 {
		params, stop, err = p.readUntil("{;")
		if err != nil {
			return nil, err
		}
	}
	params = strings.TrimSpace(params)

	at := &AtRule{Name: name, Params: params, Src: p.file, Line: line}
	switch stop {
	case '{':
		p.advance()
		if inRule {
			implicit := &Rule{Selectors: []string{"&"}, Src: p.file, Line: p.line}
			if err := p.parseRuleBody(implicit); err != nil {
				return nil, err
			}
			at.Body = []Node{implicit}
		} else {
			body, err := p.parseNodes(false)
			if err != nil {
				return nil, err
			}
			p.advance() // '}'
			at.Body = body
		}
		at.HasBody = true
	case ';':
		p.advance()
	case 0:
		// statement at EOF
	}
	return at, nil
}

func (p *parser) parseRule() (Node, error) {
	line := p.line
	prelude, stop, err := p.readUntil("{;}")
	if err != nil {
		return nil, err
	}
	if stop != '{' {
		return nil, p.errf("expected '{' after selector %q", strings.TrimSpace(prelude))
	}
	p.advance() // '{'

	rule := &Rule{Selectors: splitSelectors(prelude), Src: p.file, Line: line}
	if len(rule.Selectors) == 0 {
		return nil, p.errf("empty selector")
	}
	if err := p.parseRuleBody(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// parseRuleBody fills an already-opened rule until its closing brace.
// Bodies mix declarations, nested rules, and nested at-rules; a chunk is a
// declaration when ';' or '}' comes before '{'.
func (p *parser) parseRuleBody(rule *Rule) error {
	for {
		if err := p.skipSpace(); err != nil {
			return err
		}
		if p.eof() {
			return p.errf("unexpected end of file, unclosed rule")
		}
		if p.peek() == '}' {
			p.advance()
			return nil
		}
		if p.peek() == '@' {
			nested, err := p.parseAtRule(true)
			if err != nil {
				return err
			}
			rule.Nested = append(rule.Nested, nested)
			continue
		}
		if p.peek() == ';' {
			p.advance()
			continue
		}
		text, stop, err := p.readUntil("{;}")
		if err != nil {
			return err
		}
		if stop == '{' {
			p.advance()
			child := &Rule{Selectors: splitSelectors(text), Src: p.file, Line: p.line}
			if len(child.Selectors) == 0 {
				return p.errf("empty nested selector")
			}
			if err := p.parseRuleBody(child); err != nil {
				return err
			}
			rule.Nested = append(rule.Nested, child)
			continue
		}
		if stop == ';' {
			p.advance()
		}
		decl, err := p.parseDecl(text)
		if err != nil {
			return err
		}
		rule.Decls = append(rule.Decls, decl)
	}
}

func (p *parser) parseDecl(text string) (Decl, error) {
	text = strings.TrimSpace(text)
	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return Decl{}, p.errf("declaration %q is missing ':'", text)
	}
	prop := strings.TrimSpace(text[:colon])
	value := strings.TrimSpace(text[colon+1:])
	if prop == "" {
		return Decl{}, p.errf("declaration has empty property")
	}
	return Decl{Prop: prop, Value: value}, nil
}

// splitSelectors splits a rule prelude on top-level commas.
func splitSelectors(prelude string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(prelude); i++ {
		switch prelude[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(prelude[start:i]); s != "" {
					out = append(out, collapseSpace(s))
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(prelude[start:]); s != "" {
		out = append(out, collapseSpace(s))
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
