package jsbundle

import (
	"regexp"
	"strings"
)

// Minify strips comments and collapses whitespace without renaming
// identifiers. Line breaks are preserved between statements so automatic
// semicolon insertion keeps working.
func Minify(src string) string {
	src = stripComments(src)

	var out []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// stripComments removes // and /* */ comments, respecting string, template
// and regex literals. A / that is not a comment opener starts a regex when
// the preceding token cannot end an expression; otherwise it is division.
func stripComments(src string) string {
	var sb strings.Builder

	// lastSig is the last significant (non-whitespace) byte emitted; word
	// is the identifier it ends, carried across trailing whitespace so
	// `return /x/` sees "return".
	lastSig := byte(0)
	word := ""
	wordBreak := false
	write := func(c byte) {
		sb.WriteByte(c)
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			wordBreak = true
		case isIdentByte(c):
			if wordBreak || !isIdentByte(lastSig) {
				word = ""
			}
			word += string(c)
			wordBreak = false
			lastSig = c
		default:
			word = ""
			wordBreak = false
			lastSig = c
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '"', '\'', '`':
			quote := c
			write(c)
			i++
			for i < len(src) {
				write(src[i])
				if src[i] == '\\' && i+1 < len(src) {
					i++
					write(src[i])
					i++
					continue
				}
				if src[i] == quote {
					i++
					break
				}
				i++
			}
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
				continue
			}
			if i+1 < len(src) && src[i+1] == '*' {
				i += 2
				for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
					i++
				}
				i += 2
				if i > len(src) {
					i = len(src)
				}
				continue
			}
			if regexCanStart(lastSig, word) {
				write(c)
				i++
				inClass, closed := false, false
				for i < len(src) && src[i] != '\n' && !closed {
					write(src[i])
					if src[i] == '\\' && i+1 < len(src) {
						i++
						write(src[i])
						i++
						continue
					}
					switch src[i] {
					case '[':
						inClass = true
					case ']':
						inClass = false
					case '/':
						closed = !inClass
					}
					i++
				}
			} else {
				write(c)
				i++
			}
		default:
			write(c)
			i++
		}
	}
	return sb.String()
}

// regexCanStart reports whether a / here opens a regex literal rather than
// division: after punctuation that cannot end an expression, after keywords
// like return, or at the start of input.
func regexCanStart(lastSig byte, word string) bool {
	switch word {
	case "return", "typeof", "case", "in", "of", "instanceof",
		"new", "delete", "void", "do", "else":
		return true
	}
	if lastSig == 0 {
		return true
	}
	if isIdentByte(lastSig) || lastSig == ')' || lastSig == ']' {
		return false
	}
	return true
}

var literalCondRe = regexp.MustCompile(`^\s*"([^"]*)"\s*(===|!==|==|!=)\s*"([^"]*)"\s*$`)

// StripDeadBranches removes `if` statements whose condition is a literal
// string comparison, the shape left behind after the build-mode constant
// substitution. True branches are unwrapped, false branches dropped (the
// else branch, when present, is treated symmetrically).
func StripDeadBranches(src string) string {
	for {
		next, changed := stripOneDeadBranch(src)
		if !changed {
			return next
		}
		src = next
	}
}

func stripOneDeadBranch(src string) (string, bool) {
	idx := 0
	for {
		pos := strings.Index(src[idx:], "if")
		if pos < 0 {
			return src, false
		}
		start := idx + pos
		idx = start + 2

		// Word boundary check.
		if start > 0 && isIdentByte(src[start-1]) {
			continue
		}
		rest := src[start+2:]
		open := strings.IndexByte(rest, '(')
		if open < 0 || strings.TrimSpace(rest[:open]) != "" {
			continue
		}
		condEnd := matchDelim(rest, open, '(', ')')
		if condEnd < 0 {
			continue
		}
		cond := rest[open+1 : condEnd]
		m := literalCondRe.FindStringSubmatch(cond)
		if m == nil {
			continue
		}
		truthy := evalLiteralCond(m[1], m[2], m[3])

		after := rest[condEnd+1:]
		bodyOpen := strings.IndexByte(after, '{')
		if bodyOpen < 0 || strings.TrimSpace(after[:bodyOpen]) != "" {
			continue
		}
		bodyClose := matchDelim(after, bodyOpen, '{', '}')
		if bodyClose < 0 {
			continue
		}
		body := after[bodyOpen+1 : bodyClose]

		tail := after[bodyClose+1:]
		elseBody := ""
		trimmed := strings.TrimLeft(tail, " \t\n\r")
		if strings.HasPrefix(trimmed, "else") {
			elseRest := trimmed[4:]
			elseOpen := strings.IndexByte(elseRest, '{')
			if elseOpen >= 0 && strings.TrimSpace(elseRest[:elseOpen]) == "" {
				elseClose := matchDelim(elseRest, elseOpen, '{', '}')
				if elseClose >= 0 {
					elseBody = elseRest[elseOpen+1 : elseClose]
					tail = elseRest[elseClose+1:]
				}
			}
		}

		kept := elseBody
		if truthy {
			kept = body
		}
		return src[:start] + kept + tail, true
	}
}

func evalLiteralCond(a, op, b string) bool {
	eq := a == b
	if op == "!==" || op == "!=" {
		return !eq
	}
	return eq
}

// matchDelim returns the index of the delimiter closing the one at open,
// or -1. Skips strings.
func matchDelim(s string, open int, openc, closec byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case openc:
			depth++
		case closec:
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'', '`':
			quote := s[i]
			i++
			for i < len(s) && s[i] != quote {
				if s[i] == '\\' {
					i++
				}
				i++
			}
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
