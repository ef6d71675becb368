package compat

import (
	"unicode"
	"unicode/utf8"
)

// segment is one identifier in a dotted reference chain, with its position.
type segment struct {
	text string
	line int
	col  int
}

// chain is a dotted reference such as `navigator.clipboard.writeText`.
// leadingDot marks a chain whose receiver is unknown because it continues a
// call or index expression, e.g. the `.at` in `xs.flat().at(0)`.
type chain struct {
	segs       []segment
	leadingDot bool
}

// lexer walks source text and extracts reference chains. It skips comments,
// string literals and template literals (descending into `${...}`
// expressions), and tracks 1-based line/column positions. It performs no
// parsing beyond that: the matcher is lexical on purpose, so feature-detected
// or otherwise guarded usage is still reported.
type lexer struct {
	src    []byte
	pos    int
	line   int
	col    int
	chains []chain

	cur        []segment
	curLeading bool
	// prevCloser is true right after `)` or `]`, where a following dot opens
	// an unknown-receiver chain.
	prevCloser bool
	// pendingDot is true after a chain-continuing `.` or `?.`.
	pendingDot bool
}

// scanChains extracts every reference chain from one source unit.
func scanChains(src []byte) []chain {
	l := &lexer{src: src, line: 1, col: 1}
	l.run()
	return l.chains
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.advance(1)
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case c == '/' && l.peek(1) == '/':
			l.closeChain()
			l.skipLineComment()
		case c == '/' && l.peek(1) == '*':
			l.skipBlockComment()
		case c == '\'' || c == '"':
			l.closeChain()
			l.skipString(c)
		case c == '`':
			l.closeChain()
			l.skipTemplate()
		case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
			l.scanIdent()
		case c >= '0' && c <= '9':
			l.closeChain()
			l.skipNumber()
		case c == '.':
			l.scanDot()
		case c == '?' && l.peek(1) == '.':
			// Optional chaining continues the chain like a plain dot.
			l.advance(1)
			l.scanDot()
		case c == ')' || c == ']':
			l.closeChain()
			l.prevCloser = true
			l.advance(1)
		default:
			l.closeChain()
			l.prevCloser = false
			l.advance(1)
		}
	}
	l.closeChain()
}

func (l *lexer) scanDot() {
	if l.peek(1) == '.' {
		// Spread (`...`) or a stray dot run: not a member access.
		l.closeChain()
		for l.pos < len(l.src) && l.src[l.pos] == '.' {
			l.advance(1)
		}
		return
	}
	if len(l.cur) > 0 {
		l.pendingDot = true
	} else if l.prevCloser {
		// `).foo` or `].foo`: unknown receiver.
		l.curLeading = true
		l.pendingDot = true
	}
	l.prevCloser = false
	l.advance(1)
}

func (l *lexer) scanIdent() {
	startLine, startCol := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.advanceBytes(size)
	}
	text := string(l.src[start:l.pos])

	if l.pendingDot && (len(l.cur) > 0 || l.curLeading) {
		l.cur = append(l.cur, segment{text: text, line: startLine, col: startCol})
	} else {
		l.closeChain()
		l.cur = []segment{{text: text, line: startLine, col: startCol}}
		l.curLeading = false
	}
	l.pendingDot = false
	l.prevCloser = false
}

func (l *lexer) closeChain() {
	if len(l.cur) > 0 {
		l.chains = append(l.chains, chain{segs: l.cur, leadingDot: l.curLeading})
	}
	l.cur = nil
	l.curLeading = false
	l.pendingDot = false
	l.prevCloser = false
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance(1)
	}
}

func (l *lexer) skipBlockComment() {
	l.advance(2)
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peek(1) == '/' {
			l.advance(2)
			return
		}
		l.advance(1)
	}
}

func (l *lexer) skipString(quote byte) {
	l.advance(1)
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.advance(2)
			continue
		}
		if c == quote || c == '\n' {
			l.advance(1)
			return
		}
		l.advance(1)
	}
}

// skipTemplate skips a template literal but lexes `${...}` substitutions,
// since references inside them are real code.
func (l *lexer) skipTemplate() {
	l.advance(1)
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.advance(2)
			continue
		}
		if c == '`' {
			l.advance(1)
			return
		}
		if c == '$' && l.peek(1) == '{' {
			l.advance(2)
			l.runSubstitution()
			continue
		}
		l.advance(1)
	}
}

// runSubstitution lexes code inside `${...}` until the matching brace.
func (l *lexer) runSubstitution() {
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '}' && depth == 0:
			l.closeChain()
			l.advance(1)
			return
		case c == '{':
			depth++
			l.closeChain()
			l.advance(1)
		case c == '}':
			depth--
			l.closeChain()
			l.advance(1)
		case c == '/' && l.peek(1) == '/':
			l.closeChain()
			l.skipLineComment()
		case c == '/' && l.peek(1) == '*':
			l.skipBlockComment()
		case c == '\'' || c == '"':
			l.closeChain()
			l.skipString(c)
		case c == '`':
			l.closeChain()
			l.skipTemplate()
		case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
			l.scanIdent()
		case c >= '0' && c <= '9':
			l.closeChain()
			l.skipNumber()
		case c == '.':
			l.scanDot()
		case c == '?' && l.peek(1) == '.':
			l.advance(1)
			l.scanDot()
		case c == ')' || c == ']':
			l.closeChain()
			l.prevCloser = true
			l.advance(1)
		default:
			l.closeChain()
			l.prevCloser = false
			l.advance(1)
		}
	}
}

// skipNumber consumes a numeric literal, including the dots in forms like
// `1.5`, so they are not mistaken for member access.
func (l *lexer) skipNumber() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'n' {
			l.advance(1)
			continue
		}
		if (c == '+' || c == '-') && l.pos > 0 && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.advance(1)
			continue
		}
		return
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// advanceBytes moves over one rune's bytes, counting a single column.
func (l *lexer) advanceBytes(size int) {
	l.pos += size
	l.col++
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
